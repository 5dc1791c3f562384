package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterStaleAfter = 10 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces a per-IP token bucket across the whole API.
// r is requests per second, b the burst size. Buckets for idle clients
// are swept periodically so the map does not grow without bound.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	buckets := &sync.Map{}

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-limiterStaleAfter)
			buckets.Range(func(k, v interface{}) bool {
				if v.(*clientBucket).lastSeen.Before(cutoff) {
					buckets.Delete(k)
				}
				return true
			})
		}
	}()

	bucketFor := func(ip string) *rate.Limiter {
		v, _ := buckets.LoadOrStore(ip, &clientBucket{limiter: rate.NewLimiter(r, b)})
		cb := v.(*clientBucket)
		cb.lastSeen = time.Now()
		return cb.limiter
	}

	return func(c *gin.Context) {
		if !bucketFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
