package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/world", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func getAs(t *testing.T, eng *gin.Engine, ip string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/world", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	eng.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	eng := limitedRouter(100, 5)
	assert.Equal(t, http.StatusOK, getAs(t, eng, "192.168.0.10"))
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	// Near-zero refill so the bucket never recovers during the test.
	eng := limitedRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, getAs(t, eng, "192.168.0.20"), "request %d within burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, getAs(t, eng, "192.168.0.20"))
}

func TestRateLimitBucketsAreIndependent(t *testing.T) {
	eng := limitedRouter(0.001, 1)

	for _, ip := range []string{"192.168.1.1", "192.168.1.2"} {
		assert.Equal(t, http.StatusOK, getAs(t, eng, ip), "first request from %s", ip)
	}

	// One client draining its bucket does not affect the other.
	assert.Equal(t, http.StatusTooManyRequests, getAs(t, eng, "192.168.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, getAs(t, eng, "192.168.1.2"))
}
