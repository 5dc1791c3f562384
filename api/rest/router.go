// Package rest is the HTTP face of the engine: observers read published
// snapshots and rankings, hosts steer controlled characters, admins
// pause, pace and save the simulation.
package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kurohane/tenka/api/sse"
	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/config"
	"github.com/kurohane/tenka/middleware"
	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/sim"
)

// Deps collects everything the HTTP surface is wired with.
type Deps struct {
	Sim    *sim.Sim
	Store  *model.Store
	Cache  cache.Cache
	PubSub cache.PubSub
	Cfg    *config.Config
	Logger *zap.Logger
}

// NewRouter builds the gin engine with the full middleware chain and
// every route group.
func NewRouter(d Deps) *gin.Engine {
	if !d.Cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.TraceID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.RateLimit(rate.Limit(d.Cfg.Security.RateLimitRPS), d.Cfg.Security.RateLimitBurst),
	)

	world := NewWorldHandler(d.Cache, d.Store, d.Logger)
	control := NewControlHandler(d.Sim, d.PubSub, d.Logger)
	admin := NewAdminHandler(d.Sim, d.Store, d.Logger)
	stream := sse.NewHandler(d.PubSub, d.Logger)

	api := r.Group("/api")
	{
		api.GET("/world", world.Full)
		api.GET("/world/day", world.Day)
		api.GET("/ranking/:board", world.Ranking)
		api.GET("/events", stream.Stream)

		api.POST("/control/:id", control.Take)
		api.DELETE("/control/:id", control.Release)
		api.GET("/control/:id/decisions", control.Pending)
		api.POST("/control/:id/decisions/:rid", control.Resolve)
		api.POST("/control/:id/action", control.SubmitAction)
	}

	adm := api.Group("/admin", AdminAuth(d.Cfg.Server.AdminKey))
	{
		adm.GET("/status", admin.Status)
		adm.POST("/pause", admin.Pause)
		adm.POST("/speed", admin.Speed)
		adm.POST("/save", admin.Save)
	}

	return r
}
