package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/sim"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	sim    *sim.Sim
	store  *model.Store
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(s *sim.Sim, store *model.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{sim: s, store: store, logger: logger}
}

// Status returns loop health.
// GET /api/admin/status
func (h *AdminHandler) Status(c *gin.Context) {
	var date string
	var countries, forces int
	err := h.sim.Do(c.Request.Context(), func(context.Context) error {
		date = h.sim.W.Date.String()
		countries = len(h.sim.W.Countries())
		forces = len(h.sim.W.Forces())
		return nil
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paused":    h.sim.Paused(),
		"day":       h.sim.Day(),
		"date":      date,
		"countries": countries,
		"forces":    forces,
	})
}

// Pause pauses or resumes the loop.
// POST /api/admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.sim.SetPaused(req.Paused)
	h.logger.Info("pause flag set", zap.Bool("paused", req.Paused))
	c.JSON(http.StatusOK, gin.H{"paused": req.Paused})
}

// Speed changes the real-time pace of one game day.
// POST /api/admin/speed
func (h *AdminHandler) Speed(c *gin.Context) {
	var req struct {
		DayIntervalMs int `json:"day_interval_ms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DayIntervalMs < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.sim.SetDayInterval(time.Duration(req.DayIntervalMs) * time.Millisecond)
	h.logger.Info("pace changed", zap.Int("day_interval_ms", req.DayIntervalMs))
	c.JSON(http.StatusOK, gin.H{"day_interval_ms": req.DayIntervalMs})
}

// Save persists the world immediately.
// POST /api/admin/save
func (h *AdminHandler) Save(c *gin.Context) {
	err := h.sim.Do(c.Request.Context(), func(context.Context) error {
		return h.store.Save(h.sim.W)
	})
	if err != nil {
		h.logger.Error("manual save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
