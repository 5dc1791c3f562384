package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/model"
)

// WorldHandler serves the observer endpoints from published snapshots.
type WorldHandler struct {
	cache  cache.Cache
	store  *model.Store
	logger *zap.Logger
}

// NewWorldHandler creates a WorldHandler.
func NewWorldHandler(c cache.Cache, store *model.Store, logger *zap.Logger) *WorldHandler {
	return &WorldHandler{cache: c, store: store, logger: logger}
}

const rankingTop = 100

// Full returns the latest full world projection.
// GET /api/world
func (h *WorldHandler) Full(c *gin.Context) {
	h.snapshot(c, "world:full")
}

// Day returns the latest per-day summary.
// GET /api/world/day
func (h *WorldHandler) Day(c *gin.Context) {
	h.snapshot(c, "world:day")
}

func (h *WorldHandler) snapshot(c *gin.Context, key string) {
	raw, err := cache.Snapshot(c.Request.Context(), h.cache, key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Ranking returns a scoreboard, highest score first. Served from the
// cache ZSet; falls back to the persisted rows when the cache is cold.
// GET /api/ranking/:board?limit=20
func (h *WorldHandler) Ranking(c *gin.Context) {
	board := c.Param("board")
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= rankingTop {
		limit = l
	}

	entries, err := cache.Ranking(c.Request.Context(), h.cache, board, int64(limit))
	if err != nil {
		h.logger.Warn("ranking cache read failed", zap.String("board", board), zap.Error(err))
	}
	if len(entries) > 0 {
		c.JSON(http.StatusOK, gin.H{"board": board, "ranking": entries})
		return
	}

	rows, err := h.store.Ranking(board)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	out := make([]cache.RankingEntry, 0, limit)
	for i, r := range rows {
		if i >= limit {
			break
		}
		out = append(out, cache.RankingEntry{Rank: i + 1, Subject: r.Subject, Score: r.Score})
	}
	c.JSON(http.StatusOK, gin.H{"board": board, "ranking": out})
}
