package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/game/action"
	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/world"
	"github.com/kurohane/tenka/sim"
)

// ControlHandler lets a host take characters away from the AI, answer
// their pending decisions and submit their actions.
type ControlHandler struct {
	sim    *sim.Sim
	pubsub cache.PubSub
	logger *zap.Logger

	mu       sync.Mutex
	channels map[world.ID]*decision.Channel
}

// NewControlHandler creates a ControlHandler.
func NewControlHandler(s *sim.Sim, ps cache.PubSub, logger *zap.Logger) *ControlHandler {
	return &ControlHandler{
		sim:      s,
		pubsub:   ps,
		logger:   logger,
		channels: make(map[world.ID]*decision.Channel),
	}
}

func charID(c *gin.Context) (world.ID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character id"})
		return 0, false
	}
	return world.ID(id), true
}

// Take puts a character under host control. Their battles and
// confirmations park as pending decisions until answered.
// POST /api/control/:id
func (h *ControlHandler) Take(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}

	err := h.sim.Do(c.Request.Context(), func(context.Context) error {
		if h.sim.W.Character(id) == nil {
			return fmt.Errorf("character %d not found", id)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ch := decision.NewChannel(func(msg string) {
		payload := fmt.Sprintf(`{"character_id":%d,"message":%q}`, id, msg)
		_ = h.pubsub.Publish(context.Background(), cache.EventChannel, payload)
	})

	h.mu.Lock()
	h.channels[id] = ch
	h.mu.Unlock()
	h.sim.Control(id, ch)

	h.logger.Info("character taken over", zap.Int64("character", int64(id)))
	c.JSON(http.StatusOK, gin.H{"controlled": int64(id)})
}

// Release hands a character back to the AI.
// DELETE /api/control/:id
func (h *ControlHandler) Release(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	h.mu.Lock()
	_, had := h.channels[id]
	delete(h.channels, id)
	h.mu.Unlock()
	h.sim.Control(id, nil)

	if !had {
		c.JSON(http.StatusNotFound, gin.H{"error": "character is not controlled"})
		return
	}
	h.logger.Info("character released", zap.Int64("character", int64(id)))
	c.JSON(http.StatusOK, gin.H{"released": int64(id)})
}

func (h *ControlHandler) channel(id world.ID) *decision.Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channels[id]
}

// Pending lists the character's unanswered decisions.
// GET /api/control/:id/decisions
func (h *ControlHandler) Pending(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	ch := h.channel(id)
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character is not controlled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": ch.Pending()})
}

// Resolve answers one pending decision.
// POST /api/control/:id/decisions/:rid
func (h *ControlHandler) Resolve(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	ch := h.channel(id)
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character is not controlled"})
		return
	}
	var resp decision.Response
	if err := c.ShouldBindJSON(&resp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid response body"})
		return
	}
	if !ch.Resolve(c.Param("rid"), resp) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such pending decision"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": c.Param("rid")})
}

// actionRequest is the body of a submitted action.
type actionRequest struct {
	Action          string `json:"action" binding:"required"`
	TargetCastle    int64  `json:"target_castle"`
	TargetCharacter int64  `json:"target_character"`
	TargetCountry   int64  `json:"target_country"`
}

// SubmitAction runs one action for a controlled character. The request
// suspends while the action waits on pending decisions; answering them
// through Resolve lets it finish.
// POST /api/control/:id/action
func (h *ControlHandler) SubmitAction(c *gin.Context) {
	id, ok := charID(c)
	if !ok {
		return
	}
	ch := h.channel(id)
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character is not controlled"})
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action body"})
		return
	}
	act := action.ByName(req.Action)
	if act == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action " + req.Action})
		return
	}

	var outcome action.Outcome
	err := h.sim.Do(c.Request.Context(), func(ctx context.Context) error {
		actor := h.sim.W.Character(id)
		if actor == nil {
			return fmt.Errorf("character %d not found", id)
		}
		if actor.IsMoving() || actor.IsIncapacitated() {
			return fmt.Errorf("%s cannot act right now", actor.Name)
		}
		switch act.Kind() {
		case action.KindPersonal:
			if !actor.PersonalReady() {
				return fmt.Errorf("personal gauge not full")
			}
		case action.KindStrategy:
			cs := h.sim.W.Castle(actor.CastleID)
			if cs == nil || cs.BossID != actor.ID {
				return fmt.Errorf("only the castle boss uses strategy actions")
			}
			if !actor.StrategyReady() {
				return fmt.Errorf("strategy gauge not full")
			}
		}

		args := &action.Args{
			W:               h.sim.W,
			Actor:           actor,
			TargetCastle:    world.ID(req.TargetCastle),
			TargetCharacter: world.ID(req.TargetCharacter),
			TargetCountry:   world.ID(req.TargetCountry),
			Decide:          ch,
		}
		if !action.CanDo(act, args) {
			return fmt.Errorf("action %s not possible", act.Name())
		}
		out, err := act.Do(ctx, args)
		if err != nil {
			return err
		}
		outcome = out
		// The turn is spent even when the effect fizzled.
		switch act.Kind() {
		case action.KindPersonal:
			actor.PersonalGauge = 0
		case action.KindStrategy:
			actor.StrategyGauge = 0
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": act.Name(), "outcome": int(outcome)})
}
