// Package decision defines the contract between the engine and whatever
// host supplies player choices. AI-controlled actors never touch a
// Provider; they resolve choices through formulas instead.
package decision

import (
	"context"

	"github.com/kurohane/tenka/game/world"
)

// Tactic is one battle-phase choice for a side.
type Tactic int

const (
	TacticAttack Tactic = iota
	TacticSwap12
	TacticSwap23
	TacticRest
	TacticRetreat
)

func (t Tactic) String() string {
	switch t {
	case TacticSwap12:
		return "swap12"
	case TacticSwap23:
		return "swap23"
	case TacticRest:
		return "rest"
	case TacticRetreat:
		return "retreat"
	}
	return "attack"
}

// BattleView is the read-only state handed to a tactic chooser.
type BattleView struct {
	BattleID     string  `json:"battle_id"`
	Tick         int     `json:"tick"`
	OwnHP        float64 `json:"own_hp"`
	EnemyHP      float64 `json:"enemy_hp"`
	TacticsGauge float64 `json:"tactics_gauge"`
	RetreatGauge float64 `json:"retreat_gauge"`
	FrontAlive   int     `json:"front_alive"`
	MidAlive     int     `json:"mid_alive"`
	RearAlive    int     `json:"rear_alive"`
}

// Provider is the suspension-point contract. Every call may block until
// the host answers; implementations must honor ctx cancellation.
type Provider interface {
	// Confirm asks a yes/no question. A false return is the "cancelled"
	// outcome: the enclosing action short-circuits, keeping only cost
	// already paid.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// SelectCharacter picks one of the candidates, or reports none chosen.
	SelectCharacter(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error)

	// SelectCastle picks one of the candidates, or reports none chosen.
	SelectCastle(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error)

	// SelectTactic chooses the side's next battle action.
	SelectTactic(ctx context.Context, view BattleView) (Tactic, error)

	// Notify surfaces a descriptive message; never an error channel.
	Notify(message string)
}

// Auto is the headless Provider: it accepts every confirmation, picks the
// first candidate and always attacks. Used for batch simulation and tests.
type Auto struct{}

func (Auto) Confirm(ctx context.Context, prompt string) (bool, error) { return true, nil }

func (Auto) SelectCharacter(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error) {
	if len(candidates) == 0 {
		return 0, false, nil
	}
	return candidates[0], true, nil
}

func (Auto) SelectCastle(ctx context.Context, prompt string, candidates []world.ID) (world.ID, bool, error) {
	if len(candidates) == 0 {
		return 0, false, nil
	}
	return candidates[0], true, nil
}

func (Auto) SelectTactic(ctx context.Context, view BattleView) (Tactic, error) {
	return TacticAttack, nil
}

func (Auto) Notify(message string) {}
