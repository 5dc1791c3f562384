// Package action implements the uniform gameplay-action contract: every
// action declares its cost, a pure precondition and an effect. The
// catalog is an explicit registry built at init, not discovered by
// reflection.
package action

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/world"
)

// Kind separates the two action gauges.
type Kind int

const (
	KindPersonal Kind = iota
	KindStrategy
)

// Cost is what an action deducts before its effect runs. Variable means
// the real cost is only known after target resolution and is charged
// just-in-time inside Do.
type Cost struct {
	ActorGold    int
	ActionPoints int
	CastleGold   int
	Variable     bool
}

// Outcome classifies how Do ended. None of these are errors: a rejected
// proposal or an empty candidate pool is a valid result.
type Outcome int

const (
	// OutcomeDone: the effect was applied.
	OutcomeDone Outcome = iota
	// OutcomeNothing: cost may be paid but no effect occurred
	// (no valid target, proposal refused).
	OutcomeNothing
	// OutcomeCancelled: an interactive confirmation declined; world state
	// unchanged beyond cost already committed.
	OutcomeCancelled
)

// ErrPrecondition marks a Do call whose precondition no longer holds.
// Calling Do without checking CanDo is a programming error; the engine
// logs it and refuses to mutate.
var ErrPrecondition = errors.New("action precondition not satisfied")

// Args carries the request context of one action invocation.
type Args struct {
	W     *world.World
	Actor *world.Character

	TargetCastle    world.ID
	TargetCharacter world.ID
	TargetCountry   world.ID

	Decide decision.Provider
}

// Provider returns the decision provider, defaulting to the headless one.
func (a *Args) Provider() decision.Provider {
	if a.Decide != nil {
		return a.Decide
	}
	return decision.Auto{}
}

// ActorCastle resolves the acting character's castle, or nil.
func (a *Args) ActorCastle() *world.Castle {
	return a.W.Castle(a.Actor.CastleID)
}

// ActorCountry resolves the acting character's country, or nil.
func (a *Args) ActorCountry() *world.Country {
	return a.W.CountryOf(a.Actor)
}

// Action is the uniform gameplay contract.
type Action interface {
	Name() string
	Kind() Kind
	Cost(a *Args) Cost
	CanDoCore(a *Args) bool
	Do(ctx context.Context, a *Args) (Outcome, error)
}

// CanPay reports whether the actor (and their castle, when the cost taps
// castle gold) can cover the cost. Variable costs are always payable at
// this stage; the real check happens inside Do.
func CanPay(a *Args, c Cost) bool {
	if c.Variable {
		return true
	}
	if !a.Actor.CanPay(c.ActorGold, c.ActionPoints) {
		return false
	}
	if c.CastleGold > 0 {
		cs := a.ActorCastle()
		if cs == nil || cs.Gold < c.CastleGold {
			return false
		}
	}
	return true
}

// CanDo is the full gate: payable and domain-valid.
func CanDo(act Action, a *Args) bool {
	return CanPay(a, act.Cost(a)) && act.CanDoCore(a)
}

// charge deducts a concrete cost. Callers guarantee payability.
func charge(a *Args, c Cost) {
	a.Actor.Pay(c.ActorGold, c.ActionPoints)
	if c.CastleGold > 0 {
		if cs := a.ActorCastle(); cs != nil {
			cs.Gold -= c.CastleGold
		}
	}
}

// begin guards Do against precondition violations and pays any fixed
// cost. Every concrete Do starts here.
func begin(act Action, a *Args) (Cost, error) {
	cost := act.Cost(a)
	if !CanPay(a, cost) || !act.CanDoCore(a) {
		a.W.Log.Error("Do called with failing precondition",
			zap.String("action", act.Name()),
			zap.Int64("actor", int64(a.Actor.ID)))
		return cost, ErrPrecondition
	}
	if !cost.Variable {
		charge(a, cost)
	}
	return cost, nil
}

// Registry lists every action per gauge. Built once at package init;
// replaces the original's reflection scan.
var (
	personalActions = []Action{
		Develop{},
		Invest{},
		Fortify{},
		HireSoldier{},
		TrainSoldiers{},
		HireVassal{},
		GrantBonus{},
		Rebel{},
		Resign{},
	}

	strategyActions = []Action{
		Goodwill{},
		FormAlliance{},
		BreakAlliance{},
		FireVassal{},
		MoveVassal{},
		Deploy{},
		Reinforce{},
		Recall{},
		Transport{},
		BecomeIndependent{},
		Seize{},
	}
)

// Personal returns the personal-gauge catalog.
func Personal() []Action { return personalActions }

// Strategy returns the strategy-gauge catalog.
func Strategy() []Action { return strategyActions }

// ByName finds an action in either catalog.
func ByName(name string) Action {
	for _, a := range personalActions {
		if a.Name() == name {
			return a
		}
	}
	for _, a := range strategyActions {
		if a.Name() == name {
			return a
		}
	}
	return nil
}
