package action

import (
	"context"
	"math"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// countryDistance is the closest castle pair distance between countries.
func countryDistance(w *world.World, a, b *world.Country) float64 {
	best := math.MaxFloat64
	for _, ai := range a.CastleIDs {
		ca := w.Castle(ai)
		if ca == nil {
			continue
		}
		for _, bi := range b.CastleIDs {
			cb := w.Castle(bi)
			if cb == nil {
				continue
			}
			if d := ca.Pos.Dist(cb.Pos); d < best {
				best = d
			}
		}
	}
	return best
}

// AllianceAcceptProbability is the AI target's chance of accepting an
// alliance proposal. Zero when the target is sated with allies; scales
// linearly with relation and drops sharply across long distances.
func AllianceAcceptProbability(w *world.World, proposer, target *world.Country) float64 {
	if target.AllyCount() >= params.AllianceMaxPartners {
		return 0
	}
	rel := w.Relation(proposer.ID, target.ID)
	p := dice.Clamp((rel-40)/40.0, 0, 1)
	if countryDistance(w, proposer, target) > params.AllianceDistanceMax {
		p *= 0.3
	}
	return p
}

// Goodwill sends a gold gift to another country's ruler, improving
// relations. The gift is always accepted.
type Goodwill struct{}

func (Goodwill) Name() string { return "goodwill" }
func (Goodwill) Kind() Kind   { return KindStrategy }

func (Goodwill) Cost(a *Args) Cost {
	return Cost{ActorGold: params.GoodwillGold, ActionPoints: params.CostGoodwillAP}
}

func (Goodwill) CanDoCore(a *Args) bool {
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)
	return self != nil && target != nil && target.ID != self.ID && !self.IsAlly(target.ID)
}

func (g Goodwill) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(g, a); err != nil {
		return OutcomeNothing, err
	}
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)
	if ruler := a.W.Character(target.RulerID); ruler != nil {
		ruler.Gold += params.GoodwillGold
	}
	a.W.AdjustRelation(self.ID, target.ID, params.GoodwillRelationGain)
	return OutcomeDone, nil
}

// FormAlliance proposes an alliance. The cost is charged before the
// target's acceptance roll: a refused envoy still travelled. Refusal
// costs relation on top.
type FormAlliance struct{}

func (FormAlliance) Name() string { return "form_alliance" }
func (FormAlliance) Kind() Kind   { return KindStrategy }

func (FormAlliance) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostAllianceAP}
}

func (FormAlliance) CanDoCore(a *Args) bool {
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)
	if self == nil || target == nil || target.ID == self.ID {
		return false
	}
	return !self.IsAlly(target.ID)
}

func (f FormAlliance) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(f, a); err != nil {
		return OutcomeNothing, err
	}
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)

	p := AllianceAcceptProbability(a.W, self, target)
	if !a.W.Dice.Chance(p) {
		a.W.AdjustRelation(self.ID, target.ID, -params.RejectionRelationHit)
		return OutcomeNothing, nil
	}
	a.W.SetAlly(self.ID, target.ID)
	a.Actor.Prestige += 2
	return OutcomeDone, nil
}

// BreakAlliance unilaterally dissolves an alliance. Relations drop to a
// wary distance.
type BreakAlliance struct{}

func (BreakAlliance) Name() string { return "break_alliance" }
func (BreakAlliance) Kind() Kind   { return KindStrategy }

func (BreakAlliance) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostBreakAP}
}

func (BreakAlliance) CanDoCore(a *Args) bool {
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)
	return self != nil && target != nil && self.IsAlly(target.ID)
}

func (b BreakAlliance) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(b, a); err != nil {
		return OutcomeNothing, err
	}
	self := a.ActorCountry()
	target := a.W.Country(a.TargetCountry)

	ok, err := a.Provider().Confirm(ctx, "Break the alliance with "+target.Name+"?")
	if err != nil {
		return OutcomeNothing, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}
	a.W.BreakAlliance(self.ID, target.ID, params.DangerRelationMax)
	return OutcomeDone, nil
}
