package action

import (
	"context"

	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// HireSoldier recruits one level-1 soldier into the actor's first empty
// slot.
type HireSoldier struct{}

func (HireSoldier) Name() string { return "hire_soldier" }
func (HireSoldier) Kind() Kind   { return KindPersonal }

func (HireSoldier) Cost(a *Args) Cost {
	return Cost{ActorGold: params.CostHireSoldierGold, ActionPoints: params.CostHireSoldierAP}
}

func (HireSoldier) CanDoCore(a *Args) bool {
	return a.Actor.EmptySlots() > 0
}

func (h HireSoldier) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(h, a); err != nil {
		return OutcomeNothing, err
	}
	for i := range a.Actor.Soldiers {
		if a.Actor.Soldiers[i].Empty {
			a.Actor.Soldiers[i].Fill(params.HireSoldierLevel)
			return OutcomeDone, nil
		}
	}
	return OutcomeNothing, nil
}

// TrainSoldiers grants experience to every living soldier. A drillmaster
// anywhere in the garrison and the actor's own knighthood both speed the
// curve.
type TrainSoldiers struct{}

func (TrainSoldiers) Name() string { return "train_soldiers" }
func (TrainSoldiers) Kind() Kind   { return KindPersonal }

func (TrainSoldiers) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostTrainAP}
}

func (TrainSoldiers) CanDoCore(a *Args) bool {
	return a.Actor.AliveSoldiers() > 0
}

func (t TrainSoldiers) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(t, a); err != nil {
		return OutcomeNothing, err
	}
	exp := params.TrainExpBase * (1.0 + float64(a.Actor.Attack)/200.0)
	if garrisonHasDrillmaster(a) {
		exp *= params.TrainDrillmasterMul
	}
	if a.Actor.Traits.Has(world.TraitKnight) {
		exp *= params.TrainKnightMul
	}
	for i := range a.Actor.Soldiers {
		s := &a.Actor.Soldiers[i]
		if s.Alive() {
			s.GainExp(exp)
		}
	}
	return OutcomeDone, nil
}

func garrisonHasDrillmaster(a *Args) bool {
	cs := a.ActorCastle()
	if cs == nil {
		return a.Actor.Traits.Has(world.TraitDrillmaster)
	}
	for _, m := range a.W.MembersOf(cs) {
		if m.Traits.Has(world.TraitDrillmaster) {
			return true
		}
	}
	return false
}
