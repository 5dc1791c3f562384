package action

import (
	"context"
	"math"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// HireSearchPoolSize is how many free characters a search surveys:
// max(1, ceil(intelligence/10) - 5). Sharper minds cast a wider net.
func HireSearchPoolSize(intelligence int) int {
	n := int(math.Ceil(float64(intelligence)/params.HireSearchIntDiv)) - params.HireSearchBias
	if n < 1 {
		n = 1
	}
	return n
}

// SearchCandidates samples the free-character pool for a recruiter.
// Deterministic under a fixed world seed.
func SearchCandidates(w *world.World, recruiter *world.Character) []*world.Character {
	free := w.FreeCharacters()
	return dice.Sample(w.Dice, free, HireSearchPoolSize(recruiter.Intelligence))
}

// HireVassal searches the wanderer pool and recruits the strongest
// candidate. The search is charged regardless of success: effort spent
// looking is spent either way.
type HireVassal struct{}

func (HireVassal) Name() string { return "hire_vassal" }
func (HireVassal) Kind() Kind   { return KindPersonal }

func (HireVassal) Cost(a *Args) Cost {
	return Cost{ActorGold: params.CostHireVassalGold, ActionPoints: params.CostHireVassalAP}
}

func (HireVassal) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	return cs != nil && !cs.IsFull()
}

func (h HireVassal) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(h, a); err != nil {
		return OutcomeNothing, err
	}
	cs := a.ActorCastle()

	candidates := SearchCandidates(a.W, a.Actor)
	if len(candidates) == 0 {
		return OutcomeNothing, nil
	}
	var best *world.Character
	for _, c := range candidates {
		if best == nil || c.Power() > best.Power() {
			best = c
		}
	}
	if cs.IsFull() {
		return OutcomeNothing, nil
	}
	best.CastleID = cs.ID
	cs.AddMember(best.ID)
	best.SetLoyalty(60 + a.W.Dice.Intn(20))
	a.Actor.Contribution += 3
	return OutcomeDone, nil
}

// FireVassal dismisses a garrisoned character back to the wanderer pool.
type FireVassal struct{}

func (FireVassal) Name() string { return "fire_vassal" }
func (FireVassal) Kind() Kind   { return KindStrategy }

func (FireVassal) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostFireVassalAP}
}

func (FireVassal) CanDoCore(a *Args) bool {
	target := a.W.Character(a.TargetCharacter)
	cs := a.ActorCastle()
	if target == nil || cs == nil || target.ID == a.Actor.ID {
		return false
	}
	return cs.HasMember(target.ID) && !target.IsMoving()
}

func (f FireVassal) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(f, a); err != nil {
		return OutcomeNothing, err
	}
	target := a.W.Character(a.TargetCharacter)
	a.W.MakeFree(target)
	return OutcomeDone, nil
}

// MoveVassal reassigns a garrisoned character to another friendly castle.
type MoveVassal struct{}

func (MoveVassal) Name() string { return "move_vassal" }
func (MoveVassal) Kind() Kind   { return KindStrategy }

func (MoveVassal) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostMoveVassalAP}
}

func (MoveVassal) CanDoCore(a *Args) bool {
	target := a.W.Character(a.TargetCharacter)
	dst := a.W.Castle(a.TargetCastle)
	cs := a.ActorCastle()
	if target == nil || dst == nil || cs == nil {
		return false
	}
	if target.IsMoving() || dst.IsFull() {
		return false
	}
	src := a.W.Castle(target.CastleID)
	return src != nil && src.CountryID == dst.CountryID && src.ID != dst.ID
}

func (m MoveVassal) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(m, a); err != nil {
		return OutcomeNothing, err
	}
	target := a.W.Character(a.TargetCharacter)
	a.W.MoveCharacter(target, a.TargetCastle)
	return OutcomeDone, nil
}

// GrantBonus hands a vassal gold from the actor's own purse, restoring
// loyalty.
type GrantBonus struct{}

func (GrantBonus) Name() string { return "grant_bonus" }
func (GrantBonus) Kind() Kind   { return KindPersonal }

func (GrantBonus) Cost(a *Args) Cost {
	return Cost{ActorGold: params.BonusGoldCost, ActionPoints: params.CostBonusAP}
}

func (GrantBonus) CanDoCore(a *Args) bool {
	target := a.W.Character(a.TargetCharacter)
	if target == nil || target.ID == a.Actor.ID {
		return false
	}
	// Same country, and the giver outranks or pays from genuine surplus.
	tc := a.W.CountryOf(target)
	ac := a.ActorCountry()
	return tc != nil && ac != nil && tc.ID == ac.ID
}

func (g GrantBonus) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(g, a); err != nil {
		return OutcomeNothing, err
	}
	target := a.W.Character(a.TargetCharacter)
	target.Gold += params.BonusGoldCost
	target.AddLoyalty(params.BonusLoyaltyGain)
	return OutcomeDone, nil
}
