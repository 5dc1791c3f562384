package action

import (
	"context"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// BetrayalProbability is the chance that member joins instigator's
// uprising. Loyalty anchors it, ambition erodes it, high fealty halves
// it, and a visibly stronger instigator sways the undecided.
func BetrayalProbability(instigator, member *world.Character) float64 {
	p := (params.BetrayalLoyaltyPivot - float64(member.Loyalty) +
		float64(member.Ambition)/params.BetrayalAmbitionDiv) * params.BetrayalScale
	if instigator.Power() > member.Power() {
		p += 0.1
	}
	if member.Fealty >= params.BetrayalFealtyShield {
		p /= 2
	}
	return dice.Clamp(p, 0, 1)
}

// uprising rolls every other garrison member and splits them into
// betrayers and loyalists.
func uprising(a *Args, cs *world.Castle) (betrayers, loyalists []*world.Character) {
	for _, m := range a.W.MembersOf(cs) {
		if m.ID == a.Actor.ID || m.IsMoving() {
			continue
		}
		if a.W.Dice.Chance(BetrayalProbability(a.Actor, m)) {
			betrayers = append(betrayers, m)
		} else {
			loyalists = append(loyalists, m)
		}
	}
	return betrayers, loyalists
}

func powerSum(side []*world.Character) float64 {
	sum := 0.0
	for _, c := range side {
		sum += c.Power()
	}
	return sum
}

// foundCountry spins a new country around the actor holding one castle.
func foundCountry(a *Args, cs *world.Castle, loyalists []*world.Character) *world.Country {
	cn := a.W.AddCountry(a.Actor.Name + "'s banner")
	cn.RulerID = a.Actor.ID
	a.W.TransferCastle(cs, cn.ID)
	// Loyalists walk out rather than serve the usurper.
	for _, l := range loyalists {
		a.W.MakeFree(l)
	}
	cs.BossID = a.Actor.ID
	a.Actor.SetLoyalty(params.LoyaltyMax)
	return cn
}

// chainDefection lets neighboring castle bosses of the old country join a
// successful rebellion.
func chainDefection(a *Args, cs *world.Castle, oldCountry world.ID, newCountry *world.Country) {
	for _, nid := range cs.NeighborIDs {
		nc := a.W.Castle(nid)
		if nc == nil || nc.CountryID != oldCountry {
			continue
		}
		boss := a.W.Character(nc.BossID)
		if boss == nil {
			continue
		}
		if a.W.Dice.Chance(BetrayalProbability(a.Actor, boss)) {
			a.W.TransferCastle(nc, newCountry.ID)
			boss.SetLoyalty(80)
			a.W.Log.Info("castle defected in the wake of rebellion")
		}
	}
}

// Rebel is the castle boss's bid to rip their castle out of the country.
// Confirmable; each garrison member rolls for defection; the stronger
// side wins. Success founds a new country and may cascade through
// neighboring bosses.
type Rebel struct{}

func (Rebel) Name() string { return "rebel" }
func (Rebel) Kind() Kind   { return KindPersonal }

func (Rebel) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostRebelAP}
}

func (Rebel) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	if cs == nil || cs.BossID != a.Actor.ID {
		return false
	}
	return !a.W.IsRuler(a.Actor)
}

func (r Rebel) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(r, a); err != nil {
		return OutcomeNothing, err
	}
	cs := a.ActorCastle()

	ok, err := a.Provider().Confirm(ctx, "Raise the banner of rebellion?")
	if err != nil {
		return OutcomeNothing, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}

	oldCountry := cs.CountryID
	betrayers, loyalists := uprising(a, cs)
	if a.Actor.Power()+powerSum(betrayers) <= powerSum(loyalists) {
		// The garrison holds; the instigator is cast out.
		a.W.MakeFree(a.Actor)
		a.Actor.Prestige -= params.PrestigeFlatBonus
		a.Provider().Notify("The rebellion failed; " + a.Actor.Name + " fled the castle.")
		return OutcomeNothing, nil
	}

	cn := foundCountry(a, cs, loyalists)
	for _, b := range betrayers {
		b.AddLoyalty(20)
	}
	a.W.SetRelation(cn.ID, oldCountry, params.RelationMin)
	chainDefection(a, cs, oldCountry, cn)
	a.Provider().Notify(a.Actor.Name + " rebelled and seized " + cs.Name + ".")
	return OutcomeDone, nil
}

// BecomeIndependent peels the castle off as a new neutral country without
// open war: relations start wary, not hostile, and loyalists simply leave.
type BecomeIndependent struct{}

func (BecomeIndependent) Name() string { return "become_independent" }
func (BecomeIndependent) Kind() Kind   { return KindStrategy }

func (BecomeIndependent) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostRebelAP}
}

func (BecomeIndependent) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	if cs == nil || cs.BossID != a.Actor.ID || a.W.IsRuler(a.Actor) {
		return false
	}
	cn := a.W.Country(cs.CountryID)
	// Independence needs a country that can spare the castle.
	return cn != nil && len(cn.CastleIDs) > 1
}

func (b BecomeIndependent) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(b, a); err != nil {
		return OutcomeNothing, err
	}
	cs := a.ActorCastle()

	ok, err := a.Provider().Confirm(ctx, "Declare independence?")
	if err != nil {
		return OutcomeNothing, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}

	oldCountry := cs.CountryID
	betrayers, loyalists := uprising(a, cs)
	if a.Actor.Power()+powerSum(betrayers) <= powerSum(loyalists) {
		a.W.MakeFree(a.Actor)
		a.Actor.Prestige -= params.PrestigeFlatBonus
		return OutcomeNothing, nil
	}

	cn := foundCountry(a, cs, loyalists)
	a.W.SetRelation(cn.ID, oldCountry, params.DangerRelationMax)
	a.Provider().Notify(cs.Name + " declared independence under " + a.Actor.Name + ".")
	return OutcomeDone, nil
}

// Seize is a palace coup: the actor contests the ruler's seat of their
// own country. Success swaps the ruler; failure exiles the actor.
type Seize struct{}

func (Seize) Name() string { return "seize" }
func (Seize) Kind() Kind   { return KindStrategy }

func (Seize) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostSeizeAP}
}

func (Seize) CanDoCore(a *Args) bool {
	cn := a.ActorCountry()
	return cn != nil && cn.RulerID != a.Actor.ID && a.ActorCastle() != nil
}

func (s Seize) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(s, a); err != nil {
		return OutcomeNothing, err
	}
	cn := a.ActorCountry()

	ok, err := a.Provider().Confirm(ctx, "Move against the ruler?")
	if err != nil {
		return OutcomeNothing, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}

	// Every character of the country picks a side.
	var betrayers, loyalists []*world.Character
	for _, cid := range cn.CastleIDs {
		cs := a.W.Castle(cid)
		if cs == nil {
			continue
		}
		for _, m := range a.W.MembersOf(cs) {
			if m.ID == a.Actor.ID || m.ID == cn.RulerID || m.IsMoving() {
				continue
			}
			if a.W.Dice.Chance(BetrayalProbability(a.Actor, m)) {
				betrayers = append(betrayers, m)
			} else {
				loyalists = append(loyalists, m)
			}
		}
	}

	ruler := a.W.Character(cn.RulerID)
	loyalPower := powerSum(loyalists)
	if ruler != nil {
		loyalPower += ruler.Power()
	}
	if a.Actor.Power()+powerSum(betrayers) <= loyalPower {
		a.W.MakeFree(a.Actor)
		a.Actor.Prestige -= params.PrestigeFlatBonus
		return OutcomeNothing, nil
	}

	if ruler != nil {
		a.W.MakeFree(ruler)
		// A third of the fallen ruler's prestige follows the crown.
		taken := int(float64(ruler.Prestige) * params.PrestigeTransferFrac)
		ruler.Prestige -= taken
		a.Actor.Prestige += taken + params.PrestigeFlatBonus
	}
	cn.RulerID = a.Actor.ID
	a.Actor.SetLoyalty(params.LoyaltyMax)
	a.Provider().Notify(a.Actor.Name + " seized the rule of " + cn.Name + ".")
	return OutcomeDone, nil
}

// Resign abandons service and returns to wandering. Free of charge,
// confirmable, irreversible.
type Resign struct{}

func (Resign) Name() string { return "resign" }
func (Resign) Kind() Kind   { return KindPersonal }

func (Resign) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostResignAP}
}

func (Resign) CanDoCore(a *Args) bool {
	return !a.Actor.IsFree() && !a.Actor.IsMoving() && !a.W.IsRuler(a.Actor)
}

func (r Resign) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(r, a); err != nil {
		return OutcomeNothing, err
	}
	ok, err := a.Provider().Confirm(ctx, "Resign and wander?")
	if err != nil {
		return OutcomeNothing, err
	}
	if !ok {
		return OutcomeCancelled, nil
	}
	a.W.MakeFree(a.Actor)
	return OutcomeDone, nil
}
