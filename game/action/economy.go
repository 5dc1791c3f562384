package action

import (
	"context"

	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// terrainDiminish scales development yield by the town's terrain.
func terrainDiminish(t world.Terrain) float64 {
	switch t {
	case world.TerrainForest:
		return 0.9
	case world.TerrainHill:
		return 0.8
	case world.TerrainMountain:
		return 0.6
	case world.TerrainMarine:
		return 0.7
	default:
		return 1.0
	}
}

// memberAdjust dampens yield as more characters work the same castle.
func memberAdjust(members int) float64 {
	adj := 1.0 - 0.05*float64(members-1)
	if adj < 0.6 {
		adj = 0.6
	}
	return adj
}

// pickTown returns the castle town with the most cap headroom.
func pickTown(a *Args) *world.Town {
	cs := a.ActorCastle()
	if cs == nil {
		return nil
	}
	var best *world.Town
	bestRoom := 0.0
	for _, id := range cs.TownIDs {
		t := a.W.Town(id)
		if t == nil {
			continue
		}
		room := t.GoldIncomeMax - t.GoldIncome
		if best == nil || room > bestRoom {
			best, bestRoom = t, room
		}
	}
	return best
}

// Develop raises a town's gold income toward its cap.
//
//	delta = adjGoverning * adjTerrain * adjImportance * adjMembers * baseRate
type Develop struct{}

func (Develop) Name() string { return "develop" }
func (Develop) Kind() Kind   { return KindPersonal }

func (Develop) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostDevelopAP}
}

func (Develop) CanDoCore(a *Args) bool {
	t := pickTown(a)
	return t != nil && t.GoldIncome < t.GoldIncomeMax
}

func (d Develop) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(d, a); err != nil {
		return OutcomeNothing, err
	}
	t := pickTown(a)
	cs := a.ActorCastle()

	adjGov := float64(a.Actor.Governing) / 100.0
	adjTerrain := terrainDiminish(a.W.Map.TerrainAt(t.Pos))
	adjImportance := 1.0 + 0.05*float64(t.DevLevel)
	adjMembers := memberAdjust(len(cs.MemberIDs))
	delta := adjGov * adjTerrain * adjImportance * adjMembers * params.DevelopBaseRate
	if a.Actor.Traits.Has(world.TraitMerchant) {
		delta *= 1.25
	}

	t.AddGoldIncome(delta)
	t.AddFoodIncome(delta * 0.5)
	a.Actor.Contribution += 2
	return OutcomeDone, nil
}

// Invest sinks castle gold into a town's long-term investment total,
// raising its income caps through the tier curve.
type Invest struct{}

func (Invest) Name() string { return "invest" }
func (Invest) Kind() Kind   { return KindPersonal }

func (Invest) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostInvestAP, CastleGold: params.InvestAmount / 2}
}

func (Invest) CanDoCore(a *Args) bool {
	return pickTown(a) != nil
}

func (i Invest) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(i, a); err != nil {
		return OutcomeNothing, err
	}
	t := pickTown(a)
	t.Invest(params.InvestAmount)
	a.Actor.Contribution += 2
	return OutcomeDone, nil
}

// Fortify raises castle strength toward its max, with a catch-up bonus
// while fortification lags behind the castle's town development.
type Fortify struct{}

func (Fortify) Name() string { return "fortify" }
func (Fortify) Kind() Kind   { return KindPersonal }

func (Fortify) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostFortifyAP}
}

func (Fortify) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	return cs != nil && cs.Strength < cs.StrengthMax
}

// developmentLevel is the fortification target implied by town growth.
func developmentLevel(a *Args, cs *world.Castle) float64 {
	lvl := 0
	for _, id := range cs.TownIDs {
		if t := a.W.Town(id); t != nil {
			lvl += t.DevLevel
		}
	}
	return float64(lvl) * 10.0
}

func (f Fortify) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(f, a); err != nil {
		return OutcomeNothing, err
	}
	cs := a.ActorCastle()

	adjStat := (float64(a.Actor.Governing) + float64(a.Actor.Defense)) / 200.0
	adjTerrain := terrainDiminish(a.W.Map.TerrainAt(cs.Pos))
	adjMembers := memberAdjust(len(cs.MemberIDs))
	delta := adjStat * adjTerrain * adjMembers * params.FortifyBaseRate
	if cs.Strength < developmentLevel(a, cs) {
		delta *= params.FortifyCatchUpMul
	}

	cs.AddStrength(delta)
	a.Actor.Contribution += 2
	return OutcomeDone, nil
}

// Transport shifts half of this castle's gold surplus to a friendly
// castle, per the castle objective.
type Transport struct{}

func (Transport) Name() string { return "transport" }
func (Transport) Kind() Kind   { return KindStrategy }

func (Transport) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostTransportAP}
}

func (Transport) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	if cs == nil || cs.Gold <= 0 {
		return false
	}
	dst := a.W.Castle(a.TargetCastle)
	return dst != nil && dst.ID != cs.ID && dst.CountryID == cs.CountryID
}

func (t Transport) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(t, a); err != nil {
		return OutcomeNothing, err
	}
	cs := a.ActorCastle()
	dst := a.W.Castle(a.TargetCastle)
	amount := cs.Gold / 2
	if amount <= 0 {
		return OutcomeNothing, nil
	}
	cs.Gold -= amount
	dst.Gold += amount
	a.Actor.Contribution += 1
	return OutcomeDone, nil
}
