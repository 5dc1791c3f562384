// Package ai drives every non-player character: quarterly objective
// selection for countries and castles, and the per-turn behavioral
// routines that turn objectives into concrete actions. All picks are
// weighted random draws over world state, so two worlds with the same
// seed make the same choices.
package ai

import (
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// hate is a country's appetite for attacking another, derived from
// relation. Allies and warm neighbors rate zero.
func hate(w *world.World, from, to world.ID) float64 {
	if allied(w, from, to) {
		return 0
	}
	rel := w.Relation(from, to)
	if rel >= params.HateRelationPivot*2 {
		return 0
	}
	return (params.HateRelationPivot*2 - rel) / (params.HateRelationPivot * 2)
}

func allied(w *world.World, a, b world.ID) bool {
	cn := w.Country(a)
	return cn != nil && cn.IsAlly(b)
}

// ChooseCountryObjective picks the country's stance for the quarter.
// Two-stage weighted draw: first the kind, leaning on the ruler's
// ambition with a strong continuity bonus, then the concrete target
// within the kind weighted by hate and relative power.
func ChooseCountryObjective(w *world.World, cn *world.Country) world.CountryObjective {
	ambition := 50.0
	if ruler := w.Character(cn.RulerID); ruler != nil {
		ambition = float64(ruler.Ambition)
	}

	weights := []float64{
		world.CountryObjectiveStatusQuo:      100 - ambition + 10,
		world.CountryObjectiveRegionConquest: ambition,
		world.CountryObjectiveCountryAttack:  ambition / 2,
	}
	if int(cn.Objective.Kind) < len(weights) {
		weights[cn.Objective.Kind] *= params.ObjectiveContinuityWeight
	}

	switch world.CountryObjectiveKind(w.Dice.WeightedIndex(weights)) {
	case world.CountryObjectiveRegionConquest:
		if target := pickConquestCastle(w, cn); target != 0 {
			return world.CountryObjective{Kind: world.CountryObjectiveRegionConquest, Target: target}
		}
	case world.CountryObjectiveCountryAttack:
		if target := pickEnemyCountry(w, cn); target != 0 {
			return world.CountryObjective{Kind: world.CountryObjectiveCountryAttack, Target: target}
		}
	}
	return world.CountryObjective{Kind: world.CountryObjectiveStatusQuo}
}

// pickConquestCastle draws an enemy castle bordering the country,
// weighted by hate toward its owner and the local power ratio.
func pickConquestCastle(w *world.World, cn *world.Country) world.ID {
	var ids []world.ID
	var weights []float64
	for _, cid := range cn.CastleIDs {
		cs := w.Castle(cid)
		if cs == nil {
			continue
		}
		for _, nid := range cs.NeighborIDs {
			nc := w.Castle(nid)
			if nc == nil || nc.CountryID == cn.ID || allied(w, cn.ID, nc.CountryID) {
				continue
			}
			h := hate(w, cn.ID, nc.CountryID)
			if h <= 0 {
				continue
			}
			ratio := powerRatio(w.CastlePower(cs), w.CastlePower(nc))
			ids = append(ids, nid)
			weights = append(weights, h*ratio)
		}
	}
	if i := w.Dice.WeightedIndex(weights); i >= 0 {
		return ids[i]
	}
	return 0
}

// pickEnemyCountry draws a war target among all countries, weighted by
// hate over power rank.
func pickEnemyCountry(w *world.World, cn *world.Country) world.ID {
	var ids []world.ID
	var weights []float64
	own := w.CountryPower(cn)
	for _, other := range w.Countries() {
		if other.ID == cn.ID || other.Fallen() || allied(w, cn.ID, other.ID) {
			continue
		}
		h := hate(w, cn.ID, other.ID)
		if h <= 0 {
			continue
		}
		ids = append(ids, other.ID)
		weights = append(weights, h*powerRatio(own, w.CountryPower(other)))
	}
	if i := w.Dice.WeightedIndex(weights); i >= 0 {
		return ids[i]
	}
	return 0
}

// powerRatio clamps own/enemy into a sane weighting band.
func powerRatio(own, enemy float64) float64 {
	if enemy <= 0 {
		return 2
	}
	return dice.Clamp(own/enemy, 0.1, 2)
}

// ChooseCastleObjective picks the castle's quarterly goal from its
// situation: a viable enemy neighbor favors attack, low walls favor
// fortifying, saturated income shifts work from development to training
// and surplus hauling.
func ChooseCastleObjective(w *world.World, cs *world.Castle) world.CastleObjective {
	kinds := []world.CastleObjectiveKind{
		world.CastleObjectiveAttack,
		world.CastleObjectiveTransport,
		world.CastleObjectiveTrain,
		world.CastleObjectiveFortify,
		world.CastleObjectiveDevelop,
	}
	targets := make([]world.ID, len(kinds))
	weights := make([]float64, len(kinds))

	if tid, wt := attackWeight(w, cs); wt > 0 {
		weights[0], targets[0] = wt, tid
	}
	if tid, wt := transportWeight(w, cs); wt > 0 {
		weights[1], targets[1] = wt, tid
	}
	weights[2] = trainWeight(w, cs)
	weights[3] = fortifyWeight(w, cs)
	weights[4] = developWeight(w, cs)

	for i, k := range kinds {
		if cs.Objective.Kind == k {
			weights[i] *= params.ObjectiveContinuityWeight
		}
	}

	i := w.Dice.WeightedIndex(weights)
	if i < 0 {
		return world.CastleObjective{Kind: world.CastleObjectiveDevelop}
	}
	return world.CastleObjective{Kind: kinds[i], Target: targets[i]}
}

// attackWeight finds the most tempting enemy neighbor, honoring the
// country-level war target when one is set.
func attackWeight(w *world.World, cs *world.Castle) (world.ID, float64) {
	cn := w.Country(cs.CountryID)
	if cn == nil {
		return 0, 0
	}
	own := w.CastlePower(cs)
	var bestID world.ID
	best := 0.0
	for _, nid := range cs.NeighborIDs {
		nc := w.Castle(nid)
		if nc == nil || nc.CountryID == cs.CountryID || allied(w, cs.CountryID, nc.CountryID) {
			continue
		}
		// Existing-war lock-in: with a declared country target, only its
		// castles are considered.
		if cn.Objective.Kind == world.CountryObjectiveCountryAttack &&
			nc.CountryID != cn.Objective.Target {
			continue
		}
		ratio := powerRatio(own, w.CastlePower(nc))
		if ratio < params.DeployPowerRatioMin {
			continue
		}
		wt := hate(w, cs.CountryID, nc.CountryID) * ratio
		if wt > best {
			best, bestID = wt, nid
		}
	}
	return bestID, best
}

// transportWeight triggers when the castle sits on a surplus another
// friendly castle lacks.
func transportWeight(w *world.World, cs *world.Castle) (world.ID, float64) {
	cn := w.Country(cs.CountryID)
	if cn == nil || len(cn.CastleIDs) < 2 {
		return 0, 0
	}
	var poorest *world.Castle
	for _, cid := range cn.CastleIDs {
		oc := w.Castle(cid)
		if oc == nil || oc.ID == cs.ID {
			continue
		}
		if poorest == nil || oc.Gold < poorest.Gold {
			poorest = oc
		}
	}
	if poorest == nil || cs.Gold < poorest.Gold*2 || cs.Gold < 100 {
		return 0, 0
	}
	return poorest.ID, 0.5
}

func trainWeight(w *world.World, cs *world.Castle) float64 {
	members := w.MembersOf(cs)
	if len(members) == 0 {
		return 0
	}
	levels, count := 0, 0
	for _, m := range members {
		for i := range m.Soldiers {
			if !m.Soldiers[i].Empty {
				levels += m.Soldiers[i].Level
				count++
			}
		}
	}
	if count == 0 {
		return 0.5 // no soldiers at all: hiring happens on the personal phase
	}
	avg := float64(levels) / float64(count)
	return dice.Clamp((10-avg)/10, 0, 1)
}

func fortifyWeight(w *world.World, cs *world.Castle) float64 {
	dev := developmentLevel(w, cs)
	if cs.Strength >= dev {
		return 0.2
	}
	return dice.Clamp((dev-cs.Strength)/(dev+1), 0.2, 1.5)
}

func developWeight(w *world.World, cs *world.Castle) float64 {
	headroom := 0.0
	for _, tid := range cs.TownIDs {
		t := w.Town(tid)
		if t == nil {
			continue
		}
		headroom += (t.GoldIncomeMax - t.GoldIncome) + (t.FoodIncomeMax - t.FoodIncome)
	}
	return dice.Clamp(headroom/20, 0.2, 2)
}

// developmentLevel mirrors the fortify catch-up reference: summed town
// development scaled to strength units.
func developmentLevel(w *world.World, cs *world.Castle) float64 {
	dev := 0.0
	for _, tid := range cs.TownIDs {
		if t := w.Town(tid); t != nil {
			dev += float64(t.DevLevel) * 10
		}
	}
	return dev
}
