package battle

import (
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// terrainAdjust is the side's terrain affinity: trait matches grant a
// bonus, marine without sea legs is a liability.
func terrainAdjust(c *Combatant) float64 {
	adj := 0.0
	t := c.Terrain
	ch := c.Ch
	switch t {
	case world.TerrainForest:
		if ch.Traits.Has(world.TraitHunter) {
			adj += params.TraitTerrainBonus
		}
	case world.TerrainHill, world.TerrainMountain:
		if ch.Traits.Has(world.TraitMountaineer) {
			adj += params.TraitTerrainBonus
		}
	case world.TerrainMarine:
		if ch.Traits.Has(world.TraitPirate) || ch.Traits.Has(world.TraitAdmiral) {
			adj += params.AmphibiousBonus
		} else {
			adj -= params.TerrainAdjStep
		}
	}
	return adj
}

// baseAdjustment composes the side's flat damage term for this tick.
// Intelligence ramps in over the first ticks: a sharp commander needs a
// little time to read the field.
func baseAdjustment(own, enemy *Combatant, tick int) float64 {
	adj := float64(own.Ch.Attack-enemy.Ch.Defense) / params.StatDiffDiv

	ramp := float64(tick) / params.IntRampTicks
	if ramp > 1 {
		ramp = 1
	}
	adj += float64(own.Ch.Intelligence-enemy.Ch.Intelligence) / params.StatDiffDiv * ramp

	adj += terrainAdjust(own) - terrainAdjust(enemy)

	// Both fleets on open water: only amphibious crews fight at full
	// strength, everyone else is halved further.
	if own.Terrain == world.TerrainMarine && enemy.Terrain == world.TerrainMarine {
		if !own.Ch.Traits.Has(world.TraitPirate) && !own.Ch.Traits.Has(world.TraitAdmiral) {
			adj -= params.TerrainAdjStep
		}
	}

	adj -= enemy.CastleStrength / params.CastleDefenseDiv

	if own.HomeGround {
		adj += params.TerritoryBonus
	}
	if own.Expedition {
		adj -= params.ExpeditionPenalty
	}
	return adj
}

// strike is one soldier's attack on one enemy front soldier.
type fighter struct {
	side *Combatant
	row  int // position within the front row
}

// damagePhase runs the tick's sub-rounds. Only front rows fight; each
// sub-round shuffles the combined living roster and every soldier lands
// one hit on a random living enemy front soldier.
func damagePhase(a, b *Combatant, tick int, d *dice.Roller) {
	adjA := baseAdjustment(a, b, tick)
	adjB := baseAdjustment(b, a, tick)

	rounds := d.RangeInt(params.SubRoundsMin, params.SubRoundsMax)
	for r := 0; r < rounds; r++ {
		roster := frontRoster(a, b)
		if len(roster) == 0 {
			return
		}
		dice.Shuffle(d, roster)
		for _, f := range roster {
			att := f.side.Front()[f.row]
			if !att.Alive() {
				continue // fell earlier in this sub-round
			}
			var enemy *Combatant
			var adj float64
			if f.side == a {
				enemy, adj = b, adjA
			} else {
				enemy, adj = a, adjB
			}
			resolveHit(att, enemy, adj, d)
		}
		if a.RowAlive(0) == 0 || b.RowAlive(0) == 0 {
			return
		}
	}
}

// frontRoster lists every living front-row soldier of both sides.
func frontRoster(a, b *Combatant) []fighter {
	var roster []fighter
	for _, c := range []*Combatant{a, b} {
		for i, s := range c.Front() {
			if s.Alive() {
				roster = append(roster, fighter{side: c, row: i})
			}
		}
	}
	return roster
}

// resolveHit picks a random living defender in the enemy front and
// applies damage. Soldiers dropping to zero roll for permanent death.
func resolveHit(att *world.Soldier, enemy *Combatant, adj float64, d *dice.Roller) {
	var targets []int
	for i, s := range enemy.Front() {
		if s.Alive() {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return
	}
	pos := targets[d.Intn(len(targets))]
	def := enemy.Front()[pos]

	dmg := adj + d.Between(-params.DamageNoise, params.DamageNoise) +
		float64(att.Level)/params.DamageLevelDiv
	if dmg <= 0 {
		return
	}
	def.SetHP(def.HP - dmg)
	if !def.Alive() {
		enemy.markDown(enemy.slotOf(0, pos), d)
	}
}

// advanceGauges moves both battle gauges after a tick. Tactics track raw
// command capacity; the retreat gauge swings with the intelligence
// differential, filling for the side being outsmarted and receding for
// the side in command.
func advanceGauges(own, enemy *Combatant) {
	own.TacticsGauge = dice.Clamp(
		own.TacticsGauge+float64(own.Ch.Attack+2*own.Ch.Intelligence)/params.TacticsGaugeDiv,
		0, params.GaugeMax)

	step := (params.RetreatGaugeBase + float64(enemy.Ch.Intelligence-own.Ch.Intelligence)) /
		params.RetreatGaugeDiv
	own.RetreatGauge = dice.Clamp(own.RetreatGauge+step, 0, params.RetreatGaugeMax)
}
