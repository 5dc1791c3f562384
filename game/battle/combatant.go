// Package battle resolves tactical combat between two characters' soldier
// formations. A battle is a state machine driven tick by tick: each side
// picks a tactic, front rows exchange damage in shuffled sub-rounds,
// gauges accumulate, and the loop ends on a wipe, a retreat, or the hard
// tick cap. Recovery and aftermath apply the consequences back onto the
// characters.
package battle

import (
	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// Combatant is one side of a battle: a character plus combat-only state.
// The rows array is a permutation over the character's three soldier rows;
// swaps and compaction permute it without touching slot order.
type Combatant struct {
	Ch        *world.Character
	CountryID world.ID

	TacticsGauge float64
	RetreatGauge float64

	Terrain world.Terrain
	// HomeGround: fighting inside the side's own territory.
	HomeGround bool
	// Expedition: fighting far from the home castle.
	Expedition bool
	// CastleStrength: defender bonus when the fight is a siege; zero
	// for the attacker and for field battles.
	CastleStrength float64
	// LastStand: a loyal defender of the country's final castle never
	// retreats.
	LastStand bool

	// Provider supplies tactic choices for a human-controlled side.
	// Nil means formula-driven AI.
	Provider decision.Provider

	rows  [params.RowCount]int
	preHP [params.SoldierSlots]float64
	dead  [params.SoldierSlots]bool
}

// NewCombatant snapshots the character's soldiers and rolls the initial
// gauges in [0,100).
func NewCombatant(ch *world.Character, countryID world.ID, terrain world.Terrain, d *dice.Roller) *Combatant {
	c := &Combatant{
		Ch:           ch,
		CountryID:    countryID,
		Terrain:      terrain,
		TacticsGauge: d.Float() * params.GaugeMax,
		RetreatGauge: d.Float() * params.GaugeMax,
	}
	for i := range c.rows {
		c.rows[i] = i
	}
	for i := range ch.Soldiers {
		c.preHP[i] = ch.Soldiers[i].HP
	}
	return c
}

// Row returns the soldiers currently assigned to display row i
// (0 = front).
func (c *Combatant) Row(i int) []*world.Soldier {
	return c.Ch.Row(c.rows[i])
}

// Front returns the fighting row.
func (c *Combatant) Front() []*world.Soldier { return c.Row(0) }

// RowAlive counts living soldiers in display row i.
func (c *Combatant) RowAlive(i int) int {
	n := 0
	for _, s := range c.Row(i) {
		if s.Alive() {
			n++
		}
	}
	return n
}

// Alive reports whether any soldier still stands.
func (c *Combatant) Alive() bool {
	return c.Ch.AliveSoldiers() > 0
}

// TotalHP sums living soldier HP across all rows.
func (c *Combatant) TotalHP() float64 { return c.Ch.SoldierHP() }

// HPFraction is current HP over maximum, 0 when no capacity.
func (c *Combatant) HPFraction() float64 {
	max := c.Ch.SoldierMaxHPTotal()
	if max <= 0 {
		return 0
	}
	return c.TotalHP() / max
}

// rowHPFraction is the row's current HP over its maximum.
func (c *Combatant) rowHPFraction(i int) float64 {
	cur, max := 0.0, 0.0
	for _, s := range c.Row(i) {
		if s.Empty {
			continue
		}
		cur += s.HP
		max += s.MaxHP()
	}
	if max <= 0 {
		return 0
	}
	return cur / max
}

// FrontCritical reports whether the fighting row is below the critical
// HP fraction or fully down.
func (c *Combatant) FrontCritical() bool {
	if c.RowAlive(0) == 0 {
		return true
	}
	return c.rowHPFraction(0) < params.FrontRowCriticalHP
}

// healthyRow reports whether any row besides the front is above the
// critical fraction with soldiers standing.
func (c *Combatant) healthyRow() bool {
	for i := 1; i < params.RowCount; i++ {
		if c.RowAlive(i) > 0 && c.rowHPFraction(i) >= params.FrontRowCriticalHP {
			return true
		}
	}
	return false
}

// SwapRows exchanges two display rows.
func (c *Combatant) SwapRows(i, j int) {
	c.rows[i], c.rows[j] = c.rows[j], c.rows[i]
}

// CompactRows cyclically promotes rows while the front is fully down and
// a living row remains. A no-op when the front still fights, so calling
// it repeatedly is safe.
func (c *Combatant) CompactRows() {
	for n := 0; n < params.RowCount; n++ {
		if c.RowAlive(0) > 0 || !c.Alive() {
			return
		}
		c.rows[0], c.rows[1], c.rows[2] = c.rows[1], c.rows[2], c.rows[0]
	}
}

// markDown handles a soldier dropping to zero: a fixed chance of
// permanent death, otherwise knocked out and revivable in recovery.
func (c *Combatant) markDown(slot int, d *dice.Roller) {
	if c.dead[slot] {
		return
	}
	if d.Chance(params.PermanentDeathChance) {
		c.dead[slot] = true
	}
}

// slotOf maps a soldier within display row r at position p back to its
// character slot index.
func (c *Combatant) slotOf(r, p int) int {
	return c.rows[r]*params.RowSize + p
}

// restAll heals every living soldier a small fraction of max HP.
func (c *Combatant) restAll() {
	for i := range c.Ch.Soldiers {
		s := &c.Ch.Soldiers[i]
		if s.Alive() {
			s.Heal(s.MaxHP() * params.RestHealFraction)
		}
	}
}

// reserveRegen gives rows behind the front a passive trickle each tick.
func (c *Combatant) reserveRegen() {
	for r := 1; r < params.RowCount; r++ {
		for _, s := range c.Row(r) {
			if s.Alive() {
				s.Heal(s.MaxHP() * params.ReserveRegenFraction)
			}
		}
	}
}

// view builds the read-only state handed to a tactic chooser.
func (c *Combatant) view(id string, tick int, enemy *Combatant) decision.BattleView {
	return decision.BattleView{
		BattleID:     id,
		Tick:         tick,
		OwnHP:        c.TotalHP(),
		EnemyHP:      enemy.TotalHP(),
		TacticsGauge: c.TacticsGauge,
		RetreatGauge: c.RetreatGauge,
		FrontAlive:   c.RowAlive(0),
		MidAlive:     c.RowAlive(1),
		RearAlive:    c.RowAlive(2),
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
