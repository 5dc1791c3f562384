package world

import (
	"math"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
)

// Trait is a bit-flag set of character aptitudes.
type Trait uint16

const (
	TraitMerchant Trait = 1 << iota
	TraitKnight
	TraitPirate
	TraitAdmiral
	TraitMountaineer
	TraitHunter
	TraitDrillmaster
	TraitStrategist
)

// Has reports whether all bits of t are set.
func (tr Trait) Has(t Trait) bool { return tr&t == t }

// Character is a named person: garrisoned in a castle, moving as a force,
// or a free wanderer. Characters are never deleted from the arena; a fall
// from grace demotes them to free.
type Character struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	// Growth stats. Immutable outside of training events.
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	Intelligence int `json:"intelligence"`
	Governing    int `json:"governing"`

	// Personality. Mostly static.
	Ambition int   `json:"ambition"`
	Fealty   int   `json:"fealty"`
	Traits   Trait `json:"traits"`

	// Mutable state.
	Gold         int     `json:"gold"`
	ActionPoints int     `json:"action_points"`
	Loyalty      int     `json:"loyalty"`
	Contribution int     `json:"contribution"`
	Prestige     int     `json:"prestige"`
	Soldiers     [params.SoldierSlots]Soldier `json:"soldiers"`

	PersonalGauge float64 `json:"personal_gauge"`
	StrategyGauge float64 `json:"strategy_gauge"`

	ConsecutiveBattles int  `json:"consecutive_battles"`
	Starving           bool `json:"starving"`
	IncapacitatedDays  int  `json:"incapacitated_days"`

	// Affiliation. CastleID == 0 means free; ForceID != 0 means moving.
	CastleID ID `json:"castle_id"`
	ForceID  ID `json:"force_id"`
}

// IsFree reports whether the character serves no castle.
func (c *Character) IsFree() bool { return c.CastleID == 0 }

// IsMoving reports whether the character is deployed as a force.
func (c *Character) IsMoving() bool { return c.ForceID != 0 }

// IsIncapacitated reports whether the character is out of action.
func (c *Character) IsIncapacitated() bool { return c.IncapacitatedDays > 0 }

// SetLoyalty clamps into the legal band. Every loyalty mutation goes
// through here.
func (c *Character) SetLoyalty(v int) {
	c.Loyalty = dice.ClampInt(v, params.LoyaltyMin, params.LoyaltyMax)
}

// AddLoyalty shifts loyalty by delta with clamping.
func (c *Character) AddLoyalty(delta int) { c.SetLoyalty(c.Loyalty + delta) }

// CanPay reports whether the character can cover a gold and AP cost.
func (c *Character) CanPay(gold, ap int) bool {
	return c.Gold >= gold && c.ActionPoints >= ap
}

// Pay deducts gold and action points. Callers must have checked CanPay.
func (c *Character) Pay(gold, ap int) {
	c.Gold -= gold
	c.ActionPoints -= ap
}

// BestStat returns the character's highest growth stat, which drives the
// personal gauge step.
func (c *Character) BestStat() int {
	best := c.Attack
	for _, v := range []int{c.Defense, c.Intelligence, c.Governing} {
		if v > best {
			best = v
		}
	}
	return best
}

// PersonalGaugeStep is the per-tick accumulation of the personal gauge.
func (c *Character) PersonalGaugeStep() float64 {
	return params.PersonalGaugeBase + float64(c.BestStat())/params.PersonalGaugeStatDiv
}

// StrategyGaugeStep is the per-tick accumulation of the strategy gauge.
func (c *Character) StrategyGaugeStep() float64 {
	return params.StrategyGaugeBase + float64(c.Intelligence)/params.StrategyGaugeStatDiv
}

// AdvanceGauges accumulates both gauges, capped at the trigger threshold.
// The gauge is consumed to zero when the character acts, never decremented
// by the threshold, so no debt carries over.
func (c *Character) AdvanceGauges() {
	c.PersonalGauge = math.Min(params.GaugeMax, c.PersonalGauge+c.PersonalGaugeStep())
	c.StrategyGauge = math.Min(params.GaugeMax, c.StrategyGauge+c.StrategyGaugeStep())
}

// PersonalReady reports whether the personal gauge has filled.
func (c *Character) PersonalReady() bool { return c.PersonalGauge >= params.GaugeMax }

// StrategyReady reports whether the strategy gauge has filled.
func (c *Character) StrategyReady() bool { return c.StrategyGauge >= params.GaugeMax }

// Row returns the soldiers of row i (0 = front). The returned slice
// aliases the character's array.
func (c *Character) Row(i int) []*Soldier {
	out := make([]*Soldier, 0, params.RowSize)
	for j := i * params.RowSize; j < (i+1)*params.RowSize; j++ {
		out = append(out, &c.Soldiers[j])
	}
	return out
}

// AliveSoldiers counts slots still fighting.
func (c *Character) AliveSoldiers() int {
	n := 0
	for i := range c.Soldiers {
		if c.Soldiers[i].Alive() {
			n++
		}
	}
	return n
}

// EmptySlots counts recruitable slots.
func (c *Character) EmptySlots() int {
	n := 0
	for i := range c.Soldiers {
		if c.Soldiers[i].Empty {
			n++
		}
	}
	return n
}

// SoldierHP sums current HP across all slots.
func (c *Character) SoldierHP() float64 {
	sum := 0.0
	for i := range c.Soldiers {
		if !c.Soldiers[i].Empty {
			sum += c.Soldiers[i].HP
		}
	}
	return sum
}

// SoldierMaxHPTotal sums max HP across filled slots.
func (c *Character) SoldierMaxHPTotal() float64 {
	sum := 0.0
	for i := range c.Soldiers {
		if !c.Soldiers[i].Empty {
			sum += c.Soldiers[i].MaxHP()
		}
	}
	return sum
}

// Power is the military weight used by AI comparisons: troop HP scaled by
// the better of attack and defense.
func (c *Character) Power() float64 {
	stat := float64(c.Attack)
	if float64(c.Defense) > stat {
		stat = float64(c.Defense)
	}
	return c.SoldierHP() * (1 + stat/100.0)
}

// RegenerateSoldiers applies the daily passive HP regeneration. Rate
// depends on whether the character is garrisoned, marching or starving,
// and decays with consecutive battles.
func (c *Character) RegenerateSoldiers() {
	rate := params.RegenGarrison
	if c.IsMoving() {
		rate = params.RegenMoving
	}
	if c.Starving {
		rate = params.RegenStarving
	}
	rate *= math.Pow(params.RegenFatigueFactor, float64(c.ConsecutiveBattles))
	for i := range c.Soldiers {
		s := &c.Soldiers[i]
		if s.Alive() {
			s.Heal(s.MaxHP() * rate)
		}
	}
}
