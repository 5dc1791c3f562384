package battle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

func newWarrior(id world.ID, name string, atk, def, intel, level int) *world.Character {
	ch := &world.Character{
		ID:           id,
		Name:         name,
		Attack:       atk,
		Defense:      def,
		Intelligence: intel,
		Governing:    30,
	}
	for i := range ch.Soldiers {
		ch.Soldiers[i].Fill(level)
	}
	return ch
}

func drainEvents(in *Instance) {
	go func() {
		for range in.Events() {
		}
	}()
}

func TestBattleTerminates(t *testing.T) {
	// Two evenly matched sides with high defense lean on reserve regen;
	// the tick cap must still end the fight.
	a := newWarrior(1, "a", 50, 90, 50, 3)
	b := newWarrior(2, "b", 50, 90, 50, 3)

	in := New(Config{
		Attacker: NewCombatant(a, 10, world.TerrainPlain, dice.New(7)),
		Defender: NewCombatant(b, 20, world.TerrainPlain, dice.New(8)),
		Dice:     dice.New(1),
	})
	drainEvents(in)

	res := in.Run(context.Background())
	require.NotNil(t, res)
	assert.LessOrEqual(t, res.Ticks, params.MaxBattleTicks+1)
	assert.NotNil(t, res.Winner)
	assert.NotNil(t, res.Loser)
	assert.NotEqual(t, res.Winner.Ch.ID, res.Loser.Ch.ID)
}

func TestAttackerAdvantageWinRate(t *testing.T) {
	// A level-5 host under a strong commander against green recruits
	// should win the overwhelming majority of fights.
	const n = 1000
	wins := 0
	for seed := int64(0); seed < n; seed++ {
		att := newWarrior(1, "att", 80, 40, 50, 5)
		def := newWarrior(2, "def", 40, 40, 50, 1)
		d := dice.New(seed)
		in := New(Config{
			Attacker: NewCombatant(att, 10, world.TerrainPlain, d),
			Defender: NewCombatant(def, 20, world.TerrainPlain, d),
			Dice:     d,
		})
		drainEvents(in)
		if in.Run(context.Background()).AttackerWon {
			wins++
		}
	}
	assert.Greater(t, float64(wins)/n, 0.8, "wins=%d", wins)
}

func TestCompactRowsPromotesAndIsIdempotent(t *testing.T) {
	ch := newWarrior(1, "a", 50, 50, 50, 2)
	c := NewCombatant(ch, 10, world.TerrainPlain, dice.New(3))

	// Wipe the front row.
	for _, s := range c.Front() {
		s.SetHP(0)
	}
	require.Equal(t, 0, c.RowAlive(0))

	c.CompactRows()
	assert.Equal(t, params.RowSize, c.RowAlive(0), "mid row promoted")

	front := c.rows
	c.CompactRows()
	assert.Equal(t, front, c.rows, "second compaction is a no-op")
}

func TestCompactRowsStopsWhenAllDown(t *testing.T) {
	ch := newWarrior(1, "a", 50, 50, 50, 2)
	c := NewCombatant(ch, 10, world.TerrainPlain, dice.New(3))
	for i := range ch.Soldiers {
		ch.Soldiers[i].SetHP(0)
	}
	c.CompactRows()
	assert.False(t, c.Alive())
}

func TestApplyTacticSwapCostsGauge(t *testing.T) {
	ch := newWarrior(1, "a", 50, 50, 50, 2)
	c := NewCombatant(ch, 10, world.TerrainPlain, dice.New(3))
	c.TacticsGauge = 40
	before := c.rows

	got := applyTactic(c, decision.TacticSwap12)
	assert.Equal(t, decision.TacticSwap12, got)
	assert.InDelta(t, 40-params.TacticSwapCost, c.TacticsGauge, 1e-9)
	assert.NotEqual(t, before, c.rows)

	// Gauge now too low: the swap degrades to attack.
	got = applyTactic(c, decision.TacticSwap12)
	assert.Equal(t, decision.TacticAttack, got)
}

func TestApplyTacticRestHealsCappedAtSnapshot(t *testing.T) {
	ch := newWarrior(1, "a", 50, 50, 50, 2)
	ch.Soldiers[0].SetHP(5)
	c := NewCombatant(ch, 10, world.TerrainPlain, dice.New(3))
	c.TacticsGauge = params.TacticRestCost

	hurt := ch.Soldiers[0].HP
	got := applyTactic(c, decision.TacticRest)
	require.Equal(t, decision.TacticRest, got)
	assert.Greater(t, ch.Soldiers[0].HP, hurt)
	// Soldiers entering at full HP do not overheal past the snapshot.
	assert.InDelta(t, ch.Soldiers[1].MaxHP(), ch.Soldiers[1].HP, 1e-9)
}

func TestRetreatGaugeSwingsWithIntelligence(t *testing.T) {
	sharp := NewCombatant(newWarrior(1, "sharp", 50, 50, 90, 2), 10, world.TerrainPlain, dice.New(3))
	dull := NewCombatant(newWarrior(2, "dull", 50, 50, 20, 2), 20, world.TerrainPlain, dice.New(4))
	sharp.RetreatGauge = 50
	dull.RetreatGauge = 50

	advanceGauges(sharp, dull)
	advanceGauges(dull, sharp)

	assert.Less(t, sharp.RetreatGauge, 50.0, "the smarter side steadies")
	assert.Greater(t, dull.RetreatGauge, 50.0, "the outsmarted side edges toward retreat")

	sharp.RetreatGauge = 0
	for i := 0; i < 10; i++ {
		advanceGauges(sharp, dull)
	}
	assert.Zero(t, sharp.RetreatGauge, "the gauge floors at zero")
}

func TestChooseTacticRetreatGates(t *testing.T) {
	own := NewCombatant(newWarrior(1, "a", 50, 50, 50, 2), 10, world.TerrainPlain, dice.New(3))
	enemy := NewCombatant(newWarrior(2, "b", 50, 50, 50, 5), 20, world.TerrainPlain, dice.New(4))

	// Beaten down everywhere, gauge full: retreat.
	for i := range own.Ch.Soldiers {
		own.Ch.Soldiers[i].SetHP(0.5)
	}
	own.RetreatGauge = params.RetreatGaugeMax
	own.TacticsGauge = 0
	assert.Equal(t, decision.TacticRetreat, chooseTactic(own, enemy))

	// A last-stand defender holds no matter what.
	own.LastStand = true
	assert.NotEqual(t, decision.TacticRetreat, chooseTactic(own, enemy))
	own.LastStand = false

	// Gauge not full: no retreat.
	own.RetreatGauge = 50
	assert.NotEqual(t, decision.TacticRetreat, chooseTactic(own, enemy))

	// Winning on aggregate HP: no retreat.
	own.RetreatGauge = params.RetreatGaugeMax
	for i := range enemy.Ch.Soldiers {
		enemy.Ch.Soldiers[i].SetHP(0.1)
	}
	assert.NotEqual(t, decision.TacticRetreat, chooseTactic(own, enemy))
}

func TestBaseAdjustmentTerms(t *testing.T) {
	a := NewCombatant(newWarrior(1, "a", 80, 40, 50, 3), 10, world.TerrainPlain, dice.New(1))
	b := NewCombatant(newWarrior(2, "b", 40, 40, 50, 3), 20, world.TerrainPlain, dice.New(2))

	base := baseAdjustment(a, b, params.IntRampTicks)
	assert.InDelta(t, float64(80-40)/params.StatDiffDiv, base, 1e-9)

	// Defender castle strength reduces the attacker's term.
	b.CastleStrength = 100
	assert.Less(t, baseAdjustment(a, b, params.IntRampTicks), base)
	b.CastleStrength = 0

	// Home ground helps, expedition hurts.
	a.HomeGround = true
	assert.Greater(t, baseAdjustment(a, b, params.IntRampTicks), base)
	a.HomeGround = false
	a.Expedition = true
	assert.Less(t, baseAdjustment(a, b, params.IntRampTicks), base)
}

func TestIntelligenceRampsOverEarlyTicks(t *testing.T) {
	a := NewCombatant(newWarrior(1, "a", 50, 50, 90, 3), 10, world.TerrainPlain, dice.New(1))
	b := NewCombatant(newWarrior(2, "b", 50, 50, 30, 3), 20, world.TerrainPlain, dice.New(2))

	early := baseAdjustment(a, b, 1)
	late := baseAdjustment(a, b, params.IntRampTicks)
	assert.Less(t, early, late)
	// Past the ramp the term is saturated.
	assert.InDelta(t, late, baseAdjustment(a, b, params.IntRampTicks*3), 1e-9)
}

func TestMarineWithoutSeaLegs(t *testing.T) {
	pirate := newWarrior(1, "pirate", 50, 50, 50, 3)
	pirate.Traits = world.TraitPirate
	landlubber := newWarrior(2, "landlubber", 50, 50, 50, 3)

	a := NewCombatant(pirate, 10, world.TerrainMarine, dice.New(1))
	b := NewCombatant(landlubber, 20, world.TerrainMarine, dice.New(2))

	assert.Greater(t, baseAdjustment(a, b, 1), baseAdjustment(b, a, 1))
}

func TestAftermathPrestigeAndContribution(t *testing.T) {
	w := NewCombatant(newWarrior(1, "w", 50, 50, 50, 3), 10, world.TerrainPlain, dice.New(1))
	l := NewCombatant(newWarrior(2, "l", 50, 50, 50, 3), 20, world.TerrainPlain, dice.New(2))
	l.Ch.Prestige = 90

	aftermath(w, l)
	assert.Equal(t, 30+params.PrestigeFlatBonus, w.Ch.Prestige)
	assert.Equal(t, 60, l.Ch.Prestige)
	assert.Equal(t, params.ContributionWinner, w.Ch.Contribution)
	assert.Equal(t, params.ContributionLoser, l.Ch.Contribution)
}

func TestRecoveryCappedAtPreBattleSnapshot(t *testing.T) {
	ch := newWarrior(1, "a", 50, 50, 80, 3)
	ch.Soldiers[0].SetHP(4) // entered the battle already hurt
	c := NewCombatant(ch, 10, world.TerrainPlain, dice.New(1))

	ch.Soldiers[0].SetHP(1)
	ch.Soldiers[1].SetHP(2)
	recover(c, params.RecoveryWinRate)

	assert.LessOrEqual(t, ch.Soldiers[0].HP, 4.0)
	assert.Greater(t, ch.Soldiers[1].HP, 2.0)
	assert.Equal(t, 1, ch.ConsecutiveBattles)
}

func TestHumanSideDrivesTactics(t *testing.T) {
	att := newWarrior(1, "att", 80, 40, 50, 5)
	def := newWarrior(2, "def", 40, 40, 50, 1)
	d := dice.New(42)

	attacker := NewCombatant(att, 10, world.TerrainPlain, d)
	attacker.Provider = decision.Auto{} // always attacks
	in := New(Config{
		Attacker: attacker,
		Defender: NewCombatant(def, 20, world.TerrainPlain, d),
		Dice:     d,
	})
	drainEvents(in)

	res := in.Run(context.Background())
	require.NotNil(t, res)
	assert.True(t, res.AttackerWon)
}
