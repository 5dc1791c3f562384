package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// twoKingdoms builds a minimal border conflict: two countries, one
// castle each, rulers garrisoned with soldiers.
func twoKingdoms(seed int64) (*world.World, *world.Country, *world.Country) {
	w := world.New(world.NewGridMap(20, 20), seed, zap.NewNop())

	red := w.AddCountry("red")
	blue := w.AddCountry("blue")

	rc := w.AddCastle("redkeep", world.Pos{X: 5, Y: 5}, red.ID, 100)
	bc := w.AddCastle("bluefort", world.Pos{X: 9, Y: 5}, blue.ID, 100)
	w.AddTown(world.Pos{X: 5, Y: 6}, rc.ID)
	w.AddTown(world.Pos{X: 9, Y: 6}, bc.ID)

	rr := w.AddCharacter("redking", rc.ID)
	br := w.AddCharacter("blueking", bc.ID)
	red.RulerID = rr.ID
	blue.RulerID = br.ID
	for _, ch := range []*world.Character{rr, br} {
		ch.Attack, ch.Defense, ch.Intelligence, ch.Governing = 60, 60, 60, 60
		ch.Gold, ch.ActionPoints = 500, 500
		for i := range ch.Soldiers {
			ch.Soldiers[i].Fill(3)
		}
	}
	w.ComputeNeighbors()
	return w, red, blue
}

func TestChooseCountryObjectiveDeterministicUnderSeed(t *testing.T) {
	w1, red1, _ := twoKingdoms(11)
	w2, red2, _ := twoKingdoms(11)
	assert.Equal(t, ChooseCountryObjective(w1, red1), ChooseCountryObjective(w2, red2))
}

func TestChooseCountryObjectivePacifistStaysQuo(t *testing.T) {
	w, red, _ := twoKingdoms(3)
	ruler := w.Character(red.RulerID)
	ruler.Ambition = 0
	red.Objective = world.CountryObjective{Kind: world.CountryObjectiveStatusQuo}

	for i := 0; i < 50; i++ {
		obj := ChooseCountryObjective(w, red)
		// Continuity times a dominant base weight leaves war a long shot.
		if obj.Kind != world.CountryObjectiveStatusQuo {
			t.Fatalf("pacifist ruler went to war on draw %d", i)
		}
	}
}

func TestChooseCountryObjectiveWarNeedsEnemy(t *testing.T) {
	w, red, blue := twoKingdoms(5)
	ruler := w.Character(red.RulerID)
	ruler.Ambition = 100
	w.SetRelation(red.ID, blue.ID, 100) // warm neighbor, no hate

	for i := 0; i < 50; i++ {
		obj := ChooseCountryObjective(w, red)
		assert.Equal(t, world.CountryObjectiveStatusQuo, obj.Kind,
			"no target should collapse to status quo")
	}
}

func TestChooseCastleObjectiveAttackNeedsAdvantage(t *testing.T) {
	w, red, blue := twoKingdoms(7)
	w.SetRelation(red.ID, blue.ID, 0)

	rc := w.Castles()[0]
	require.Equal(t, red.ID, rc.CountryID)

	// Strip the red garrison so the power ratio gate fails.
	redKing := w.Character(red.RulerID)
	for i := range redKing.Soldiers {
		redKing.Soldiers[i].Kill()
	}
	for i := 0; i < 50; i++ {
		obj := ChooseCastleObjective(w, rc)
		assert.NotEqual(t, world.CastleObjectiveAttack, obj.Kind)
	}
}

func TestHateZeroForAlliesAndFriends(t *testing.T) {
	w, red, blue := twoKingdoms(9)
	w.SetAlly(red.ID, blue.ID)
	assert.Zero(t, hate(w, red.ID, blue.ID))

	w.BreakAlliance(red.ID, blue.ID, params.HateRelationPivot*2)
	assert.Zero(t, hate(w, red.ID, blue.ID))

	w.SetRelation(red.ID, blue.ID, 0)
	assert.Greater(t, hate(w, red.ID, blue.ID), 0.9)
}

func TestDiplomacyFormsAllianceWhenOddsAreGood(t *testing.T) {
	w, red, blue := twoKingdoms(13)
	w.SetRelation(red.ID, blue.ID, 90) // acceptance probability 1.0
	e := NewEngine(w, zap.NewNop())

	ruler := w.Character(red.RulerID)
	acted := e.diplomacy(context.Background(), ruler)
	require.True(t, acted)
	assert.True(t, red.IsAlly(blue.ID))
	assert.True(t, blue.IsAlly(red.ID))
}

func TestDiplomacyWarmsUpColdNeighbors(t *testing.T) {
	w, red, blue := twoKingdoms(17)
	w.SetRelation(red.ID, blue.ID, 85)
	e := NewEngine(w, zap.NewNop())
	blueGold := w.Character(blue.RulerID).Gold

	before := w.Relation(red.ID, blue.ID)
	acted := e.diplomacy(context.Background(), w.Character(red.RulerID))
	require.True(t, acted)
	if !red.IsAlly(blue.ID) {
		assert.Greater(t, w.Relation(red.ID, blue.ID), before)
		assert.Greater(t, w.Character(blue.RulerID).Gold, blueGold)
	}
}

func TestDefendFriendsSendsStrongestSpareMember(t *testing.T) {
	w, red, _ := twoKingdoms(19)
	rc := w.Castles()[0]
	require.Equal(t, red.ID, rc.CountryID)

	// Second red castle far from the front, with a spare strong member.
	safe := w.AddCastle("rearguard", world.Pos{X: 0, Y: 5}, red.ID, 100)
	boss := w.AddCharacter("rearboss", safe.ID)
	spare := w.AddCharacter("spare", safe.ID)
	for _, ch := range []*world.Character{boss, spare} {
		ch.Attack, ch.ActionPoints = 50, 500
		for i := range ch.Soldiers {
			ch.Soldiers[i].Fill(2)
		}
	}
	w.ComputeNeighbors()

	// The front castle is flagged in danger with an empty garrison sum
	// dwarfed by an incoming enemy host.
	rc.Danger = true
	enemy := w.AddCharacter("raider", 0)
	for i := range enemy.Soldiers {
		enemy.Soldiers[i].Fill(10)
	}
	enemyCountry := w.AddCountry("raiders")
	home := w.AddCastle("camp", world.Pos{X: 15, Y: 15}, enemyCountry.ID, 50)
	enemy.CastleID = home.ID
	home.AddMember(enemy.ID)
	f := w.SpawnForce(enemy, world.CastleDest(rc.ID), world.ForceModeNormal)
	require.NotNil(t, f)

	e := NewEngine(w, zap.NewNop())
	acted := e.defendFriends(context.Background(), boss, safe)
	require.True(t, acted)
	assert.True(t, spare.IsMoving(), "the spare member marches, not the boss")
	assert.False(t, boss.IsMoving())
}

func TestPersonalTurnSpendsOneAction(t *testing.T) {
	w, red, _ := twoKingdoms(23)
	ruler := w.Character(red.RulerID)
	ruler.Loyalty = params.LoyaltyMax

	e := NewEngine(w, zap.NewNop())
	e.RefreshObjectives()
	ap := ruler.ActionPoints
	e.PersonalTurn(context.Background(), ruler)
	assert.Less(t, ruler.ActionPoints, ap, "some personal action was paid for")
}
