package worldgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

func TestGenerateProducesCompleteWorld(t *testing.T) {
	cfg := Default(42)
	w, err := Generate(cfg)
	require.NoError(t, err)

	assert.Len(t, w.Countries(), cfg.Countries)
	assert.Len(t, w.Castles(), cfg.Countries*cfg.CastlesPerCountry)

	for _, cn := range w.Countries() {
		require.NotZero(t, cn.RulerID, "every country has a ruler")
		ruler := w.Character(cn.RulerID)
		require.NotNil(t, ruler)
		assert.True(t, cn.HasCastle(ruler.CastleID))
	}
	for _, cs := range w.Castles() {
		assert.NotZero(t, cs.BossID, "every castle has a boss")
		assert.NotEmpty(t, cs.TownIDs, "every castle has a town")
		assert.GreaterOrEqual(t, len(cs.MemberIDs), 1+cfg.VassalsPerCastle)
	}
	for _, ch := range w.Characters() {
		assert.Greater(t, ch.AliveSoldiers(), 0)
		assert.GreaterOrEqual(t, ch.Loyalty, params.LoyaltyMin)
		assert.LessOrEqual(t, ch.Loyalty, params.LoyaltyMax)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	w1, err := Generate(Default(7))
	require.NoError(t, err)
	w2, err := Generate(Default(7))
	require.NoError(t, err)

	require.Equal(t, len(w1.Castles()), len(w2.Castles()))
	for i, cs := range w1.Castles() {
		other := w2.Castles()[i]
		assert.Equal(t, cs.Name, other.Name)
		assert.Equal(t, cs.Pos, other.Pos)
		assert.Equal(t, cs.CountryID, other.CountryID)
	}
	require.Equal(t, len(w1.Characters()), len(w2.Characters()))
	for i, ch := range w1.Characters() {
		other := w2.Characters()[i]
		assert.Equal(t, ch.Name, other.Name)
		assert.Equal(t, ch.Attack, other.Attack)
		assert.Equal(t, ch.Intelligence, other.Intelligence)
	}
}

func TestSeedsDiffer(t *testing.T) {
	w1, err := Generate(Default(1))
	require.NoError(t, err)
	w2, err := Generate(Default(2))
	require.NoError(t, err)

	same := 0
	for i, cs := range w1.Castles() {
		if i < len(w2.Castles()) && cs.Pos == w2.Castles()[i].Pos {
			same++
		}
	}
	assert.Less(t, same, len(w1.Castles()), "different seeds lay out differently")
}

func TestCastleSpacingHolds(t *testing.T) {
	cfg := Default(3)
	w, err := Generate(cfg)
	require.NoError(t, err)

	castles := w.Castles()
	for i, a := range castles {
		for _, b := range castles[i+1:] {
			assert.GreaterOrEqual(t, a.Pos.Dist(b.Pos), cfg.CastleSpacing)
		}
	}
}

func TestCastlesSitOnPlains(t *testing.T) {
	w, err := Generate(Default(4))
	require.NoError(t, err)
	for _, cs := range w.Castles() {
		assert.Equal(t, world.TerrainPlain, w.Map.TerrainAt(cs.Pos))
		tile := w.Map.TileAt(cs.Pos)
		require.NotNil(t, tile)
		assert.Equal(t, cs.ID, tile.CastleID)
	}
}

func TestTerrainHasSeaBorder(t *testing.T) {
	cfg := Default(5)
	w, err := Generate(cfg)
	require.NoError(t, err)

	corners := []world.Pos{
		{X: 0, Y: 0},
		{X: cfg.Width - 1, Y: 0},
		{X: 0, Y: cfg.Height - 1},
		{X: cfg.Width - 1, Y: cfg.Height - 1},
	}
	for _, p := range corners {
		assert.Equal(t, world.TerrainMarine, w.Map.TerrainAt(p))
	}
}

func TestRelationsStartNearNeutral(t *testing.T) {
	w, err := Generate(Default(6))
	require.NoError(t, err)
	countries := w.Countries()
	for i, a := range countries {
		for _, b := range countries[i+1:] {
			r := w.Relation(a.ID, b.ID)
			assert.GreaterOrEqual(t, r, params.RelationNeutral-15.0)
			assert.LessOrEqual(t, r, params.RelationNeutral+15.0)
			assert.Equal(t, r, w.Relation(b.ID, a.ID))
		}
	}
}

func TestSmallMapCanFail(t *testing.T) {
	cfg := Default(8)
	cfg.Width, cfg.Height = 8, 8
	cfg.Countries = 10
	_, err := Generate(cfg)
	assert.Error(t, err)
}

func TestNameDeckNeverRepeatsUntilExhausted(t *testing.T) {
	w, err := Generate(Default(9))
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, ch := range w.Characters() {
		assert.False(t, seen[ch.Name], "duplicate name %q", ch.Name)
		seen[ch.Name] = true
	}
}
