package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/world"
	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/testutil"
	"github.com/kurohane/tenka/worldgen"
)

func genWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := worldgen.Generate(worldgen.Small(42))
	require.NoError(t, err)
	return w
}

func TestStore_LoadWithoutSave(t *testing.T) {
	store := model.NewStore(testutil.SetupTestDB(t))

	has, err := store.HasSave()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = store.Load(zap.NewNop())
	assert.ErrorIs(t, err, model.ErrNoSave)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := model.NewStore(testutil.SetupTestDB(t))
	w := genWorld(t)

	// Advance some state so the round trip covers more than fresh defaults.
	w.Date = world.GameDate{Year: 3, Month: 7, Day: 12}
	first := w.Characters()[0]
	first.Gold += 500
	first.Prestige = 33

	require.NoError(t, store.Save(w))

	has, err := store.HasSave()
	require.NoError(t, err)
	assert.True(t, has)

	got, err := store.Load(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, w.Date, got.Date)
	assert.Equal(t, w.Seed(), got.Seed())
	assert.Equal(t, w.Map.Width, got.Map.Width)
	assert.Equal(t, w.Map.Height, got.Map.Height)
	for y := 0; y < w.Map.Height; y++ {
		for x := 0; x < w.Map.Width; x++ {
			p := world.Pos{X: x, Y: y}
			require.Equal(t, w.Map.TerrainAt(p), got.Map.TerrainAt(p), "terrain at %v", p)
		}
	}

	require.Len(t, got.Countries(), len(w.Countries()))
	for i, cn := range w.Countries() {
		g := got.Countries()[i]
		assert.Equal(t, cn.ID, g.ID)
		assert.Equal(t, cn.Name, g.Name)
		assert.Equal(t, cn.RulerID, g.RulerID)
		assert.ElementsMatch(t, cn.CastleIDs, g.CastleIDs)
	}

	require.Len(t, got.Castles(), len(w.Castles()))
	for i, cs := range w.Castles() {
		g := got.Castles()[i]
		assert.Equal(t, cs.Name, g.Name)
		assert.Equal(t, cs.Pos, g.Pos)
		assert.Equal(t, cs.CountryID, g.CountryID)
		assert.Equal(t, cs.BossID, g.BossID)
		assert.InDelta(t, cs.Strength, g.Strength, 1e-9)
		assert.ElementsMatch(t, cs.MemberIDs, g.MemberIDs)
		assert.ElementsMatch(t, cs.TownIDs, g.TownIDs)
	}

	require.Len(t, got.Characters(), len(w.Characters()))
	for i, ch := range w.Characters() {
		g := got.Characters()[i]
		assert.Equal(t, ch.Name, g.Name)
		assert.Equal(t, ch.CastleID, g.CastleID)
		assert.Equal(t, ch.Gold, g.Gold)
		assert.Equal(t, ch.Prestige, g.Prestige)
		assert.Equal(t, ch.Loyalty, g.Loyalty)
		assert.Equal(t, ch.Soldiers, g.Soldiers)
	}

	// Relations survive, including the neutral drift seeded at generation.
	cns := w.Countries()
	for _, a := range cns {
		for _, b := range cns {
			assert.InDelta(t, w.Relation(a.ID, b.ID), got.Relation(a.ID, b.ID), 1e-9)
		}
	}
}

func TestStore_SaveReplacesPrevious(t *testing.T) {
	store := model.NewStore(testutil.SetupTestDB(t))
	w := genWorld(t)
	require.NoError(t, store.Save(w))

	w.Date = world.GameDate{Year: 9, Month: 1, Day: 1}
	require.NoError(t, store.Save(w))

	got, err := store.Load(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9, got.Date.Year)
	assert.Len(t, got.Castles(), len(w.Castles()))
}

func TestStore_ForcesRoundTrip(t *testing.T) {
	store := model.NewStore(testutil.SetupTestDB(t))
	w := genWorld(t)

	ch := w.Characters()[0]
	target := w.Castles()[len(w.Castles())-1]
	f := w.SpawnForce(ch, world.CastleDest(target.ID), world.ForceModeNormal)
	require.NotNil(t, f)

	require.NoError(t, store.Save(w))
	got, err := store.Load(zap.NewNop())
	require.NoError(t, err)

	require.Len(t, got.Forces(), 1)
	g := got.Forces()[0]
	assert.Equal(t, f.ID, g.ID)
	assert.Equal(t, ch.ID, g.CharacterID)
	assert.Equal(t, f.Pos, g.Pos)
	assert.Equal(t, world.DestCastle, g.Dest.Kind)
	assert.Equal(t, target.ID, g.Dest.CastleID)
	assert.Equal(t, world.ForceModeNormal, g.Mode)

	// The deployed character keeps their force link.
	assert.Equal(t, f.ID, got.Character(ch.ID).ForceID)
}

func TestStore_RankingRoundTrip(t *testing.T) {
	store := model.NewStore(testutil.SetupTestDB(t))

	require.NoError(t, store.ReplaceRanking("country:power", map[string]float64{
		"Kaga":  120.5,
		"Mino":  98.0,
		"Asuka": 310.25,
	}))

	rows, err := store.Ranking("country:power")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Asuka", rows[0].Subject)
	assert.Equal(t, "Kaga", rows[1].Subject)
	assert.Equal(t, "Mino", rows[2].Subject)

	// A rewrite drops stale subjects.
	require.NoError(t, store.ReplaceRanking("country:power", map[string]float64{
		"Kaga": 200,
	}))
	rows, err = store.Ranking("country:power")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kaga", rows[0].Subject)
}
