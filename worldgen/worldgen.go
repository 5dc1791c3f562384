// Package worldgen builds playable scenarios: layered simplex noise for
// terrain, spaced castle placement, country carving and character
// rostering. The same seed always yields the same world.
package worldgen

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// Config holds scenario generation parameters.
type Config struct {
	Width  int
	Height int
	Seed   int64

	Countries         int
	CastlesPerCountry int
	VassalsPerCastle  int

	// Elevation thresholds in [0,1].
	SeaLevel    float64
	HillLevel   float64
	MountainLvl float64
	// Moisture threshold above which land grows forest.
	ForestMoisture float64

	// Minimum distance between any two castles.
	CastleSpacing float64

	Logger *zap.Logger
}

// Default returns a mid-sized scenario.
func Default(seed int64) Config {
	return Config{
		Width:             48,
		Height:            48,
		Seed:              seed,
		Countries:         6,
		CastlesPerCountry: 3,
		VassalsPerCastle:  2,
		SeaLevel:          0.30,
		HillLevel:         0.62,
		MountainLvl:       0.78,
		ForestMoisture:    0.55,
		CastleSpacing:     6.0,
	}
}

// Small returns a tiny scenario for rapid iteration and tests.
func Small(seed int64) Config {
	return Config{
		Width:             20,
		Height:            20,
		Seed:              seed,
		Countries:         2,
		CastlesPerCountry: 2,
		VassalsPerCastle:  1,
		SeaLevel:          0.25,
		HillLevel:         0.65,
		MountainLvl:       0.80,
		ForestMoisture:    0.55,
		CastleSpacing:     4.0,
	}
}

// Generate builds a complete world from the config.
func Generate(cfg Config) (*world.World, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Countries < 1 || cfg.CastlesPerCountry < 1 {
		return nil, fmt.Errorf("worldgen: need at least one country and one castle each")
	}

	m := generateTerrain(cfg)
	w := world.New(m, cfg.Seed, cfg.Logger)

	sites := castleSites(cfg, m, w.Dice)
	need := cfg.Countries * cfg.CastlesPerCountry
	if len(sites) < need {
		return nil, fmt.Errorf("worldgen: only %d castle sites for %d castles, map too small or too wet", len(sites), need)
	}
	sites = sites[:need]

	carveCountries(cfg, w, sites)
	rosterCharacters(cfg, w)
	seedRelations(w)

	w.ComputeNeighbors()
	w.Validate()

	cfg.Logger.Info("scenario generated",
		zap.Int64("seed", cfg.Seed),
		zap.Int("countries", len(w.Countries())),
		zap.Int("castles", len(w.Castles())),
		zap.Int("characters", len(w.Characters())))
	return w, nil
}

// generateTerrain fills the grid from three independent noise layers:
// elevation decides sea/hill/mountain, moisture decides forest.
func generateTerrain(cfg Config) *world.GridMap {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	m := world.NewGridMap(cfg.Width, cfg.Height)
	cx, cy := float64(cfg.Width)/2, float64(cfg.Height)/2
	maxDist := math.Hypot(cx, cy)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.08, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.06, 0.5)

			// Continental shaping: sink the edges so a sea rings the land.
			d := math.Hypot(fx-cx, fy-cy) / maxDist
			elev *= 1 - math.Pow(d, 3)

			t := m.TileAt(world.Pos{X: x, Y: y})
			t.Terrain = deriveTerrain(cfg, elev, moist)
		}
	}
	return m
}

func deriveTerrain(cfg Config, elev, moist float64) world.Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return world.TerrainMarine
	case elev > cfg.MountainLvl:
		return world.TerrainMountain
	case elev > cfg.HillLevel:
		return world.TerrainHill
	case moist > cfg.ForestMoisture:
		return world.TerrainForest
	default:
		return world.TerrainPlain
	}
}

// octaveNoise layers multiple frequencies for natural-looking terrain.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total, amplitude, maxVal := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

// castleSites picks plain tiles spaced at least CastleSpacing apart, in a
// shuffled scan so castle layout varies with the seed.
func castleSites(cfg Config, m *world.GridMap, d *dice.Roller) []world.Pos {
	var candidates []world.Pos
	for y := 1; y < cfg.Height-1; y++ {
		for x := 1; x < cfg.Width-1; x++ {
			p := world.Pos{X: x, Y: y}
			if m.TerrainAt(p) == world.TerrainPlain {
				candidates = append(candidates, p)
			}
		}
	}
	dice.Shuffle(d, candidates)

	var sites []world.Pos
	for _, p := range candidates {
		ok := true
		for _, s := range sites {
			if p.Dist(s) < cfg.CastleSpacing {
				ok = false
				break
			}
		}
		if ok {
			sites = append(sites, p)
		}
	}
	return sites
}

// carveCountries founds the countries and deals the sites out. Each
// country gets a seat first, then claims its nearest remaining site, so
// territories come out contiguous rather than scattered.
func carveCountries(cfg Config, w *world.World, sites []world.Pos) {
	seats := sites[:cfg.Countries]
	rest := sites[cfg.Countries:]

	countries := make([]*world.Country, 0, cfg.Countries)
	for i, seat := range seats {
		cn := w.AddCountry(countryName(i))
		countries = append(countries, cn)
		cs := w.AddCastle(castleName(len(w.Castles())), seat, cn.ID, castleStrengthMax(w.Dice))
		placeTowns(w, cs)
	}

	claimed := make([]bool, len(rest))
	for round := 1; round < cfg.CastlesPerCountry; round++ {
		for _, cn := range countries {
			seat := w.Castle(cn.CastleIDs[0])
			best, bestDist := -1, math.MaxFloat64
			for i, p := range rest {
				if claimed[i] {
					continue
				}
				if dd := seat.Pos.Dist(p); dd < bestDist {
					best, bestDist = i, dd
				}
			}
			if best < 0 {
				continue
			}
			claimed[best] = true
			cs := w.AddCastle(castleName(len(w.Castles())), rest[best], cn.ID, castleStrengthMax(w.Dice))
			placeTowns(w, cs)
		}
	}
}

func castleStrengthMax(d *dice.Roller) float64 {
	return float64(d.RangeInt(80, 160))
}

// placeTowns founds one or two towns on walkable tiles next to the castle.
func placeTowns(w *world.World, cs *world.Castle) {
	var spots []world.Pos
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := world.Pos{X: cs.Pos.X + dx, Y: cs.Pos.Y + dy}
			t := w.Map.TileAt(p)
			if t == nil || t.CastleID != 0 || t.TownID != 0 {
				continue
			}
			if t.Terrain == world.TerrainMarine || t.Terrain == world.TerrainMountain {
				continue
			}
			spots = append(spots, p)
		}
	}
	dice.Shuffle(w.Dice, spots)
	n := w.Dice.RangeInt(1, 2)
	for i := 0; i < n && i < len(spots); i++ {
		w.AddTown(spots[i], cs.ID)
	}
}

// rosterCharacters fills every castle: one ruler per country seated in the
// first castle, a boss and vassals everywhere else.
func rosterCharacters(cfg Config, w *world.World) {
	names := newNameDeck(w.Dice)
	for _, cn := range w.Countries() {
		for i, cid := range cn.CastleIDs {
			cs := w.Castle(cid)
			boss := spawnCharacter(w, names, cs.ID)
			if i == 0 {
				cn.RulerID = boss.ID
				// Rulers want; that is why they rule.
				boss.Ambition = w.Dice.RangeInt(55, 100)
				boss.SetLoyalty(params.LoyaltyMax)
			}
			for v := 0; v < cfg.VassalsPerCastle; v++ {
				spawnCharacter(w, names, cs.ID)
			}
		}
	}
}

// spawnCharacter rolls a character with mid-band stats, a random trait or
// two and a half-filled soldier complement.
func spawnCharacter(w *world.World, names *nameDeck, castleID world.ID) *world.Character {
	d := w.Dice
	ch := w.AddCharacter(names.draw(), castleID)
	ch.Attack = d.RangeInt(25, 90)
	ch.Defense = d.RangeInt(25, 90)
	ch.Intelligence = d.RangeInt(25, 90)
	ch.Governing = d.RangeInt(25, 90)
	ch.Ambition = d.RangeInt(10, 90)
	ch.Fealty = d.RangeInt(20, 95)
	ch.SetLoyalty(d.RangeInt(60, 95))
	ch.Gold = d.RangeInt(30, 120)
	ch.ActionPoints = params.MonthlyActionPoints
	ch.Traits = rollTraits(d)

	level := d.RangeInt(1, 4)
	filled := d.RangeInt(6, params.SoldierSlots)
	for i := 0; i < params.SoldierSlots; i++ {
		if i < filled {
			ch.Soldiers[i].Fill(level)
		} else {
			ch.Soldiers[i].Kill()
		}
	}
	return ch
}

var traitTable = []world.Trait{
	world.TraitMerchant,
	world.TraitKnight,
	world.TraitPirate,
	world.TraitAdmiral,
	world.TraitMountaineer,
	world.TraitHunter,
	world.TraitDrillmaster,
	world.TraitStrategist,
}

func rollTraits(d *dice.Roller) world.Trait {
	var tr world.Trait
	if d.Chance(0.6) {
		t, _ := dice.Pick(d, traitTable)
		tr |= t
	}
	if d.Chance(0.15) {
		t, _ := dice.Pick(d, traitTable)
		tr |= t
	}
	return tr
}

// seedRelations starts every pair slightly off neutral so early diplomacy
// has texture without anyone beginning at war.
func seedRelations(w *world.World) {
	countries := w.Countries()
	for i, a := range countries {
		for _, b := range countries[i+1:] {
			w.SetRelation(a.ID, b.ID, w.Dice.Between(
				params.RelationNeutral-15, params.RelationNeutral+15))
		}
	}
}
