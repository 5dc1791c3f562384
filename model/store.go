package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kurohane/tenka/game/world"
)

// ErrNoSave means the database holds no saved world.
var ErrNoSave = errors.New("model: no saved world")

// Store persists whole worlds. Saves are atomic: the previous save is
// replaced inside one transaction or not at all.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a migrated database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save writes the world, replacing any previous save.
func (s *Store) Save(w *world.World) error {
	header, err := worldRow(w)
	if err != nil {
		return err
	}
	countries, err := countryRows(w)
	if err != nil {
		return err
	}
	chars, err := characterRows(w)
	if err != nil {
		return err
	}
	castles := castleRows(w)
	towns := townRows(w)
	forces := forceRows(w)

	return s.db.Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{
			&WorldRow{}, &CountryRow{}, &CastleRow{},
			&CharacterRow{}, &TownRow{}, &ForceRow{},
		} {
			if err := wipe.Delete(m).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(header).Error; err != nil {
			return err
		}
		if err := tx.Create(&countries).Error; err != nil {
			return err
		}
		if err := tx.Create(&castles).Error; err != nil {
			return err
		}
		if err := tx.Create(&chars).Error; err != nil {
			return err
		}
		if len(towns) > 0 {
			if err := tx.Create(&towns).Error; err != nil {
				return err
			}
		}
		if len(forces) > 0 {
			if err := tx.Create(&forces).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Load rebuilds a world from the save. Neighbor sets and garrison
// membership are derived rather than stored, then the result is
// sanitized the same way a freshly generated world is.
func (s *Store) Load(logger *zap.Logger) (*world.World, error) {
	var header WorldRow
	if err := s.db.First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSave
		}
		return nil, err
	}

	m, err := rebuildMap(header)
	if err != nil {
		return nil, err
	}
	w := world.New(m, header.Seed, logger)
	w.Date = world.GameDate{Year: header.Year, Month: header.Month, Day: header.Day}

	var (
		cnRows []CountryRow
		csRows []CastleRow
		chRows []CharacterRow
		tRows  []TownRow
		fRows  []ForceRow
	)
	for _, dst := range []interface{}{&cnRows, &csRows, &chRows, &tRows, &fRows} {
		if err := s.db.Find(dst).Error; err != nil {
			return nil, err
		}
	}

	countries := make([]*world.Country, 0, len(cnRows))
	for _, r := range cnRows {
		cn, err := restoreCountry(r)
		if err != nil {
			return nil, err
		}
		countries = append(countries, cn)
	}
	castles := make([]*world.Castle, 0, len(csRows))
	for _, r := range csRows {
		castles = append(castles, restoreCastle(r))
	}
	chars := make([]*world.Character, 0, len(chRows))
	for _, r := range chRows {
		ch, err := restoreCharacter(r)
		if err != nil {
			return nil, err
		}
		chars = append(chars, ch)
	}
	towns := make([]*world.Town, 0, len(tRows))
	for _, r := range tRows {
		towns = append(towns, restoreTown(r))
	}
	forces := make([]*world.Force, 0, len(fRows))
	for _, r := range fRows {
		forces = append(forces, restoreForce(r))
	}

	// Derived links: country -> castles, castle -> towns and garrison.
	byID := make(map[world.ID]*world.Castle, len(castles))
	for _, cs := range castles {
		byID[cs.ID] = cs
	}
	for _, cn := range countries {
		for _, cs := range castles {
			if cs.CountryID == cn.ID {
				cn.CastleIDs = append(cn.CastleIDs, cs.ID)
			}
		}
	}
	for _, t := range towns {
		if cs := byID[t.CastleID]; cs != nil {
			cs.TownIDs = append(cs.TownIDs, t.ID)
		}
	}
	for _, ch := range chars {
		if cs := byID[ch.CastleID]; cs != nil {
			cs.MemberIDs = append(cs.MemberIDs, ch.ID)
		}
	}

	w.Restore(countries, castles, chars, towns, forces)
	w.ComputeNeighbors()
	w.Validate()
	return w, nil
}

// HasSave reports whether a world is stored.
func (s *Store) HasSave() (bool, error) {
	var n int64
	if err := s.db.Model(&WorldRow{}).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReplaceRanking rewrites one scoreboard.
func (s *Store) ReplaceRanking(board string, scores map[string]float64) error {
	rows := make([]RankingRow, 0, len(scores))
	for subject, score := range scores {
		rows = append(rows, RankingRow{Board: board, Subject: subject, Score: score})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board = ?", board).Delete(&RankingRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Ranking reads one scoreboard, highest score first.
func (s *Store) Ranking(board string) ([]RankingRow, error) {
	var rows []RankingRow
	err := s.db.Where("board = ?", board).Order("score DESC").Find(&rows).Error
	return rows, err
}

// ---- world -> rows ----

func worldRow(w *world.World) (*WorldRow, error) {
	terrain := make([]int, 0, w.Map.Width*w.Map.Height)
	for y := 0; y < w.Map.Height; y++ {
		for x := 0; x < w.Map.Width; x++ {
			terrain = append(terrain, int(w.Map.TerrainAt(world.Pos{X: x, Y: y})))
		}
	}
	blob, err := json.Marshal(terrain)
	if err != nil {
		return nil, err
	}
	return &WorldRow{
		ID:      1,
		Seed:    w.Seed(),
		Year:    w.Date.Year,
		Month:   w.Date.Month,
		Day:     w.Date.Day,
		Width:   w.Map.Width,
		Height:  w.Map.Height,
		Terrain: datatypes.JSON(blob),
	}, nil
}

func countryRows(w *world.World) ([]CountryRow, error) {
	out := make([]CountryRow, 0, len(w.Countries()))
	for _, cn := range w.Countries() {
		rel, err := json.Marshal(cn.Relations)
		if err != nil {
			return nil, err
		}
		out = append(out, CountryRow{
			ID:              int64(cn.ID),
			Name:            cn.Name,
			RulerID:         int64(cn.RulerID),
			Relations:       datatypes.JSON(rel),
			ObjectiveKind:   int(cn.Objective.Kind),
			ObjectiveTarget: int64(cn.Objective.Target),
			QuarterDone:     cn.QuarterDone,
			PowerRank:       cn.PowerRank,
		})
	}
	return out, nil
}

func castleRows(w *world.World) []CastleRow {
	out := make([]CastleRow, 0, len(w.Castles()))
	for _, cs := range w.Castles() {
		out = append(out, CastleRow{
			ID:              int64(cs.ID),
			Name:            cs.Name,
			X:               cs.Pos.X,
			Y:               cs.Pos.Y,
			CountryID:       int64(cs.CountryID),
			BossID:          int64(cs.BossID),
			Strength:        cs.Strength,
			StrengthMax:     cs.StrengthMax,
			Gold:            cs.Gold,
			FortressLevel:   cs.FortressLevel,
			ObjectiveKind:   int(cs.Objective.Kind),
			ObjectiveTarget: int64(cs.Objective.Target),
			QuarterDone:     cs.QuarterDone,
		})
	}
	return out
}

func characterRows(w *world.World) ([]CharacterRow, error) {
	out := make([]CharacterRow, 0, len(w.Characters()))
	for _, ch := range w.Characters() {
		soldiers, err := json.Marshal(ch.Soldiers)
		if err != nil {
			return nil, err
		}
		out = append(out, CharacterRow{
			ID:                 int64(ch.ID),
			Name:               ch.Name,
			Attack:             ch.Attack,
			Defense:            ch.Defense,
			Intelligence:       ch.Intelligence,
			Governing:          ch.Governing,
			Ambition:           ch.Ambition,
			Fealty:             ch.Fealty,
			Traits:             int(ch.Traits),
			Gold:               ch.Gold,
			ActionPoints:       ch.ActionPoints,
			Loyalty:            ch.Loyalty,
			Contribution:       ch.Contribution,
			Prestige:           ch.Prestige,
			Soldiers:           datatypes.JSON(soldiers),
			PersonalGauge:      ch.PersonalGauge,
			StrategyGauge:      ch.StrategyGauge,
			ConsecutiveBattles: ch.ConsecutiveBattles,
			Starving:           ch.Starving,
			IncapacitatedDays:  ch.IncapacitatedDays,
			CastleID:           int64(ch.CastleID),
			ForceID:            int64(ch.ForceID),
		})
	}
	return out, nil
}

func townRows(w *world.World) []TownRow {
	out := make([]TownRow, 0, len(w.Towns()))
	for _, t := range w.Towns() {
		out = append(out, TownRow{
			ID:              int64(t.ID),
			X:               t.Pos.X,
			Y:               t.Pos.Y,
			CastleID:        int64(t.CastleID),
			GoldIncome:      t.GoldIncome,
			FoodIncome:      t.FoodIncome,
			GoldIncomeMax:   t.GoldIncomeMax,
			FoodIncomeMax:   t.FoodIncomeMax,
			TotalInvestment: t.TotalInvestment,
			DevLevel:        t.DevLevel,
		})
	}
	return out
}

func forceRows(w *world.World) []ForceRow {
	out := make([]ForceRow, 0, len(w.Forces()))
	for _, f := range w.Forces() {
		out = append(out, ForceRow{
			ID:             int64(f.ID),
			CharacterID:    int64(f.CharacterID),
			CountryID:      int64(f.CountryID),
			X:              f.Pos.X,
			Y:              f.Pos.Y,
			DestKind:       int(f.Dest.Kind),
			DestCastleID:   int64(f.Dest.CastleID),
			DestX:          f.Dest.Pos.X,
			DestY:          f.Dest.Pos.Y,
			DestForceID:    int64(f.Dest.ForceID),
			Mode:           int(f.Mode),
			MoveDaysLeft:   f.MoveDaysLeft,
			PlayerDirected: f.PlayerDirected,
			OriginalTarget: int64(f.OriginalTarget),
			HomeCastle:     int64(f.HomeCastle),
		})
	}
	return out
}

// ---- rows -> world ----

func rebuildMap(h WorldRow) (*world.GridMap, error) {
	var terrain []int
	if err := json.Unmarshal(h.Terrain, &terrain); err != nil {
		return nil, err
	}
	if len(terrain) != h.Width*h.Height {
		return nil, fmt.Errorf("model: terrain blob holds %d tiles, want %d", len(terrain), h.Width*h.Height)
	}
	m := world.NewGridMap(h.Width, h.Height)
	i := 0
	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.Width; x++ {
			m.TileAt(world.Pos{X: x, Y: y}).Terrain = world.Terrain(terrain[i])
			i++
		}
	}
	return m, nil
}

func restoreCountry(r CountryRow) (*world.Country, error) {
	rel := make(map[world.ID]float64)
	if len(r.Relations) > 0 {
		if err := json.Unmarshal(r.Relations, &rel); err != nil {
			return nil, err
		}
	}
	return &world.Country{
		ID:        world.ID(r.ID),
		Name:      r.Name,
		RulerID:   world.ID(r.RulerID),
		Relations: rel,
		Objective: world.CountryObjective{
			Kind:   world.CountryObjectiveKind(r.ObjectiveKind),
			Target: world.ID(r.ObjectiveTarget),
		},
		QuarterDone: r.QuarterDone,
		PowerRank:   r.PowerRank,
	}, nil
}

func restoreCastle(r CastleRow) *world.Castle {
	return &world.Castle{
		ID:            world.ID(r.ID),
		Name:          r.Name,
		Pos:           world.Pos{X: r.X, Y: r.Y},
		CountryID:     world.ID(r.CountryID),
		BossID:        world.ID(r.BossID),
		Strength:      r.Strength,
		StrengthMax:   r.StrengthMax,
		Gold:          r.Gold,
		FortressLevel: r.FortressLevel,
		Objective: world.CastleObjective{
			Kind:   world.CastleObjectiveKind(r.ObjectiveKind),
			Target: world.ID(r.ObjectiveTarget),
		},
		QuarterDone: r.QuarterDone,
	}
}

func restoreCharacter(r CharacterRow) (*world.Character, error) {
	ch := &world.Character{
		ID:                 world.ID(r.ID),
		Name:               r.Name,
		Attack:             r.Attack,
		Defense:            r.Defense,
		Intelligence:       r.Intelligence,
		Governing:          r.Governing,
		Ambition:           r.Ambition,
		Fealty:             r.Fealty,
		Traits:             world.Trait(r.Traits),
		Gold:               r.Gold,
		ActionPoints:       r.ActionPoints,
		Loyalty:            r.Loyalty,
		Contribution:       r.Contribution,
		Prestige:           r.Prestige,
		PersonalGauge:      r.PersonalGauge,
		StrategyGauge:      r.StrategyGauge,
		ConsecutiveBattles: r.ConsecutiveBattles,
		Starving:           r.Starving,
		IncapacitatedDays:  r.IncapacitatedDays,
		CastleID:           world.ID(r.CastleID),
		ForceID:            world.ID(r.ForceID),
	}
	if len(r.Soldiers) > 0 {
		if err := json.Unmarshal(r.Soldiers, &ch.Soldiers); err != nil {
			return nil, err
		}
	}
	return ch, nil
}

func restoreTown(r TownRow) *world.Town {
	return &world.Town{
		ID:              world.ID(r.ID),
		Pos:             world.Pos{X: r.X, Y: r.Y},
		CastleID:        world.ID(r.CastleID),
		GoldIncome:      r.GoldIncome,
		FoodIncome:      r.FoodIncome,
		GoldIncomeMax:   r.GoldIncomeMax,
		FoodIncomeMax:   r.FoodIncomeMax,
		TotalInvestment: r.TotalInvestment,
		DevLevel:        r.DevLevel,
	}
}

func restoreForce(r ForceRow) *world.Force {
	return &world.Force{
		ID:          world.ID(r.ID),
		CharacterID: world.ID(r.CharacterID),
		CountryID:   world.ID(r.CountryID),
		Pos:         world.Pos{X: r.X, Y: r.Y},
		Dest: world.Destination{
			Kind:     world.DestinationKind(r.DestKind),
			CastleID: world.ID(r.DestCastleID),
			Pos:      world.Pos{X: r.DestX, Y: r.DestY},
			ForceID:  world.ID(r.DestForceID),
		},
		Mode:           world.ForceMode(r.Mode),
		MoveDaysLeft:   r.MoveDaysLeft,
		PlayerDirected: r.PlayerDirected,
		OriginalTarget: world.ID(r.OriginalTarget),
		HomeCastle:     world.ID(r.HomeCastle),
	}
}
