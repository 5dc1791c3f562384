package sim

import "github.com/kurohane/tenka/game/world"

// WorldView is the read-only projection published for observers. It is
// rebuilt every day; the API never touches the live arena.
type WorldView struct {
	Date      string          `json:"date"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Countries []CountryView   `json:"countries"`
	Castles   []CastleView    `json:"castles"`
	Forces    []ForceView     `json:"forces"`
	Chars     []CharacterView `json:"characters"`
}

type CountryView struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	RulerID   int64   `json:"ruler_id"`
	Castles   int     `json:"castles"`
	Power     float64 `json:"power"`
	PowerRank int     `json:"power_rank"`
	Objective string  `json:"objective"`
	Fallen    bool    `json:"fallen"`
}

type CastleView struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	CountryID int64   `json:"country_id"`
	BossID    int64   `json:"boss_id"`
	Members   int     `json:"members"`
	Strength  float64 `json:"strength"`
	Gold      int     `json:"gold"`
	Objective string  `json:"objective"`
	Danger    bool    `json:"danger"`
}

type ForceView struct {
	ID          int64 `json:"id"`
	CharacterID int64 `json:"character_id"`
	CountryID   int64 `json:"country_id"`
	X           int   `json:"x"`
	Y           int   `json:"y"`
	Mode        int   `json:"mode"`
}

type CharacterView struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	CastleID      int64   `json:"castle_id"`
	Moving        bool    `json:"moving"`
	Incapacitated bool    `json:"incapacitated"`
	Soldiers      int     `json:"soldiers"`
	SoldierHP     float64 `json:"soldier_hp"`
	Power         float64 `json:"power"`
	Gold          int     `json:"gold"`
	Loyalty       int     `json:"loyalty"`
	Prestige      int     `json:"prestige"`
	PersonalGauge float64 `json:"personal_gauge"`
	StrategyGauge float64 `json:"strategy_gauge"`
}

// BuildWorldView projects the whole world.
func BuildWorldView(w *world.World) WorldView {
	v := WorldView{
		Date:   w.Date.String(),
		Width:  w.Map.Width,
		Height: w.Map.Height,
	}
	for _, cn := range w.Countries() {
		v.Countries = append(v.Countries, CountryView{
			ID:        int64(cn.ID),
			Name:      cn.Name,
			RulerID:   int64(cn.RulerID),
			Castles:   len(cn.CastleIDs),
			Power:     w.CountryPower(cn),
			PowerRank: cn.PowerRank,
			Objective: cn.Objective.Kind.String(),
			Fallen:    cn.Fallen(),
		})
	}
	for _, cs := range w.Castles() {
		v.Castles = append(v.Castles, CastleView{
			ID:        int64(cs.ID),
			Name:      cs.Name,
			X:         cs.Pos.X,
			Y:         cs.Pos.Y,
			CountryID: int64(cs.CountryID),
			BossID:    int64(cs.BossID),
			Members:   len(cs.MemberIDs),
			Strength:  cs.Strength,
			Gold:      cs.Gold,
			Objective: cs.Objective.Kind.String(),
			Danger:    cs.Danger,
		})
	}
	for _, f := range w.Forces() {
		v.Forces = append(v.Forces, ForceView{
			ID:          int64(f.ID),
			CharacterID: int64(f.CharacterID),
			CountryID:   int64(f.CountryID),
			X:           f.Pos.X,
			Y:           f.Pos.Y,
			Mode:        int(f.Mode),
		})
	}
	for _, ch := range w.Characters() {
		v.Chars = append(v.Chars, CharacterView{
			ID:            int64(ch.ID),
			Name:          ch.Name,
			CastleID:      int64(ch.CastleID),
			Moving:        ch.IsMoving(),
			Incapacitated: ch.IsIncapacitated(),
			Soldiers:      ch.AliveSoldiers(),
			SoldierHP:     ch.SoldierHP(),
			Power:         ch.Power(),
			Gold:          ch.Gold,
			Loyalty:       ch.Loyalty,
			Prestige:      ch.Prestige,
			PersonalGauge: ch.PersonalGauge,
			StrategyGauge: ch.StrategyGauge,
		})
	}
	return v
}
