package model

import (
	"time"

	"gorm.io/datatypes"
)

// WorldRow is the singleton header of a saved world: calendar, RNG seed
// and the immutable terrain grid.
type WorldRow struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	Seed   int64 `gorm:"not null" json:"seed"`
	Year   int   `gorm:"not null" json:"year"`
	Month  int   `gorm:"not null" json:"month"`
	Day    int   `gorm:"not null" json:"day"`
	Width  int   `gorm:"not null" json:"width"`
	Height int   `gorm:"not null" json:"height"`

	Terrain datatypes.JSON `json:"terrain"` // row-major terrain codes

	SavedAt time.Time `gorm:"autoUpdateTime" json:"saved_at"`
}

func (WorldRow) TableName() string { return "world_state" }

// CountryRow persists one country.
type CountryRow struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:64;not null" json:"name"`
	RulerID int64  `json:"ruler_id"`

	Relations datatypes.JSON `json:"relations"` // {other_id: value}

	ObjectiveKind   int   `gorm:"default:0" json:"objective_kind"`
	ObjectiveTarget int64 `gorm:"default:0" json:"objective_target"`
	QuarterDone     bool  `gorm:"default:false" json:"quarter_done"`
	PowerRank       int   `gorm:"default:0" json:"power_rank"`
}

func (CountryRow) TableName() string { return "countries" }

// CastleRow persists one castle. Membership is derived from character
// rows at load; the boss seat is stored here.
type CastleRow struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:64;not null" json:"name"`
	X         int    `gorm:"not null" json:"x"`
	Y         int    `gorm:"not null" json:"y"`
	CountryID int64  `gorm:"index:idx_castle_country" json:"country_id"`
	BossID    int64  `json:"boss_id"`

	Strength    float64 `gorm:"not null" json:"strength"`
	StrengthMax float64 `gorm:"not null" json:"strength_max"`
	Gold        int     `gorm:"default:0" json:"gold"`

	FortressLevel   int   `gorm:"default:0" json:"fortress_level"`
	ObjectiveKind   int   `gorm:"default:0" json:"objective_kind"`
	ObjectiveTarget int64 `gorm:"default:0" json:"objective_target"`
	QuarterDone     bool  `gorm:"default:false" json:"quarter_done"`
}

func (CastleRow) TableName() string { return "castles" }

// CharacterRow persists one character; the fifteen soldier slots ride
// along as a JSON blob.
type CharacterRow struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`

	Attack       int `gorm:"default:0" json:"attack"`
	Defense      int `gorm:"default:0" json:"defense"`
	Intelligence int `gorm:"default:0" json:"intelligence"`
	Governing    int `gorm:"default:0" json:"governing"`
	Ambition     int `gorm:"default:0" json:"ambition"`
	Fealty       int `gorm:"default:0" json:"fealty"`
	Traits       int `gorm:"default:0" json:"traits"`

	Gold         int `gorm:"default:0" json:"gold"`
	ActionPoints int `gorm:"default:0" json:"action_points"`
	Loyalty      int `gorm:"default:50" json:"loyalty"`
	Contribution int `gorm:"default:0" json:"contribution"`
	Prestige     int `gorm:"default:0" json:"prestige"`

	Soldiers datatypes.JSON `json:"soldiers"`

	PersonalGauge float64 `gorm:"default:0" json:"personal_gauge"`
	StrategyGauge float64 `gorm:"default:0" json:"strategy_gauge"`

	ConsecutiveBattles int  `gorm:"default:0" json:"consecutive_battles"`
	Starving           bool `gorm:"default:false" json:"starving"`
	IncapacitatedDays  int  `gorm:"default:0" json:"incapacitated_days"`

	CastleID int64 `gorm:"index:idx_character_castle" json:"castle_id"`
	ForceID  int64 `json:"force_id"`
}

func (CharacterRow) TableName() string { return "characters" }

// TownRow persists one town.
type TownRow struct {
	ID       int64 `gorm:"primaryKey" json:"id"`
	X        int   `gorm:"not null" json:"x"`
	Y        int   `gorm:"not null" json:"y"`
	CastleID int64 `gorm:"index:idx_town_castle" json:"castle_id"`

	GoldIncome    float64 `gorm:"default:0" json:"gold_income"`
	FoodIncome    float64 `gorm:"default:0" json:"food_income"`
	GoldIncomeMax float64 `gorm:"default:0" json:"gold_income_max"`
	FoodIncomeMax float64 `gorm:"default:0" json:"food_income_max"`

	TotalInvestment int `gorm:"default:0" json:"total_investment"`
	DevLevel        int `gorm:"default:0" json:"dev_level"`
}

func (TownRow) TableName() string { return "towns" }

// ForceRow persists one in-transit force.
type ForceRow struct {
	ID          int64 `gorm:"primaryKey" json:"id"`
	CharacterID int64 `gorm:"not null" json:"character_id"`
	CountryID   int64 `gorm:"not null" json:"country_id"`
	X           int   `gorm:"not null" json:"x"`
	Y           int   `gorm:"not null" json:"y"`

	DestKind     int   `gorm:"default:0" json:"dest_kind"`
	DestCastleID int64 `gorm:"default:0" json:"dest_castle_id"`
	DestX        int   `gorm:"default:0" json:"dest_x"`
	DestY        int   `gorm:"default:0" json:"dest_y"`
	DestForceID  int64 `gorm:"default:0" json:"dest_force_id"`

	Mode           int   `gorm:"default:0" json:"mode"`
	MoveDaysLeft   int   `gorm:"default:0" json:"move_days_left"`
	PlayerDirected bool  `gorm:"default:false" json:"player_directed"`
	OriginalTarget int64 `gorm:"default:0" json:"original_target"`
	HomeCastle     int64 `gorm:"not null" json:"home_castle"`
}

func (ForceRow) TableName() string { return "forces" }

// RankingRow stores a named scoreboard entry, refreshed at year rollover.
type RankingRow struct {
	ID      int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Board   string  `gorm:"index:idx_ranking_board;size:64;not null" json:"board"`
	Subject string  `gorm:"size:64;not null" json:"subject"`
	Score   float64 `gorm:"not null" json:"score"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RankingRow) TableName() string { return "rankings" }
