package battle

// Event is emitted by an Instance for observers (SSE stream, logs).
type Event interface {
	EventType() string
}

// SideSnapshot summarizes one side for event payloads.
type SideSnapshot struct {
	CharacterID int64   `json:"character_id"`
	Name        string  `json:"name"`
	HP          float64 `json:"hp"`
	MaxHP       float64 `json:"max_hp"`
	FrontAlive  int     `json:"front_alive"`
	MidAlive    int     `json:"mid_alive"`
	RearAlive   int     `json:"rear_alive"`
}

func snapshotSide(c *Combatant) SideSnapshot {
	return SideSnapshot{
		CharacterID: int64(c.Ch.ID),
		Name:        c.Ch.Name,
		HP:          c.TotalHP(),
		MaxHP:       c.Ch.SoldierMaxHPTotal(),
		FrontAlive:  c.RowAlive(0),
		MidAlive:    c.RowAlive(1),
		RearAlive:   c.RowAlive(2),
	}
}

type EventStart struct {
	BattleID string       `json:"battle_id"`
	Terrain  string       `json:"terrain"`
	Siege    bool         `json:"siege"`
	Attacker SideSnapshot `json:"attacker"`
	Defender SideSnapshot `json:"defender"`
}

func (EventStart) EventType() string { return "battle_start" }

type EventTick struct {
	BattleID       string       `json:"battle_id"`
	Tick           int          `json:"tick"`
	AttackerTactic string       `json:"attacker_tactic"`
	DefenderTactic string       `json:"defender_tactic"`
	Attacker       SideSnapshot `json:"attacker"`
	Defender       SideSnapshot `json:"defender"`
}

func (EventTick) EventType() string { return "battle_tick" }

type EventEnd struct {
	BattleID      string `json:"battle_id"`
	Ticks         int    `json:"ticks"`
	WinnerID      int64  `json:"winner_id"`
	LoserID       int64  `json:"loser_id"`
	LoserRetreat  bool   `json:"loser_retreat"`
	AttackerWon   bool   `json:"attacker_won"`
	PermanentDead int    `json:"permanent_dead"`
}

func (EventEnd) EventType() string { return "battle_end" }
