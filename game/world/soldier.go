package world

import "github.com/kurohane/tenka/game/params"

// Soldier is one of a character's fifteen troop slots. HP is tracked as a
// float and displayed as an integer; Empty slots take no part in battle.
type Soldier struct {
	Level int     `json:"level"`
	Exp   int     `json:"exp"`
	HP    float64 `json:"hp"`
	Empty bool    `json:"empty"`
}

// MaxHP derives the slot's HP ceiling from its level.
func (s *Soldier) MaxHP() float64 {
	if s.Empty {
		return 0
	}
	return SoldierMaxHP(s.Level)
}

// SoldierMaxHP is the level → max HP curve.
func SoldierMaxHP(level int) float64 {
	return params.SoldierHPBase + params.SoldierHPPerLvl*float64(level)
}

// Alive reports whether the slot holds a fighting soldier.
func (s *Soldier) Alive() bool {
	return !s.Empty && s.HP > 0
}

// SetHP clamps HP into [0, MaxHP].
func (s *Soldier) SetHP(v float64) {
	max := s.MaxHP()
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	s.HP = v
}

// Heal adds HP, clamped to max.
func (s *Soldier) Heal(v float64) {
	s.SetHP(s.HP + v)
}

// GainExp adds experience and resolves level-ups. A level-up refills the
// slot's HP by the max-HP increase, not to full.
func (s *Soldier) GainExp(exp float64) {
	if s.Empty {
		return
	}
	s.Exp += int(exp)
	for s.Exp >= params.ExpPerLevel && s.Level < params.SoldierMaxLevel {
		s.Exp -= params.ExpPerLevel
		s.Level++
		s.Heal(params.SoldierHPPerLvl)
	}
	if s.Level >= params.SoldierMaxLevel && s.Exp > params.ExpPerLevel {
		s.Exp = params.ExpPerLevel
	}
}

// Fill recruits into an empty slot at the given level with full HP.
func (s *Soldier) Fill(level int) {
	s.Empty = false
	s.Level = level
	s.Exp = 0
	s.HP = SoldierMaxHP(level)
}

// Kill permanently empties the slot.
func (s *Soldier) Kill() {
	s.Empty = true
	s.Level = 0
	s.Exp = 0
	s.HP = 0
}
