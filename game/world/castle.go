package world

import "github.com/kurohane/tenka/game/params"

// CastleObjectiveKind steers the castle boss's strategy-phase behavior.
type CastleObjectiveKind int

const (
	CastleObjectiveNone CastleObjectiveKind = iota
	CastleObjectiveAttack
	CastleObjectiveTrain
	CastleObjectiveFortify
	CastleObjectiveDevelop
	CastleObjectiveTransport
)

func (k CastleObjectiveKind) String() string {
	switch k {
	case CastleObjectiveAttack:
		return "attack"
	case CastleObjectiveTrain:
		return "train"
	case CastleObjectiveFortify:
		return "fortify"
	case CastleObjectiveDevelop:
		return "develop"
	case CastleObjectiveTransport:
		return "transport"
	}
	return "none"
}

// CastleObjective is the castle's current strategic goal; Target is the
// castle id for Attack and Transport, zero otherwise.
type CastleObjective struct {
	Kind   CastleObjectiveKind `json:"kind"`
	Target ID                  `json:"target"`
}

// Castle is a fortified seat holding characters and towns.
type Castle struct {
	ID        ID  `json:"id"`
	Name      string `json:"name"`
	Pos       Pos `json:"pos"`
	CountryID ID  `json:"country_id"`

	BossID    ID   `json:"boss_id"`
	MemberIDs []ID `json:"member_ids"`
	TownIDs   []ID `json:"town_ids"`

	Strength    float64 `json:"strength"`
	StrengthMax float64 `json:"strength_max"`
	Gold        int     `json:"gold"`

	FortressLevel int             `json:"fortress_level"`
	Objective     CastleObjective `json:"objective"`
	QuarterDone   bool            `json:"quarter_done"`

	// NeighborIDs is computed once at load from the distance threshold.
	NeighborIDs []ID `json:"neighbor_ids"`

	// Danger is refreshed every tick from enemy force proximity.
	Danger bool `json:"danger"`
}

// HasMember reports whether the character garrisons here.
func (c *Castle) HasMember(id ID) bool {
	for _, m := range c.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// AddMember garrisons a character. The first member becomes boss.
func (c *Castle) AddMember(id ID) {
	if c.HasMember(id) {
		return
	}
	c.MemberIDs = append(c.MemberIDs, id)
	if c.BossID == 0 {
		c.BossID = id
	}
}

// RemoveMember drops a character from the garrison. The boss seat is left
// empty for the World to refill; "boss is null only transiently".
func (c *Castle) RemoveMember(id ID) {
	for i, m := range c.MemberIDs {
		if m == id {
			c.MemberIDs = append(c.MemberIDs[:i], c.MemberIDs[i+1:]...)
			break
		}
	}
	if c.BossID == id {
		c.BossID = 0
	}
}

// IsFull reports whether the garrison is at capacity.
func (c *Castle) IsFull() bool {
	return len(c.MemberIDs) >= params.CastleMaxMembers
}

// SetStrength clamps fortification into [floor, max].
func (c *Castle) SetStrength(v float64) {
	if v > c.StrengthMax {
		v = c.StrengthMax
	}
	if v < params.CastleStrengthFloor {
		v = params.CastleStrengthFloor
	}
	c.Strength = v
}

// AddStrength shifts fortification with clamping.
func (c *Castle) AddStrength(delta float64) { c.SetStrength(c.Strength + delta) }

// IsNeighbor reports whether the other castle is in the cached neighbor set.
func (c *Castle) IsNeighbor(id ID) bool {
	for _, n := range c.NeighborIDs {
		if n == id {
			return true
		}
	}
	return false
}
