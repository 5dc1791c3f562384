package world

// ForceMode distinguishes an attack march from a reinforcement march.
type ForceMode int

const (
	ForceModeNormal ForceMode = iota
	ForceModeReinforcement
)

// DestinationKind discriminates the polymorphic destination.
type DestinationKind int

const (
	DestCastle DestinationKind = iota
	DestTile
	DestForce
)

// Destination is where a force is headed: a castle, a bare tile, or
// another force (chasing or reinforcing it).
type Destination struct {
	Kind     DestinationKind `json:"kind"`
	CastleID ID              `json:"castle_id"`
	Pos      Pos             `json:"pos"`
	ForceID  ID              `json:"force_id"`
}

// CastleDest builds a castle destination.
func CastleDest(id ID) Destination { return Destination{Kind: DestCastle, CastleID: id} }

// TileDest builds a tile destination.
func TileDest(p Pos) Destination { return Destination{Kind: DestTile, Pos: p} }

// ForceDest builds a force-chasing destination.
func ForceDest(id ID) Destination { return Destination{Kind: DestForce, ForceID: id} }

// Force is the mobile wrapper around exactly one deployed character. It
// exists iff the character is moving: created on deployment, destroyed on
// arrival-and-disband or recall completion.
type Force struct {
	ID          ID          `json:"id"`
	CharacterID ID          `json:"character_id"`
	CountryID   ID          `json:"country_id"`
	Pos         Pos         `json:"pos"`
	Dest        Destination `json:"dest"`
	Mode        ForceMode   `json:"mode"`

	// MoveDaysLeft counts down before the force advances one tile.
	MoveDaysLeft int `json:"move_days_left"`

	PlayerDirected bool `json:"player_directed"`

	// OriginalTarget remembers the first reinforcement target so the force
	// can resume after a diversion.
	OriginalTarget ID `json:"original_target"`

	// HomeCastle is where a recall returns the character.
	HomeCastle ID `json:"home_castle"`
}
