package world

import (
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
)

// CountryObjectiveKind is the top-level strategic stance of a country.
type CountryObjectiveKind int

const (
	CountryObjectiveStatusQuo CountryObjectiveKind = iota
	CountryObjectiveRegionConquest
	CountryObjectiveCountryAttack
)

func (k CountryObjectiveKind) String() string {
	switch k {
	case CountryObjectiveRegionConquest:
		return "region_conquest"
	case CountryObjectiveCountryAttack:
		return "country_attack"
	}
	return "status_quo"
}

// CountryObjective pairs a stance with its target: a castle id for region
// conquest, a country id for a country attack.
type CountryObjective struct {
	Kind   CountryObjectiveKind `json:"kind"`
	Target ID                   `json:"target"`
}

// Country is a faction: one ruler, a set of castles, and a symmetric
// relation table to every other country.
type Country struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	RulerID ID     `json:"ruler_id"`

	CastleIDs []ID `json:"castle_ids"`

	// Relations is kept symmetric through World.SetRelation; values are
	// clamped to [RelationMin, RelationMax] except the ally sentinel.
	Relations map[ID]float64 `json:"relations"`

	Objective   CountryObjective `json:"objective"`
	QuarterDone bool             `json:"quarter_done"`

	// PowerRank is recomputed at year rollover.
	PowerRank int `json:"power_rank"`
}

// Relation returns the relation value toward the other country
// (neutral when never set).
func (c *Country) Relation(other ID) float64 {
	if v, ok := c.Relations[other]; ok {
		return v
	}
	return params.RelationNeutral
}

// IsAlly reports whether the sentinel marks an alliance.
func (c *Country) IsAlly(other ID) bool {
	return c.Relation(other) >= params.AllySentinel
}

// AllyCount counts current alliance partners.
func (c *Country) AllyCount() int {
	n := 0
	for _, v := range c.Relations {
		if v >= params.AllySentinel {
			n++
		}
	}
	return n
}

// setRelation stores a one-sided value; only World.SetRelation may call it
// so the table stays symmetric. The sentinel passes through unclamped.
func (c *Country) setRelation(other ID, v float64) {
	if c.Relations == nil {
		c.Relations = make(map[ID]float64)
	}
	if v >= params.AllySentinel {
		c.Relations[other] = params.AllySentinel
		return
	}
	c.Relations[other] = dice.Clamp(v, params.RelationMin, params.RelationMax)
}

// HasCastle reports ownership.
func (c *Country) HasCastle(id ID) bool {
	for _, cid := range c.CastleIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// addCastle and removeCastle are maintained by World ownership transfers.
func (c *Country) addCastle(id ID) {
	if !c.HasCastle(id) {
		c.CastleIDs = append(c.CastleIDs, id)
	}
}

func (c *Country) removeCastle(id ID) {
	for i, cid := range c.CastleIDs {
		if cid == id {
			c.CastleIDs = append(c.CastleIDs[:i], c.CastleIDs[i+1:]...)
			return
		}
	}
}

// Fallen reports whether the country holds no castles.
func (c *Country) Fallen() bool { return len(c.CastleIDs) == 0 }
