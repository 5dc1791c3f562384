package world

import "math"

// Terrain classifies a map tile.
type Terrain int

const (
	TerrainPlain Terrain = iota
	TerrainForest
	TerrainHill
	TerrainMountain
	TerrainMarine
)

func (t Terrain) String() string {
	switch t {
	case TerrainPlain:
		return "plain"
	case TerrainForest:
		return "forest"
	case TerrainHill:
		return "hill"
	case TerrainMountain:
		return "mountain"
	case TerrainMarine:
		return "marine"
	}
	return "unknown"
}

// Pos is a grid coordinate.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dist returns the Euclidean distance between two positions.
func (p Pos) Dist(o Pos) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y))
}

// StepToward returns p moved one tile toward target (8-directional).
func (p Pos) StepToward(target Pos) Pos {
	next := p
	if target.X > p.X {
		next.X++
	} else if target.X < p.X {
		next.X--
	}
	if target.Y > p.Y {
		next.Y++
	} else if target.Y < p.Y {
		next.Y--
	}
	return next
}

// Tile is one cell of the grid map.
type Tile struct {
	Terrain  Terrain
	CastleID ID // 0 = no castle here
	TownID   ID // 0 = no town here
}

// GridMap is the simulation's terrain grid. Built once at load; terrain is
// immutable afterwards, castle/town markers are maintained by the World.
type GridMap struct {
	Width  int
	Height int
	tiles  []Tile
}

// NewGridMap creates an all-plain map of the given size.
func NewGridMap(width, height int) *GridMap {
	return &GridMap{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether p lies on the map.
func (m *GridMap) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// TileAt returns the tile at p, or nil when out of bounds.
func (m *GridMap) TileAt(p Pos) *Tile {
	if !m.InBounds(p) {
		return nil
	}
	return &m.tiles[p.Y*m.Width+p.X]
}

// TerrainAt returns the terrain at p; out-of-bounds reads as marine so
// pathing never walks off the edge for free.
func (m *GridMap) TerrainAt(p Pos) Terrain {
	t := m.TileAt(p)
	if t == nil {
		return TerrainMarine
	}
	return t.Terrain
}

// MoveCost returns the days needed to enter a tile of the given terrain.
func MoveCost(t Terrain) int {
	switch t {
	case TerrainForest, TerrainHill:
		return 2
	case TerrainMountain:
		return 3
	case TerrainMarine:
		return 2
	default:
		return 1
	}
}
