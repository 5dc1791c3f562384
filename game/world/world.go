// Package world holds the mutable simulation state: the entity arena, the
// grid map and the relation tables. Entities reference each other by
// stable integer ids, never by pointer, so snapshots stay flat and no
// cyclic ownership exists.
package world

import (
	"sort"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
)

// ID addresses any entity in the arena. Zero is "no entity".
type ID int64

// World is the single shared state. It is mutated only by the simulation
// goroutine; everyone else works from published snapshots.
type World struct {
	Map  *GridMap
	Date GameDate

	countries  map[ID]*Country
	castles    map[ID]*Castle
	characters map[ID]*Character
	towns      map[ID]*Town
	forces     map[ID]*Force

	nextID ID
	seed   int64

	Dice *dice.Roller
	Log  *zap.Logger
}

// Seed returns the seed the world was created with.
func (w *World) Seed() int64 { return w.seed }

// New creates an empty world over the given map.
func New(m *GridMap, seed int64, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		Map:        m,
		Date:       GameDate{Year: 1, Month: 1, Day: 1},
		countries:  make(map[ID]*Country),
		castles:    make(map[ID]*Castle),
		characters: make(map[ID]*Character),
		towns:      make(map[ID]*Town),
		forces:     make(map[ID]*Force),
		seed:       seed,
		Dice:       dice.New(seed),
		Log:        logger,
	}
}

func (w *World) allocID() ID {
	w.nextID++
	return w.nextID
}

// BumpID ensures future allocations stay above id (used by the loader).
func (w *World) BumpID(id ID) {
	if id > w.nextID {
		w.nextID = id
	}
}

// ---- Constructors ----

// AddCountry registers a new country.
func (w *World) AddCountry(name string) *Country {
	c := &Country{
		ID:        w.allocID(),
		Name:      name,
		Relations: make(map[ID]float64),
	}
	w.countries[c.ID] = c
	return c
}

// AddCastle registers a castle, marks its tile and attaches it to a country.
func (w *World) AddCastle(name string, pos Pos, countryID ID, strengthMax float64) *Castle {
	c := &Castle{
		ID:          w.allocID(),
		Name:        name,
		Pos:         pos,
		CountryID:   countryID,
		Strength:    strengthMax / 2,
		StrengthMax: strengthMax,
	}
	w.castles[c.ID] = c
	if t := w.Map.TileAt(pos); t != nil {
		t.CastleID = c.ID
	}
	if cn := w.Country(countryID); cn != nil {
		cn.addCastle(c.ID)
	}
	return c
}

// AddTown registers a town under a castle.
func (w *World) AddTown(pos Pos, castleID ID) *Town {
	t := &Town{
		ID:            w.allocID(),
		Pos:           pos,
		CastleID:      castleID,
		GoldIncome:    10,
		FoodIncome:    15,
		GoldIncomeMax: baseGoldIncomeMax,
		FoodIncomeMax: baseFoodIncomeMax,
	}
	w.towns[t.ID] = t
	if c := w.Castle(castleID); c != nil {
		c.TownIDs = append(c.TownIDs, t.ID)
	}
	if tile := w.Map.TileAt(pos); tile != nil {
		tile.TownID = t.ID
	}
	return t
}

// AddCharacter registers a character with all soldier slots vacant;
// castleID 0 creates a free wanderer.
func (w *World) AddCharacter(name string, castleID ID) *Character {
	c := &Character{
		ID:       w.allocID(),
		Name:     name,
		CastleID: castleID,
		Loyalty:  params.RelationNeutral,
	}
	for i := range c.Soldiers {
		c.Soldiers[i].Empty = true
	}
	w.characters[c.ID] = c
	if castleID != 0 {
		if cs := w.Castle(castleID); cs != nil {
			cs.AddMember(c.ID)
		}
	}
	return c
}

// Restore re-inserts loader-built entities verbatim.
func (w *World) Restore(countries []*Country, castles []*Castle, chars []*Character, towns []*Town, forces []*Force) {
	for _, c := range countries {
		w.countries[c.ID] = c
		w.BumpID(c.ID)
	}
	for _, c := range castles {
		w.castles[c.ID] = c
		w.BumpID(c.ID)
		if t := w.Map.TileAt(c.Pos); t != nil {
			t.CastleID = c.ID
		}
	}
	for _, c := range chars {
		w.characters[c.ID] = c
		w.BumpID(c.ID)
	}
	for _, t := range towns {
		w.towns[t.ID] = t
		w.BumpID(t.ID)
		if tile := w.Map.TileAt(t.Pos); tile != nil {
			tile.TownID = t.ID
		}
	}
	for _, f := range forces {
		w.forces[f.ID] = f
		w.BumpID(f.ID)
	}
}

// ---- Lookups ----

func (w *World) Country(id ID) *Country     { return w.countries[id] }
func (w *World) Castle(id ID) *Castle       { return w.castles[id] }
func (w *World) Character(id ID) *Character { return w.characters[id] }
func (w *World) Town(id ID) *Town           { return w.towns[id] }
func (w *World) Force(id ID) *Force         { return w.forces[id] }

// Countries returns all countries in ascending id order, so iteration is
// deterministic under a fixed seed.
func (w *World) Countries() []*Country {
	out := make([]*Country, 0, len(w.countries))
	for _, c := range w.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Castles returns all castles in id order.
func (w *World) Castles() []*Castle {
	out := make([]*Castle, 0, len(w.castles))
	for _, c := range w.castles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Characters returns all characters in id order.
func (w *World) Characters() []*Character {
	out := make([]*Character, 0, len(w.characters))
	for _, c := range w.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Towns returns all towns in id order.
func (w *World) Towns() []*Town {
	out := make([]*Town, 0, len(w.towns))
	for _, t := range w.towns {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Forces returns all forces in id order.
func (w *World) Forces() []*Force {
	out := make([]*Force, 0, len(w.forces))
	for _, f := range w.forces {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MembersOf resolves a castle's garrison to characters.
func (w *World) MembersOf(c *Castle) []*Character {
	out := make([]*Character, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if ch := w.Character(id); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// FreeCharacters lists unaffiliated wanderers.
func (w *World) FreeCharacters() []*Character {
	var out []*Character
	for _, c := range w.Characters() {
		if c.IsFree() && !c.IsMoving() {
			out = append(out, c)
		}
	}
	return out
}

// CountryOf resolves a character's country through its castle or force.
func (w *World) CountryOf(c *Character) *Country {
	if c.IsMoving() {
		if f := w.Force(c.ForceID); f != nil {
			return w.Country(f.CountryID)
		}
	}
	if cs := w.Castle(c.CastleID); cs != nil {
		return w.Country(cs.CountryID)
	}
	return nil
}

// IsRuler reports whether the character rules their country.
func (w *World) IsRuler(c *Character) bool {
	cn := w.CountryOf(c)
	return cn != nil && cn.RulerID == c.ID
}

// ---- Relations ----

// Relation returns the symmetric relation between two countries.
func (w *World) Relation(a, b ID) float64 {
	if a == b {
		return params.AllySentinel
	}
	ca := w.Country(a)
	if ca == nil {
		return params.RelationNeutral
	}
	return ca.Relation(b)
}

// SetRelation writes both directions of the table.
func (w *World) SetRelation(a, b ID, v float64) {
	if a == b {
		return
	}
	if ca := w.Country(a); ca != nil {
		ca.setRelation(b, v)
	}
	if cb := w.Country(b); cb != nil {
		cb.setRelation(a, v)
	}
}

// AdjustRelation shifts the symmetric relation by delta. The ally
// sentinel absorbs shifts; alliances only end through BreakAlliance.
func (w *World) AdjustRelation(a, b ID, delta float64) {
	cur := w.Relation(a, b)
	if cur >= params.AllySentinel {
		return
	}
	w.SetRelation(a, b, cur+delta)
}

// SetAlly marks both countries as allied.
func (w *World) SetAlly(a, b ID) {
	w.SetRelation(a, b, params.AllySentinel)
}

// BreakAlliance dissolves an alliance back to the given relation value.
func (w *World) BreakAlliance(a, b ID, after float64) {
	w.SetRelation(a, b, after)
}

// ---- Garrison moves ----

// MoveCharacter transfers a garrisoned character to another castle.
func (w *World) MoveCharacter(ch *Character, to ID) {
	if from := w.Castle(ch.CastleID); from != nil {
		from.RemoveMember(ch.ID)
		w.EnsureBoss(from)
	}
	ch.CastleID = to
	if dst := w.Castle(to); dst != nil {
		dst.AddMember(ch.ID)
	}
}

// MakeFree demotes a character to an unaffiliated wanderer.
func (w *World) MakeFree(ch *Character) {
	if from := w.Castle(ch.CastleID); from != nil {
		from.RemoveMember(ch.ID)
		w.EnsureBoss(from)
	}
	ch.CastleID = 0
	ch.Loyalty = params.RelationNeutral
}

// EnsureBoss refills an empty boss seat with the highest-contribution
// member present. A castle with members must always have a boss.
func (w *World) EnsureBoss(c *Castle) {
	if c == nil || c.BossID != 0 || len(c.MemberIDs) == 0 {
		return
	}
	var best *Character
	for _, m := range w.MembersOf(c) {
		if m.IsMoving() {
			continue
		}
		if best == nil || m.Contribution > best.Contribution {
			best = m
		}
	}
	if best == nil {
		// Everyone is deployed; promote the strongest anyway.
		for _, m := range w.MembersOf(c) {
			if best == nil || m.Contribution > best.Contribution {
				best = m
			}
		}
	}
	if best != nil {
		c.BossID = best.ID
	}
}

// ---- Forces ----

// SpawnForce deploys a character as a force. The character stays a member
// of their castle but IsMoving becomes true.
func (w *World) SpawnForce(ch *Character, dest Destination, mode ForceMode) *Force {
	home := w.Castle(ch.CastleID)
	if home == nil {
		return nil
	}
	f := &Force{
		ID:          w.allocID(),
		CharacterID: ch.ID,
		Pos:         home.Pos,
		Dest:        dest,
		Mode:        mode,
		HomeCastle:  home.ID,
		CountryID:   home.CountryID,
	}
	f.MoveDaysLeft = MoveCost(w.Map.TerrainAt(f.Pos))
	w.forces[f.ID] = f
	ch.ForceID = f.ID
	return f
}

// DisbandForce returns the character to a castle and destroys the force.
func (w *World) DisbandForce(f *Force, into ID) {
	ch := w.Character(f.CharacterID)
	if ch != nil {
		ch.ForceID = 0
		if ch.CastleID != into {
			w.MoveCharacter(ch, into)
		}
	}
	delete(w.forces, f.ID)
}

// ---- Ownership transfer ----

// TransferCastle hands a castle to another country. The remaining
// garrison goes with it; the previous owner may fall.
func (w *World) TransferCastle(c *Castle, to ID) {
	if old := w.Country(c.CountryID); old != nil {
		old.removeCastle(c.ID)
	}
	c.CountryID = to
	if cn := w.Country(to); cn != nil {
		cn.addCastle(c.ID)
	}
}

// ---- Derived quantities ----

// CastleIncome sums the castle's town incomes.
func (w *World) CastleIncome(c *Castle) (gold, food float64) {
	for _, id := range c.TownIDs {
		if t := w.Town(id); t != nil {
			gold += t.GoldIncome
			food += t.FoodIncome
		}
	}
	return gold, food
}

// CastlePower is garrison power plus fortification weight.
func (w *World) CastlePower(c *Castle) float64 {
	sum := c.Strength
	for _, m := range w.MembersOf(c) {
		sum += m.Power()
	}
	return sum
}

// CountryPower sums the power of all of a country's castles.
func (w *World) CountryPower(cn *Country) float64 {
	sum := 0.0
	for _, id := range cn.CastleIDs {
		if c := w.Castle(id); c != nil {
			sum += w.CastlePower(c)
		}
	}
	return sum
}

// ComputeNeighbors fills every castle's cached neighbor set from the
// distance threshold. Called once at load.
func (w *World) ComputeNeighbors() {
	castles := w.Castles()
	for _, a := range castles {
		a.NeighborIDs = a.NeighborIDs[:0]
		for _, b := range castles {
			if a.ID == b.ID {
				continue
			}
			if a.Pos.Dist(b.Pos) <= params.NeighborDistance {
				a.NeighborIDs = append(a.NeighborIDs, b.ID)
			}
		}
	}
}

// Validate clamps out-of-band values and logs each fix. Production
// worlds sanitize rather than crash.
func (w *World) Validate() {
	for _, c := range w.Characters() {
		if c.Loyalty < params.LoyaltyMin || c.Loyalty > params.LoyaltyMax {
			w.Log.Warn("loyalty out of range, clamping",
				zap.Int64("character", int64(c.ID)), zap.Int("loyalty", c.Loyalty))
			c.SetLoyalty(c.Loyalty)
		}
		for i := range c.Soldiers {
			s := &c.Soldiers[i]
			if !s.Empty && (s.HP < 0 || s.HP > s.MaxHP()) {
				s.SetHP(s.HP)
			}
		}
	}
	for _, c := range w.Castles() {
		if c.Strength < 0 || c.Strength > c.StrengthMax {
			w.Log.Warn("castle strength out of range, clamping",
				zap.Int64("castle", int64(c.ID)), zap.Float64("strength", c.Strength))
			c.SetStrength(c.Strength)
		}
		w.EnsureBoss(c)
	}
}
