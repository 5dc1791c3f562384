package sim

import (
	"context"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/battle"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// arrive resolves a force reaching its destination. Returns true when a
// battle was fought.
func (s *Sim) arrive(ctx context.Context, f *world.Force) bool {
	ch := s.W.Character(f.CharacterID)
	if ch == nil {
		s.W.DisbandForce(f, f.HomeCastle)
		return false
	}

	switch f.Dest.Kind {
	case world.DestCastle:
		cs := s.W.Castle(f.Dest.CastleID)
		if cs == nil {
			s.W.DisbandForce(f, f.HomeCastle)
			return false
		}
		if cs.CountryID == f.CountryID || s.isAllied(f.CountryID, cs.CountryID) {
			s.W.DisbandForce(f, cs.ID)
			return false
		}
		return s.siege(ctx, f, ch, cs)

	case world.DestForce:
		other := s.W.Force(f.Dest.ForceID)
		if other == nil || other.CountryID == f.CountryID {
			f.Dest = world.CastleDest(f.HomeCastle)
			return false
		}
		return s.fieldBattle(ctx, f, other)
	}

	// Bare tile reached; turn for home.
	f.Dest = world.CastleDest(f.HomeCastle)
	return false
}

// siege pits the arriving force against the castle's strongest standing
// defender. An undefended castle falls without a fight.
func (s *Sim) siege(ctx context.Context, f *world.Force, ch *world.Character, cs *world.Castle) bool {
	defender := s.strongestDefender(cs)
	if defender == nil {
		s.capture(f, ch, cs)
		return false
	}

	terrain := s.W.Map.TerrainAt(cs.Pos)
	att := battle.NewCombatant(ch, f.CountryID, terrain, s.W.Dice)
	def := battle.NewCombatant(defender, cs.CountryID, terrain, s.W.Dice)

	if home := s.W.Castle(f.HomeCastle); home != nil {
		att.Expedition = home.Pos.Dist(cs.Pos) > params.NeighborDistance
	}
	def.HomeGround = true
	def.CastleStrength = cs.Strength
	if cn := s.W.Country(cs.CountryID); cn != nil {
		def.LastStand = len(cn.CastleIDs) == 1 &&
			defender.Loyalty >= params.LowLoyaltyThreshold
	}
	att.Provider = s.providerFor(ch.ID)
	def.Provider = s.providerFor(defender.ID)

	res := s.runBattle(ctx, battle.Config{
		Attacker: att,
		Defender: def,
		Siege:    true,
	})

	// A siege batters walls and fields whoever wins.
	cs.AddStrength(-cs.StrengthMax * params.SiegeStrengthDamage)
	for _, tid := range cs.TownIDs {
		if t := s.W.Town(tid); t != nil {
			t.BattleDamage(params.FieldIncomeDamage)
		}
	}

	if res.AttackerWon {
		if s.strongestDefender(cs) == nil {
			s.capture(f, ch, cs)
		} else {
			// The garrison still stands; the attacker withdraws.
			s.withdraw(f, ch)
		}
	} else {
		s.withdraw(f, ch)
	}
	return true
}

// fieldBattle resolves a force-on-force clash on open ground.
func (s *Sim) fieldBattle(ctx context.Context, f, other *world.Force) bool {
	ch := s.W.Character(f.CharacterID)
	oc := s.W.Character(other.CharacterID)
	if ch == nil || oc == nil {
		f.Dest = world.CastleDest(f.HomeCastle)
		return false
	}

	terrain := s.W.Map.TerrainAt(f.Pos)
	att := battle.NewCombatant(ch, f.CountryID, terrain, s.W.Dice)
	def := battle.NewCombatant(oc, other.CountryID, terrain, s.W.Dice)
	att.Provider = s.providerFor(ch.ID)
	def.Provider = s.providerFor(oc.ID)

	res := s.runBattle(ctx, battle.Config{Attacker: att, Defender: def})

	if t := s.W.Map.TileAt(f.Pos); t != nil && t.TownID != 0 {
		if town := s.W.Town(t.TownID); town != nil {
			town.BattleDamage(params.FieldIncomeDamage)
		}
	}

	if res.AttackerWon {
		s.withdraw(other, oc)
	} else {
		s.withdraw(f, ch)
	}
	return true
}

// runBattle executes a battle synchronously, streaming its events to the
// sink.
func (s *Sim) runBattle(ctx context.Context, cfg battle.Config) *battle.Result {
	cfg.Logger = s.Log
	cfg.Dice = s.W.Dice
	if cfg.Attacker.Provider != nil || cfg.Defender.Provider != nil {
		cfg.Pace = s.battlePace
	}
	in := battle.New(cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range in.Events() {
			s.Sink.PublishEvent("battle."+e.EventType(), e)
		}
	}()
	res := in.Run(ctx)
	<-done

	s.Log.Info("battle fought",
		zap.String("winner", res.Winner.Ch.Name),
		zap.String("loser", res.Loser.Ch.Name),
		zap.Bool("siege", res.Siege),
		zap.Int("ticks", res.Ticks))
	return res
}

// strongestDefender picks the garrison member best able to take the
// walls.
func (s *Sim) strongestDefender(cs *world.Castle) *world.Character {
	var best *world.Character
	for _, m := range s.W.MembersOf(cs) {
		if m.IsMoving() || m.IsIncapacitated() || m.AliveSoldiers() == 0 {
			continue
		}
		if best == nil || m.Power() > best.Power() {
			best = m
		}
	}
	return best
}

// capture hands the castle to the attacker's country. The old garrison
// scatters into wandering; the conqueror moves in and takes the boss
// seat.
func (s *Sim) capture(f *world.Force, ch *world.Character, cs *world.Castle) {
	old := cs.CountryID
	for _, m := range s.W.MembersOf(cs) {
		s.W.MakeFree(m)
	}
	cs.BossID = 0
	s.W.TransferCastle(cs, f.CountryID)
	s.W.DisbandForce(f, cs.ID)
	cs.BossID = ch.ID
	ch.Contribution += params.ContributionWinner

	if oldCn := s.W.Country(old); oldCn != nil && oldCn.Fallen() {
		s.Log.Info("country has fallen", zap.String("country", oldCn.Name))
	}
	s.Sink.PublishEvent("castle.captured", map[string]any{
		"castle_id": int64(cs.ID),
		"castle":    cs.Name,
		"new_owner": int64(f.CountryID),
		"conqueror": ch.Name,
		"old_owner": int64(old),
	})
}

// withdraw sends a beaten force home; a force with no soldiers left
// carries its commander back on a stretcher.
func (s *Sim) withdraw(f *world.Force, ch *world.Character) {
	if ch.AliveSoldiers() == 0 {
		ch.IncapacitatedDays = params.IncapacitationDays
		s.W.DisbandForce(f, f.HomeCastle)
		return
	}
	f.Dest = world.CastleDest(f.HomeCastle)
	f.Mode = world.ForceModeNormal
}
