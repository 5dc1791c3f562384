package ai

import (
	"context"

	"github.com/kurohane/tenka/game/action"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// threatAgainst sums the power of enemy forces bearing down on a castle.
func threatAgainst(w *world.World, cs *world.Castle) float64 {
	total := 0.0
	for _, f := range w.Forces() {
		if f.CountryID == cs.CountryID || allied(w, f.CountryID, cs.CountryID) {
			continue
		}
		heading := f.Dest.Kind == world.DestCastle && f.Dest.CastleID == cs.ID
		if !heading && f.Pos.Dist(cs.Pos) > params.DangerRange {
			continue
		}
		if ch := w.Character(f.CharacterID); ch != nil {
			total += ch.Power()
		}
	}
	return total
}

// garrisonPower is castle power plus reinforcements already on the way.
func garrisonPower(w *world.World, cs *world.Castle) float64 {
	total := w.CastlePower(cs)
	for _, f := range w.Forces() {
		if f.Mode != world.ForceModeReinforcement {
			continue
		}
		if f.Dest.Kind != world.DestCastle || f.Dest.CastleID != cs.ID {
			continue
		}
		if ch := w.Character(f.CharacterID); ch != nil {
			total += ch.Power()
		}
	}
	return total
}

// isSafeCastle: every neighbor is friendly or warmly related.
func isSafeCastle(w *world.World, cs *world.Castle) bool {
	if cs.Danger {
		return false
	}
	for _, nid := range cs.NeighborIDs {
		nc := w.Castle(nid)
		if nc == nil || nc.CountryID == cs.CountryID {
			continue
		}
		if w.Relation(cs.CountryID, nc.CountryID) < params.SafeRelationMin &&
			!allied(w, cs.CountryID, nc.CountryID) {
			return false
		}
	}
	return true
}

// defendOwn recalls exposed forces or calls in reinforcements when the
// boss's castle is outmatched by approaching enemies. Returns true when
// an action was spent.
func (e *Engine) defendOwn(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if !cs.Danger {
		return false
	}
	threat := threatAgainst(e.W, cs)
	if threat <= garrisonPower(e.W, cs)*params.ReinforceRecallRatio {
		return false
	}

	// First choice: bring our own marchers home.
	for _, f := range e.W.Forces() {
		if f.HomeCastle != cs.ID || f.Mode != world.ForceModeNormal {
			continue
		}
		if f.Dest.Kind == world.DestCastle && f.Dest.CastleID == cs.ID {
			continue // already coming back
		}
		args := &action.Args{W: e.W, Actor: boss, TargetCharacter: f.CharacterID}
		if e.run(ctx, action.Recall{}, args) {
			return true
		}
	}
	return false
}

// defendFriends dispatches a reinforcement from a safe castle toward the
// most urgent endangered castle of the country or an ally, preferring
// the shortest march.
func (e *Engine) defendFriends(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if !isSafeCastle(e.W, cs) {
		return false
	}

	var target *world.Castle
	bestETA := 0.0
	for _, oc := range e.W.Castles() {
		if oc.ID == cs.ID || !oc.Danger {
			continue
		}
		if oc.CountryID != cs.CountryID && !allied(e.W, cs.CountryID, oc.CountryID) {
			continue
		}
		if threatAgainst(e.W, oc) <= garrisonPower(e.W, oc)*params.ReinforceRecallRatio {
			continue
		}
		eta := cs.Pos.Dist(oc.Pos)
		if target == nil || eta < bestETA {
			target, bestETA = oc, eta
		}
	}
	if target == nil {
		return false
	}

	// Send the strongest member who can march; the boss stays put.
	var envoy *world.Character
	for _, m := range e.W.MembersOf(cs) {
		if m.ID == boss.ID || m.IsMoving() || m.IsIncapacitated() || m.AliveSoldiers() == 0 {
			continue
		}
		if envoy == nil || m.Power() > envoy.Power() {
			envoy = m
		}
	}
	if envoy == nil {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss, TargetCastle: target.ID, TargetCharacter: envoy.ID}
	return e.run(ctx, action.Reinforce{}, args)
}
