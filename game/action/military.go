package action

import (
	"context"

	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// Deploy sends a garrisoned character (the target, defaulting to the
// actor) marching on an enemy castle as a new force.
type Deploy struct{}

func (Deploy) Name() string { return "deploy" }
func (Deploy) Kind() Kind   { return KindStrategy }

func (Deploy) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostDeployAP}
}

func (d Deploy) deployee(a *Args) *world.Character {
	if a.TargetCharacter != 0 {
		return a.W.Character(a.TargetCharacter)
	}
	return a.Actor
}

func (d Deploy) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	target := a.W.Castle(a.TargetCastle)
	if cs == nil || target == nil {
		return false
	}
	if target.CountryID == cs.CountryID {
		return false
	}
	ch := d.deployee(a)
	if ch == nil || ch.IsMoving() || ch.IsIncapacitated() {
		return false
	}
	if ch.CastleID != cs.ID {
		return false
	}
	return ch.AliveSoldiers() > 0
}

func (d Deploy) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(d, a); err != nil {
		return OutcomeNothing, err
	}
	ch := d.deployee(a)
	f := a.W.SpawnForce(ch, world.CastleDest(a.TargetCastle), world.ForceModeNormal)
	if f == nil {
		return OutcomeNothing, nil
	}
	return OutcomeDone, nil
}

// Reinforce marches a character toward a friendly castle or force under
// threat. Reinforcement-mode forces disband into the destination on
// arrival instead of besieging it.
type Reinforce struct{}

func (Reinforce) Name() string { return "reinforce" }
func (Reinforce) Kind() Kind   { return KindStrategy }

func (Reinforce) Cost(a *Args) Cost {
	return Cost{ActionPoints: params.CostDeployAP}
}

func (r Reinforce) deployee(a *Args) *world.Character {
	if a.TargetCharacter != 0 {
		return a.W.Character(a.TargetCharacter)
	}
	return a.Actor
}

func (r Reinforce) CanDoCore(a *Args) bool {
	cs := a.ActorCastle()
	target := a.W.Castle(a.TargetCastle)
	if cs == nil || target == nil || target.ID == cs.ID {
		return false
	}
	if target.CountryID != cs.CountryID && !allied(a.W, target.CountryID, cs.CountryID) {
		return false
	}
	ch := r.deployee(a)
	if ch == nil || ch.CastleID != cs.ID || ch.IsMoving() || ch.IsIncapacitated() {
		return false
	}
	return ch.AliveSoldiers() > 0
}

func (r Reinforce) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(r, a); err != nil {
		return OutcomeNothing, err
	}
	ch := r.deployee(a)
	f := a.W.SpawnForce(ch, world.CastleDest(a.TargetCastle), world.ForceModeReinforcement)
	if f == nil {
		return OutcomeNothing, nil
	}
	f.OriginalTarget = a.TargetCastle
	return OutcomeDone, nil
}

// allied reports whether two country ids are bound by an alliance.
func allied(w *world.World, a, b world.ID) bool {
	cn := w.Country(a)
	return cn != nil && cn.IsAlly(b)
}

// Recall turns a marching force around toward its home castle.
type Recall struct{}

func (Recall) Name() string { return "recall" }
func (Recall) Kind() Kind   { return KindStrategy }

func (Recall) Cost(a *Args) Cost {
	return Cost{} // recalling costs nothing; the march already did
}

func (Recall) CanDoCore(a *Args) bool {
	target := a.W.Character(a.TargetCharacter)
	if target == nil || !target.IsMoving() {
		return false
	}
	f := a.W.Force(target.ForceID)
	if f == nil {
		return false
	}
	cs := a.ActorCastle()
	return cs != nil && f.CountryID == cs.CountryID
}

func (rc Recall) Do(ctx context.Context, a *Args) (Outcome, error) {
	if _, err := begin(rc, a); err != nil {
		return OutcomeNothing, err
	}
	target := a.W.Character(a.TargetCharacter)
	f := a.W.Force(target.ForceID)
	f.Dest = world.CastleDest(f.HomeCastle)
	f.Mode = world.ForceModeNormal
	return OutcomeDone, nil
}
