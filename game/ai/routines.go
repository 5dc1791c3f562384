package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/action"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// Engine runs the behavioral routines for AI-controlled characters. It
// mutates the world only through the action framework, so every move an
// AI makes pays the same costs a player would.
type Engine struct {
	W   *world.World
	Log *zap.Logger
}

// NewEngine builds an AI engine over a world.
func NewEngine(w *world.World, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{W: w, Log: log}
}

// run executes an action if its gate passes. Returns true when the turn
// was spent, whatever the outcome.
func (e *Engine) run(ctx context.Context, act action.Action, args *action.Args) bool {
	if !action.CanDo(act, args) {
		return false
	}
	outcome, err := act.Do(ctx, args)
	if err != nil {
		e.Log.Warn("ai action failed",
			zap.String("action", act.Name()),
			zap.String("actor", args.Actor.Name),
			zap.Error(err))
		return false
	}
	e.Log.Debug("ai action",
		zap.String("action", act.Name()),
		zap.String("actor", args.Actor.Name),
		zap.Int("outcome", int(outcome)))
	return true
}

// RefreshObjectives re-rolls every country and castle objective. Called
// at quarter start.
func (e *Engine) RefreshObjectives() {
	for _, cn := range e.W.Countries() {
		if cn.Fallen() {
			continue
		}
		cn.Objective = ChooseCountryObjective(e.W, cn)
		cn.QuarterDone = true
	}
	for _, cs := range e.W.Castles() {
		cs.Objective = ChooseCastleObjective(e.W, cs)
		cs.QuarterDone = true
	}
}

// PersonalTurn spends one ready personal action for a garrisoned
// character: betrayal temptation first, then the boss's personnel
// duties, then economic work steered by the castle objective.
func (e *Engine) PersonalTurn(ctx context.Context, ch *world.Character) {
	cs := e.W.Castle(ch.CastleID)
	if cs == nil || ch.IsMoving() || ch.IsIncapacitated() {
		return
	}
	args := func() *action.Args { return &action.Args{W: e.W, Actor: ch} }

	if e.betrayalPersonal(ctx, ch, cs) {
		return
	}
	if cs.BossID == ch.ID {
		if e.distributeBonus(ctx, ch, cs) {
			return
		}
		if e.hireVassal(ctx, ch, cs) {
			return
		}
	}
	e.economicWork(ctx, ch, cs, args)
}

// StrategyTurn spends one ready strategy action for a castle boss.
// Priority: betrayal, defence of self and friends, personnel repair,
// diplomacy, then the castle objective's offensive or logistic move.
func (e *Engine) StrategyTurn(ctx context.Context, boss *world.Character) {
	cs := e.W.Castle(boss.CastleID)
	if cs == nil || cs.BossID != boss.ID || boss.IsMoving() {
		return
	}

	if e.betrayalStrategy(ctx, boss, cs) {
		return
	}
	if e.defendOwn(ctx, boss, cs) {
		return
	}
	if e.defendFriends(ctx, boss, cs) {
		return
	}
	if e.fireOnDeficit(ctx, boss, cs) {
		return
	}
	if e.rebalanceGarrisons(ctx, boss, cs) {
		return
	}
	if e.W.IsRuler(boss) && e.diplomacy(ctx, boss) {
		return
	}
	e.castleObjectiveMove(ctx, boss, cs)
}

// betrayalPersonal rolls the loyalty/ambition temptation: a boss may
// rebel, anyone else may resign.
func (e *Engine) betrayalPersonal(ctx context.Context, ch *world.Character, cs *world.Castle) bool {
	if e.W.IsRuler(ch) || ch.Loyalty >= params.LowLoyaltyThreshold {
		return false
	}
	p := (params.BetrayalLoyaltyPivot - float64(ch.Loyalty) +
		float64(ch.Ambition)/params.BetrayalAmbitionDiv) * params.BetrayalScale
	if !e.W.Dice.Chance(p) {
		return false
	}
	args := &action.Args{W: e.W, Actor: ch}
	if cs.BossID == ch.ID {
		return e.run(ctx, action.Rebel{}, args)
	}
	return e.run(ctx, action.Resign{}, args)
}

// betrayalStrategy is the boss-level temptation: independence for the
// ambitious, a coup for the truly hungry.
func (e *Engine) betrayalStrategy(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if e.W.IsRuler(boss) || boss.Loyalty >= params.LowLoyaltyThreshold {
		return false
	}
	p := (params.BetrayalLoyaltyPivot - float64(boss.Loyalty) +
		float64(boss.Ambition)/params.BetrayalAmbitionDiv) * params.BetrayalScale
	if !e.W.Dice.Chance(p) {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss}
	if boss.Ambition >= 80 {
		if e.run(ctx, action.Seize{}, args) {
			return true
		}
	}
	return e.run(ctx, action.BecomeIndependent{}, args)
}

// distributeBonus tops up the most restless vassal within the boss's
// budget. Bosses with low loyalty elsewhere in the country come first.
func (e *Engine) distributeBonus(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	var target *world.Character
	for _, m := range e.W.MembersOf(cs) {
		if m.ID == boss.ID || m.Loyalty >= params.LowLoyaltyThreshold {
			continue
		}
		if target == nil || m.Loyalty < target.Loyalty {
			target = m
		}
	}
	if target == nil {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss, TargetCharacter: target.ID}
	return e.run(ctx, action.GrantBonus{}, args)
}

// hireVassal recruits when the garrison runs thin.
func (e *Engine) hireVassal(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if len(cs.MemberIDs) >= params.CastleMaxMembers/2 {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss}
	return e.run(ctx, action.HireVassal{}, args)
}

// fireOnDeficit dismisses the weakest members while the treasury stays
// underwater, never more than a few at a time.
func (e *Engine) fireOnDeficit(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if cs.Gold > params.DeficitGoldFloor {
		return false
	}
	fired := 0
	for fired < params.FireVassalMax {
		var weakest *world.Character
		for _, m := range e.W.MembersOf(cs) {
			if m.ID == boss.ID || m.IsMoving() {
				continue
			}
			if weakest == nil || m.Power() < weakest.Power() {
				weakest = m
			}
		}
		if weakest == nil {
			break
		}
		args := &action.Args{W: e.W, Actor: boss, TargetCharacter: weakest.ID}
		if !e.run(ctx, action.FireVassal{}, args) {
			break
		}
		fired++
	}
	return fired > 0
}

// rebalanceGarrisons moves a spare member from this safe castle to the
// closest endangered friendly castle.
func (e *Engine) rebalanceGarrisons(ctx context.Context, boss *world.Character, cs *world.Castle) bool {
	if !isSafeCastle(e.W, cs) || len(cs.MemberIDs) <= 2 {
		return false
	}
	var dst *world.Castle
	bestDist := 0.0
	for _, oc := range e.W.Castles() {
		if oc.ID == cs.ID || oc.CountryID != cs.CountryID || oc.IsFull() {
			continue
		}
		if !isEndangeredCastle(e.W, oc) {
			continue
		}
		d := cs.Pos.Dist(oc.Pos)
		if dst == nil || d < bestDist {
			dst, bestDist = oc, d
		}
	}
	if dst == nil {
		return false
	}
	var mover *world.Character
	for _, m := range e.W.MembersOf(cs) {
		if m.ID == boss.ID || m.IsMoving() {
			continue
		}
		if mover == nil || m.Power() > mover.Power() {
			mover = m
		}
	}
	if mover == nil {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss, TargetCharacter: mover.ID, TargetCastle: dst.ID}
	return e.run(ctx, action.MoveVassal{}, args)
}

// isEndangeredCastle: flagged in danger, or any neighbor relation at or
// below the hostility floor.
func isEndangeredCastle(w *world.World, cs *world.Castle) bool {
	if cs.Danger {
		return true
	}
	for _, nid := range cs.NeighborIDs {
		nc := w.Castle(nid)
		if nc == nil || nc.CountryID == cs.CountryID {
			continue
		}
		if w.Relation(cs.CountryID, nc.CountryID) <= params.DangerRelationMax {
			return true
		}
	}
	return false
}

// diplomacy runs the ruler's foreign policy: propose an alliance when
// the odds look good, otherwise warm up the most promising neighbor.
func (e *Engine) diplomacy(ctx context.Context, ruler *world.Character) bool {
	cn := e.W.CountryOf(ruler)
	if cn == nil || cn.AllyCount() >= params.AllianceMaxPartners {
		return false
	}

	var bestAlly *world.Country
	bestP := 0.0
	var bestWarm *world.Country
	warmRel := 0.0
	for _, other := range e.W.Countries() {
		if other.ID == cn.ID || other.Fallen() || cn.IsAlly(other.ID) {
			continue
		}
		p := action.AllianceAcceptProbability(e.W, cn, other)
		if p > bestP {
			bestAlly, bestP = other, p
		}
		rel := e.W.Relation(cn.ID, other.ID)
		if hate(e.W, other.ID, cn.ID) == 0 && (bestWarm == nil || rel > warmRel) {
			bestWarm, warmRel = other, rel
		}
	}

	if bestAlly != nil && bestP >= 0.5 {
		args := &action.Args{W: e.W, Actor: ruler, TargetCountry: bestAlly.ID}
		if e.run(ctx, action.FormAlliance{}, args) {
			return true
		}
	}
	if bestWarm != nil && warmRel < params.AllyThreshold {
		args := &action.Args{W: e.W, Actor: ruler, TargetCountry: bestWarm.ID}
		return e.run(ctx, action.Goodwill{}, args)
	}
	return false
}

// castleObjectiveMove turns the quarterly castle objective into a
// strategy action: a deployment, a gold haul, or nothing this turn.
func (e *Engine) castleObjectiveMove(ctx context.Context, boss *world.Character, cs *world.Castle) {
	switch cs.Objective.Kind {
	case world.CastleObjectiveAttack:
		e.deploy(ctx, boss, cs, cs.Objective.Target)
	case world.CastleObjectiveTransport:
		if cs.Objective.Target != 0 {
			args := &action.Args{W: e.W, Actor: boss, TargetCastle: cs.Objective.Target}
			e.run(ctx, action.Transport{}, args)
		}
	}
}

// deploy launches an attack on the objective target when the numbers
// and the dice agree.
func (e *Engine) deploy(ctx context.Context, boss *world.Character, cs *world.Castle, targetID world.ID) bool {
	target := e.W.Castle(targetID)
	if target == nil || target.CountryID == cs.CountryID {
		return false
	}
	h := hate(e.W, cs.CountryID, target.CountryID)
	if h <= 0 {
		return false
	}
	ratio := powerRatio(e.W.CastlePower(cs), e.W.CastlePower(target))
	if ratio < params.DeployPowerRatioMin {
		return false
	}
	if !e.W.Dice.Chance(params.DeployBaseChance + h*(1-params.DeployBaseChance)) {
		return false
	}

	// March the strongest member who can be spared; the boss goes last.
	var strongest *world.Character
	for _, m := range e.W.MembersOf(cs) {
		if m.IsMoving() || m.IsIncapacitated() || m.AliveSoldiers() == 0 {
			continue
		}
		if m.ID == boss.ID && len(cs.MemberIDs) > 1 {
			continue
		}
		if strongest == nil || m.Power() > strongest.Power() {
			strongest = m
		}
	}
	if strongest == nil {
		return false
	}
	args := &action.Args{W: e.W, Actor: boss, TargetCastle: targetID, TargetCharacter: strongest.ID}
	return e.run(ctx, action.Deploy{}, args)
}

// economicWork is the personal-phase fallback: work the castle objective
// with whatever the character affords.
func (e *Engine) economicWork(ctx context.Context, ch *world.Character, cs *world.Castle, args func() *action.Args) {
	ordered := e.workOrder(ch, cs)
	for _, act := range ordered {
		if e.run(ctx, act, args()) {
			return
		}
	}
}

// workOrder ranks economic actions by the castle objective, with
// sensible fallbacks so a rich character never idles.
func (e *Engine) workOrder(ch *world.Character, cs *world.Castle) []action.Action {
	switch cs.Objective.Kind {
	case world.CastleObjectiveTrain:
		return []action.Action{action.TrainSoldiers{}, action.HireSoldier{}, action.Develop{}}
	case world.CastleObjectiveFortify:
		return []action.Action{action.Fortify{}, action.Develop{}, action.TrainSoldiers{}}
	case world.CastleObjectiveAttack:
		return []action.Action{action.HireSoldier{}, action.TrainSoldiers{}, action.Fortify{}}
	case world.CastleObjectiveTransport:
		return []action.Action{action.Develop{}, action.Invest{}, action.TrainSoldiers{}}
	}
	return []action.Action{action.Develop{}, action.Invest{}, action.Fortify{}, action.HireSoldier{}}
}
