package battle

import (
	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/params"
)

// chooseTactic is the formula-driven tactic pick for an AI side.
//
// Retreat only when every gate holds: the gauge is full, the front row is
// critical, the side is losing on aggregate HP, no fresh row remains, and
// the side is not a loyal defender of its country's last stronghold.
func chooseTactic(own, enemy *Combatant) decision.Tactic {
	if own.RetreatGauge >= params.RetreatGaugeMax &&
		own.FrontCritical() &&
		own.TotalHP() <= enemy.TotalHP() &&
		!own.healthyRow() &&
		!own.LastStand {
		return decision.TacticRetreat
	}

	if own.FrontCritical() && own.TacticsGauge >= params.TacticSwapCost {
		if own.RowAlive(1) > 0 && own.rowHPFraction(1) > own.rowHPFraction(0) {
			return decision.TacticSwap12
		}
		// Fresh rear but spent mid: rotate the rear forward first.
		if own.RowAlive(2) > 0 && own.rowHPFraction(2) > own.rowHPFraction(1) {
			return decision.TacticSwap23
		}
	}

	if own.TacticsGauge >= params.TacticRestCost &&
		own.HPFraction() < 0.5 && !own.FrontCritical() {
		return decision.TacticRest
	}

	return decision.TacticAttack
}

// applyTactic executes a side's choice. Invalid picks (empty swap row,
// unaffordable gauge cost) degrade to Attack rather than erroring: a
// human can ask for anything, the field decides what happens.
// Returns the tactic actually in effect; TacticRetreat ends the battle.
func applyTactic(own *Combatant, t decision.Tactic) decision.Tactic {
	switch t {
	case decision.TacticSwap12:
		if own.TacticsGauge < params.TacticSwapCost ||
			own.RowAlive(0) == 0 || own.RowAlive(1) == 0 {
			return decision.TacticAttack
		}
		own.TacticsGauge -= params.TacticSwapCost
		own.SwapRows(0, 1)
		return t
	case decision.TacticSwap23:
		if own.TacticsGauge < params.TacticSwapCost ||
			own.RowAlive(1) == 0 || own.RowAlive(2) == 0 {
			return decision.TacticAttack
		}
		own.TacticsGauge -= params.TacticSwapCost
		own.SwapRows(1, 2)
		return t
	case decision.TacticRest:
		if own.TacticsGauge < params.TacticRestCost {
			return decision.TacticAttack
		}
		own.TacticsGauge -= params.TacticRestCost
		own.restAll()
		return t
	case decision.TacticRetreat:
		return t
	}
	return decision.TacticAttack
}
