package battle

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
)

// Config configures an Instance.
type Config struct {
	Attacker *Combatant
	Defender *Combatant
	Siege    bool // attacker storming a castle tile

	Logger *zap.Logger
	Dice   *dice.Roller // injectable for testing
	// Pace inserts a delay between ticks for spectated battles.
	// Zero runs the battle flat out.
	Pace time.Duration
}

// Result is the outcome of one resolved battle.
type Result struct {
	Winner *Combatant
	Loser  *Combatant

	AttackerWon  bool
	LoserRetreat bool
	Siege        bool
	Ticks        int
	// PermanentDead counts soldiers lost for good across both sides.
	PermanentDead int
}

// Instance runs one battle to completion. Create with New, consume
// Events from another goroutine, then call Run.
type Instance struct {
	ID string

	attacker *Combatant
	defender *Combatant
	siege    bool

	tick   int
	logger *zap.Logger
	dice   *dice.Roller
	pace   time.Duration

	events chan Event
}

// New builds a battle instance from a config.
func New(cfg Config) *Instance {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Dice == nil {
		cfg.Dice = dice.New(time.Now().UnixNano())
	}
	return &Instance{
		ID:       uuid.NewString(),
		attacker: cfg.Attacker,
		defender: cfg.Defender,
		siege:    cfg.Siege,
		logger:   cfg.Logger,
		dice:     cfg.Dice,
		pace:     cfg.Pace,
		events:   make(chan Event, 64),
	}
}

// Events returns the event stream. Closed when Run finishes.
func (in *Instance) Events() <-chan Event { return in.events }

// Run executes the battle loop and returns the result. Blocks until the
// battle ends or ctx is cancelled; on cancellation the attacker is
// treated as withdrawing.
func (in *Instance) Run(ctx context.Context) *Result {
	defer close(in.events)

	in.emit(EventStart{
		BattleID: in.ID,
		Terrain:  in.attacker.Terrain.String(),
		Siege:    in.siege,
		Attacker: snapshotSide(in.attacker),
		Defender: snapshotSide(in.defender),
	})

	for in.attacker.Alive() && in.defender.Alive() {
		in.tick++
		if in.tick > params.MaxBattleTicks {
			// Mutual regeneration can stall a fight forever; past the
			// cap the fresher side holds the field.
			in.logger.Warn("battle hit tick cap", zap.String("battle", in.ID))
			return in.finish(in.attacker.HPFraction() > in.defender.HPFraction(), false)
		}

		ta, err := in.selectTactic(ctx, in.attacker, in.defender)
		if err != nil {
			return in.finish(false, true)
		}
		td, err := in.selectTactic(ctx, in.defender, in.attacker)
		if err != nil {
			return in.finish(true, true)
		}

		ta = applyTactic(in.attacker, ta)
		if ta == decision.TacticRetreat {
			return in.finish(false, true)
		}
		td = applyTactic(in.defender, td)
		if td == decision.TacticRetreat {
			return in.finish(true, true)
		}

		damagePhase(in.attacker, in.defender, in.tick, in.dice)

		advanceGauges(in.attacker, in.defender)
		advanceGauges(in.defender, in.attacker)
		in.attacker.reserveRegen()
		in.defender.reserveRegen()
		in.attacker.CompactRows()
		in.defender.CompactRows()

		in.emit(EventTick{
			BattleID:       in.ID,
			Tick:           in.tick,
			AttackerTactic: ta.String(),
			DefenderTactic: td.String(),
			Attacker:       snapshotSide(in.attacker),
			Defender:       snapshotSide(in.defender),
		})

		if in.pace > 0 {
			select {
			case <-ctx.Done():
				return in.finish(false, true)
			case <-time.After(in.pace):
			}
		}
	}

	return in.finish(in.attacker.Alive(), false)
}

// selectTactic asks the side's provider, or falls back to the formula.
func (in *Instance) selectTactic(ctx context.Context, own, enemy *Combatant) (decision.Tactic, error) {
	if own.Provider == nil {
		return chooseTactic(own, enemy), nil
	}
	return own.Provider.SelectTactic(ctx, own.view(in.ID, in.tick, enemy))
}

// finish runs resolution, recovery and aftermath, emits the end event
// and returns the result.
func (in *Instance) finish(attackerWon, retreat bool) *Result {
	winner, loser := in.defender, in.attacker
	if attackerWon {
		winner, loser = in.attacker, in.defender
	}

	dead := in.attacker.applyPermanentDeaths() + in.defender.applyPermanentDeaths()
	recover(winner, params.RecoveryWinRate)
	recover(loser, params.RecoveryLoseRate)
	aftermath(winner, loser)

	in.logger.Info("battle resolved",
		zap.String("battle", in.ID),
		zap.Int("ticks", in.tick),
		zap.String("winner", winner.Ch.Name),
		zap.Bool("retreat", retreat))

	in.emit(EventEnd{
		BattleID:      in.ID,
		Ticks:         in.tick,
		WinnerID:      int64(winner.Ch.ID),
		LoserID:       int64(loser.Ch.ID),
		LoserRetreat:  retreat,
		AttackerWon:   attackerWon,
		PermanentDead: dead,
	})

	return &Result{
		Winner:        winner,
		Loser:         loser,
		AttackerWon:   attackerWon,
		LoserRetreat:  retreat,
		Siege:         in.siege,
		Ticks:         in.tick,
		PermanentDead: dead,
	}
}

// applyPermanentDeaths empties the slots of soldiers marked dead during
// the fight and returns how many were lost.
func (c *Combatant) applyPermanentDeaths() int {
	n := 0
	for i := range c.Ch.Soldiers {
		if c.dead[i] {
			c.Ch.Soldiers[i].Kill()
			n++
		}
	}
	return n
}

// recover heals survivors after the battle. The rate scales with the
// result and intelligence, fatigue from back-to-back fights cuts it, and
// nobody comes out healthier than they went in.
func recover(c *Combatant, baseRate float64) {
	rate := baseRate + float64(c.Ch.Intelligence)/params.RecoveryIntDiv
	rate *= math.Pow(params.RegenFatigueFactor, float64(c.Ch.ConsecutiveBattles))
	for i := range c.Ch.Soldiers {
		s := &c.Ch.Soldiers[i]
		if s.Empty {
			continue
		}
		healed := minf(s.HP+s.MaxHP()*rate, c.preHP[i])
		if healed > s.HP {
			s.SetHP(healed)
		}
	}
	if c.Ch.ConsecutiveBattles < params.ConsecutiveBattleCap {
		c.Ch.ConsecutiveBattles++
	}
}

// aftermath moves prestige from loser to winner and pays contribution to
// both sides.
func aftermath(winner, loser *Combatant) {
	taken := int(float64(loser.Ch.Prestige) * params.PrestigeTransferFrac)
	loser.Ch.Prestige -= taken
	winner.Ch.Prestige += taken + params.PrestigeFlatBonus
	winner.Ch.Contribution += params.ContributionWinner
	loser.Ch.Contribution += params.ContributionLoser
}

// emit never blocks the battle loop on a slow consumer.
func (in *Instance) emit(e Event) {
	select {
	case in.events <- e:
	default:
	}
}
