package sim

import (
	"context"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/dice"
	"github.com/kurohane/tenka/game/params"
	"github.com/kurohane/tenka/game/world"
)

// DaySummary is the per-day snapshot published for observers.
type DaySummary struct {
	Date      string `json:"date"`
	Day       int64  `json:"day"`
	Countries int    `json:"countries"`
	Castles   int    `json:"castles"`
	Forces    int    `json:"forces"`
	Battles   int    `json:"battles"`
}

// Step advances the world exactly one day.
func (s *Sim) Step(ctx context.Context) {
	s.day++
	newMonth, newYear := s.W.Date.Advance()

	if newMonth {
		s.monthStart()
	}
	if newMonth && s.W.Date.IsQuarterStart() {
		s.quarterStart()
	}

	for _, ch := range s.W.Characters() {
		ch.RegenerateSoldiers()
		ch.AdvanceGauges()
		if ch.IncapacitatedDays > 0 {
			ch.IncapacitatedDays--
		}
	}

	s.classifyDanger()
	battles := s.moveForces(ctx)

	s.dispatch(ctx)

	if newYear {
		s.yearStart()
	}

	summary := DaySummary{
		Date:      s.W.Date.String(),
		Day:       s.day,
		Countries: len(s.W.Countries()),
		Castles:   len(s.W.Castles()),
		Forces:    len(s.W.Forces()),
		Battles:   battles,
	}
	s.Sink.StoreSnapshot("world:day", summary)
	s.Sink.StoreSnapshot("world:full", BuildWorldView(s.W))
	s.Sink.PublishEvent("sim.day", summary)
}

// monthStart applies income, wages, loyalty and relation decay, and lets
// battle fatigue fade.
func (s *Sim) monthStart() {
	for _, cs := range s.W.Castles() {
		gold, food := s.W.CastleIncome(cs)
		cs.Gold += int(gold)
		starving := food <= params.StarvationFoodLevel
		for _, m := range s.W.MembersOf(cs) {
			m.Starving = starving
			m.Gold += params.MonthlyWageGold
			m.ActionPoints += params.MonthlyActionPoints
			if m.ActionPoints > params.ActionPointsMax {
				m.ActionPoints = params.ActionPointsMax
			}
			if !s.W.IsRuler(m) {
				m.AddLoyalty(-params.LoyaltyMonthlyDecay)
			}
		}
	}

	s.decayRelations()

	for _, ch := range s.W.Characters() {
		if ch.ConsecutiveBattles > 0 {
			ch.ConsecutiveBattles--
		}
	}
}

// decayRelations drifts every non-ally relation toward neutral.
func (s *Sim) decayRelations() {
	for _, cn := range s.W.Countries() {
		for other, v := range cn.Relations {
			if other <= cn.ID || v >= params.AllySentinel {
				continue
			}
			switch {
			case v > params.RelationNeutral:
				v -= params.RelationDecay
				if v < params.RelationNeutral {
					v = params.RelationNeutral
				}
			case v < params.RelationNeutral:
				v += params.RelationDecay
				if v > params.RelationNeutral {
					v = params.RelationNeutral
				}
			default:
				continue
			}
			s.W.SetRelation(cn.ID, other, v)
		}
	}
}

// quarterStart clears the quarterly flags and re-rolls objectives.
func (s *Sim) quarterStart() {
	for _, cn := range s.W.Countries() {
		cn.QuarterDone = false
	}
	for _, cs := range s.W.Castles() {
		cs.QuarterDone = false
	}
	s.AI.RefreshObjectives()
	s.Log.Info("objectives refreshed", zap.String("date", s.W.Date.String()))
}

// yearStart recomputes the country power ranking and publishes it.
func (s *Sim) yearStart() {
	type entry struct {
		cn    *world.Country
		power float64
	}
	var entries []entry
	scores := make(map[string]float64)
	for _, cn := range s.W.Countries() {
		if cn.Fallen() {
			continue
		}
		p := s.W.CountryPower(cn)
		entries = append(entries, entry{cn, p})
		scores[cn.Name] = p
	}
	// Highest power ranks first.
	for i := range entries {
		rank := 1
		for j := range entries {
			if entries[j].power > entries[i].power {
				rank++
			}
		}
		entries[i].cn.PowerRank = rank
	}
	s.Sink.UpdateRanking("country:power", scores)
	s.Log.Info("yearly ranking computed", zap.Int("countries", len(entries)))
}

// classifyDanger marks castles with hostile forces heading in or prowling
// nearby.
func (s *Sim) classifyDanger() {
	for _, cs := range s.W.Castles() {
		cs.Danger = false
		for _, f := range s.W.Forces() {
			if f.CountryID == cs.CountryID || s.isAllied(f.CountryID, cs.CountryID) {
				continue
			}
			heading := f.Dest.Kind == world.DestCastle && f.Dest.CastleID == cs.ID
			if heading || f.Pos.Dist(cs.Pos) <= params.DangerRange {
				cs.Danger = true
				break
			}
		}
	}
}

func (s *Sim) isAllied(a, b world.ID) bool {
	cn := s.W.Country(a)
	return cn != nil && cn.IsAlly(b)
}

// moveForces advances every in-transit force and resolves arrivals.
// Returns how many battles were fought.
func (s *Sim) moveForces(ctx context.Context) int {
	battles := 0
	for _, f := range s.W.Forces() {
		// The force may have been destroyed by an earlier arrival.
		if s.W.Force(f.ID) == nil {
			continue
		}
		if f.MoveDaysLeft > 0 {
			f.MoveDaysLeft--
			continue
		}

		dest, ok := s.destPos(f)
		if !ok {
			// Destination vanished; head home.
			f.Dest = world.CastleDest(f.HomeCastle)
			continue
		}
		if f.Pos != dest {
			f.Pos = f.Pos.StepToward(dest)
			f.MoveDaysLeft = world.MoveCost(s.W.Map.TerrainAt(f.Pos))
		}
		if f.Pos == dest {
			if s.arrive(ctx, f) {
				battles++
			}
		}
	}
	return battles
}

// destPos resolves a force's destination to a map position.
func (s *Sim) destPos(f *world.Force) (world.Pos, bool) {
	switch f.Dest.Kind {
	case world.DestCastle:
		if cs := s.W.Castle(f.Dest.CastleID); cs != nil {
			return cs.Pos, true
		}
	case world.DestTile:
		return f.Dest.Pos, true
	case world.DestForce:
		if other := s.W.Force(f.Dest.ForceID); other != nil {
			return other.Pos, true
		}
	}
	return world.Pos{}, false
}

// dispatch runs one action for every ready actor, in shuffled order so
// simultaneous readiness carries no systemic bias.
func (s *Sim) dispatch(ctx context.Context) {
	type turn struct {
		ch       *world.Character
		strategy bool
	}
	var ready []turn
	for _, ch := range s.W.Characters() {
		if ch.IsFree() || ch.IsMoving() || ch.IsIncapacitated() {
			continue
		}
		cs := s.W.Castle(ch.CastleID)
		if cs == nil {
			continue
		}
		if cs.BossID == ch.ID && ch.StrategyReady() {
			ready = append(ready, turn{ch, true})
		}
		if ch.PersonalReady() {
			ready = append(ready, turn{ch, false})
		}
	}
	dice.Shuffle(s.W.Dice, ready)

	for _, t := range ready {
		if t.ch.IsMoving() || t.ch.IsIncapacitated() || t.ch.IsFree() {
			continue // an earlier turn changed their situation
		}
		if s.providerFor(t.ch.ID) != nil {
			// Human-controlled: the host acts through the API; announce
			// readiness and leave the gauge full.
			s.Sink.PublishEvent("turn.ready", map[string]any{
				"character_id": int64(t.ch.ID),
				"strategy":     t.strategy,
			})
			continue
		}
		if t.strategy {
			s.AI.StrategyTurn(ctx, t.ch)
			t.ch.StrategyGauge = 0
		} else {
			s.AI.PersonalTurn(ctx, t.ch)
			t.ch.PersonalGauge = 0
		}
	}
}
