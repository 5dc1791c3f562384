// Package sim owns the simulation loop. One goroutine advances the world
// one day per step; everything else (API, SSE) observes through published
// snapshots and events, never the live arena.
package sim

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/game/ai"
	"github.com/kurohane/tenka/game/decision"
	"github.com/kurohane/tenka/game/world"
)

// Sink receives what the loop publishes: events for streams, snapshots
// for the API, rankings for the scoreboard.
type Sink interface {
	PublishEvent(topic string, payload any)
	StoreSnapshot(key string, payload any)
	UpdateRanking(name string, scores map[string]float64)
}

// NopSink drops everything. Useful for batch runs and tests.
type NopSink struct{}

func (NopSink) PublishEvent(string, any)               {}
func (NopSink) StoreSnapshot(string, any)              {}
func (NopSink) UpdateRanking(string, map[string]float64) {}

// Config wires a simulation.
type Config struct {
	World  *world.World
	Logger *zap.Logger
	Sink   Sink

	// DayInterval is the real-time pace of one game day; zero means
	// run flat out.
	DayInterval time.Duration
	// BattlePace slows spectated battles down; zero resolves instantly.
	BattlePace time.Duration
}

// Sim drives the world. All mutation happens on the goroutine that calls
// Run (or Step, for tests).
type Sim struct {
	W    *world.World
	AI   *ai.Engine
	Log  *zap.Logger
	Sink Sink

	mu       sync.Mutex
	paused   bool
	interval time.Duration

	battlePace time.Duration
	day        int64 // total days stepped

	providers map[world.ID]decision.Provider
	ops       chan op
}

// op is a host-submitted closure waiting to run on the loop goroutine.
type op struct {
	fn    func(ctx context.Context) error
	reply chan error
}

// New builds a simulation from a config.
func New(cfg Config) *Sim {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	return &Sim{
		W:          cfg.World,
		AI:         ai.NewEngine(cfg.World, cfg.Logger),
		Log:        cfg.Logger,
		Sink:       cfg.Sink,
		interval:   cfg.DayInterval,
		battlePace: cfg.BattlePace,
		providers:  make(map[world.ID]decision.Provider),
		ops:        make(chan op, 32),
	}
}

// Do runs fn on the simulation goroutine between days and returns its
// error. All world mutation from outside the loop goes through here.
func (s *Sim) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	o := op{fn: fn, reply: make(chan error, 1)}
	select {
	case s.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainOps runs every queued host operation.
func (s *Sim) drainOps(ctx context.Context) {
	for {
		select {
		case o := <-s.ops:
			o.reply <- o.fn(ctx)
		default:
			return
		}
	}
}

// Control takes a character away from the AI: their battles route tactic
// choices through the given provider. Passing nil hands control back.
func (s *Sim) Control(id world.ID, p decision.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		delete(s.providers, id)
		return
	}
	s.providers[id] = p
}

func (s *Sim) providerFor(id world.ID) decision.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providers[id]
}

// SetPaused pauses or resumes the loop.
func (s *Sim) SetPaused(p bool) {
	s.mu.Lock()
	s.paused = p
	s.mu.Unlock()
}

// Paused reports the pause flag.
func (s *Sim) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetDayInterval changes the pace; zero runs flat out.
func (s *Sim) SetDayInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

func (s *Sim) dayInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Day returns how many days have been stepped since start.
func (s *Sim) Day() int64 { return s.day }

// Run advances the world until ctx is cancelled. The pause flag is
// polled between days so a pause never splits a day in half.
func (s *Sim) Run(ctx context.Context) {
	s.Log.Info("simulation started", zap.String("date", s.W.Date.String()))
	for {
		if ctx.Err() != nil {
			s.Log.Info("simulation stopped", zap.String("date", s.W.Date.String()))
			return
		}
		if s.Paused() {
			s.drainOps(ctx)
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}

		s.drainOps(ctx)
		s.Step(ctx)

		if iv := s.dayInterval(); iv > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(iv):
			}
		}
	}
}
