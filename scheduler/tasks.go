package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/sim"
)

// RegisterAutoSave persists the world on a fixed interval. The save runs
// on the loop goroutine so it never races a day step.
func (s *Scheduler) RegisterAutoSave(sm *sim.Sim, store *model.Store, interval time.Duration) {
	s.AddTicker("autosave", interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := sm.Do(ctx, func(context.Context) error {
			return store.Save(sm.W)
		})
		if err != nil {
			s.logger.Error("autosave failed", zap.Error(err))
			return
		}
		s.logger.Info("world saved", zap.Int64("day", sm.Day()))
	})
}

// RegisterRankingSync mirrors cached scoreboards into the database so
// rankings survive a cold cache.
func (s *Scheduler) RegisterRankingSync(c cache.Cache, store *model.Store, boards []string, interval time.Duration) {
	s.AddTicker("ranking-sync", interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, board := range boards {
			entries, err := cache.Ranking(ctx, c, board, 1000)
			if err != nil || len(entries) == 0 {
				continue
			}
			scores := make(map[string]float64, len(entries))
			for _, e := range entries {
				scores[e.Subject] = e.Score
			}
			if err := store.ReplaceRanking(board, scores); err != nil {
				s.logger.Error("ranking sync failed", zap.String("board", board), zap.Error(err))
			}
		}
	})
}
