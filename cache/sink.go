package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Snapshot and event key prefixes shared with the API layer.
const (
	SnapshotPrefix = "snapshot:"
	RankingPrefix  = "ranking:"
	EventChannel   = "events"
)

// Sink publishes simulation output into the cache: events fan out over
// pub/sub, snapshots land in the KV store, rankings in ZSets. Publish
// failures are logged and swallowed; the loop never stalls on observers.
type Sink struct {
	C   Cache
	PS  PubSub
	Log *zap.Logger
}

// NewSink wires a sink. A nil logger is replaced with a no-op.
func NewSink(c Cache, ps PubSub, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{C: c, PS: ps, Log: log}
}

// envelope is the wire form of one published event.
type envelope struct {
	Topic   string      `json:"topic"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload"`
}

func (s *Sink) PublishEvent(topic string, payload any) {
	raw, err := json.Marshal(envelope{Topic: topic, Time: time.Now(), Payload: payload})
	if err != nil {
		s.Log.Warn("event marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := s.PS.Publish(context.Background(), EventChannel, string(raw)); err != nil {
		s.Log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *Sink) StoreSnapshot(key string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.Log.Warn("snapshot marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.C.Set(context.Background(), SnapshotPrefix+key, string(raw), 0); err != nil {
		s.Log.Warn("snapshot store failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Sink) UpdateRanking(name string, scores map[string]float64) {
	ctx := context.Background()
	key := RankingPrefix + name
	for member, score := range scores {
		if err := s.C.ZAdd(ctx, key, score, member); err != nil {
			s.Log.Warn("ranking update failed",
				zap.String("board", name), zap.String("member", member), zap.Error(err))
			return
		}
	}
}

// Snapshot reads a stored snapshot back as raw JSON.
func Snapshot(ctx context.Context, c Cache, key string) (json.RawMessage, error) {
	raw, err := c.Get(ctx, SnapshotPrefix+key)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// RankingEntry is one scoreboard line.
type RankingEntry struct {
	Rank    int     `json:"rank"`
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// Ranking reads the top entries of a board, highest first.
func Ranking(ctx context.Context, c Cache, name string, limit int64) ([]RankingEntry, error) {
	key := RankingPrefix + name
	members, err := c.ZRevRange(ctx, key, 0, limit-1)
	if err != nil {
		return nil, err
	}
	out := make([]RankingEntry, 0, len(members))
	for i, m := range members {
		score, err := c.ZScore(ctx, key, m)
		if err != nil {
			return nil, fmt.Errorf("ranking %s: %w", name, err)
		}
		out = append(out, RankingEntry{Rank: i + 1, Subject: m, Score: score})
	}
	return out, nil
}
