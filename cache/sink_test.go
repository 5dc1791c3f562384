package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurohane/tenka/config"
)

func newTestSink(t *testing.T) (*Sink, Cache, PubSub) {
	cfg := config.CacheConfig{} // empty RedisAddr → in-process
	c, err := NewCache(cfg)
	require.NoError(t, err)
	ps, err := NewPubSub(cfg)
	require.NoError(t, err)
	return NewSink(c, ps, nil), c, ps
}

func TestSinkPublishesEnvelopes(t *testing.T) {
	s, _, ps := newTestSink(t)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, EventChannel)
	require.NoError(t, err)
	defer cancel()

	s.PublishEvent("sim.day", map[string]any{"day": 3})

	select {
	case msg := <-ch:
		var env struct {
			Topic   string          `json:"topic"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "sim.day", env.Topic)
		assert.JSONEq(t, `{"day":3}`, string(env.Payload))
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no event received")
	}
}

func TestSinkStoresSnapshots(t *testing.T) {
	s, c, _ := newTestSink(t)

	s.StoreSnapshot("world:day", map[string]any{"date": "0001-01-01"})

	raw, err := Snapshot(context.Background(), c, "world:day")
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"0001-01-01"}`, string(raw))
}

func TestSinkRankingRoundTrip(t *testing.T) {
	s, c, _ := newTestSink(t)

	s.UpdateRanking("country:power", map[string]float64{
		"kaga": 900, "mino": 300, "asuka": 600,
	})

	entries, err := Ranking(context.Background(), c, "country:power", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "kaga", entries[0].Subject)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "asuka", entries[1].Subject)
	assert.Equal(t, "mino", entries[2].Subject)
	assert.Equal(t, 300.0, entries[2].Score)
}
