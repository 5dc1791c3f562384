package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func quietScheduler() *Scheduler { return New(zap.NewNop()) }

func TestAddTickerFires(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count int32
	s.AddTicker("autosave", 20*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestAddTickerReplacesByName(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("autosave", 20*time.Millisecond, func() { atomic.AddInt32(&count1, 1) })
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("autosave", 20*time.Millisecond, func() { atomic.AddInt32(&count2, 1) })
	time.Sleep(80 * time.Millisecond)

	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "old ticker stops after replacement")
	assert.Positive(t, atomic.LoadInt32(&count2))
}

func TestAddDelayFiresOnce(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count int32
	s.AddDelay("siege-resolve", 30*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestAddDelayReplacesPending(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count int32
	s.AddDelay("siege-resolve", 500*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	s.AddDelay("siege-resolve", 30*time.Millisecond, func() { atomic.AddInt32(&count, 10) })
	time.Sleep(100 * time.Millisecond)

	// Only the replacement fires.
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestRemoveStopsTicker(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count int32
	s.AddTicker("ranking-sync", 20*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Remove("ranking-sync")
	snap := atomic.LoadInt32(&count)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&count))
}

func TestRemoveCancelsDelay(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var count int32
	s.AddDelay("siege-resolve", 100*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	s.Remove("siege-resolve")
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&count))
}

func TestRemoveUnknownName(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()
	s.Remove("never-registered")
}

func TestStopHaltsEverything(t *testing.T) {
	s := quietScheduler()

	var c1, c2 int32
	s.AddTicker("autosave", 20*time.Millisecond, func() { atomic.AddInt32(&c1, 1) })
	s.AddTicker("ranking-sync", 20*time.Millisecond, func() { atomic.AddInt32(&c2, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	// Let the task goroutines observe the stop before snapping counts.
	time.Sleep(30 * time.Millisecond)
	snap1, snap2 := atomic.LoadInt32(&c1), atomic.LoadInt32(&c2)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&c1))
	assert.Equal(t, snap2, atomic.LoadInt32(&c2))
}

func TestStopTwice(t *testing.T) {
	s := quietScheduler()
	s.Stop()
	s.Stop()
}

func TestListTickers(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	require.Empty(t, s.ListTickers())
	s.AddTicker("autosave", time.Hour, func() {})
	s.AddTicker("ranking-sync", time.Hour, func() {})
	names := s.ListTickers()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "autosave")
	assert.Contains(t, names, "ranking-sync")
}

func TestListTickersAfterRemove(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	s.AddTicker("autosave", time.Hour, func() {})
	s.AddTicker("ranking-sync", time.Hour, func() {})
	s.Remove("autosave")
	assert.Equal(t, []string{"ranking-sync"}, s.ListTickers())
}

func TestTickerSurvivesPanic(t *testing.T) {
	s := quietScheduler()
	defer s.Stop()

	var fired int32
	s.AddTicker("flaky", 20*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		panic("boom")
	})
	time.Sleep(100 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fired), int32(2), "ticker keeps firing after a panic")
}
