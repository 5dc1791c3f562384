package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededStreamsMatch(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float(), b.Float())
	}
}

func TestForkIsIndependent(t *testing.T) {
	a := New(7)
	fork := a.Fork()
	// Draining the fork must not disturb the parent stream.
	b := New(7)
	_ = b.Fork()
	for i := 0; i < 50; i++ {
		fork.Float()
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, b.Intn(100), a.Intn(100))
	}
}

func TestChanceBounds(t *testing.T) {
	r := New(1)
	for i := 0; i < 100; i++ {
		assert.False(t, r.Chance(0))
		assert.False(t, r.Chance(-0.5))
		assert.True(t, r.Chance(1))
		assert.True(t, r.Chance(1.5))
	}
}

func TestChanceFrequency(t *testing.T) {
	r := New(2)
	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if r.Chance(0.3) {
			hits++
		}
	}
	assert.InDelta(t, 0.3, float64(hits)/n, 0.02)
}

func TestBetweenStaysInRange(t *testing.T) {
	r := New(3)
	for i := 0; i < 1000; i++ {
		v := r.Between(-0.2, 0.2)
		assert.GreaterOrEqual(t, v, -0.2)
		assert.Less(t, v, 0.2)
	}
	assert.Equal(t, 5.0, r.Between(5, 5))
	assert.Equal(t, 5.0, r.Between(5, 3))
}

func TestRangeIntInclusive(t *testing.T) {
	r := New(4)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := r.RangeInt(5, 10)
		require.GreaterOrEqual(t, v, 5)
		require.LessOrEqual(t, v, 10)
		seen[v] = true
	}
	assert.Len(t, seen, 6, "all six values reachable")
	assert.Equal(t, 3, r.RangeInt(3, 3))
}

func TestWeightedIndexSkipsNonPositive(t *testing.T) {
	r := New(5)
	for i := 0; i < 200; i++ {
		idx := r.WeightedIndex([]float64{0, -1, 3, 0})
		assert.Equal(t, 2, idx)
	}
}

func TestWeightedIndexNoPositiveWeights(t *testing.T) {
	r := New(6)
	assert.Equal(t, -1, r.WeightedIndex([]float64{0, -2, 0}))
	assert.Equal(t, -1, r.WeightedIndex(nil))
}

func TestWeightedIndexProportions(t *testing.T) {
	r := New(7)
	counts := make([]int, 3)
	const n = 30000
	for i := 0; i < n; i++ {
		counts[r.WeightedIndex([]float64{1, 2, 7})]++
	}
	assert.InDelta(t, 0.1, float64(counts[0])/n, 0.02)
	assert.InDelta(t, 0.2, float64(counts[1])/n, 0.02)
	assert.InDelta(t, 0.7, float64(counts[2])/n, 0.02)
}

func TestShufflePermutes(t *testing.T) {
	r := New(8)
	s := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(r, s)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, s)
}

func TestPickEmpty(t *testing.T) {
	r := New(9)
	_, ok := Pick(r, []string(nil))
	assert.False(t, ok)
	v, ok := Pick(r, []string{"only"})
	assert.True(t, ok)
	assert.Equal(t, "only", v)
}

func TestSampleDistinct(t *testing.T) {
	r := New(10)
	s := []int{1, 2, 3, 4, 5}
	got := Sample(r, s, 3)
	require.Len(t, got, 3)
	seen := make(map[int]bool)
	for _, v := range got {
		assert.False(t, seen[v], "no duplicates")
		seen[v] = true
	}

	all := Sample(r, s, 10)
	assert.ElementsMatch(t, s, all)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s, "source untouched")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.Equal(t, 1.0, Clamp(9, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 10, ClampInt(15, 0, 10))
	assert.Equal(t, 0, ClampInt(-1, 0, 10))
	assert.Equal(t, 7, ClampInt(7, 0, 10))
}
