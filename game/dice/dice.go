// Package dice wraps a seedable RNG with the selection helpers the
// simulation uses everywhere: weighted picks, shuffles and probability
// rolls. Every consumer receives a *Roller so tests can fix the seed.
package dice

import (
	"math"
	"math/rand"
)

// Roller is a thin wrapper over *rand.Rand. Not safe for concurrent use;
// the simulation is single-mutator by design.
type Roller struct {
	rng *rand.Rand
}

// New creates a Roller from a seed.
func New(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// From wraps an existing rand.Rand (used by battle instances that need
// their own stream).
func From(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// Fork derives an independent Roller seeded from this one.
func (r *Roller) Fork() *Roller {
	return New(r.rng.Int63())
}

func (r *Roller) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

func (r *Roller) Float() float64 { return r.rng.Float64() }

// Chance returns true with probability p (clamped to [0,1]).
func (r *Roller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.rng.Float64() < p
}

// Between returns a uniform float in [lo, hi).
func (r *Roller) Between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Float64()*(hi-lo)
}

// RangeInt returns a uniform int in [lo, hi] inclusive.
func (r *Roller) RangeInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

// WeightedIndex picks an index with probability proportional to its weight
// using a cumulative scan. Non-positive weights are skipped. Returns -1
// when no weight is positive.
func (r *Roller) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := r.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	// Float accumulation can land exactly on total; take the last positive.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// Shuffle permutes s in place.
func Shuffle[T any](r *Roller, s []T) {
	r.rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// Pick returns a uniform element of s, or the zero value when s is empty.
func Pick[T any](r *Roller, s []T) (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[r.rng.Intn(len(s))], true
}

// Sample returns up to n distinct elements of s in random order.
func Sample[T any](r *Roller, s []T, n int) []T {
	if n >= len(s) {
		out := make([]T, len(s))
		copy(out, s)
		Shuffle(r, out)
		return out
	}
	idx := r.rng.Perm(len(s))[:n]
	out := make([]T, 0, n)
	for _, i := range idx {
		out = append(out, s[i])
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
