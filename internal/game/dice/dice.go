// Package dice wraps the random source used by the combat engine.
//
// Every random decision in a combat session goes through one Source owned by
// the session, so a batch simulation seeded with the same value replays the
// same ordering decisions on the same platform.
package dice

import "math/rand/v2"

// Source is the subset of *rand.Rand the engine consumes.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// New returns a PCG-backed source for the given seed pair.
func New(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// D20 rolls 1..20.
func D20(src Source) int {
	return src.IntN(20) + 1
}

// Chance returns true with probability p (clamped to [0, 1]).
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Between returns a float uniformly in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
