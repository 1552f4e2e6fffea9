package numerator

import (
	"math/rand/v2"
	"time"
)

// Clock allows deterministic testing.
type Clock interface {
	Now() time.Time
}

// RandomSource returns a uniformly distributed int in [lo, hi].
type RandomSource interface {
	IntBetween(lo, hi int) int
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// SystemRandom draws from the process-wide math/rand source.
type SystemRandom struct{}

func (SystemRandom) IntBetween(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}
