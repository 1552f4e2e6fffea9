package numerator

import (
	"fmt"

	corenumerator "docserial/internal/core/numerator"
)

// Bounds of the random fallback suffix.
const (
	fallbackRandMin = 1000
	fallbackRandMax = 9999
)

// FallbackGenerator produces "{SEED}-{unix seconds}-{1000..9999}" without
// touching storage. Two fallbacks in the same second collide with
// probability 1/9000.
type FallbackGenerator struct {
	clock  corenumerator.Clock
	random corenumerator.RandomSource
}

// NewFallbackGenerator creates a generator over clock and random.
func NewFallbackGenerator(clock corenumerator.Clock, random corenumerator.RandomSource) FallbackGenerator {
	return FallbackGenerator{clock: clock, random: random}
}

// Generate never fails.
func (g FallbackGenerator) Generate(seed string) string {
	return fmt.Sprintf("%s-%d-%d",
		seed,
		g.clock.Now().Unix(),
		g.random.IntBetween(fallbackRandMin, fallbackRandMax),
	)
}
