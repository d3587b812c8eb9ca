package nutri

import (
	"math/rand/v2"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Chooser is the injected source of randomness for tip selection, demo
// seeding and the mock analyzer. *rand.Rand satisfies it.
type Chooser interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// NewRandChooser returns a Chooser seeded from the given values.
func NewRandChooser(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// today formats the clock's current UTC date.
func today(c Clock) string {
	return c.Now().UTC().Format(DateLayout)
}
