package qubit

import (
	"math/rand"
	"time"
)

// A Source produces the uniform bits and bases every randomized step of
// a key exchange draws from. It wraps a pseudo-random generator so that
// an explicitly seeded run replays an identical transcript; for
// unconditional security a deployment would substitute true randomness,
// but a simulation needs reproducibility more.
//
// A Source is not safe for concurrent use. Concurrent simulation runs
// must each own an independently seeded Source.
type Source struct {
	r *rand.Rand
}

// NewSource returns a Source seeded with seed.
func NewSource(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// NewTimeSource returns a Source seeded from the wall clock, for runs
// where reproducibility is not required.
func NewTimeSource() *Source {
	return NewSource(time.Now().UnixNano())
}

// Bit returns a uniformly random bit.
func (s *Source) Bit() Bit {
	return Bit(s.r.Intn(2))
}

// Basis returns a uniformly random basis, independent of any bit drawn.
func (s *Source) Basis() Basis {
	return Basis(s.r.Intn(2))
}

// Perm returns a uniformly random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	return s.r.Perm(n)
}

// Int63 returns a non-negative random 63-bit integer, suitable for
// deriving the seed of a subordinate Source.
func (s *Source) Int63() int64 {
	return s.r.Int63()
}
