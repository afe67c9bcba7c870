// Package xrand implements a small deterministic random source used by world
// generation. math/rand/v2 is deliberately not used here: its stream is not
// guaranteed stable across Go releases, and every client and server must
// reproduce identical generation output from the same seed.
package xrand

// Source is a splitmix64 generator. The zero value is a valid source seeded
// with zero.
type Source struct {
	state uint64
}

// New returns a Source seeded with the given value.
func New(seed uint64) *Source {
	return &Source{state: seed}
}

// Uint64 returns the next value in the stream.
func (s *Source) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float64 returns a value in the half-open interval [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Range returns a value in the half-open interval [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + (max-min)*s.Float64()
}

// IntN returns a value in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		panic("xrand: IntN called with non-positive n")
	}
	return int(s.Uint64() % uint64(n))
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}
