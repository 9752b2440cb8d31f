package wmediumd

//
// Uniform random draws for the loss model
//

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

// RandomSource produces uniform variates in [0, 1). [Medium] draws one per
// (attempt, radio) pair to decide delivery; everything else in this package
// is oblivious to where the draws come from, which is what lets tests
// replace the production source with a fixed replay sequence.
type RandomSource interface {
	// Next returns the next uniform variate in [0, 1).
	Next() float64
}

// SeededRandomSource is the production [RandomSource]. It wraps a
// math/rand generator seeded from the OS CSPRNG at construction time: seed
// once, draw many, the same shape as the corpus's own packet-loss models.
type SeededRandomSource struct {
	mu  sync.Mutex
	rnd *mathrand.Rand
}

var _ RandomSource = &SeededRandomSource{}

// NewSeededRandomSource creates a [SeededRandomSource] seeded from the OS
// CSPRNG. Panics if the OS fails to provide entropy, which should never
// happen on a supported platform.
func NewSeededRandomSource() *SeededRandomSource {
	var seedBuf [8]byte
	if _, err := rand.Read(seedBuf[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBuf[:]))
	return &SeededRandomSource{
		rnd: mathrand.New(mathrand.NewSource(seed)),
	}
}

// Next implements [RandomSource].
func (s *SeededRandomSource) Next() float64 {
	defer s.mu.Unlock()
	s.mu.Lock()
	return s.rnd.Float64()
}

// NewSeededRandomSourceFromSeed creates a [SeededRandomSource] with a
// caller-supplied seed, so a run's delivery decisions can be reproduced
// exactly outside of tests, e.g. to replay a field report with `-seed`.
func NewSeededRandomSourceFromSeed(seed int64) *SeededRandomSource {
	return &SeededRandomSource{rnd: mathrand.New(mathrand.NewSource(seed))}
}

// FixedRandomSource is a [RandomSource] that replays a predetermined
// sequence, so tests can make delivery decisions exactly reproducible.
type FixedRandomSource struct {
	mu     sync.Mutex
	draws  []float64
	cursor int
}

var _ RandomSource = &FixedRandomSource{}

// NewFixedRandomSource creates a [FixedRandomSource] that replays draws in
// order. Once exhausted, it keeps returning the final value in the slice;
// passing an empty slice is a programmer error and panics.
func NewFixedRandomSource(draws []float64) *FixedRandomSource {
	if len(draws) == 0 {
		panic("wmediumd: NewFixedRandomSource requires at least one draw")
	}
	cp := make([]float64, len(draws))
	copy(cp, draws)
	return &FixedRandomSource{draws: cp}
}

// Next implements [RandomSource].
func (s *FixedRandomSource) Next() float64 {
	defer s.mu.Unlock()
	s.mu.Lock()
	v := s.draws[s.cursor]
	if s.cursor < len(s.draws)-1 {
		s.cursor++
	}
	return v
}
