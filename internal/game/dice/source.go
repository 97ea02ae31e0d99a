// Package dice provides the randomness abstraction shared by every battle and
// progression rule: an injectable integer source, percentage checks, and the
// small dice expressions content files use for durations.
package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source is the randomness provider for every chance roll in the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a uniformly distributed int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a reproducible Source for simulations and replays.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source: two sources built from the
// same seed produce the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Fixed is a Source that replays a fixed sequence of values, cycling when
// exhausted. Each value is reduced modulo n. Intended for tests and scripted
// demos.
type Fixed struct {
	mu     sync.Mutex
	Values []int
	next   int
}

// NewFixed returns a Fixed source replaying values.
//
// Precondition: len(values) > 0.
func NewFixed(values ...int) *Fixed {
	if len(values) == 0 {
		panic("dice: NewFixed requires at least one value")
	}
	return &Fixed{Values: values}
}

// Intn returns the next scripted value modulo n.
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.Values[f.next%len(f.Values)]
	f.next++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
