// Package random provides seeds for the per-match pseudo-random sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Seeds derives a reproducible stream of seeds from one root seed, so a
// fixed root replays every match the same way.
type Seeds struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeeds(root uint64) *Seeds {
	return &Seeds{rng: rand.New(rand.NewPCG(root, ^root))}
}

func (s *Seeds) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}
