package yield

import (
	"math/rand/v2"
	"sync"
)

// Rand is the randomness the engine consumes. Implementations must be safe
// for concurrent use.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// LockedRand serializes access to a seeded PCG generator.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand returns a generator whose sequence is fully determined by seed.
func NewLockedRand(seed uint64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
