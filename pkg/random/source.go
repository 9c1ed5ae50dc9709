package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness used to pick greetings, fallbacks and suggestions.
type Source interface {
	IntN(n int) int
}

// Locked is a seedable Source that is safe for concurrent use.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Locked source. A zero seed is replaced by the current time.
func New(seed uint64) *Locked {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Locked{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a value in [0, n). n must be positive.
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// Float64 returns a value in [0.0, 1.0).
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// Choice picks one element of items, or "" when items is empty.
func Choice(src Source, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[src.IntN(len(items))]
}
