package narrator

import (
	"math/rand"
	"sync"
	"time"
)

// Picker selects which cached narrative variant to serve. Injectable so
// tests can force a deterministic choice; the contract is uniform random
// among the available variants.
type Picker interface {
	// Pick returns an index in [0, n). n is always >= 1.
	Pick(n int) int
}

type timePicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTimePicker returns the default time-seeded picker. The seed is not
// cryptographically strong; variety, not unpredictability, is the goal here.
func NewTimePicker() Picker {
	return &timePicker{rng: rand.New(rand.NewSource(time.Now().Unix()))}
}

func (p *timePicker) Pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}
