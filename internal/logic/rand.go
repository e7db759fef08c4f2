package logic

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source the scoring models draw from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

type entropyRand struct{}

func (entropyRand) Float64() float64 { return rand.Float64() }

// EntropyRand returns the process-wide source. Safe for concurrent use.
func EntropyRand() Rand { return entropyRand{} }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewSeededRand returns a deterministic source guarded by a mutex so it can
// be shared by concurrent requests.
func NewSeededRand(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
