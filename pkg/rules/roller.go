package rules

import (
	"math/rand/v2"
	"sync"
)

// Roller is the source of randomness for randomized rules.
// Implementations must be safe for concurrent use.
type Roller interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// NewRoller returns a Roller. A zero seed uses the runtime's shared,
// concurrency-safe generator; any other seed gives a deterministic
// sequence, which tests rely on.
func NewRoller(seed uint64) Roller {
	if seed == 0 {
		return globalRoller{}
	}
	return &seededRoller{
		src: rand.New(rand.NewPCG(seed, seed)),
	}
}

type globalRoller struct{}

func (globalRoller) Intn(n int) int {
	return rand.IntN(n)
}

type seededRoller struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (r *seededRoller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}
