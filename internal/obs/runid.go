package obs

import (
	"fmt"
	"sync/atomic"
	"time"
)

// RunIDGenerator creates unique simulation run identifiers. IDs are
// monotonic within a process and prefixed with a wall-clock seed so
// restarts do not collide in persisted results.
type RunIDGenerator struct {
	seed uint64
	next uint64
}

// NewRunIDGenerator returns a generator; seed 0 uses the current time.
func NewRunIDGenerator(seed uint64) *RunIDGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &RunIDGenerator{seed: seed}
}

// Next returns the next run ID.
func (g *RunIDGenerator) Next() string {
	if g == nil {
		return ""
	}
	n := atomic.AddUint64(&g.next, 1)
	return fmt.Sprintf("run-%x-%d", g.seed, n)
}
