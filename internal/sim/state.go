package sim

import "time"

// State is the mutable control state of one running simulation. It is
// created at start and discarded at stop; no two loops ever share one.
// Only the loop goroutine mutates it, and only while applying commands at
// iteration boundaries.
type State struct {
	Running       bool
	Paused        bool
	StepRequested bool
	Speed         float64
	MakerFee      float64
	TakerFee      float64
	SlippagePct   float64
	Latency       time.Duration
	LastEventTime time.Time // the simulated "now"
}

// RunStatus is the terminal status surfaced to the caller.
type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED" // feed exhausted
	RunStopped   RunStatus = "STOPPED"   // stop command or context cancel
	RunFailed    RunStatus = "FAILED"    // feed error
)
