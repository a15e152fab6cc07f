package sim

import (
	"github.com/yanun0323/errors"
)

var (
	ErrDuplicateOrder = errors.New("order already tracked")
	ErrUnknownOrder   = errors.New("order not tracked")
	ErrOrderTerminal  = errors.New("order already terminal")
)

// OrderState tracks the lifecycle of an accepted order.
type OrderState uint16

const (
	OrderStateUnknown OrderState = iota
	OrderStatePending            // accepted, waiting in the latency buffer
	OrderStateFilled             // exactly one fill emitted
	OrderStateDropped            // discarded at stop or execution failure
)

// Tracker enforces the order lifecycle: every accepted order transitions to
// exactly one of Filled or Dropped, never both and never twice.
type Tracker struct {
	states  map[uint64]OrderState
	filled  int
	dropped int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[uint64]OrderState)}
}

// ApplyAccept registers an order entering the latency buffer.
func (t *Tracker) ApplyAccept(id uint64) error {
	if id == 0 {
		return ErrUnknownOrder
	}
	if _, ok := t.states[id]; ok {
		return ErrDuplicateOrder
	}
	t.states[id] = OrderStatePending
	return nil
}

// ApplyFill transitions a pending order to filled.
func (t *Tracker) ApplyFill(id uint64) error {
	state, ok := t.states[id]
	if !ok {
		return ErrUnknownOrder
	}
	if state != OrderStatePending {
		return ErrOrderTerminal
	}
	t.states[id] = OrderStateFilled
	t.filled++
	return nil
}

// ApplyDrop transitions a pending order to dropped.
func (t *Tracker) ApplyDrop(id uint64) error {
	state, ok := t.states[id]
	if !ok {
		return ErrUnknownOrder
	}
	if state != OrderStatePending {
		return ErrOrderTerminal
	}
	t.states[id] = OrderStateDropped
	t.dropped++
	return nil
}

// Pending returns the number of orders still awaiting execution.
func (t *Tracker) Pending() int {
	return len(t.states) - t.filled - t.dropped
}

// Counts returns filled and dropped totals.
func (t *Tracker) Counts() (filled, dropped int) {
	return t.filled, t.dropped
}
