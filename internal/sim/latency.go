package sim

import (
	"time"

	"main/internal/schema"
)

// PendingOrder is an accepted order waiting out its simulated latency.
type PendingOrder struct {
	Order     schema.OrderEvent
	ExecuteAt time.Time
}

// LatencyBuffer holds accepted orders until their scheduled execution time.
// Owned exclusively by the simulation loop.
type LatencyBuffer struct {
	latency time.Duration
	pending []PendingOrder
}

// NewLatencyBuffer creates a buffer with a fixed order-to-fill delay.
// Zero latency means an order is eligible on the very next due-check.
func NewLatencyBuffer(latency time.Duration) *LatencyBuffer {
	return &LatencyBuffer{latency: latency}
}

// Add schedules an order at now + latency.
func (b *LatencyBuffer) Add(order schema.OrderEvent, now time.Time) {
	b.pending = append(b.pending, PendingOrder{
		Order:     order,
		ExecuteAt: now.Add(b.latency),
	})
}

// Due removes and returns all orders whose execution time has been reached,
// preserving submission order for orders due at the same instant.
func (b *LatencyBuffer) Due(now time.Time) []schema.OrderEvent {
	var due []schema.OrderEvent
	kept := b.pending[:0]
	for _, p := range b.pending {
		if !p.ExecuteAt.After(now) {
			due = append(due, p.Order)
			continue
		}
		kept = append(kept, p)
	}
	b.pending = kept
	return due
}

// DrainAll empties the buffer, returning the discarded orders. Called at
// stop; drained orders never produce fills.
func (b *LatencyBuffer) DrainAll() []schema.OrderEvent {
	orders := make([]schema.OrderEvent, 0, len(b.pending))
	for _, p := range b.pending {
		orders = append(orders, p.Order)
	}
	b.pending = nil
	return orders
}

// Len returns the number of pending orders.
func (b *LatencyBuffer) Len() int { return len(b.pending) }
