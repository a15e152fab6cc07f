package bus

import (
	"sync"

	"github.com/yanun0323/errors"
)

var (
	ErrMailboxFull   = errors.New("mailbox full")
	ErrMailboxClosed = errors.New("mailbox closed")
)

// FIFO is an unbounded in-order queue owned by a single goroutine.
// The simulation loop is its only producer and consumer; no locking.
type FIFO[T any] struct {
	items []T
}

// Push appends an item.
func (q *FIFO[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the oldest item.
func (q *FIFO[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int { return len(q.items) }

// Mailbox is a bounded, non-blocking inbox for cross-goroutine submission.
// Producers post without blocking; the owning loop receives from C.
type Mailbox[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewMailbox allocates a mailbox with the given capacity.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Mailbox[T]{ch: make(chan T, capacity)}
}

// TryPost enqueues without blocking. The mutex pairs the closed check
// with the send so Close cannot slip in between them.
func (m *Mailbox[T]) TryPost(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrMailboxClosed
	}
	select {
	case m.ch <- v:
		return nil
	default:
		return ErrMailboxFull
	}
}

// C exposes the receive side for the owning loop.
func (m *Mailbox[T]) C() <-chan T { return m.ch }

// Close stops the mailbox from accepting new items.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
}
