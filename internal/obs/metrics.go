package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

const maxEventType = int(schema.EventFill)

// Metrics collects lightweight counters for one simulation run.
type Metrics struct {
	eventCounts    [maxEventType + 1]uint64
	rejectedOrders uint64
	droppedPending uint64
	sinkErrors     uint64
	inboxDrops     uint64

	tickLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts    map[string]uint64 `json:"event_counts"`
	RejectedOrders uint64            `json:"rejected_orders"`
	DroppedPending uint64            `json:"dropped_pending"`
	SinkErrors     uint64            `json:"sink_errors"`
	InboxDrops     uint64            `json:"inbox_drops"`
	TickCount      uint64            `json:"tick_count"`
	TickAvgNs      int64             `json:"tick_avg_ns"`
	TickMaxNs      int64             `json:"tick_max_ns"`
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncEvent counts a dispatched event by type.
func (m *Metrics) IncEvent(t schema.EventType) {
	if m == nil {
		return
	}
	idx := int(t)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
}

// IncRejectedOrder counts an order denied before fill generation.
func (m *Metrics) IncRejectedOrder() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rejectedOrders, 1)
}

// IncDroppedPending counts a pending order discarded at stop.
func (m *Metrics) IncDroppedPending() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.droppedPending, 1)
}

// IncSinkError counts a failed event delivery.
func (m *Metrics) IncSinkError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sinkErrors, 1)
}

// IncInboxDrop counts a command rejected by a full inbox.
func (m *Metrics) IncInboxDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.inboxDrops, 1)
}

// ObserveTick records the wall-clock duration of one loop iteration.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	counts := make(map[string]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			counts[schema.EventType(i).String()] = v
		}
	}
	lat := m.tickLatency.Snapshot()
	return Snapshot{
		EventCounts:    counts,
		RejectedOrders: atomic.LoadUint64(&m.rejectedOrders),
		DroppedPending: atomic.LoadUint64(&m.droppedPending),
		SinkErrors:     atomic.LoadUint64(&m.sinkErrors),
		InboxDrops:     atomic.LoadUint64(&m.inboxDrops),
		TickCount:      lat.Count,
		TickAvgNs:      int64(lat.Avg),
		TickMaxNs:      int64(lat.Max),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}
	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}
