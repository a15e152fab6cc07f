package obs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"main/internal/schema"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.IncEvent(schema.EventMarket)
	m.IncEvent(schema.EventMarket)
	m.IncEvent(schema.EventFill)
	m.IncRejectedOrder()
	m.IncDroppedPending()
	m.IncSinkError()
	m.IncInboxDrop()
	m.ObserveTick(10 * time.Millisecond)
	m.ObserveTick(30 * time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.EventCounts["MARKET"])
	assert.Equal(t, uint64(1), snap.EventCounts["FILL"])
	assert.NotContains(t, snap.EventCounts, "SIGNAL", "zero counters are omitted")
	assert.Equal(t, uint64(1), snap.RejectedOrders)
	assert.Equal(t, uint64(1), snap.DroppedPending)
	assert.Equal(t, uint64(1), snap.SinkErrors)
	assert.Equal(t, uint64(1), snap.InboxDrops)
	assert.Equal(t, uint64(2), snap.TickCount)
	assert.Equal(t, int64(20*time.Millisecond), snap.TickAvgNs)
	assert.Equal(t, int64(30*time.Millisecond), snap.TickMaxNs)
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.IncEvent(schema.EventMarket)
	m.IncRejectedOrder()
	m.ObserveTick(time.Millisecond)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLatencyStatsConcurrent(t *testing.T) {
	var stats LatencyStats
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				stats.Observe(d)
			}
		}(time.Duration(i) * time.Millisecond)
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.Equal(t, uint64(800), snap.Count)
	assert.Equal(t, time.Millisecond, snap.Min)
	assert.Equal(t, 8*time.Millisecond, snap.Max)
}

func TestRunIDUnique(t *testing.T) {
	gen := NewRunIDGenerator(0)
	a, b := gen.Next(), gen.Next()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
