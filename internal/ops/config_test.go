package ops

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/journal"
	"main/internal/schema"
)

func TestParseFullConfig(t *testing.T) {
	raw := []byte(`{
		"symbol": "BTCUSDT",
		"tickIntervalMs": 250,
		"speed": 4,
		"makerFee": 0.0002,
		"takerFee": 0.0005,
		"slippagePct": 0.01,
		"latencyMs": 150,
		"spreadPct": 0.02,
		"cash": 50000,
		"strategy": {"name": "meanrev", "params": {"window": 30}},
		"risk": {"maxOrderQty": 5, "maxPosition": 10},
		"feed": {"kind": "synthetic", "maxBars": 500, "synthetic": {"seed": 7, "basePrice": 42000}},
		"server": {"addr": ":8080"},
		"store": {"dsn": "host=localhost user=sim dbname=sim"},
		"journal": {"path": "/tmp/run.jsonl"}
	}`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Sim.Symbol)
	assert.Equal(t, 250*time.Millisecond, cfg.Sim.TickInterval)
	assert.Equal(t, 4.0, cfg.Sim.Speed)
	assert.Equal(t, 150*time.Millisecond, cfg.Sim.Latency)
	assert.Equal(t, "meanrev", cfg.Strategy.Name)
	assert.Equal(t, 30.0, cfg.Strategy.Params["window"])
	assert.Equal(t, 5.0, cfg.Risk.MaxOrderQty)
	assert.Equal(t, 500, cfg.Feed.MaxBars)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NotEmpty(t, cfg.Store.DSN)
	assert.Equal(t, "/tmp/run.jsonl", cfg.Journal.Path)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"symbol": "ETHUSDT"}`))
	require.NoError(t, err)
	assert.Equal(t, "momentum", cfg.Strategy.Name)
	assert.Equal(t, FeedSynthetic, cfg.Feed.Kind)
}

func TestParseRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"symbol":`},
		{"unknown feed kind", `{"symbol": "X", "feed": {"kind": "csv"}}`},
		{"clickhouse without addr", `{"symbol": "X", "feed": {"kind": "clickhouse"}}`},
		{"journal without path", `{"symbol": "X", "feed": {"kind": "journal"}}`},
		{"negative max bars", `{"symbol": "X", "feed": {"maxBars": -1}}`},
		{"negative latency", `{"symbol": "X", "latencyMs": -5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestOpenFeedSyntheticWithLimit(t *testing.T) {
	cfg, err := Parse([]byte(`{"symbol": "X", "feed": {"kind": "synthetic", "maxBars": 3, "synthetic": {"seed": 1}}}`))
	require.NoError(t, err)

	f, err := cfg.OpenFeed(context.Background())
	require.NoError(t, err)
	defer f.Close()

	for i := 0; i < 3; i++ {
		_, err := f.Next(context.Background())
		require.NoError(t, err)
	}
	_, err = f.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestOpenFeedJournalReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	w, err := journal.NewWriter(journal.Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, w.Publish(schema.RecordFrom(schema.NewMarketEvent("X", at, 1, 2, 0.5, 1.5, 3, nil, nil))))
	require.NoError(t, w.Close())

	cfg, err := Parse([]byte(`{"symbol": "X", "feed": {"kind": "journal", "path": ` + quote(path) + `}}`))
	require.NoError(t, err)

	f, err := cfg.OpenFeed(context.Background())
	require.NoError(t, err)
	defer f.Close()

	bar, err := f.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, bar.Time)
	assert.InDelta(t, 1.5, bar.Close, 1e-9)
}

func quote(s string) string { return `"` + s + `"` }
