package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func feedPrices(s Strategy, prices ...float64) [][]schema.Event {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([][]schema.Event, 0, len(prices))
	for i, p := range prices {
		ev := schema.NewMarketEvent("BTCUSDT", at.Add(time.Duration(i)*time.Minute), p, p, p, p, 1, nil, nil)
		out = append(out, s.OnMarket(ev))
	}
	return out
}

func TestMomentumCrossEntryAndStopExit(t *testing.T) {
	s, err := NewMomentum("BTCUSDT", map[string]float64{
		"fast_period": 2,
		"slow_period": 3,
		"quantity":    2,
	})
	require.NoError(t, err)

	batches := feedPrices(s, 100, 90, 80, 120, 100)

	// warmup and the flat downtrend emit nothing
	for i := 0; i < 3; i++ {
		assert.Empty(t, batches[i])
	}

	// fast EMA crosses above slow on the rally: signal + market buy
	entry := batches[3]
	require.Len(t, entry, 2)
	sig, ok := entry[0].(schema.SignalEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderSideBuy, sig.Side)
	assert.Equal(t, "momentum.cross", sig.Source)
	order, ok := entry[1].(schema.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderTypeMarket, order.Type)
	assert.Equal(t, schema.OrderSideBuy, order.Side)
	assert.InDelta(t, 2, order.Quantity, 1e-9, "quantity override applies")

	// the 120 -> 100 drop breaches the default 3% stop
	exit := batches[4]
	require.Len(t, exit, 2)
	exitSig, ok := exit[0].(schema.SignalEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderSideSell, exitSig.Side)
	assert.Equal(t, "momentum.stop_loss", exitSig.Source)
	exitOrder, ok := exit[1].(schema.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderSideSell, exitOrder.Side)
}

func TestMomentumIgnoresUnknownOverride(t *testing.T) {
	s, err := NewMomentum("BTCUSDT", map[string]float64{"bogus": 1})
	require.NoError(t, err)
	_, ok := s.Params().Get("bogus")
	assert.False(t, ok, "unknown override keys are not adopted")
}

func TestMeanReversionLimitEntryAndReversionExit(t *testing.T) {
	s, err := NewMeanReversion("BTCUSDT", map[string]float64{
		"lookback":  3,
		"entry_pct": 1,
	})
	require.NoError(t, err)

	batches := feedPrices(s, 100, 100, 100, 98, 100)

	for i := 0; i < 3; i++ {
		assert.Empty(t, batches[i], "no entry while price sits at the mean")
	}

	// 98 is more than 1% below the rolling mean: resting limit buy
	entry := batches[3]
	require.Len(t, entry, 2)
	sig, ok := entry[0].(schema.SignalEvent)
	require.True(t, ok)
	assert.Equal(t, "meanrev.entry", sig.Source)
	order, ok := entry[1].(schema.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderTypeLimit, order.Type)
	assert.Equal(t, schema.OrderSideBuy, order.Side)
	assert.InDelta(t, 98, order.Limit, 1e-9, "limit price rests at the observed price without depth")

	// reversion back to the mean closes the position with a market sell
	exit := batches[4]
	require.Len(t, exit, 2)
	exitOrder, ok := exit[1].(schema.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, schema.OrderTypeMarket, exitOrder.Type)
	assert.Equal(t, schema.OrderSideSell, exitOrder.Side)
}

func TestMeanReversionPrefersBestBidForLimit(t *testing.T) {
	s, err := NewMeanReversion("BTCUSDT", map[string]float64{"lookback": 2, "entry_pct": 1})
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.OnMarket(schema.NewMarketEvent("BTCUSDT", at, 100, 100, 100, 100, 1, nil, nil))
	out := s.OnMarket(schema.NewMarketEvent("BTCUSDT", at.Add(time.Minute), 95, 95, 95, 95, 1,
		[]schema.Level{{Price: 94.9, Size: 5}}, []schema.Level{{Price: 95.1, Size: 5}}))

	require.Len(t, out, 2)
	order, ok := out[1].(schema.OrderEvent)
	require.True(t, ok)
	assert.InDelta(t, 94.9, order.Limit, 1e-9)
}
