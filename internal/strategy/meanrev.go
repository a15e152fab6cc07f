package strategy

import (
	"main/internal/schema"
)

var meanRevDefaults = map[string]float64{
	"lookback":    20,
	"entry_pct":   0.5,
	"quantity":    1,
	"stop_loss":   0.02,
	"take_profit": 0.04,
}

func init() {
	if err := defaultRegistry.Register("meanrev", NewMeanReversion); err != nil {
		panic(err)
	}
}

// MeanReversion buys with a resting limit order when price drops entry_pct
// percent below its rolling mean and exits at reversion or stop/target. The
// limit entry keeps the position opener on the maker fee schedule.
type MeanReversion struct {
	symbol string
	params *Params

	window  []float64
	long    bool
	entryPx float64
}

// NewMeanReversion constructs the strategy with overrides merged over defaults.
func NewMeanReversion(symbol string, overrides map[string]float64) (Strategy, error) {
	return &MeanReversion{
		symbol: symbol,
		params: NewParams(mergeDefaults(meanRevDefaults, overrides)),
	}, nil
}

// Name returns the registered strategy name.
func (m *MeanReversion) Name() string { return "meanrev" }

// Params exposes the hot-reloadable parameter set.
func (m *MeanReversion) Params() *Params { return m.params }

// OnMarket tracks the rolling mean and emits entries/exits on deviations.
func (m *MeanReversion) OnMarket(ev schema.MarketEvent) []schema.Event {
	price := ev.Close
	lookback := int(m.params.GetOr("lookback", meanRevDefaults["lookback"]))
	if lookback < 2 {
		lookback = 2
	}
	m.window = append(m.window, price)
	if len(m.window) > lookback {
		m.window = m.window[len(m.window)-lookback:]
	}
	if len(m.window) < lookback {
		return nil
	}
	mean := meanOf(m.window)
	qty := m.params.GetOr("quantity", 1)

	if m.long {
		if !m.shouldExit(price, mean) {
			return nil
		}
		m.long = false
		m.entryPx = 0
		return []schema.Event{
			schema.SignalEvent{
				Meta:   schema.Meta{Sym: m.symbol, At: ev.CreatedAt()},
				Side:   schema.OrderSideSell,
				Source: "meanrev.exit",
			},
			schema.NewOrderEvent(m.symbol, ev.CreatedAt(), schema.OrderTypeMarket, schema.OrderSideSell, qty, 0),
		}
	}

	entryPct := m.params.GetOr("entry_pct", meanRevDefaults["entry_pct"])
	threshold := mean * (1 - entryPct/100)
	if price > threshold {
		return nil
	}
	limit := price
	if len(ev.Bids) > 0 {
		limit = ev.Bids[0].Price
	}
	m.long = true
	m.entryPx = limit
	return []schema.Event{
		schema.SignalEvent{
			Meta:     schema.Meta{Sym: m.symbol, At: ev.CreatedAt()},
			Side:     schema.OrderSideBuy,
			Strength: (mean - price) / mean,
			Source:   "meanrev.entry",
		},
		schema.NewOrderEvent(m.symbol, ev.CreatedAt(), schema.OrderTypeLimit, schema.OrderSideBuy, qty, limit),
	}
}

func (m *MeanReversion) shouldExit(price, mean float64) bool {
	if price >= mean {
		return true
	}
	if m.entryPx <= 0 {
		return false
	}
	stop := m.params.GetOr("stop_loss", meanRevDefaults["stop_loss"])
	take := m.params.GetOr("take_profit", meanRevDefaults["take_profit"])
	change := (price - m.entryPx) / m.entryPx
	if stop > 0 && change <= -stop {
		return true
	}
	if take > 0 && change >= take {
		return true
	}
	return false
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
