package strategy

import (
	"main/internal/schema"
)

// momentum defaults; all reconfigurable at runtime via UPDATE_PARAMS.
var momentumDefaults = map[string]float64{
	"fast_period": 8,
	"slow_period": 21,
	"quantity":    1,
	"stop_loss":   0.03,
	"take_profit": 0.06,
}

func init() {
	if err := defaultRegistry.Register("momentum", NewMomentum); err != nil {
		panic(err)
	}
}

// Momentum is a long-only EMA crossover strategy. A fast EMA crossing above
// the slow EMA opens a position with a market order; a cross back down, or a
// stop_loss/take_profit breach against the entry price, closes it.
type Momentum struct {
	symbol string
	params *Params

	fast     float64
	slow     float64
	seen     int
	long     bool
	entryPx  float64
	wasAbove bool
}

// NewMomentum constructs the strategy with overrides merged over defaults.
func NewMomentum(symbol string, overrides map[string]float64) (Strategy, error) {
	return &Momentum{
		symbol: symbol,
		params: NewParams(mergeDefaults(momentumDefaults, overrides)),
	}, nil
}

// Name returns the registered strategy name.
func (m *Momentum) Name() string { return "momentum" }

// Params exposes the hot-reloadable parameter set.
func (m *Momentum) Params() *Params { return m.params }

// OnMarket updates the EMAs and emits signal/order events on transitions.
func (m *Momentum) OnMarket(ev schema.MarketEvent) []schema.Event {
	price := ev.Close
	fastN := m.params.GetOr("fast_period", momentumDefaults["fast_period"])
	slowN := m.params.GetOr("slow_period", momentumDefaults["slow_period"])
	m.fast = ema(m.fast, price, fastN, m.seen == 0)
	m.slow = ema(m.slow, price, slowN, m.seen == 0)
	m.seen++
	if float64(m.seen) < slowN {
		m.wasAbove = m.fast > m.slow
		return nil
	}

	qty := m.params.GetOr("quantity", 1)
	var out []schema.Event

	if m.long {
		if exit, kind := m.exitReason(price); exit {
			out = append(out,
				schema.SignalEvent{
					Meta:   schema.Meta{Sym: m.symbol, At: ev.CreatedAt()},
					Side:   schema.OrderSideSell,
					Source: "momentum." + kind,
				},
				schema.NewOrderEvent(m.symbol, ev.CreatedAt(), schema.OrderTypeMarket, schema.OrderSideSell, qty, 0),
			)
			m.long = false
			m.entryPx = 0
			m.wasAbove = m.fast > m.slow
			return out
		}
	}

	above := m.fast > m.slow
	crossedUp := above && !m.wasAbove
	m.wasAbove = above

	if crossedUp && !m.long {
		out = append(out,
			schema.SignalEvent{
				Meta:     schema.Meta{Sym: m.symbol, At: ev.CreatedAt()},
				Side:     schema.OrderSideBuy,
				Strength: crossStrength(m.fast, m.slow),
				Source:   "momentum.cross",
			},
			schema.NewOrderEvent(m.symbol, ev.CreatedAt(), schema.OrderTypeMarket, schema.OrderSideBuy, qty, 0),
		)
		m.long = true
		m.entryPx = price
	}
	return out
}

func (m *Momentum) exitReason(price float64) (bool, string) {
	if m.entryPx <= 0 {
		return !m.wasAbove && m.fast <= m.slow, "cross"
	}
	stop := m.params.GetOr("stop_loss", momentumDefaults["stop_loss"])
	take := m.params.GetOr("take_profit", momentumDefaults["take_profit"])
	change := (price - m.entryPx) / m.entryPx
	switch {
	case stop > 0 && change <= -stop:
		return true, "stop_loss"
	case take > 0 && change >= take:
		return true, "take_profit"
	case m.fast <= m.slow:
		return true, "cross"
	default:
		return false, ""
	}
}

func ema(prev, price, period float64, first bool) float64 {
	if period < 1 {
		period = 1
	}
	if first {
		return price
	}
	alpha := 2 / (period + 1)
	return prev + alpha*(price-prev)
}

func crossStrength(fast, slow float64) float64 {
	if slow == 0 {
		return 0
	}
	d := (fast - slow) / slow
	if d < 0 {
		d = -d
	}
	return d
}
