package schema

import "time"

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// EventType defines the category of a simulation event.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventMarket
	EventSignal
	EventOrder
	EventFill
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventMarket:
		return "MARKET"
	case EventSignal:
		return "SIGNAL"
	case EventOrder:
		return "ORDER"
	case EventFill:
		return "FILL"
	default:
		return "UNKNOWN"
	}
}

// OrderSide describes order direction.
type OrderSide uint16

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

// String returns the wire name of the side.
func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderType describes order type.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
)

// String returns the wire name of the order type.
func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeMarket:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}

// Event is a tagged simulation event. Variants are value types and must not
// be mutated after construction.
type Event interface {
	Kind() EventType
	Symbol() string
	CreatedAt() time.Time
}

// Meta is the common part of every event variant. The creation timestamp is
// the simulated time at which the event was produced.
type Meta struct {
	Sym string
	At  time.Time
}

// Symbol returns the instrument the event refers to.
func (m Meta) Symbol() string { return m.Sym }

// CreatedAt returns the simulated creation time.
func (m Meta) CreatedAt() time.Time { return m.At }

// Level is one price level of a depth snapshot.
type Level struct {
	Price float64
	Size  float64
}

// MarketEvent carries one simulated bar plus a top-of-book snapshot.
type MarketEvent struct {
	Meta
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Bids   []Level
	Asks   []Level
}

// Kind returns EventMarket.
func (MarketEvent) Kind() EventType { return EventMarket }

// Mid returns the execution reference price for the bar.
func (e MarketEvent) Mid() float64 {
	if len(e.Bids) > 0 && len(e.Asks) > 0 {
		return (e.Bids[0].Price + e.Asks[0].Price) / 2
	}
	return e.Close
}

// NewMarketEvent builds an immutable market event.
func NewMarketEvent(symbol string, at time.Time, open, high, low, close, volume float64, bids, asks []Level) MarketEvent {
	return MarketEvent{
		Meta:   Meta{Sym: symbol, At: at},
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
		Bids:   bids,
		Asks:   asks,
	}
}

// OrderEvent is an order submitted by a strategy. ID is assigned by the
// engine at intake; strategies leave it zero.
type OrderEvent struct {
	Meta
	ID       uint64
	Type     OrderType
	Side     OrderSide
	Quantity float64
	Limit    float64
}

// Kind returns EventOrder.
func (OrderEvent) Kind() EventType { return EventOrder }

// NewOrderEvent builds an order event.
func NewOrderEvent(symbol string, at time.Time, orderType OrderType, side OrderSide, quantity, limit float64) OrderEvent {
	return OrderEvent{
		Meta:     Meta{Sym: symbol, At: at},
		Type:     orderType,
		Side:     side,
		Quantity: quantity,
		Limit:    limit,
	}
}

// FillEvent is the result of executing one order. FillPrice is the unit
// execution price after slippage; Commission is an absolute currency amount.
type FillEvent struct {
	Meta
	OrderID    uint64
	Side       OrderSide
	Quantity   float64
	FillPrice  float64
	Commission float64
}

// Kind returns EventFill.
func (FillEvent) Kind() EventType { return EventFill }

// SignalEvent is a strategy decision broadcast alongside any orders it
// produced. Strength is optional and zero when the strategy does not score
// its signals.
type SignalEvent struct {
	Meta
	Side     OrderSide
	Strength float64
	Source   string
}

// Kind returns EventSignal.
func (SignalEvent) Kind() EventType { return EventSignal }
