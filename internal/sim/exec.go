package sim

import (
	"time"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

var (
	ErrInvalidQuantity  = errors.New("order quantity must be > 0")
	ErrUnknownOrderType = errors.New("unknown order type")
	ErrUnknownSide      = errors.New("unknown order side")
	ErrNoMarketPrice    = errors.New("no market price available")
)

// Executor fills orders against the current mid price, applying slippage
// and the maker/taker fee schedule.
//
// Limit orders are always charged the maker rate and market orders the
// taker rate; whether a limit order would actually have crossed the spread
// is not modeled.
type Executor struct {
	makerFee    float64
	takerFee    float64
	slippagePct float64
}

// NewExecutor creates an executor with fixed fee and slippage rates.
func NewExecutor(makerFee, takerFee, slippagePct float64) *Executor {
	return &Executor{
		makerFee:    makerFee,
		takerFee:    takerFee,
		slippagePct: slippagePct,
	}
}

// ApplySlippage returns the executed price for the given mid price and
// direction. Slippage is a symmetric percentage cost against the trade:
// buys execute above mid, sells below.
func (x *Executor) ApplySlippage(mid float64, side schema.OrderSide) float64 {
	switch side {
	case schema.OrderSideBuy:
		return mid * (1 + x.slippagePct/100)
	case schema.OrderSideSell:
		return mid * (1 - x.slippagePct/100)
	default:
		return mid
	}
}

// Execute computes a fill for the order at the given mid price.
// commission = fill_price x quantity x rate, never negative.
func (x *Executor) Execute(order schema.OrderEvent, mid float64, at time.Time) (schema.FillEvent, error) {
	if order.Quantity <= 0 {
		return schema.FillEvent{}, ErrInvalidQuantity
	}
	if order.Side != schema.OrderSideBuy && order.Side != schema.OrderSideSell {
		return schema.FillEvent{}, ErrUnknownSide
	}

	var rate float64
	switch order.Type {
	case schema.OrderTypeLimit:
		rate = x.makerFee
	case schema.OrderTypeMarket:
		rate = x.takerFee
	default:
		return schema.FillEvent{}, ErrUnknownOrderType
	}

	if mid <= 0 {
		return schema.FillEvent{}, ErrNoMarketPrice
	}

	price := x.ApplySlippage(mid, order.Side)
	return schema.FillEvent{
		Meta:       schema.Meta{Sym: order.Symbol(), At: at},
		OrderID:    order.ID,
		Side:       order.Side,
		Quantity:   order.Quantity,
		FillPrice:  price,
		Commission: price * order.Quantity * rate,
	}, nil
}
