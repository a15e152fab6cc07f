// Package risk validates order events before they enter the latency buffer.
// A denied order produces no fill; the rejection is logged and counted but
// never stops the simulation loop.
package risk

import (
	"main/internal/schema"
)

// Config defines pre-trade limits. Zero values disable the matching check.
type Config struct {
	KillSwitch       bool    `json:"killSwitch"`
	MaxOrderQty      float64 `json:"maxOrderQty"`
	MaxOrderNotional float64 `json:"maxOrderNotional"`
	MaxPosition      float64 `json:"maxPosition"`
}

// Action is the outcome of an evaluation.
type Action uint16

const (
	ActionAllow Action = iota
	ActionDeny
)

// Reason explains a denial.
type Reason uint16

const (
	ReasonNone Reason = iota
	ReasonKillSwitch
	ReasonInvalidQty
	ReasonInvalidType
	ReasonInvalidSide
	ReasonMaxQty
	ReasonMaxNotional
	ReasonPositionLimit
)

// String returns a log-friendly reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonKillSwitch:
		return "kill_switch"
	case ReasonInvalidQty:
		return "invalid_quantity"
	case ReasonInvalidType:
		return "invalid_order_type"
	case ReasonInvalidSide:
		return "invalid_side"
	case ReasonMaxQty:
		return "max_order_qty"
	case ReasonMaxNotional:
		return "max_order_notional"
	case ReasonPositionLimit:
		return "position_limit"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating one order.
type Decision struct {
	Action Action
	Reason Reason
}

// Allowed reports whether the order may proceed.
func (d Decision) Allowed() bool { return d.Action == ActionAllow }

// StateView is the account snapshot consulted during evaluation.
type StateView struct {
	Position       float64
	ReferencePrice float64
}

// Engine evaluates pre-trade checks with static limits.
type Engine struct {
	cfg Config
}

// NewEngine creates a risk engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate applies validity and limit checks to an order.
func (e *Engine) Evaluate(order schema.OrderEvent, state StateView) Decision {
	if e.cfg.KillSwitch {
		return Decision{Action: ActionDeny, Reason: ReasonKillSwitch}
	}
	if order.Quantity <= 0 {
		return Decision{Action: ActionDeny, Reason: ReasonInvalidQty}
	}
	if order.Type != schema.OrderTypeLimit && order.Type != schema.OrderTypeMarket {
		return Decision{Action: ActionDeny, Reason: ReasonInvalidType}
	}
	if order.Side != schema.OrderSideBuy && order.Side != schema.OrderSideSell {
		return Decision{Action: ActionDeny, Reason: ReasonInvalidSide}
	}
	if e.cfg.MaxOrderQty > 0 && order.Quantity > e.cfg.MaxOrderQty {
		return Decision{Action: ActionDeny, Reason: ReasonMaxQty}
	}
	if e.cfg.MaxOrderNotional > 0 && state.ReferencePrice > 0 {
		if order.Quantity*state.ReferencePrice > e.cfg.MaxOrderNotional {
			return Decision{Action: ActionDeny, Reason: ReasonMaxNotional}
		}
	}
	if e.cfg.MaxPosition > 0 {
		next := state.Position
		switch order.Side {
		case schema.OrderSideBuy:
			next += order.Quantity
		case schema.OrderSideSell:
			next -= order.Quantity
		}
		if abs(next) > e.cfg.MaxPosition {
			return Decision{Action: ActionDeny, Reason: ReasonPositionLimit}
		}
	}
	return Decision{Action: ActionAllow, Reason: ReasonNone}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
