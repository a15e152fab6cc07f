package sim

import (
	"time"

	"main/internal/schema"
)

// EquityPoint is one mark-to-market sample of the account.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Result is the in-memory outcome of a finished run. The caller is
// responsible for any persistence.
type Result struct {
	Status        RunStatus
	Err           error
	Ticks         int
	Fills         []schema.FillEvent
	Equity        []EquityPoint
	Position      float64
	Cash          float64
	Commission    float64
	FinalEquity   float64
	DroppedOrders int
}

// account tracks cash and position from fills.
type account struct {
	cash       float64
	position   float64
	commission float64
}

func (a *account) applyFill(f schema.FillEvent) {
	switch f.Side {
	case schema.OrderSideBuy:
		a.cash -= f.FillPrice * f.Quantity
		a.position += f.Quantity
	case schema.OrderSideSell:
		a.cash += f.FillPrice * f.Quantity
		a.position -= f.Quantity
	}
	a.cash -= f.Commission
	a.commission += f.Commission
}

func (a *account) equity(mid float64) float64 {
	return a.cash + a.position*mid
}
