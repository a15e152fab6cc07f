package store

import (
	"time"

	"main/internal/sim"
)

// RunMeta identifies a run independent of its outcome.
type RunMeta struct {
	RunID    string
	Symbol   string
	Strategy string
	Started  time.Time
	Finished time.Time
}

// Run is one persisted simulation run.
type Run struct {
	ID            uint64    `gorm:"primaryKey"`
	RunID         string    `gorm:"index;size:64"`
	Symbol        string    `gorm:"index;size:32"`
	Strategy      string    `gorm:"size:64"`
	Status        string    `gorm:"size:16"`
	Error         string
	Started       time.Time
	Finished      time.Time
	Ticks         int
	FillCount     int
	Position      float64
	Cash          float64
	Commission    float64
	FinalEquity   float64
	DroppedOrders int
}

// Fill is one persisted fill of a run.
type Fill struct {
	ID         uint64 `gorm:"primaryKey"`
	RunID      uint64 `gorm:"index"`
	OrderID    uint64
	Time       time.Time
	Direction  string `gorm:"size:8"`
	Quantity   float64
	FillPrice  float64
	Commission float64
}

// EquitySample is one persisted mark-to-market point of a run.
type EquitySample struct {
	ID     uint64 `gorm:"primaryKey"`
	RunID  uint64 `gorm:"index"`
	Time   time.Time
	Equity float64
}

func runFrom(meta RunMeta, result sim.Result) Run {
	run := Run{
		RunID:         meta.RunID,
		Symbol:        meta.Symbol,
		Strategy:      meta.Strategy,
		Status:        string(result.Status),
		Started:       meta.Started,
		Finished:      meta.Finished,
		Ticks:         result.Ticks,
		FillCount:     len(result.Fills),
		Position:      result.Position,
		Cash:          result.Cash,
		Commission:    result.Commission,
		FinalEquity:   result.FinalEquity,
		DroppedOrders: result.DroppedOrders,
	}
	if result.Err != nil {
		run.Error = result.Err.Error()
	}
	return run
}
