package schema

import "encoding/json"

// Record is the serialized form of an event delivered to streaming sinks.
// Exactly one payload pointer is set per record, matching Type.
type Record struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol,omitempty"`
	TsMs   int64  `json:"ts,omitempty"`

	Market  *MarketRecord  `json:"market,omitempty"`
	Signal  *SignalRecord  `json:"signal,omitempty"`
	Fill    *FillRecord    `json:"fill,omitempty"`
	Status  *StatusRecord  `json:"status,omitempty"`
	Metrics json.RawMessage `json:"metrics,omitempty"`
}

// MarketRecord is the wire payload of a market event.
type MarketRecord struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// SignalRecord is the wire payload of a signal event.
type SignalRecord struct {
	Direction string  `json:"direction"`
	Strength  float64 `json:"strength,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// FillRecord is the wire payload of a fill event.
type FillRecord struct {
	OrderID    uint64  `json:"order_id"`
	Direction  string  `json:"direction"`
	Quantity   float64 `json:"quantity"`
	FillCost   float64 `json:"fill_cost"`
	Commission float64 `json:"commission"`
}

// StatusRecord reports session lifecycle and command outcomes.
type StatusRecord struct {
	State   string `json:"state"`
	Detail  string `json:"detail,omitempty"`
	Warning bool   `json:"warning,omitempty"`
}

// RecordFrom converts an event into its wire record.
func RecordFrom(ev Event) Record {
	rec := Record{
		Type:   ev.Kind().String(),
		Symbol: ev.Symbol(),
		TsMs:   ev.CreatedAt().UnixMilli(),
	}
	switch e := ev.(type) {
	case MarketEvent:
		m := MarketRecord{
			Open:   e.Open,
			High:   e.High,
			Low:    e.Low,
			Close:  e.Close,
			Volume: e.Volume,
		}
		if len(e.Bids) > 0 {
			m.Bid = e.Bids[0].Price
		}
		if len(e.Asks) > 0 {
			m.Ask = e.Asks[0].Price
		}
		rec.Market = &m
	case SignalEvent:
		rec.Signal = &SignalRecord{
			Direction: e.Side.String(),
			Strength:  e.Strength,
			Source:    e.Source,
		}
	case FillEvent:
		rec.Fill = &FillRecord{
			OrderID:    e.OrderID,
			Direction:  e.Side.String(),
			Quantity:   e.Quantity,
			FillCost:   e.FillPrice,
			Commission: e.Commission,
		}
	}
	return rec
}

// StatusOf builds a status record for a session.
func StatusOf(symbol, state, detail string, warning bool) Record {
	return Record{
		Type:   "STATUS",
		Symbol: symbol,
		Status: &StatusRecord{State: state, Detail: detail, Warning: warning},
	}
}

// CommandMessage is the inbound control message accepted over the streaming
// transport. Action carries session verbs (START, STOP, PAUSE, STEP, RESUME,
// METRICS); Type carries engine updates (UPDATE_SPEED, UPDATE_PARAMS).
type CommandMessage struct {
	Action string         `json:"action,omitempty"`
	Type   string         `json:"type,omitempty"`
	Symbol string         `json:"symbol,omitempty"`
	Value  any            `json:"value,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}
