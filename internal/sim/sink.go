package sim

import "main/internal/schema"

// Sink receives the serialized event stream. Delivery failures are the
// sink's concern; the loop logs and continues.
type Sink interface {
	Publish(rec schema.Record) error
}

// NopSink discards every record.
type NopSink struct{}

// Publish discards the record.
func (NopSink) Publish(schema.Record) error { return nil }

// Fanout delivers each record to every sink. A failing sink does not stop
// delivery to the others; the first error is returned for accounting.
type Fanout []Sink

// Publish delivers to all sinks.
func (f Fanout) Publish(rec schema.Record) error {
	var first error
	for _, s := range f {
		if err := s.Publish(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}
