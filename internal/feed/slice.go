package feed

import (
	"context"
	"io"
)

// Slice replays a fixed set of bars in order. Used for tests and for
// journal playback.
type Slice struct {
	bars  []Bar
	index int
}

// NewSlice creates a finite feed over the given bars.
func NewSlice(bars []Bar) *Slice {
	return &Slice{bars: bars}
}

// Next returns the next bar or io.EOF when exhausted.
func (s *Slice) Next(ctx context.Context) (Bar, error) {
	if err := ctx.Err(); err != nil {
		return Bar{}, err
	}
	if s.index >= len(s.bars) {
		return Bar{}, io.EOF
	}
	bar := s.bars[s.index]
	s.index++
	return bar, nil
}

// Close is a no-op.
func (s *Slice) Close() error { return nil }
