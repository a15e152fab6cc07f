package feed

import (
	"context"
	"io"
	"time"
)

// Bar is one OHLCV record. Feeds produce bars in ascending time order.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Feed is a lazy sequence of bars, finite or infinite. Next returns io.EOF
// when the feed is exhausted; any other error terminates the consuming run.
type Feed interface {
	Next(ctx context.Context) (Bar, error)
	Close() error
}

// Limit caps a feed at n bars. A non-positive n leaves the feed unbounded.
func Limit(f Feed, n int) Feed {
	if n <= 0 {
		return f
	}
	return &limited{inner: f, remaining: n}
}

type limited struct {
	inner     Feed
	remaining int
}

func (l *limited) Next(ctx context.Context) (Bar, error) {
	if l.remaining <= 0 {
		return Bar{}, io.EOF
	}
	bar, err := l.inner.Next(ctx)
	if err != nil {
		return Bar{}, err
	}
	l.remaining--
	return bar, nil
}

func (l *limited) Close() error { return l.inner.Close() }
