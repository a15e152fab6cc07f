package feed

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/yanun0323/errors"
)

// SyntheticConfig controls the random-walk generator.
type SyntheticConfig struct {
	Start      time.Time
	Interval   time.Duration
	BasePrice  float64
	Drift      float64 // per-bar fractional drift
	Volatility float64 // per-bar fractional stddev
	BaseVolume float64
	Seed       int64 // 0 = seeded from wall clock
}

func (c SyntheticConfig) withDefaults() SyntheticConfig {
	if c.Start.IsZero() {
		c.Start = time.Now().UTC()
	}
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.BasePrice <= 0 {
		c.BasePrice = 100
	}
	if c.Volatility == 0 {
		c.Volatility = 0.001
	}
	if c.BaseVolume <= 0 {
		c.BaseVolume = 1
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UTC().UnixNano()
	}
	return c
}

// Validate checks the config is within supported ranges.
func (c SyntheticConfig) Validate() error {
	if c.Volatility < 0 {
		return errors.New("volatility must be >= 0")
	}
	if c.BasePrice < 0 {
		return errors.New("basePrice must be >= 0")
	}
	return nil
}

// Synthetic produces an infinite geometric random walk of bars.
type Synthetic struct {
	cfg  SyntheticConfig
	rng  *rand.Rand
	last float64
	next time.Time
}

// NewSynthetic creates a generator. The same seed reproduces the same walk.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Synthetic{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		last: cfg.BasePrice,
		next: cfg.Start,
	}, nil
}

// Next produces the next bar in the walk.
func (s *Synthetic) Next(ctx context.Context) (Bar, error) {
	if err := ctx.Err(); err != nil {
		return Bar{}, err
	}
	open := s.last
	ret := s.cfg.Drift + s.cfg.Volatility*s.rng.NormFloat64()
	closePrice := open * (1 + ret)
	if closePrice <= 0 {
		closePrice = open
	}
	wick := math.Abs(s.cfg.Volatility*s.rng.NormFloat64()) * open
	high := math.Max(open, closePrice) + wick
	low := math.Min(open, closePrice) - wick
	if low <= 0 {
		low = math.Min(open, closePrice)
	}
	volume := s.cfg.BaseVolume * (0.5 + s.rng.Float64())

	bar := Bar{
		Time:   s.next,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
	s.last = closePrice
	s.next = s.next.Add(s.cfg.Interval)
	return bar, nil
}

// Close is a no-op for the generator.
func (s *Synthetic) Close() error { return nil }
