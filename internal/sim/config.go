package sim

import (
	"time"

	"github.com/yanun0323/errors"
)

const (
	defaultTickInterval = time.Second
	defaultCash         = 100_000
	defaultInboxSize    = 64
)

// Config defines one simulation run. Fees are fractional rates (0.001 =
// 10bps); SlippagePct and SpreadPct are percentages.
type Config struct {
	Symbol       string
	TickInterval time.Duration
	Speed        float64
	MakerFee     float64
	TakerFee     float64
	SlippagePct  float64
	Latency      time.Duration
	SpreadPct    float64
	Cash         float64
	InboxSize    int
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.Cash == 0 {
		c.Cash = defaultCash
	}
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	return c
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return errors.New("invalid sim config: Symbol is empty")
	}
	if c.Speed < 0 {
		return errors.New("invalid sim config: Speed must be >= 0")
	}
	if c.MakerFee < 0 || c.TakerFee < 0 {
		return errors.New("invalid sim config: fees must be >= 0")
	}
	if c.SlippagePct < 0 {
		return errors.New("invalid sim config: SlippagePct must be >= 0")
	}
	if c.Latency < 0 {
		return errors.New("invalid sim config: Latency must be >= 0")
	}
	if c.SpreadPct < 0 {
		return errors.New("invalid sim config: SpreadPct must be >= 0")
	}
	if c.Cash < 0 {
		return errors.New("invalid sim config: Cash must be >= 0")
	}
	return nil
}
