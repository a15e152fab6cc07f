package ops

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/feed"
	"main/internal/journal"
	"main/internal/risk"
	"main/internal/sim"
)

// Feed source kinds accepted by FeedConfig.Kind.
const (
	FeedSynthetic  = "synthetic"
	FeedClickHouse = "clickhouse"
	FeedJournal    = "journal"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Symbol         string  `json:"symbol"`
	TickIntervalMs int64   `json:"tickIntervalMs"`
	Speed          float64 `json:"speed"`
	MakerFee       float64 `json:"makerFee"`
	TakerFee       float64 `json:"takerFee"`
	SlippagePct    float64 `json:"slippagePct"`
	LatencyMs      int64   `json:"latencyMs"`
	SpreadPct      float64 `json:"spreadPct"`
	Cash           float64 `json:"cash"`
	InboxSize      int     `json:"inboxSize"`

	Strategy StrategyConfig `json:"strategy"`
	Risk     risk.Config    `json:"risk"`
	Feed     FeedConfig     `json:"feed"`
	Server   ServerConfig   `json:"server"`
	Store    StoreConfig    `json:"store"`
	Journal  JournalConfig  `json:"journal"`
}

// StrategyConfig names the strategy and its parameter overrides.
type StrategyConfig struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
}

// FeedConfig selects and configures the market data source.
type FeedConfig struct {
	Kind    string `json:"kind"`
	MaxBars int    `json:"maxBars"`

	Synthetic  SyntheticFeedConfig  `json:"synthetic"`
	ClickHouse ClickHouseFeedConfig `json:"clickhouse"`

	// journal replay
	Path string `json:"path"`
}

// SyntheticFeedConfig configures the random-walk generator.
type SyntheticFeedConfig struct {
	IntervalMs int64   `json:"intervalMs"`
	BasePrice  float64 `json:"basePrice"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
	BaseVolume float64 `json:"baseVolume"`
	Seed       int64   `json:"seed"`
}

// ClickHouseFeedConfig configures the historical candle source.
type ClickHouseFeedConfig struct {
	Addr     string `json:"addr"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Table    string `json:"table"`
	Interval string `json:"interval"`
	From     string `json:"from"` // RFC 3339
	To       string `json:"to"`
}

// ServerConfig configures the streaming transport.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// StoreConfig configures the run-result database. Empty DSN disables it.
type StoreConfig struct {
	DSN string `json:"dsn"`
}

// JournalConfig configures event journaling. Empty path disables it.
type JournalConfig struct {
	Path      string `json:"path"`
	QueueSize int    `json:"queueSize"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Sim      sim.Config
	Strategy StrategyConfig
	Risk     risk.Config
	Feed     FeedConfig
	Server   ServerConfig
	Store    StoreConfig
	Journal  JournalConfig
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config file")
	}
	return Parse(data)
}

// Parse resolves raw JSON config bytes.
func Parse(data []byte) (Loaded, error) {
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	loaded := Loaded{
		Sim: sim.Config{
			Symbol:       cfg.Symbol,
			TickInterval: time.Duration(cfg.TickIntervalMs) * time.Millisecond,
			Speed:        cfg.Speed,
			MakerFee:     cfg.MakerFee,
			TakerFee:     cfg.TakerFee,
			SlippagePct:  cfg.SlippagePct,
			Latency:      time.Duration(cfg.LatencyMs) * time.Millisecond,
			SpreadPct:    cfg.SpreadPct,
			Cash:         cfg.Cash,
			InboxSize:    cfg.InboxSize,
		},
		Strategy: cfg.Strategy,
		Risk:     cfg.Risk,
		Feed:     cfg.Feed,
		Server:   cfg.Server,
		Store:    cfg.Store,
		Journal:  cfg.Journal,
	}
	if loaded.Strategy.Name == "" {
		loaded.Strategy.Name = "momentum"
	}
	if loaded.Feed.Kind == "" {
		loaded.Feed.Kind = FeedSynthetic
	}
	if err := validate(loaded); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func validate(cfg Loaded) error {
	switch cfg.Feed.Kind {
	case FeedSynthetic:
	case FeedClickHouse:
		if cfg.Feed.ClickHouse.Addr == "" {
			return errors.New("invalid config: feed.clickhouse.addr is empty")
		}
	case FeedJournal:
		if cfg.Feed.Path == "" {
			return errors.New("invalid config: feed.path is empty")
		}
	default:
		return errors.Errorf("invalid config: unknown feed kind %q", cfg.Feed.Kind)
	}
	if cfg.Feed.MaxBars < 0 {
		return errors.New("invalid config: feed.maxBars must be >= 0")
	}
	if cfg.Sim.Latency < 0 {
		return errors.New("invalid config: latencyMs must be >= 0")
	}
	return nil
}

// OpenFeed builds the configured market data source.
func (c Loaded) OpenFeed(ctx context.Context) (feed.Feed, error) {
	var (
		f   feed.Feed
		err error
	)
	switch c.Feed.Kind {
	case FeedSynthetic:
		f, err = feed.NewSynthetic(feed.SyntheticConfig{
			Interval:   time.Duration(c.Feed.Synthetic.IntervalMs) * time.Millisecond,
			BasePrice:  c.Feed.Synthetic.BasePrice,
			Drift:      c.Feed.Synthetic.Drift,
			Volatility: c.Feed.Synthetic.Volatility,
			BaseVolume: c.Feed.Synthetic.BaseVolume,
			Seed:       c.Feed.Synthetic.Seed,
		})
	case FeedClickHouse:
		f, err = c.openClickHouse(ctx)
	case FeedJournal:
		var bars []feed.Bar
		bars, err = journal.ReadBars(c.Feed.Path)
		if err == nil {
			f = feed.NewSlice(bars)
		}
	default:
		return nil, errors.Errorf("unknown feed kind %q", c.Feed.Kind)
	}
	if err != nil {
		return nil, err
	}
	if c.Feed.MaxBars > 0 {
		f = feed.Limit(f, c.Feed.MaxBars)
	}
	return f, nil
}

func (c Loaded) openClickHouse(ctx context.Context) (feed.Feed, error) {
	ch := c.Feed.ClickHouse
	cfg := feed.ClickHouseConfig{
		Addr:     ch.Addr,
		Database: ch.Database,
		Username: ch.Username,
		Password: ch.Password,
		Table:    ch.Table,
		Symbol:   c.Sim.Symbol,
		Interval: ch.Interval,
	}
	if ch.From != "" {
		from, err := time.Parse(time.RFC3339, ch.From)
		if err != nil {
			return nil, errors.Wrap(err, "parse feed.clickhouse.from")
		}
		cfg.From = from
	}
	if ch.To != "" {
		to, err := time.Parse(time.RFC3339, ch.To)
		if err != nil {
			return nil, errors.Wrap(err, "parse feed.clickhouse.to")
		}
		cfg.To = to
	}
	return feed.OpenClickHouse(ctx, cfg)
}
