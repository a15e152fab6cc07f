package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/journal"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/sim"
	"main/internal/store"
	"main/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	symbol := flag.String("symbol", "", "Symbol override")
	strategyName := flag.String("strategy", "", "Strategy override")
	speed := flag.Float64("speed", 0, "Speed multiplier (0=as fast as possible)")
	maxBars := flag.Int("bars", 0, "Max bars to process (0=config value)")
	journalPath := flag.String("journal", "", "Journal output path override")
	save := flag.Bool("save", false, "Persist the result to the configured store")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *symbol != "" {
		loaded.Sim.Symbol = *symbol
	}
	if *strategyName != "" {
		loaded.Strategy.Name = *strategyName
	}
	if *maxBars > 0 {
		loaded.Feed.MaxBars = *maxBars
	}
	if *journalPath != "" {
		loaded.Journal.Path = *journalPath
	}
	loaded.Sim.Speed = *speed

	f, err := loaded.OpenFeed(ctx)
	if err != nil {
		log.Fatalf("feed open failed: %v", err)
	}
	strat, err := strategy.Default().New(loaded.Strategy.Name, loaded.Sim.Symbol, loaded.Strategy.Params)
	if err != nil {
		log.Fatalf("strategy init failed: %v", err)
	}

	metrics := obs.NewMetrics()
	var sink sim.Sink = sim.NopSink{}
	var jw *journal.Writer
	if loaded.Journal.Path != "" {
		jw, err = journal.NewWriter(journal.Config{
			Path:      loaded.Journal.Path,
			QueueSize: loaded.Journal.QueueSize,
		})
		if err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		if err := jw.Start(ctx); err != nil {
			log.Fatalf("journal start failed: %v", err)
		}
		sink = jw
	}

	engine, err := sim.New(loaded.Sim, sim.Deps{
		Feed:     f,
		Strategy: strat,
		Sink:     sink,
		Metrics:  metrics,
		Risk:     loaded.Risk,
	})
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	started := time.Now().UTC()
	runErr := engine.Run(ctx)
	finished := time.Now().UTC()
	result := engine.Result()

	if jw != nil {
		if err := jw.Close(); err != nil {
			log.Printf("journal close failed: %v", err)
		}
	}

	fmt.Printf("status:         %s\n", result.Status)
	if result.Err != nil {
		fmt.Printf("error:          %v\n", result.Err)
	}
	fmt.Printf("ticks:          %d\n", result.Ticks)
	fmt.Printf("fills:          %d\n", len(result.Fills))
	fmt.Printf("dropped orders: %d\n", result.DroppedOrders)
	fmt.Printf("position:       %.8f\n", result.Position)
	fmt.Printf("cash:           %.2f\n", result.Cash)
	fmt.Printf("commission:     %.2f\n", result.Commission)
	fmt.Printf("final equity:   %.2f\n", result.FinalEquity)
	fmt.Printf("elapsed:        %s\n", finished.Sub(started).Round(time.Millisecond))

	snapshot := metrics.Snapshot()
	fmt.Printf("metrics: events=%v rejected=%d dropped_pending=%d tick_avg=%s tick_max=%s\n",
		snapshot.EventCounts, snapshot.RejectedOrders, snapshot.DroppedPending,
		time.Duration(snapshot.TickAvgNs), time.Duration(snapshot.TickMaxNs))

	if *save {
		if loaded.Store.DSN == "" {
			log.Fatalf("save requested but store.dsn is not configured")
		}
		results, err := store.Open(store.Option{ConnString: loaded.Store.DSN})
		if err != nil {
			log.Fatalf("result store open failed: %v", err)
		}
		defer results.Close()

		meta := store.RunMeta{
			RunID:    obs.NewRunIDGenerator(0).Next(),
			Symbol:   loaded.Sim.Symbol,
			Strategy: strat.Name(),
			Started:  started,
			Finished: finished,
		}
		id, err := results.SaveResult(context.Background(), meta, result)
		if err != nil {
			log.Fatalf("result save failed: %v", err)
		}
		fmt.Printf("saved run:      %d\n", id)
	}

	if runErr != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Parse([]byte(`{"symbol": "BTCUSDT"}`))
	}
	return ops.Load(path)
}
