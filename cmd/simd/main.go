package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"main/internal/ops"
	"main/internal/server"
	"main/internal/store"
)

const defaultListenAddr = ":8080"

func main() {
	addr := flag.String("addr", "", "Listen address (default: config server.addr or :8080)")
	configPath := flag.String("config", "", "Path to JSON config")
	profileAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = loaded.Server.Addr
	}
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "simd",
			ServerAddress:   *profileAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	var results *store.Store
	if loaded.Store.DSN != "" {
		results, err = store.Open(store.Option{ConnString: loaded.Store.DSN})
		if err != nil {
			log.Fatalf("result store open failed: %v", err)
		}
		defer results.Close()
	}

	httpSrv := &http.Server{
		Addr:    listenAddr,
		Handler: server.New(loaded, results).Routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", listenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve failed: %v", err)
	}
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Parse([]byte(`{"symbol": "BTCUSDT"}`))
	}
	return ops.Load(path)
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
