package server

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"

	"main/internal/journal"
	"main/internal/obs"
	"main/internal/schema"
	"main/internal/sim"
	"main/internal/store"
)

const outboundQueueSize = 256

// session serves one connection. The read loop is the only goroutine that
// starts, stops or swaps the active run, so run state needs no locking; the
// engine loop and the write pump only see their own captured references.
type session struct {
	srv  *Server
	conn *websocket.Conn
	out  chan schema.Record
	run  *activeRun
}

type activeRun struct {
	engine   *sim.Engine
	metrics  *obs.Metrics
	journal  *journal.Writer
	runID    string
	symbol   string
	strategy string
	started  time.Time
	done     chan struct{}
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	return &session{
		srv:  srv,
		conn: conn,
		out:  make(chan schema.Record, outboundQueueSize),
	}
}

func (s *session) serve() {
	defer s.conn.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump()
	}()

	for {
		var msg schema.CommandMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			break
		}
		s.dispatch(msg)
	}

	s.stopRun()
	close(s.out)
	wg.Wait()
}

func (s *session) writePump() {
	for rec := range s.out {
		if err := s.conn.WriteJSON(rec); err != nil {
			logs.Warnf("session write failed, err: %+v", err)
			return
		}
	}
}

// trySend never blocks; a slow or dead client drops records instead of
// stalling the engine loop.
func (s *session) trySend(rec schema.Record) {
	select {
	case s.out <- rec:
	default:
	}
}

func (s *session) dispatch(msg schema.CommandMessage) {
	if msg.Action != "" {
		switch strings.ToUpper(msg.Action) {
		case "START":
			s.startRun(msg)
		case "STOP":
			s.stopRun()
		case "PAUSE":
			s.submit(sim.Command{Type: sim.CommandPause})
		case "STEP":
			s.submit(sim.Command{Type: sim.CommandStep})
		case "RESUME":
			s.submit(sim.Command{Type: sim.CommandResume})
		case "METRICS":
			s.sendMetrics()
		default:
			s.warn("unknown action: " + msg.Action)
		}
		return
	}

	switch strings.ToUpper(msg.Type) {
	case "UPDATE_SPEED":
		speed, ok := msg.Value.(float64)
		if !ok || speed < 0 {
			s.warn("invalid speed value")
			return
		}
		s.submit(sim.Command{Type: sim.CommandSetSpeed, Speed: speed})
	case "UPDATE_PARAMS":
		if len(msg.Params) == 0 {
			s.warn("empty params update")
			return
		}
		s.submit(sim.Command{Type: sim.CommandUpdateParams, Params: msg.Params})
	default:
		s.warn("unknown command type: " + msg.Type)
	}
}

func (s *session) startRun(msg schema.CommandMessage) {
	s.stopRun()

	cfg := s.srv.cfg
	if msg.Symbol != "" {
		cfg.Sim.Symbol = msg.Symbol
	}

	f, err := cfg.OpenFeed(context.Background())
	if err != nil {
		s.warn("open feed failed: " + err.Error())
		return
	}
	strat, err := s.srv.strategies.New(cfg.Strategy.Name, cfg.Sim.Symbol, cfg.Strategy.Params)
	if err != nil {
		_ = f.Close()
		s.warn("build strategy failed: " + err.Error())
		return
	}

	runID := s.srv.runIDs.Next()
	metrics := obs.NewMetrics()
	sink := sim.Sink(sessionSink{out: s.out, metrics: metrics})
	var jw *journal.Writer
	if cfg.Journal.Path != "" {
		jw, err = journal.NewWriter(journal.Config{
			Path:      runJournalPath(cfg.Journal.Path, runID),
			QueueSize: cfg.Journal.QueueSize,
		})
		if err == nil {
			err = jw.Start(context.Background())
		}
		if err != nil {
			logs.Warnf("journal disabled, run: %s, err: %+v", runID, err)
			jw = nil
		} else {
			sink = sim.Fanout{sink, jw}
		}
	}

	engine, err := sim.New(cfg.Sim, sim.Deps{
		Feed:     f,
		Strategy: strat,
		Sink:     sink,
		Metrics:  metrics,
		Risk:     cfg.Risk,
	})
	if err != nil {
		_ = f.Close()
		if jw != nil {
			_ = jw.Close()
		}
		s.warn("start failed: " + err.Error())
		return
	}

	run := &activeRun{
		engine:   engine,
		metrics:  metrics,
		journal:  jw,
		runID:    runID,
		symbol:   cfg.Sim.Symbol,
		strategy: strat.Name(),
		started:  time.Now().UTC(),
		done:     make(chan struct{}),
	}
	s.run = run
	s.trySend(schema.StatusOf(run.symbol, "STARTED", runID, false))
	go s.runEngine(run)
}

func (s *session) runEngine(run *activeRun) {
	defer close(run.done)

	runErr := run.engine.Run(context.Background())
	result := run.engine.Result()

	detail := ""
	if runErr != nil {
		detail = runErr.Error()
	}
	s.trySend(schema.StatusOf(run.symbol, string(result.Status), detail, runErr != nil))

	if run.journal != nil {
		if err := run.journal.Close(); err != nil {
			logs.Warnf("journal close failed, run: %s, err: %+v", run.runID, err)
		}
	}
	if s.srv.results != nil {
		meta := store.RunMeta{
			RunID:    run.runID,
			Symbol:   run.symbol,
			Strategy: run.strategy,
			Started:  run.started,
			Finished: time.Now().UTC(),
		}
		if _, err := s.srv.results.SaveResult(context.Background(), meta, result); err != nil {
			logs.Errorf("persist run failed, run: %s, err: %+v", run.runID, err)
		}
	}
	logs.Infof("run finished, id: %s, status: %s, ticks: %d, fills: %d, final equity: %.2f",
		run.runID, result.Status, result.Ticks, len(result.Fills), result.FinalEquity)
}

func (s *session) stopRun() {
	if s.run == nil {
		return
	}
	s.run.engine.Stop()
	<-s.run.done
	s.run = nil
}

func (s *session) submit(cmd sim.Command) {
	if s.run == nil {
		s.warn("no active run")
		return
	}
	if err := s.run.engine.Submit(cmd); err != nil {
		s.warn("command rejected: " + err.Error())
	}
}

func (s *session) sendMetrics() {
	if s.run == nil {
		s.warn("no active run")
		return
	}
	raw, err := json.Marshal(s.run.metrics.Snapshot())
	if err != nil {
		s.warn("metrics snapshot failed: " + err.Error())
		return
	}
	s.trySend(schema.Record{Type: "METRICS", Symbol: s.run.symbol, Metrics: raw})
}

func (s *session) warn(detail string) {
	symbol := s.srv.cfg.Sim.Symbol
	if s.run != nil {
		symbol = s.run.symbol
	}
	logs.Warnf("session command warning: %s", detail)
	s.trySend(schema.StatusOf(symbol, "WARNING", detail, true))
}

// sessionSink feeds engine records into the connection's outbound queue.
// Sends never block; overflow is counted against the run's metrics.
type sessionSink struct {
	out     chan<- schema.Record
	metrics *obs.Metrics
}

func (c sessionSink) Publish(rec schema.Record) error {
	select {
	case c.out <- rec:
	default:
		c.metrics.IncSinkError()
	}
	return nil
}

func runJournalPath(path, runID string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + runID + ext
}
