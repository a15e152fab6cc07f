// Package sim implements the event-driven simulation engine: a single
// cooperative loop that generates market ticks, routes orders through a
// latency buffer into a fill simulator, and accepts external control
// commands at iteration boundaries only.
package sim

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/feed"
	"main/internal/obs"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/strategy"
)

var (
	ErrAlreadyStarted = errors.New("engine already started")
	ErrEngineStopped  = errors.New("engine stopped")
	ErrInboxFull      = errors.New("command inbox full")
)

// Deps are the engine's collaborators.
type Deps struct {
	Feed     feed.Feed
	Strategy strategy.Strategy
	Sink     Sink
	Metrics  *obs.Metrics
	Risk     risk.Config
}

// Engine owns the event queue, the clock, the latency buffer, and the
// strategy for one simulation run. The loop goroutine is the only writer of
// State and the only consumer of the event queue; external control arrives
// through a bounded command inbox drained at iteration boundaries.
type Engine struct {
	cfg     Config
	feed    feed.Feed
	strat   strategy.Strategy
	preRisk *risk.Engine
	exec    *Executor
	buffer  *LatencyBuffer
	tracker *Tracker
	sink    Sink
	metrics *obs.Metrics

	queue bus.FIFO[schema.Event]
	inbox *bus.Mailbox[Command]

	state       State
	acct        account
	lastMid     float64
	nextOrderID uint64
	ticks       int
	fills       []schema.FillEvent
	equity      []EquityPoint
	status      RunStatus
	runErr      error

	started  uint32
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New validates the config and assembles an engine. Run must be called
// exactly once to start the loop.
func New(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if deps.Feed == nil {
		return nil, errors.New("engine feed is nil")
	}
	if deps.Strategy == nil {
		return nil, errors.New("engine strategy is nil")
	}
	sink := deps.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		cfg:     cfg,
		feed:    deps.Feed,
		strat:   deps.Strategy,
		preRisk: risk.NewEngine(deps.Risk),
		exec:    NewExecutor(cfg.MakerFee, cfg.TakerFee, cfg.SlippagePct),
		buffer:  NewLatencyBuffer(cfg.Latency),
		tracker: NewTracker(),
		sink:    sink,
		metrics: deps.Metrics,
		inbox:   bus.NewMailbox[Command](cfg.InboxSize),
		state: State{
			Speed:       cfg.Speed,
			MakerFee:    cfg.MakerFee,
			TakerFee:    cfg.TakerFee,
			SlippagePct: cfg.SlippagePct,
			Latency:     cfg.Latency,
		},
		acct:   account{cash: cfg.Cash},
		status: RunStopped,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Submit posts a command to the loop without blocking. Stop commands are
// routed through Stop so shutdown is observed even with a full inbox.
func (e *Engine) Submit(cmd Command) error {
	if cmd.Type == CommandStop {
		e.Stop()
		return nil
	}
	select {
	case <-e.done:
		return ErrEngineStopped
	default:
	}
	if err := e.inbox.TryPost(cmd); err != nil {
		e.metrics.IncInboxDrop()
		if errors.Is(err, bus.ErrMailboxFull) {
			return ErrInboxFull
		}
		return ErrEngineStopped
	}
	return nil
}

// Stop requests termination. Idempotent; the loop observes it within one
// iteration, interrupting any in-progress tick wait immediately.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

// Done is closed when the loop has exited and Result is safe to read.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Result returns the run outcome. Valid only after Done is closed.
func (e *Engine) Result() Result {
	_, dropped := e.tracker.Counts()
	return Result{
		Status:        e.status,
		Err:           e.runErr,
		Ticks:         e.ticks,
		Fills:         e.fills,
		Equity:        e.equity,
		Position:      e.acct.position,
		Cash:          e.acct.cash,
		Commission:    e.acct.commission,
		FinalEquity:   e.acct.equity(e.lastMid),
		DroppedOrders: dropped,
	}
}

// Run drives the loop until a stop command, context cancellation, or feed
// exhaustion. The returned error is non-nil only for a failed feed; normal
// termination is reported through Result.
func (e *Engine) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&e.started, 0, 1) {
		return ErrAlreadyStarted
	}
	defer close(e.done)

	e.state.Running = true
	logs.Infof("simulation started, symbol: %s, speed: %v", e.cfg.Symbol, e.state.Speed)

	for {
		if !e.awaitNextTick(ctx) {
			e.status = RunStopped
			break
		}

		iterStart := time.Now()
		bar, err := e.feed.Next(ctx)
		if err != nil {
			e.status = e.feedTerminalStatus(err)
			break
		}

		e.state.LastEventTime = bar.Time
		e.queue.Push(e.marketEventFrom(bar))
		e.drainQueue()
		e.executeDue()
		e.ticks++
		e.equity = append(e.equity, EquityPoint{Time: bar.Time, Equity: e.acct.equity(e.lastMid)})
		e.metrics.ObserveTick(time.Since(iterStart))
	}

	e.shutdown()
	if e.status == RunFailed {
		return e.runErr
	}
	return nil
}

// awaitNextTick applies pending commands, honors pause/step, and paces the
// next tick by the current speed multiplier. It returns false when the loop
// must terminate. Commands take effect only here, never mid-drain.
func (e *Engine) awaitNextTick(ctx context.Context) bool {
	for {
		e.drainInbox()
		select {
		case <-ctx.Done():
			return false
		case <-e.stopCh:
			return false
		default:
		}

		if e.state.Paused && !e.state.StepRequested {
			if !e.awaitResume(ctx) {
				return false
			}
			continue
		}

		if e.state.StepRequested {
			// one tick's worth of processing, then back to paused
			e.state.StepRequested = false
			return true
		}
		if e.ticks == 0 {
			return true
		}
		interrupted, alive := e.waitScaled(ctx)
		if !alive {
			return false
		}
		if interrupted {
			continue
		}
		return true
	}
}

// waitScaled waits one tick interval scaled by the speed multiplier. The
// multiplier is re-read whenever a command arrives, so a mid-wait speed
// change applies to the remaining fraction of this wait. Returns
// interrupted=true when control state changed and the caller must
// re-evaluate pause/stop before ticking.
func (e *Engine) waitScaled(ctx context.Context) (interrupted, alive bool) {
	remaining := 1.0
	for remaining > 0 {
		scaled := ScaleInterval(e.cfg.TickInterval, e.state.Speed)
		if scaled <= 0 {
			return false, true
		}
		wait := time.Duration(remaining * float64(scaled))
		timer := time.NewTimer(wait)
		start := time.Now()

		select {
		case <-ctx.Done():
			timer.Stop()
			return false, false
		case <-e.stopCh:
			timer.Stop()
			return false, false
		case cmd, ok := <-e.inbox.C():
			timer.Stop()
			if !ok {
				return false, false
			}
			remaining -= float64(time.Since(start)) / float64(scaled)
			if remaining < 0 {
				remaining = 0
			}
			e.apply(cmd)
			if e.state.Paused {
				return true, true
			}
		case <-timer.C:
			return false, true
		}
	}
	return false, true
}

// awaitResume blocks while paused until a command or termination wakes the
// loop. No market events are produced while suspended here.
func (e *Engine) awaitResume(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-e.stopCh:
		return false
	case cmd, ok := <-e.inbox.C():
		if !ok {
			return false
		}
		e.apply(cmd)
		return true
	}
}

func (e *Engine) drainInbox() {
	for {
		select {
		case cmd, ok := <-e.inbox.C():
			if !ok {
				return
			}
			e.apply(cmd)
		default:
			return
		}
	}
}

// apply mutates engine state for one command. Invalid payloads are logged
// and ignored; they never stop the loop.
func (e *Engine) apply(cmd Command) {
	switch cmd.Type {
	case CommandPause:
		if !e.state.Paused {
			e.state.Paused = true
			logs.Info("simulation paused")
		}
	case CommandResume:
		if e.state.Paused {
			e.state.Paused = false
			e.state.StepRequested = false
			logs.Info("simulation resumed")
		}
	case CommandStep:
		if e.state.Paused {
			e.state.StepRequested = true
		} else {
			logs.Warnf("step ignored: simulation not paused")
		}
	case CommandSetSpeed:
		if cmd.Speed < 0 {
			logs.Warnf("speed update rejected, value: %v", cmd.Speed)
			return
		}
		e.state.Speed = cmd.Speed
		logs.Infof("speed updated, multiplier: %v", cmd.Speed)
	case CommandUpdateParams:
		rejected := e.strat.Params().Update(cmd.Params)
		if len(rejected) > 0 {
			logs.Warnf("param update rejected keys: %v", rejected)
		}
	default:
		logs.Warnf("unknown command ignored, type: %d", cmd.Type)
	}
}

// drainQueue dispatches every queued event in arrival order. The batch runs
// to completion before the loop re-checks control state, so each drain
// cycle is atomic with respect to external commands.
func (e *Engine) drainQueue() {
	for {
		ev, ok := e.queue.Pop()
		if !ok {
			return
		}
		e.dispatch(ev)
	}
}

func (e *Engine) dispatch(ev schema.Event) {
	e.metrics.IncEvent(ev.Kind())
	switch v := ev.(type) {
	case schema.MarketEvent:
		e.lastMid = v.Mid()
		e.publish(schema.RecordFrom(v))
		for _, out := range e.strat.OnMarket(v) {
			if order, ok := out.(schema.OrderEvent); ok {
				e.nextOrderID++
				order.ID = e.nextOrderID
				e.queue.Push(order)
				continue
			}
			e.queue.Push(out)
		}
	case schema.OrderEvent:
		e.intakeOrder(v)
	case schema.FillEvent:
		if err := e.tracker.ApplyFill(v.OrderID); err != nil {
			logs.Errorf("fill suppressed, order: %d, err: %+v", v.OrderID, err)
			return
		}
		e.acct.applyFill(v)
		e.fills = append(e.fills, v)
		e.publish(schema.RecordFrom(v))
	case schema.SignalEvent:
		e.publish(schema.RecordFrom(v))
	}
}

func (e *Engine) intakeOrder(order schema.OrderEvent) {
	decision := e.preRisk.Evaluate(order, risk.StateView{
		Position:       e.acct.position,
		ReferencePrice: e.lastMid,
	})
	if !decision.Allowed() {
		logs.Warnf("order rejected, id: %d, reason: %s", order.ID, decision.Reason)
		e.metrics.IncRejectedOrder()
		return
	}
	if err := e.tracker.ApplyAccept(order.ID); err != nil {
		logs.Errorf("order intake failed, id: %d, err: %+v", order.ID, err)
		return
	}
	e.buffer.Add(order, e.state.LastEventTime)
}

// executeDue fills all orders whose latency has elapsed. Resulting fill
// events are queued for the next drain cycle.
func (e *Engine) executeDue() {
	for _, order := range e.buffer.Due(e.state.LastEventTime) {
		fill, err := e.exec.Execute(order, e.lastMid, e.state.LastEventTime)
		if err != nil {
			logs.Warnf("execution rejected, order: %d, err: %+v", order.ID, err)
			e.metrics.IncRejectedOrder()
			if dropErr := e.tracker.ApplyDrop(order.ID); dropErr != nil {
				logs.Errorf("drop failed, order: %d, err: %+v", order.ID, dropErr)
			}
			continue
		}
		e.queue.Push(fill)
	}
}

func (e *Engine) marketEventFrom(bar feed.Bar) schema.MarketEvent {
	half := bar.Close * e.cfg.SpreadPct / 200
	step := half
	if step == 0 {
		step = bar.Close * 0.0001
	}
	bids := make([]schema.Level, 0, 3)
	asks := make([]schema.Level, 0, 3)
	size := bar.Volume
	if size <= 0 {
		size = 1
	}
	for i := 0; i < 3; i++ {
		depth := float64(i) * step
		bids = append(bids, schema.Level{Price: bar.Close - half - depth, Size: size / float64(i+1)})
		asks = append(asks, schema.Level{Price: bar.Close + half + depth, Size: size / float64(i+1)})
	}
	return schema.NewMarketEvent(e.cfg.Symbol, bar.Time, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bids, asks)
}

func (e *Engine) feedTerminalStatus(err error) RunStatus {
	switch {
	case errors.Is(err, io.EOF):
		logs.Infof("feed exhausted after %d ticks", e.ticks)
		return RunCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return RunStopped
	default:
		logs.Errorf("feed failed, err: %+v", err)
		e.runErr = errors.Wrap(err, "feed")
		return RunFailed
	}
}

// shutdown finishes the in-flight drain, then discards pending orders
// without fills. Discarded orders can never fill after the loop exits.
func (e *Engine) shutdown() {
	e.drainQueue()
	for _, order := range e.buffer.DrainAll() {
		if err := e.tracker.ApplyDrop(order.ID); err != nil {
			logs.Errorf("drop failed, order: %d, err: %+v", order.ID, err)
		}
		e.metrics.IncDroppedPending()
	}
	e.state.Running = false
	if err := e.feed.Close(); err != nil {
		logs.Warnf("feed close failed, err: %+v", err)
	}
	filled, dropped := e.tracker.Counts()
	logs.Infof("simulation finished, status: %s, ticks: %d, fills: %d, dropped: %d",
		e.status, e.ticks, filled, dropped)
}

func (e *Engine) publish(rec schema.Record) {
	if err := e.sink.Publish(rec); err != nil {
		e.metrics.IncSinkError()
		logs.Warnf("sink publish failed, err: %+v", err)
	}
}
