package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

var (
	ErrQueueFull      = errors.New("journal queue full")
	ErrClosed         = errors.New("journal writer closed")
	ErrNotStarted     = errors.New("journal writer not started")
	ErrAlreadyStarted = errors.New("journal writer already started")
)

// Writer appends records to a JSON-lines journal file from a buffered queue.
// Publish never blocks the caller and never performs file I/O itself, so a
// Writer is safe to hand to the engine as one of its record sinks.
type Writer struct {
	cfg Config
	ch  chan schema.Record
	wg  sync.WaitGroup
	err atomic.Value

	started uint32
	closed  uint32
}

// NewWriter creates a journal writer and ensures the target directory exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create journal dir")
		}
	}
	return &Writer{
		cfg: cfg,
		ch:  make(chan schema.Record, cfg.QueueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&w.started, 0, 1) {
		return ErrAlreadyStarted
	}
	file, err := os.OpenFile(w.cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "open journal file")
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, file)
	}()
	return nil
}

// Close stops the writer and flushes any buffered data.
func (w *Writer) Close() error {
	if atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		close(w.ch)
	}
	w.wg.Wait()
	return w.Err()
}

// Err returns the first error observed by the writer, if any.
func (w *Writer) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Publish enqueues a record without blocking.
func (w *Writer) Publish(rec schema.Record) error {
	if atomic.LoadUint32(&w.closed) != 0 {
		return ErrClosed
	}
	if atomic.LoadUint32(&w.started) == 0 {
		return ErrNotStarted
	}
	if err := w.Err(); err != nil {
		return err
	}
	select {
	case w.ch <- rec:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Writer) run(ctx context.Context, file *os.File) {
	buf := bufio.NewWriterSize(file, w.cfg.BufferSize)
	enc := json.NewEncoder(buf)

	var flushC <-chan time.Time
	if w.cfg.FlushInterval > 0 {
		ticker := time.NewTicker(w.cfg.FlushInterval)
		defer ticker.Stop()
		flushC = ticker.C
	}

	defer func() {
		if err := buf.Flush(); err != nil {
			w.setErr(err)
		}
		if err := file.Sync(); err != nil {
			w.setErr(err)
		}
		if err := file.Close(); err != nil {
			w.setErr(err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.drainNonBlocking(enc)
			return
		case rec, ok := <-w.ch:
			if !ok {
				return
			}
			if err := enc.Encode(rec); err != nil {
				w.setErr(err)
				return
			}
		case <-flushC:
			if err := buf.Flush(); err != nil {
				w.setErr(err)
				return
			}
		}
	}
}

func (w *Writer) drainNonBlocking(enc *json.Encoder) {
	for {
		select {
		case rec, ok := <-w.ch:
			if !ok {
				return
			}
			if err := enc.Encode(rec); err != nil {
				w.setErr(err)
				return
			}
		default:
			return
		}
	}
}

func (w *Writer) setErr(err error) {
	if err == nil {
		return
	}
	if w.err.Load() != nil {
		return
	}
	w.err.Store(err)
}
