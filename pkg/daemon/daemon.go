// Package daemon orchestrates the witness monitors: it starts them,
// buffers their callbacks, and flushes batches to a sink on a size
// threshold, a periodic timer, or stop.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenttrust/core/pkg/witness"
)

const flushInterval = 5 * time.Second

// Sink receives a flushed batch of events. A sink that returns an error (or
// panics) must not crash the daemon; the buffer is cleared regardless.
type Sink func(batch []witness.RawEvent) error

// Config configures a Daemon.
type Config struct {
	Monitors  map[string]witness.Monitor
	Sink      Sink
	BufferSize int // flush immediately once len(buffer) >= BufferSize
	Logger    *slog.Logger
}

// Stats reports per-source event counts and the time of the last event,
// exposed via GetStats.
type Stats struct {
	EventsBySource map[string]int
	LastEventAt    map[string]time.Time
}

// Daemon runs the witness monitors on a single-threaded cooperative
// scheduler: monitor polls and the periodic flush timer all deliver onto
// the same buffer, serialized by mu.
type Daemon struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	buffer  []witness.RawEvent
	stats   Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Daemon from cfg.
func New(cfg Config) *Daemon {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "witness.daemon")
	}
	return &Daemon{
		cfg:    cfg,
		logger: cfg.Logger,
		stats: Stats{
			EventsBySource: make(map[string]int),
			LastEventAt:    make(map[string]time.Time),
		},
	}
}

// Start starts every registered monitor and the flush timer. Idempotent.
// A monitor that fails to start is logged and skipped; the daemon
// continues with whatever did start.
func (d *Daemon) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.mu.Unlock()

	for name, mon := range d.cfg.Monitors {
		name, mon := name, mon
		if err := mon.Start(d.callbackFor(name)); err != nil {
			d.logger.Warn("monitor_start_failed", "monitor", name, "error", err)
		}
	}

	d.wg.Add(1)
	go d.flushLoop()
}

// Stop signals all monitors to stop, cancels the flush timer, awaits a
// final flush, then returns. Idempotent.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	for name, mon := range d.cfg.Monitors {
		mon.Stop()
		d.logger.Debug("monitor_stopped", "monitor", name)
	}

	d.cancel()
	d.wg.Wait()
	d.flush()
}

func (d *Daemon) callbackFor(source string) func(witness.RawEvent) {
	return func(ev witness.RawEvent) {
		d.mu.Lock()
		if !d.running {
			d.mu.Unlock()
			return
		}
		d.buffer = append(d.buffer, ev)
		d.stats.EventsBySource[source]++
		d.stats.LastEventAt[source] = time.Now()
		shouldFlush := len(d.buffer) >= d.cfg.BufferSize
		d.mu.Unlock()

		if shouldFlush {
			d.flush()
		}
	}
}

func (d *Daemon) flushLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.flush()
		}
	}
}

// flush delivers the buffered batch to the sink and always empties the
// buffer afterward, even if the sink panics or errors. Each flush gets an
// opaque batch ID, logged on failure, so a sink error can be correlated
// back to the flush that produced it without relying on timestamps.
func (d *Daemon) flush() {
	d.mu.Lock()
	if len(d.buffer) == 0 {
		d.mu.Unlock()
		return
	}
	batch := d.buffer
	d.buffer = nil
	d.mu.Unlock()

	batchID := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sink_panicked", "batch_id", batchID, "panic", r)
		}
	}()
	if d.cfg.Sink == nil {
		return
	}
	if err := d.cfg.Sink(batch); err != nil {
		d.logger.Error("sink_failed", "batch_id", batchID, "error", err, "events", len(batch))
	}
}

// GetStats returns a snapshot of per-source counters and last-event times.
func (d *Daemon) GetStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := Stats{
		EventsBySource: make(map[string]int, len(d.stats.EventsBySource)),
		LastEventAt:    make(map[string]time.Time, len(d.stats.LastEventAt)),
	}
	for k, v := range d.stats.EventsBySource {
		out.EventsBySource[k] = v
	}
	for k, v := range d.stats.LastEventAt {
		out.LastEventAt[k] = v
	}
	return out
}
