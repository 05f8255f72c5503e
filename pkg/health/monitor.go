// Package health tracks whether each witness monitor is still producing
// events, so a monitor that silently stalls (a watcher goroutine that died,
// a poll loop stuck on a syscall) gets surfaced instead of just going quiet.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/agenttrust/core/pkg/daemon"
	"github.com/agenttrust/core/pkg/logger"
)

// Monitor polls a daemon's per-source stats and flags sources that have
// gone stale.
type Monitor struct {
	source        *daemon.Daemon
	checkInterval time.Duration
	staleness     time.Duration

	mu      sync.RWMutex
	known   map[string]*SourceHealth
	running bool

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	securityLog *logger.SecurityLogger
	onStale     StaleHandler
}

// SourceHealth holds liveness status for one witness source.
type SourceHealth struct {
	Source      string
	LastEventAt time.Time
	Stale       bool
}

// Copy returns a value copy safe to hand to callers outside the lock.
func (h SourceHealth) Copy() SourceHealth { return h }

// StaleHandler is invoked when a source transitions from live to stale.
type StaleHandler func(source string, lastEventAt time.Time)

// Config configures a Monitor.
type Config struct {
	CheckInterval time.Duration // how often to re-check staleness
	Staleness     time.Duration // no events within this window is stale
}

// DefaultConfig returns sane polling defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: 30 * time.Second,
		Staleness:     5 * time.Minute,
	}
}

// NewMonitor creates a health monitor over a running daemon.
func NewMonitor(source *daemon.Daemon, cfg Config) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = DefaultConfig().CheckInterval
	}
	if cfg.Staleness == 0 {
		cfg.Staleness = DefaultConfig().Staleness
	}

	return &Monitor{
		source:        source,
		checkInterval: cfg.CheckInterval,
		staleness:     cfg.Staleness,
		known:         make(map[string]*SourceHealth),
		ctx:           ctx,
		cancel:        cancel,
		securityLog:   logger.NewSecurityLogger(logger.Global().WithComponent("witness_health")),
	}
}

// SetStaleHandler sets the callback invoked when a source goes stale.
func (m *Monitor) SetStaleHandler(handler StaleHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStale = handler
}

// Start begins polling. Idempotent.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop()
}

// Stop halts polling and waits for the loop to exit. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// check compares the daemon's last-event timestamps against the staleness
// window and fires onStale for every source that just crossed it.
func (m *Monitor) check() {
	stats := m.source.GetStats()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for src, last := range stats.LastEventAt {
		h, seen := m.known[src]
		if !seen {
			h = &SourceHealth{Source: src}
			m.known[src] = h
		}
		h.LastEventAt = last

		wasStale := h.Stale
		h.Stale = now.Sub(last) > m.staleness

		if h.Stale && !wasStale {
			m.securityLog.LogWitnessCoverageGap(m.ctx, "monitor_stalled", "", src)
			if m.onStale != nil {
				m.onStale(src, last)
			}
		}
	}
}

// Snapshot returns the current liveness status of every observed source.
func (m *Monitor) Snapshot() []SourceHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SourceHealth, 0, len(m.known))
	for _, h := range m.known {
		out = append(out, h.Copy())
	}
	return out
}
