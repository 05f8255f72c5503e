package witness

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/agenttrust/core/pkg/ledger"
)

// ProcessMonitorConfig configures a ProcessMonitor.
type ProcessMonitorConfig struct {
	PollInterval time.Duration // default 500ms
	GatewayPID   int32         // tree root; used only when HasGateway is true
	HasGateway   bool          // false means passive mode (no tree restriction)
	Logger       *slog.Logger
}

// ProcessMonitor polls the host process table and emits process_spawned /
// process_exited events, baseline-suppressing the first scan.
type ProcessMonitor struct {
	cfg    ProcessMonitorConfig
	logger *slog.Logger

	mu        sync.Mutex
	running   bool
	done      chan struct{}
	known     map[int32]bool
	seeded    bool
}

// NewProcessMonitor constructs a ProcessMonitor from cfg.
func NewProcessMonitor(cfg ProcessMonitorConfig) *ProcessMonitor {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultProcessPollingMs * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "witness.process")
	}
	return &ProcessMonitor{cfg: cfg, logger: cfg.Logger, known: map[int32]bool{}}
}

// Start begins polling.
func (m *ProcessMonitor) Start(cb func(RawEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.running = true
	m.done = make(chan struct{})
	go m.loop(cb)
	return nil
}

// Stop stops polling. Idempotent.
func (m *ProcessMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.done)
}

func (m *ProcessMonitor) loop(cb func(RawEvent)) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.poll(cb)
		}
	}
}

func (m *ProcessMonitor) poll(cb func(RawEvent)) {
	procs, err := process.Processes()
	if err != nil {
		m.logger.Warn("process_monitor_poll_failed", "error", err)
		return
	}

	current := make(map[int32]*process.Process, len(procs))
	pairs := make(map[int32]int32, len(procs))
	for _, p := range procs {
		current[p.Pid] = p
		if ppid, err := p.Ppid(); err == nil {
			pairs[p.Pid] = ppid
		}
	}

	var scope map[int32]bool
	if m.cfg.HasGateway {
		scope = ProcessTree(m.cfg.GatewayPID, pairs)
	}

	if !m.seeded {
		for pid := range current {
			if scope != nil && !scope[pid] {
				continue
			}
			m.known[pid] = true
		}
		m.seeded = true
		return
	}

	for pid, p := range current {
		if scope != nil && !scope[pid] {
			continue
		}
		if m.known[pid] {
			continue
		}
		m.known[pid] = true
		cb(RawEvent{Source: ledger.SourceProcess, Event: spawnedEvent(p)})
	}

	for pid := range m.known {
		if scope != nil && !scope[pid] {
			continue
		}
		if _, stillAlive := current[pid]; stillAlive {
			continue
		}
		delete(m.known, pid)
		cb(RawEvent{Source: ledger.SourceProcess, Event: ledger.Event{
			Type:       ledger.WitnessEventType(ledger.ProcessExited),
			PID:        int(pid),
			ObservedAt: ledger.FormatTs(nowFunc()),
		}})
	}
}

func spawnedEvent(p *process.Process) ledger.Event {
	cmdline, _ := p.Cmdline()
	ppid, _ := p.Ppid()
	cwd, _ := p.Cwd()
	user, _ := p.Username()

	return ledger.Event{
		Type:       ledger.WitnessEventType(ledger.ProcessSpawned),
		Command:    cmdline,
		PID:        int(p.Pid),
		PPID:       int(ppid),
		User:       user,
		Cwd:        cwd,
		ObservedAt: ledger.FormatTs(nowFunc()),
	}
}
