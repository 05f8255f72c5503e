package witness

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/agenttrust/core/pkg/ledger"
)

var localhostAddrs = map[string]bool{
	"127.0.0.1": true, "::1": true, "localhost": true, "0.0.0.0": true,
}

// connKey is the connection identity per the design note:
// (protocol, remoteHost, remotePort, pid).
type connKey struct {
	protocol string
	host     string
	port     uint32
	pid      int32
}

// NetworkMonitorConfig configures a NetworkMonitor.
type NetworkMonitorConfig struct {
	PollInterval time.Duration // default 2000ms
	GatewayPID   int32
	HasGateway   bool
	Logger       *slog.Logger
}

// NetworkMonitor polls open outbound connections and emits
// connection_opened / connection_closed events.
type NetworkMonitor struct {
	cfg    NetworkMonitorConfig
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	known   map[connKey]bool
	seeded  bool
}

// NewNetworkMonitor constructs a NetworkMonitor from cfg.
func NewNetworkMonitor(cfg NetworkMonitorConfig) *NetworkMonitor {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultNetworkPollingMs * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "witness.network")
	}
	return &NetworkMonitor{cfg: cfg, logger: cfg.Logger, known: map[connKey]bool{}}
}

// Start begins polling.
func (m *NetworkMonitor) Start(cb func(RawEvent)) error {
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
func (m *NetworkMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.done)
}

func (m *NetworkMonitor) loop(cb func(RawEvent)) {
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

func (m *NetworkMonitor) poll(cb func(RawEvent)) {
	conns, err := psnet.Connections("inet")
	if err != nil {
		m.logger.Warn("network_monitor_poll_failed", "error", err)
		return
	}

	var scope map[int32]bool
	if m.cfg.HasGateway {
		procs := gatherPairs()
		scope = ProcessTree(m.cfg.GatewayPID, procs)
	}

	current := make(map[connKey]psnet.ConnectionStat)
	for _, c := range conns {
		if c.Status != "ESTABLISHED" || c.Raddr.IP == "" {
			continue
		}
		if localhostAddrs[c.Raddr.IP] {
			continue
		}
		if scope != nil && !scope[c.Pid] {
			continue
		}
		key := connKey{protocol: protocolName(c.Type), host: c.Raddr.IP, port: c.Raddr.Port, pid: c.Pid}
		current[key] = c
	}

	if !m.seeded {
		for k := range current {
			m.known[k] = true
		}
		m.seeded = true
		return
	}

	for k, c := range current {
		if m.known[k] {
			continue
		}
		m.known[k] = true
		cb(RawEvent{Source: ledger.SourceNetwork, Event: connectionOpenedEvent(k, c)})
	}

	for k := range m.known {
		if _, stillOpen := current[k]; stillOpen {
			continue
		}
		delete(m.known, k)
		port := int(k.port)
		cb(RawEvent{Source: ledger.SourceNetwork, Event: ledger.Event{
			Type:       ledger.WitnessEventType(ledger.ConnectionClosed),
			RemoteHost: k.host,
			RemotePort: &port,
			Protocol:   k.protocol,
			ObservedAt: ledger.FormatTs(nowFunc()),
		}})
	}
}

func connectionOpenedEvent(k connKey, c psnet.ConnectionStat) ledger.Event {
	port := int(k.port)
	return ledger.Event{
		Type:       ledger.WitnessEventType(ledger.ConnectionOpened),
		RemoteHost: k.host,
		RemotePort: &port,
		Protocol:   k.protocol,
		PID:        int(c.Pid),
		ObservedAt: ledger.FormatTs(nowFunc()),
	}
}

func protocolName(connType uint32) string {
	switch connType {
	case 1: // SOCK_STREAM
		return "tcp"
	case 2: // SOCK_DGRAM
		return "udp"
	default:
		return fmt.Sprintf("type%d", connType)
	}
}
