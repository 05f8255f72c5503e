package witness

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/agenttrust/core/pkg/errors"
	"github.com/agenttrust/core/pkg/ledger"
)

const fileHashPrefixBytes = 4096

// FileMonitorConfig configures a FileMonitor.
type FileMonitorConfig struct {
	Dirs    []string
	Exclude []string
	Logger  *slog.Logger
}

// FileMonitor watches a configured set of directories and emits
// file_created/modified/deleted/accessed events.
type FileMonitor struct {
	cfg     FileMonitorConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewFileMonitor constructs a FileMonitor from cfg.
func NewFileMonitor(cfg FileMonitorConfig) *FileMonitor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "witness.file")
	}
	return &FileMonitor{cfg: cfg, logger: cfg.Logger}
}

// Start begins watching the configured directories, invoking cb for every
// non-excluded event observed. Monitors that fail to start log and return
// an error; the daemon decides whether to continue without them.
func (m *FileMonitor) Start(cb func(RawEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.logger.Error("file_monitor_start_failed", "error", err)
		return errors.Wrap("WITNESS-001", err)
	}
	for _, dir := range m.cfg.Dirs {
		if err := watcher.Add(dir); err != nil {
			m.logger.Warn("file_monitor_watch_dir_failed", "dir", dir, "error", err)
		}
	}

	m.watcher = watcher
	m.running = true
	m.done = make(chan struct{})

	go m.loop(watcher, cb)
	return nil
}

// Stop stops watching. Idempotent.
func (m *FileMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	_ = m.watcher.Close()
	close(m.done)
}

func (m *FileMonitor) loop(watcher *fsnotify.Watcher, cb func(RawEvent)) {
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.handle(ev, cb)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("file_monitor_watch_error", "error", err)
		case <-m.done:
			return
		}
	}
}

func (m *FileMonitor) handle(ev fsnotify.Event, cb func(RawEvent)) {
	if m.isExcluded(ev.Name) {
		return
	}

	var eventType ledger.FileEventType
	switch {
	case ev.Op&fsnotify.Create != 0:
		eventType = ledger.FileCreated
	case ev.Op&fsnotify.Write != 0:
		eventType = ledger.FileModified
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		eventType = ledger.FileDeleted
	case ev.Op&fsnotify.Chmod != 0:
		eventType = ledger.FileAccessed
	default:
		return
	}

	event := ledger.Event{
		Type:       ledger.WitnessEventType(eventType),
		Path:       ev.Name,
		ObservedAt: ledger.FormatTs(nowFunc()),
	}

	if eventType == ledger.FileCreated || eventType == ledger.FileModified {
		if stat := statFile(ev.Name); stat != nil {
			event.Stat = stat
		}
	}

	cb(RawEvent{Source: ledger.SourceFilesystem, Event: event})
}

func (m *FileMonitor) isExcluded(path string) bool {
	for _, pattern := range m.cfg.Exclude {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func statFile(path string) *ledger.FileStat {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	stat := &ledger.FileStat{
		SizeBytes: info.Size(),
		Mode:      info.Mode().Perm().String(),
		Mtime:     ledger.FormatTs(info.ModTime()),
	}
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		buf := make([]byte, fileHashPrefixBytes)
		n, _ := io.ReadFull(f, buf)
		if n > 0 {
			sum := sha256.Sum256(buf[:n])
			stat.ContentHashPrefix = hex.EncodeToString(sum[:])
		}
	}
	return stat
}
