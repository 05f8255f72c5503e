package daemon

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/witness"
)

type fakeMonitor struct {
	mu      sync.Mutex
	started bool
	cb      func(witness.RawEvent)
}

func (m *fakeMonitor) Start(cb func(witness.RawEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	m.cb = cb
	return nil
}

func (m *fakeMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
}

func (m *fakeMonitor) emit(ev witness.RawEvent) {
	m.mu.Lock()
	cb := m.cb
	m.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func TestDaemonFlushesOnBufferSize(t *testing.T) {
	mon := &fakeMonitor{}
	var flushed [][]witness.RawEvent
	var mu sync.Mutex

	d := New(Config{
		Monitors:   map[string]witness.Monitor{"fake": mon},
		BufferSize: 2,
		Sink: func(batch []witness.RawEvent) error {
			mu.Lock()
			flushed = append(flushed, batch)
			mu.Unlock()
			return nil
		},
	})
	d.Start()
	defer d.Stop()

	require.True(t, mon.started)

	mon.emit(witness.RawEvent{Source: ledger.SourceFilesystem})
	mon.emit(witness.RawEvent{Source: ledger.SourceFilesystem})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(flushed) == 1 && len(flushed[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestDaemonStopDrainsBufferViaFinalFlush(t *testing.T) {
	mon := &fakeMonitor{}
	var flushed [][]witness.RawEvent
	var mu sync.Mutex

	d := New(Config{
		Monitors:   map[string]witness.Monitor{"fake": mon},
		BufferSize: 100,
		Sink: func(batch []witness.RawEvent) error {
			mu.Lock()
			flushed = append(flushed, batch)
			mu.Unlock()
			return nil
		},
	})
	d.Start()
	mon.emit(witness.RawEvent{Source: ledger.SourceProcess})
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushed, 1)
	assert.Len(t, flushed[0], 1)
}

func TestDaemonSurvivesPanickingSink(t *testing.T) {
	mon := &fakeMonitor{}
	d := New(Config{
		Monitors:   map[string]witness.Monitor{"fake": mon},
		BufferSize: 1,
		Sink: func(batch []witness.RawEvent) error {
			panic("sink exploded")
		},
	})
	d.Start()
	assert.NotPanics(t, func() {
		mon.emit(witness.RawEvent{Source: ledger.SourceNetwork})
		time.Sleep(50 * time.Millisecond)
	})
	d.Stop()
}

func TestDaemonLogsBatchIDOnSinkFailure(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	mon := &fakeMonitor{}
	d := New(Config{
		Monitors:   map[string]witness.Monitor{"fake": mon},
		BufferSize: 1,
		Logger:     logger,
		Sink: func(batch []witness.RawEvent) error {
			return errors.New("sink unreachable")
		},
	})
	d.Start()
	mon.emit(witness.RawEvent{Source: ledger.SourceFilesystem})
	d.Stop()

	assert.Contains(t, logBuf.String(), "sink_failed")
	assert.Contains(t, logBuf.String(), "batch_id")
}

func TestDaemonDropsCallbacksAfterStop(t *testing.T) {
	mon := &fakeMonitor{}
	var flushCount int
	var mu sync.Mutex

	d := New(Config{
		Monitors: map[string]witness.Monitor{"fake": mon},
		Sink: func(batch []witness.RawEvent) error {
			mu.Lock()
			flushCount += len(batch)
			mu.Unlock()
			return nil
		},
	})
	d.Start()
	d.Stop()

	mon.emit(witness.RawEvent{Source: ledger.SourceFilesystem})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, flushCount)
}
