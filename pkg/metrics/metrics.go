// Package metrics exposes Prometheus instrumentation for the ledger,
// witness daemon, rule engine, and trust verdict pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector tracks counts alongside syncing them to Prometheus, mirroring
// the local-snapshot-plus-global-vector pattern used elsewhere in this
// codebase for in-process introspection without a scrape round trip.
type Collector struct {
	mu            sync.RWMutex
	appends       map[string]int64
	ruleMatches   int64
	witnessEvents map[string]int64
	flushes       int64
}

// NewCollector returns a Collector with empty counts.
func NewCollector() *Collector {
	return &Collector{
		appends:       make(map[string]int64),
		witnessEvents: make(map[string]int64),
	}
}

// RecordAppend records an append to the named ledger kind ("execution",
// "claim", or "witness").
func (c *Collector) RecordAppend(kind string) {
	c.mu.Lock()
	c.appends[kind]++
	c.mu.Unlock()
	ledgerAppends.WithLabelValues(kind).Inc()
}

// RecordRuleMatch records one rule firing during batch evaluation.
func (c *Collector) RecordRuleMatch(ruleID, severity string) {
	c.mu.Lock()
	c.ruleMatches++
	c.mu.Unlock()
	ruleMatchesTotal.WithLabelValues(ruleID, severity).Inc()
}

// RecordWitnessEvent records one raw event delivered by a witness monitor.
func (c *Collector) RecordWitnessEvent(source string) {
	c.mu.Lock()
	c.witnessEvents[source]++
	c.mu.Unlock()
	witnessEventsTotal.WithLabelValues(source).Inc()
}

// RecordFlush records one daemon buffer flush of the given batch size.
func (c *Collector) RecordFlush(batchSize int) {
	c.mu.Lock()
	c.flushes++
	c.mu.Unlock()
	daemonFlushesTotal.Inc()
	daemonFlushBatchSize.Set(float64(batchSize))
}

// ObserveConsistencyScore records the score from one consistency report.
func (c *Collector) ObserveConsistencyScore(score int) {
	consistencyScore.Set(float64(score))
}

// ObserveWitnessConfidence records the confidence from one correlation
// report.
func (c *Collector) ObserveWitnessConfidence(confidence int) {
	witnessConfidence.Set(float64(confidence))
}

// ObserveTrustScore records the score from one composed verdict.
func (c *Collector) ObserveTrustScore(score int, level string) {
	trustScore.WithLabelValues(level).Set(float64(score))
}

// ObserveDigestDuration records how long one digest assembly took, in
// seconds.
func (c *Collector) ObserveDigestDuration(seconds float64) {
	digestDuration.Observe(seconds)
}

// Snapshot returns a point-in-time copy of the in-process counters.
func (c *Collector) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := map[string]int64{
		"rule_matches": c.ruleMatches,
		"flushes":      c.flushes,
	}
	for k, v := range c.appends {
		out["append."+k] = v
	}
	for k, v := range c.witnessEvents {
		out["witness_event."+k] = v
	}
	return out
}

var (
	ledgerAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenttrust_ledger_appends_total",
			Help: "Total number of records appended, by ledger kind.",
		},
		[]string{"kind"},
	)

	ruleMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenttrust_rule_matches_total",
			Help: "Total number of rule matches, by rule id and severity.",
		},
		[]string{"rule_id", "severity"},
	)

	witnessEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenttrust_witness_events_total",
			Help: "Total number of raw witness events observed, by source.",
		},
		[]string{"source"},
	)

	daemonFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenttrust_daemon_flushes_total",
			Help: "Total number of witness buffer flushes.",
		},
	)

	daemonFlushBatchSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenttrust_daemon_flush_batch_size",
			Help: "Size of the most recent witness buffer flush.",
		},
	)

	consistencyScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenttrust_consistency_score",
			Help: "Most recently computed consistency score (0-100).",
		},
	)

	witnessConfidence = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenttrust_witness_confidence",
			Help: "Most recently computed witness confidence (0-100).",
		},
	)

	trustScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agenttrust_trust_score",
			Help: "Most recently composed trust score (0-100), by level.",
		},
		[]string{"level"},
	)

	digestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenttrust_digest_duration_seconds",
			Help:    "Time taken to assemble a digest report.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
