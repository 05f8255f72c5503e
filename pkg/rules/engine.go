package rules

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

// EngineConfig configures a new Engine.
type EngineConfig struct {
	// RuleConfig holds the thresholds/overrides every rule evaluates
	// against. DefaultConfig is used if nil.
	RuleConfig *Config
	Logger     *slog.Logger
}

// Engine evaluates the rule catalog against executions in batch, building
// each entry's session/recent/claim/target context before dispatch.
type Engine struct {
	mu     sync.RWMutex
	rules  map[string]Rule
	order  []string // registration order, for deterministic match ordering
	config *Config
	logger *slog.Logger
}

// NewEngine constructs an Engine with the default 14-rule catalog
// registered.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.RuleConfig == nil {
		cfg.RuleConfig = DefaultConfig()
	}
	if err := cfg.RuleConfig.Compile(); err != nil {
		return nil, fmt.Errorf("rules: compile config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "rules")
	}

	e := &Engine{
		rules:  make(map[string]Rule),
		config: cfg.RuleConfig,
		logger: cfg.Logger,
	}
	for _, r := range DefaultCatalog() {
		e.Register(r)
	}
	return e, nil
}

// Register adds or replaces a rule in the catalog.
func (e *Engine) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rules[r.ID()]; !exists {
		e.order = append(e.order, r.ID())
	}
	e.rules[r.ID()] = r
}

// Rules returns the registered rules in registration order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.rules[id])
	}
	return out
}

// MatchResult pairs a fired Match with the entry it fired against.
type MatchResult struct {
	EntryID string  `json:"entryId"`
	Match   Match   `json:"match"`
}

// BatchReport summarizes a batch evaluation across all entries.
type BatchReport struct {
	EntriesEvaluated   int                `json:"entriesEvaluated"`
	TotalMatches       int                `json:"totalMatches"`
	MatchesBySeverity  map[Severity]int   `json:"matchesBySeverity"`
	MatchesByCategory  map[Category]int   `json:"matchesByCategory"`
	Matches            []MatchResult      `json:"matches"`
}

// EvaluateBatch runs every enabled rule against every entry in entries,
// building per-entry context (session history, trailing-hour recent
// entries, paired claim, known targets) from the batch itself.
//
// entries must be sorted ascending by timestamp; claimsByID resolves
// meta.claimId references to the claim that was paired with an entry.
func (e *Engine) EvaluateBatch(entries []*ledger.Execution, claimsByID map[string]*ledger.Claim) *BatchReport {
	report := &BatchReport{
		MatchesBySeverity: make(map[Severity]int),
		MatchesByCategory: make(map[Category]int),
	}

	rules := e.Rules()
	knownTargets := make(map[string]bool)
	sessionHistory := make(map[string][]*ledger.Execution)

	for i, entry := range entries {
		report.EntriesEvaluated++

		session := sessionHistory[entry.Session]
		recent := recentWithinHour(entries, i)
		claim := pairedClaim(entry, claimsByID)

		ctx := &Context{
			SessionHistory: append(append([]*ledger.Execution{}, session...), entry),
			RecentEntries:  recent,
			PairedClaim:    claim,
			KnownTargets:   copyTargetSet(knownTargets),
			Config:         e.config,
		}

		for _, r := range rules {
			if !e.config.IsEnabled(r.ID(), r.EnabledByDefault()) {
				continue
			}
			match := e.evaluateSafely(r, entry, ctx)
			if match == nil {
				continue
			}
			report.TotalMatches++
			report.MatchesBySeverity[match.Severity]++
			report.MatchesByCategory[match.Category]++
			report.Matches = append(report.Matches, MatchResult{EntryID: entry.ID, Match: *match})
		}

		sessionHistory[entry.Session] = append(session, entry)
		knownTargets[entry.Action.Target] = true
	}

	return report
}

// evaluateSafely calls r.Evaluate, recovering a panicking rule so one bad
// rule cannot abort the batch for every other rule and entry.
func (e *Engine) evaluateSafely(r Rule, entry *ledger.Execution, ctx *Context) (match *Match) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("rule_panic", "rule", r.ID(), "entry", entry.ID, "panic", p)
			match = nil
		}
	}()
	return r.Evaluate(entry, ctx)
}

func recentWithinHour(entries []*ledger.Execution, i int) []*ledger.Execution {
	cur, err := ledger.ParseTs(entries[i].Ts)
	if err != nil {
		return nil
	}
	cutoff := cur.Add(-time.Hour)
	var out []*ledger.Execution
	for j := 0; j < i; j++ {
		ts, err := ledger.ParseTs(entries[j].Ts)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}
		out = append(out, entries[j])
	}
	return out
}

func pairedClaim(entry *ledger.Execution, claimsByID map[string]*ledger.Claim) *ledger.Claim {
	if entry.Meta == nil {
		return nil
	}
	raw, ok := entry.Meta["claimId"]
	if !ok {
		return nil
	}
	claimID, ok := raw.(string)
	if !ok {
		return nil
	}
	return claimsByID[claimID]
}

func copyTargetSet(src map[string]bool) map[string]bool {
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
