// Package digest assembles periodic summaries of executions and claims:
// counts by action type, by risk bucket, and by outcome status, alongside
// the rule-engine and consistency-engine reports for the same range. The
// assembler itself is pure and synchronous; Scheduler wraps it with a cron
// cadence for callers that want a recurring nightly digest.
package digest

import (
	"log/slog"
	"time"

	"github.com/agenttrust/core/pkg/consistency"
	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/query"
	"github.com/agenttrust/core/pkg/rules"
)

// RiskBucket is the fixed four-way risk-score bucketing.
type RiskBucket string

const (
	RiskBucketLow      RiskBucket = "low"      // score < 4
	RiskBucketMedium   RiskBucket = "medium"   // 4 <= score < 7
	RiskBucketHigh     RiskBucket = "high"     // 7 <= score < 9
	RiskBucketCritical RiskBucket = "critical" // score >= 9
)

// BucketForScore returns the risk bucket a raw score falls into.
func BucketForScore(score int) RiskBucket {
	switch {
	case score < 4:
		return RiskBucketLow
	case score < 7:
		return RiskBucketMedium
	case score < 9:
		return RiskBucketHigh
	default:
		return RiskBucketCritical
	}
}

// Report is the structured output a renderer outside the core turns into
// a human-readable digest.
type Report struct {
	Range               query.TimeRange            `json:"-"`
	From                string                     `json:"from"`
	To                  string                     `json:"to"`
	TotalExecutions     int                        `json:"totalExecutions"`
	TotalClaims         int                        `json:"totalClaims"`
	ByActionType        map[ledger.ActionType]int  `json:"byActionType"`
	ByRiskBucket        map[RiskBucket]int         `json:"byRiskBucket"`
	ByStatus            map[ledger.OutcomeStatus]int `json:"byStatus"`
	RuleReport          *rules.BatchReport         `json:"ruleReport"`
	ConsistencyReport   *consistency.Report        `json:"consistencyReport"`
	SkippedCollections  []string                   `json:"skippedCollections,omitempty"`
}

// Source abstracts the two read operations a digest needs, so the
// assembler doesn't depend on the concrete store types directly.
type Source interface {
	ReadExecutions(r query.TimeRange) ([]*ledger.Execution, error)
	ReadClaims(r query.TimeRange) ([]*ledger.Claim, error)
}

// Assembler builds digest reports from a Source plus the rule and
// consistency engines.
type Assembler struct {
	source      Source
	ruleEngine  *rules.Engine
	logger      *slog.Logger
}

// NewAssembler constructs an Assembler. ruleEngine may be nil, in which
// case rule evaluation is skipped and RuleReport is left nil.
func NewAssembler(source Source, ruleEngine *rules.Engine, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default().With("component", "digest")
	}
	return &Assembler{source: source, ruleEngine: ruleEngine, logger: logger}
}

// Assemble collects executions and claims for r, then summarizes them. A
// collection failure is recorded in SkippedCollections rather than
// aborting: a digest run covering multiple days should not fail entirely
// because one day's file is unreadable.
func (a *Assembler) Assemble(r query.TimeRange) *Report {
	report := &Report{
		Range:        r,
		From:         ledger.FormatTs(r.From),
		To:           ledger.FormatTs(r.To),
		ByActionType: map[ledger.ActionType]int{},
		ByRiskBucket: map[RiskBucket]int{},
		ByStatus:     map[ledger.OutcomeStatus]int{},
	}

	executions, err := a.source.ReadExecutions(r)
	if err != nil {
		a.logger.Warn("digest: failed to collect executions", "error", err)
		report.SkippedCollections = append(report.SkippedCollections, "executions")
		executions = nil
	}
	claims, err := a.source.ReadClaims(r)
	if err != nil {
		a.logger.Warn("digest: failed to collect claims", "error", err)
		report.SkippedCollections = append(report.SkippedCollections, "claims")
		claims = nil
	}

	report.TotalExecutions = len(executions)
	report.TotalClaims = len(claims)

	for _, e := range executions {
		report.ByActionType[e.Action.Type]++
		report.ByRiskBucket[BucketForScore(e.Risk.Score)]++
		report.ByStatus[e.Outcome.Status]++
	}

	if a.ruleEngine != nil {
		claimsByID := make(map[string]*ledger.Claim, len(claims))
		for _, c := range claims {
			claimsByID[c.ID] = c
		}
		report.RuleReport = a.ruleEngine.EvaluateBatch(executions, claimsByID)
	}

	report.ConsistencyReport = consistency.Evaluate(claims, executions)

	return report
}

// Day returns the [start-of-day, start-of-next-day) UTC range containing t.
func Day(t time.Time) query.TimeRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return query.TimeRange{From: start, To: start.Add(24 * time.Hour)}
}
