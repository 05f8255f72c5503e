// Package rules implements the pluggable risk rule engine: a catalog of
// detectors evaluated against each execution with per-action context
// (session history, recent history, paired claim, known targets).
package rules

import "github.com/agenttrust/core/pkg/ledger"

// Category enumerates the fixed rule-category vocabulary.
type Category string

const (
	CategoryFinancial     Category = "financial"
	CategoryCredential    Category = "credential"
	CategoryCommunication Category = "communication"
	CategoryEscalation    Category = "escalation"
	CategoryDataExfil     Category = "data_exfil"
	CategoryScopeDrift    Category = "scope_drift"
	CategoryFrequency     Category = "frequency"
	CategoryDestructive   Category = "destructive"
)

// Severity enumerates the fixed rule-severity vocabulary, ordered from
// least to most severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Match is the result of a rule firing against one entry.
type Match struct {
	RuleID       string                 `json:"ruleId"`
	Name         string                 `json:"name"`
	Category     Category               `json:"category"`
	Severity     Severity               `json:"severity"`
	Contribution int                    `json:"contribution"`
	Description  string                 `json:"description"`
	Evidence     map[string]interface{} `json:"evidence,omitempty"`
}

// Context is the per-entry evaluation context every rule receives.
type Context struct {
	// SessionHistory is every prior entry in the same session, up to and
	// including the current entry.
	SessionHistory []*ledger.Execution
	// RecentEntries is every prior entry in the trailing one-hour window
	// (not including the current entry).
	RecentEntries []*ledger.Execution
	// PairedClaim is the claim referenced by entry.meta.claimId, if any.
	PairedClaim *ledger.Claim
	// KnownTargets is the set of all targets seen in entries strictly
	// before this one.
	KnownTargets map[string]bool
	Config       *Config
}

// Rule is a single risk detector.
type Rule interface {
	ID() string
	Name() string
	Category() Category
	Description() string
	EnabledByDefault() bool
	// Evaluate returns a Match if the rule fires against entry under ctx,
	// or nil otherwise.
	Evaluate(entry *ledger.Execution, ctx *Context) *Match
}
