// Package consistency matches claims to executions and scores how well the
// agent's declared intentions line up with what it actually did.
package consistency

import "github.com/agenttrust/core/pkg/ledger"

// MatchType enumerates how a claim and an execution were paired.
type MatchType string

const (
	MatchExplicit  MatchType = "explicit"
	MatchTemporal  MatchType = "temporal"
	MatchUnmatched MatchType = "unmatched"
)

// Match pairs a claim and an execution (either may be nil, never both).
type Match struct {
	Type      MatchType       `json:"type"`
	Claim     *ledger.Claim   `json:"claim,omitempty"`
	Execution *ledger.Execution `json:"execution,omitempty"`
}

// DivergenceType enumerates the fixed divergence-class vocabulary.
type DivergenceType string

const (
	DivergenceUnclaimedExecution   DivergenceType = "unclaimed_execution"
	DivergenceUnfulfilledClaim     DivergenceType = "unfulfilled_claim"
	DivergenceTargetMismatch       DivergenceType = "target_mismatch"
	DivergenceActionTypeMismatch   DivergenceType = "action_type_mismatch"
	DivergenceRiskUnderestimate    DivergenceType = "risk_underestimate"
	DivergenceScopeViolation       DivergenceType = "scope_violation"
	DivergenceEscalationUndeclared DivergenceType = "escalation_undeclared"
	DivergenceOutcomeUnexpected    DivergenceType = "outcome_unexpected"
)

// Severity enumerates the fixed divergence-severity vocabulary.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding is one divergence detected for a match.
type Finding struct {
	Type      DivergenceType `json:"type"`
	Severity  Severity       `json:"severity"`
	ClaimID   string         `json:"claimId,omitempty"`
	EntryID   string         `json:"entryId,omitempty"`
	Detail    string         `json:"detail"`
}

// Report is the result of running the matcher and divergence detector over
// one batch of claims and executions.
type Report struct {
	Matches  []Match   `json:"matches"`
	Findings []Finding `json:"findings"`
	Score    int       `json:"score"`
}
