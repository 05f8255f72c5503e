// Package correlation joins witness observations to executions within
// time/identity tolerance windows, classifies witness noise, and derives
// the witness-confidence score that feeds the trust verdict.
package correlation

import "github.com/agenttrust/core/pkg/ledger"

// DiscrepancyType enumerates the fixed per-pair discrepancy vocabulary.
type DiscrepancyType string

const (
	DiscrepancyTargetMismatch   DiscrepancyType = "target_discrepancy"
	DiscrepancyEvidenceMismatch DiscrepancyType = "evidence_mismatch"
	DiscrepancyTiming           DiscrepancyType = "timing_discrepancy"
)

// FindingType enumerates the fixed aggregation-level finding vocabulary. The
// first three mirror a matched pair's discrepancy type; the rest are
// coverage-gap findings produced by aggregation itself.
type FindingType string

const (
	FindingTargetDiscrepancy   FindingType = "target_discrepancy"
	FindingEvidenceMismatch    FindingType = "evidence_mismatch"
	FindingTimingDiscrepancy   FindingType = "timing_discrepancy"
	FindingUnwitnessedExecution FindingType = "unwitnessed_execution"
	FindingPhantomProcess       FindingType = "phantom_process"
	FindingSilentNetwork        FindingType = "silent_network"
	FindingSilentFileAccess     FindingType = "silent_file_access"
	FindingUnloggedObservation  FindingType = "unlogged_observation"
)

// Severity enumerates the fixed correlation-severity vocabulary.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Pair is one matched (witness, execution) correlation with its confidence
// and any discrepancies found between them.
type Pair struct {
	Witness       *ledger.Witness   `json:"-"`
	Execution     *ledger.Execution `json:"-"`
	WitnessID     string            `json:"witnessId"`
	ExecutionID   string            `json:"executionId"`
	Confidence    int               `json:"confidence"`
	Discrepancies []Discrepancy     `json:"discrepancies,omitempty"`
}

// Discrepancy is one mismatch found within a matched pair.
type Discrepancy struct {
	Type     DiscrepancyType `json:"type"`
	Severity Severity        `json:"severity"`
	Detail   string          `json:"detail"`
}

// Finding is an aggregation-level finding: either a matched pair's
// discrepancy lifted to report level, or a coverage gap on either side of
// the join.
type Finding struct {
	Type       FindingType `json:"type"`
	Severity   Severity    `json:"severity"`
	EntryID    string      `json:"entryId,omitempty"`
	WitnessID  string      `json:"witnessId,omitempty"`
	Detail     string      `json:"detail"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// NoiseClass classifies a witness entry before aggregation.
type NoiseClass string

const (
	NoiseBackground     NoiseClass = "background_noise"
	NoiseInfrastructure NoiseClass = "infrastructure"
	NoiseAgentRelevant  NoiseClass = "agent_relevant"
)

// Report is the result of running correlate over one batch of witness
// entries and executions.
type Report struct {
	Pairs              []Pair   `json:"pairs"`
	Findings           []Finding `json:"findings"`
	WitnessConfidence  int      `json:"witnessConfidence"`
	TotalWitnessEvents int      `json:"totalWitnessEvents"`
	BackgroundNoise    int      `json:"backgroundNoise"`
	InfrastructureTraffic int   `json:"infrastructureTraffic"`
}
