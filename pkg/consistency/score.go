package consistency

import "github.com/agenttrust/core/pkg/ledger"

// penalty returns the point deduction for one finding, per the fixed
// (type, severity) penalty table.
func penalty(f Finding) int {
	switch f.Type {
	case DivergenceActionTypeMismatch:
		return 15
	case DivergenceScopeViolation:
		return 15
	case DivergenceEscalationUndeclared:
		return 20
	case DivergenceTargetMismatch:
		switch f.Severity {
		case SeverityCritical:
			return 10
		default:
			return 5
		}
	case DivergenceRiskUnderestimate:
		return 5
	case DivergenceUnclaimedExecution:
		switch f.Severity {
		case SeverityInfo:
			return 2
		default:
			return 5
		}
	case DivergenceUnfulfilledClaim:
		return 3
	case DivergenceOutcomeUnexpected:
		return 1
	default:
		return 0
	}
}

// Score starts at 100 and subtracts every finding's penalty, floored at 0.
func Score(findings []Finding) int {
	score := 100
	for _, f := range findings {
		score -= penalty(f)
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Evaluate runs the full matcher → divergence → scoring pipeline.
func Evaluate(claims []*ledger.Claim, executions []*ledger.Execution) *Report {
	matches := MatchAll(claims, executions)
	findings := DetectFindings(matches)
	return &Report{
		Matches:  matches,
		Findings: findings,
		Score:    Score(findings),
	}
}
