package query

import (
	"github.com/agenttrust/core/pkg/ledger"
)

// ClaimFilter selects claims by the same time/agent/session dimensions
// Filter uses for executions; claims carry no risk score of their own
// (selfAssessedRisk is part of intent, filtered via MinSelfAssessedRisk).
type ClaimFilter struct {
	Range                 *TimeRange
	Agent                 string
	Session               string
	PlannedActionTypes    map[ledger.ActionType]bool
	MinSelfAssessedRisk   *int
}

// Matches reports whether c satisfies every populated criterion in f.
func (f *ClaimFilter) Matches(c *ledger.Claim) bool {
	if f.Range != nil {
		ts, err := ledger.ParseTs(c.Ts)
		if err != nil {
			return false
		}
		if ts.Before(f.Range.From) || ts.After(f.Range.To) {
			return false
		}
	}
	if f.Agent != "" && f.Agent != c.Agent {
		return false
	}
	if f.Session != "" && f.Session != c.Session {
		return false
	}
	if len(f.PlannedActionTypes) > 0 && !f.PlannedActionTypes[c.Intent.PlannedAction] {
		return false
	}
	if f.MinSelfAssessedRisk != nil && c.Intent.SelfAssessedRisk < *f.MinSelfAssessedRisk {
		return false
	}
	return true
}

// Apply filters a slice of claims, preserving order.
func (f *ClaimFilter) Apply(claims []*ledger.Claim) []*ledger.Claim {
	var out []*ledger.Claim
	for _, c := range claims {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
