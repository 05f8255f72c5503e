package consistency

import (
	"sort"

	"github.com/agenttrust/core/pkg/ledger"
)

const temporalWindowSeconds = 30

// MatchAll runs the four-pass matcher over claims and executions: explicit
// (meta.claimId reference), temporal (nearest planned-action match within
// the window), then unmatched executions and unmatched claims.
func MatchAll(claims []*ledger.Claim, executions []*ledger.Execution) []Match {
	claimByID := make(map[string]*ledger.Claim, len(claims))
	for _, c := range claims {
		claimByID[c.ID] = c
	}

	consumedClaims := make(map[string]bool)
	consumedExecs := make(map[string]bool)
	var matches []Match

	// Pass 1: explicit.
	for _, e := range executions {
		claimID, ok := explicitClaimID(e)
		if !ok {
			continue
		}
		c, ok := claimByID[claimID]
		if !ok || consumedClaims[c.ID] {
			continue
		}
		matches = append(matches, Match{Type: MatchExplicit, Claim: c, Execution: e})
		consumedClaims[c.ID] = true
		consumedExecs[e.ID] = true
	}

	// Pass 2: temporal, smallest non-negative delta, ties by earliest claim
	// ts then lexicographic claim id.
	for _, e := range executions {
		if consumedExecs[e.ID] {
			continue
		}
		eTs, err := ledger.ParseTs(e.Ts)
		if err != nil {
			continue
		}
		var best *ledger.Claim
		var bestDelta float64
		for _, c := range claims {
			if consumedClaims[c.ID] {
				continue
			}
			if c.Intent.PlannedAction != e.Action.Type {
				continue
			}
			cTs, err := ledger.ParseTs(c.Ts)
			if err != nil {
				continue
			}
			delta := eTs.Sub(cTs).Seconds()
			if delta < 0 || delta > temporalWindowSeconds {
				continue
			}
			if best == nil || betterTemporalCandidate(delta, c, bestDelta, best) {
				best = c
				bestDelta = delta
			}
		}
		if best == nil {
			continue
		}
		matches = append(matches, Match{Type: MatchTemporal, Claim: best, Execution: e})
		consumedClaims[best.ID] = true
		consumedExecs[e.ID] = true
	}

	// Pass 3: unmatched executions.
	var unmatchedExecs []*ledger.Execution
	for _, e := range executions {
		if !consumedExecs[e.ID] {
			unmatchedExecs = append(unmatchedExecs, e)
		}
	}
	sort.Slice(unmatchedExecs, func(i, j int) bool { return unmatchedExecs[i].ID < unmatchedExecs[j].ID })
	for _, e := range unmatchedExecs {
		matches = append(matches, Match{Type: MatchUnmatched, Execution: e})
	}

	// Pass 4: unmatched claims.
	var unmatchedClaims []*ledger.Claim
	for _, c := range claims {
		if !consumedClaims[c.ID] {
			unmatchedClaims = append(unmatchedClaims, c)
		}
	}
	sort.Slice(unmatchedClaims, func(i, j int) bool { return unmatchedClaims[i].ID < unmatchedClaims[j].ID })
	for _, c := range unmatchedClaims {
		matches = append(matches, Match{Type: MatchUnmatched, Claim: c})
	}

	return matches
}

func betterTemporalCandidate(delta float64, candidate *ledger.Claim, bestDelta float64, best *ledger.Claim) bool {
	if delta != bestDelta {
		return delta < bestDelta
	}
	candTs, _ := ledger.ParseTs(candidate.Ts)
	bestTs, _ := ledger.ParseTs(best.Ts)
	if !candTs.Equal(bestTs) {
		return candTs.Before(bestTs)
	}
	return candidate.ID < best.ID
}

func explicitClaimID(e *ledger.Execution) (string, bool) {
	if e.Meta == nil {
		return "", false
	}
	raw, ok := e.Meta["claimId"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
