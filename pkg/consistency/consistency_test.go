package consistency

import (
	"testing"

	"github.com/agenttrust/core/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claim(id, session, ts string, intent ledger.Intent, constraints ledger.Constraints) *ledger.Claim {
	return &ledger.Claim{ID: id, Session: session, Ts: ts, Intent: intent, Constraints: constraints}
}

func execution(id, session, ts string, action ledger.Action, risk ledger.Risk, outcome ledger.Outcome, meta map[string]interface{}) *ledger.Execution {
	return &ledger.Execution{ID: id, Session: session, Ts: ts, Action: action, Risk: risk, Outcome: outcome, Meta: meta}
}

func TestMatchAllExplicitByMetaClaimId(t *testing.T) {
	c := claim("c1", "s1", "2026-02-15T18:00:00.000Z", ledger.Intent{PlannedAction: ledger.ActionFileRead}, ledger.Constraints{})
	e := execution("e1", "s1", "2026-02-15T18:00:05.000Z", ledger.Action{Type: ledger.ActionFileRead}, ledger.Risk{}, ledger.Outcome{}, map[string]interface{}{"claimId": "c1"})

	matches := MatchAll([]*ledger.Claim{c}, []*ledger.Execution{e})
	require.Len(t, matches, 1)
	assert.Equal(t, MatchExplicit, matches[0].Type)
	assert.Equal(t, "c1", matches[0].Claim.ID)
	assert.Equal(t, "e1", matches[0].Execution.ID)
}

func TestMatchAllTemporalPicksSmallestPositiveDelta(t *testing.T) {
	near := claim("near", "s1", "2026-02-15T18:00:00.000Z", ledger.Intent{PlannedAction: ledger.ActionFileRead}, ledger.Constraints{})
	far := claim("far", "s1", "2026-02-15T17:59:50.000Z", ledger.Intent{PlannedAction: ledger.ActionFileRead}, ledger.Constraints{})
	e := execution("e1", "s1", "2026-02-15T18:00:05.000Z", ledger.Action{Type: ledger.ActionFileRead}, ledger.Risk{}, ledger.Outcome{}, nil)

	matches := MatchAll([]*ledger.Claim{near, far}, []*ledger.Execution{e})
	require.Len(t, matches, 2)
	assert.Equal(t, MatchTemporal, matches[0].Type)
	assert.Equal(t, "near", matches[0].Claim.ID)
	assert.Equal(t, MatchUnmatched, matches[1].Type)
	assert.Equal(t, "far", matches[1].Claim.ID)
}

func TestMatchAllIsAPartitionOfInputs(t *testing.T) {
	c1 := claim("c1", "s1", "2026-02-15T18:00:00.000Z", ledger.Intent{PlannedAction: ledger.ActionFileRead}, ledger.Constraints{})
	c2 := claim("c2", "s1", "2026-02-15T19:00:00.000Z", ledger.Intent{PlannedAction: ledger.ActionExecCommand}, ledger.Constraints{})
	e1 := execution("e1", "s1", "2026-02-15T18:00:05.000Z", ledger.Action{Type: ledger.ActionFileRead}, ledger.Risk{}, ledger.Outcome{}, nil)
	e2 := execution("e2", "s1", "2026-02-15T20:00:00.000Z", ledger.Action{Type: ledger.ActionWebFetch}, ledger.Risk{}, ledger.Outcome{}, nil)

	matches := MatchAll([]*ledger.Claim{c1, c2}, []*ledger.Execution{e1, e2})

	seenClaims := map[string]int{}
	seenExecs := map[string]int{}
	for _, m := range matches {
		if m.Claim != nil {
			seenClaims[m.Claim.ID]++
		}
		if m.Execution != nil {
			seenExecs[m.Execution.ID]++
		}
	}
	assert.Equal(t, 1, seenClaims["c1"])
	assert.Equal(t, 1, seenClaims["c2"])
	assert.Equal(t, 1, seenExecs["e1"])
	assert.Equal(t, 1, seenExecs["e2"])
}

func TestScopeViolationScenario(t *testing.T) {
	c := claim("C", "s1", "18:00:00",
		ledger.Intent{PlannedAction: ledger.ActionFileRead, PlannedTarget: "/tmp/safe"},
		ledger.Constraints{WithinScope: true, InvolvesExternalComms: false})
	e := execution("E", "s1", "18:00:05",
		ledger.Action{Type: ledger.ActionMessageSend, Target: "user@x.com"},
		ledger.Risk{}, ledger.Outcome{}, map[string]interface{}{"claimId": "C"})

	matches := MatchAll([]*ledger.Claim{c}, []*ledger.Execution{e})
	findings := DetectFindings(matches)

	var types []DivergenceType
	for _, f := range findings {
		types = append(types, f.Type)
	}
	assert.Contains(t, types, DivergenceActionTypeMismatch)
	assert.Contains(t, types, DivergenceScopeViolation)

	for _, f := range findings {
		if f.Type == DivergenceActionTypeMismatch || f.Type == DivergenceScopeViolation {
			assert.Equal(t, SeverityCritical, f.Severity)
		}
	}
}

func TestUnclaimedExecutionSeverityByRisk(t *testing.T) {
	low := execution("e1", "s1", "t", ledger.Action{Type: ledger.ActionFileRead}, ledger.Risk{Score: 1}, ledger.Outcome{}, nil)
	high := execution("e2", "s1", "t", ledger.Action{Type: ledger.ActionFileRead}, ledger.Risk{Score: 8}, ledger.Outcome{}, nil)

	findings := DetectFindings([]Match{
		{Type: MatchUnmatched, Execution: low},
		{Type: MatchUnmatched, Execution: high},
	})

	byEntry := map[string]Finding{}
	for _, f := range findings {
		byEntry[f.EntryID] = f
	}
	assert.Equal(t, SeverityInfo, byEntry["e1"].Severity)
	assert.Equal(t, SeverityWarning, byEntry["e2"].Severity)
}

func TestScoreFloorsAtZero(t *testing.T) {
	var findings []Finding
	for i := 0; i < 10; i++ {
		findings = append(findings, Finding{Type: DivergenceEscalationUndeclared, Severity: SeverityCritical})
	}
	assert.Equal(t, 0, Score(findings))
}

func TestScoreStartsAtOneHundredWithNoFindings(t *testing.T) {
	assert.Equal(t, 100, Score(nil))
}
