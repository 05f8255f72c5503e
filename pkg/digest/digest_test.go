package digest

import (
	"testing"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	executions []*ledger.Execution
	claims     []*ledger.Claim
	execErr    error
	claimErr   error
}

func (f *fakeSource) ReadExecutions(r query.TimeRange) ([]*ledger.Execution, error) {
	return f.executions, f.execErr
}

func (f *fakeSource) ReadClaims(r query.TimeRange) ([]*ledger.Claim, error) {
	return f.claims, f.claimErr
}

func exec(id string, action ledger.ActionType, score int, status ledger.OutcomeStatus) *ledger.Execution {
	return &ledger.Execution{
		ID:     id,
		Action: ledger.Action{Type: action},
		Risk:   ledger.Risk{Score: score},
		Outcome: ledger.Outcome{Status: status},
	}
}

func TestBucketForScoreBoundaries(t *testing.T) {
	assert.Equal(t, RiskBucketLow, BucketForScore(0))
	assert.Equal(t, RiskBucketLow, BucketForScore(3))
	assert.Equal(t, RiskBucketMedium, BucketForScore(4))
	assert.Equal(t, RiskBucketMedium, BucketForScore(6))
	assert.Equal(t, RiskBucketHigh, BucketForScore(7))
	assert.Equal(t, RiskBucketHigh, BucketForScore(8))
	assert.Equal(t, RiskBucketCritical, BucketForScore(9))
	assert.Equal(t, RiskBucketCritical, BucketForScore(10))
}

func TestAssembleSummarizesByActionRiskAndStatus(t *testing.T) {
	src := &fakeSource{
		executions: []*ledger.Execution{
			exec("e1", ledger.ActionFileRead, 2, ledger.OutcomeSuccess),
			exec("e2", ledger.ActionFileRead, 5, ledger.OutcomeFailure),
			exec("e3", ledger.ActionExecCommand, 9, ledger.OutcomeSuccess),
		},
	}
	a := NewAssembler(src, nil, nil)
	report := a.Assemble(query.TimeRange{From: time.Unix(0, 0), To: time.Unix(1, 0)})

	assert.Equal(t, 3, report.TotalExecutions)
	assert.Equal(t, 2, report.ByActionType[ledger.ActionFileRead])
	assert.Equal(t, 1, report.ByActionType[ledger.ActionExecCommand])
	assert.Equal(t, 1, report.ByRiskBucket[RiskBucketLow])
	assert.Equal(t, 1, report.ByRiskBucket[RiskBucketMedium])
	assert.Equal(t, 1, report.ByRiskBucket[RiskBucketCritical])
	assert.Equal(t, 2, report.ByStatus[ledger.OutcomeSuccess])
	assert.Equal(t, 1, report.ByStatus[ledger.OutcomeFailure])
	assert.Empty(t, report.SkippedCollections)
}

func TestAssembleRecordsSkippedCollectionOnError(t *testing.T) {
	src := &fakeSource{execErr: assertErr("boom")}
	a := NewAssembler(src, nil, nil)
	report := a.Assemble(query.TimeRange{})

	require.Contains(t, report.SkippedCollections, "executions")
	assert.Equal(t, 0, report.TotalExecutions)
}

func TestDayReturnsTwentyFourHourUTCWindow(t *testing.T) {
	ts := time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC)
	r := Day(ts)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), r.To)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
