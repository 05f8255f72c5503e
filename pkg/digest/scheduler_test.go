package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNowInvokesSinkWithAssembledReport(t *testing.T) {
	src := &fakeSource{executions: nil, claims: nil}
	a := NewAssembler(src, nil, nil)

	var delivered *Report
	sched := NewScheduler(a, SchedulerConfig{
		Schedule: "0 2 * * *",
		Sink: func(r *Report) {
			delivered = r
		},
	})

	report := sched.RunNow(time.Date(2026, 3, 16, 2, 0, 0, 0, time.UTC))
	require.NotNil(t, report)
	require.NotNil(t, delivered)
	assert.Same(t, report, delivered)
}

func TestRunNowCoversYesterdayByDefault(t *testing.T) {
	src := &fakeSource{}
	a := NewAssembler(src, nil, nil)
	sched := NewScheduler(a, SchedulerConfig{Schedule: "0 2 * * *"})

	report := sched.RunNow(time.Date(2026, 3, 16, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-03-15T00:00:00.000Z", report.From)
	assert.Equal(t, "2026-03-16T00:00:00.000Z", report.To)
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	src := &fakeSource{}
	a := NewAssembler(src, nil, nil)
	sched := NewScheduler(a, SchedulerConfig{Schedule: "not a cron expression"})

	err := sched.Start()
	assert.Error(t, err)
}
