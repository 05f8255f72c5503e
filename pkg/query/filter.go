// Package query implements the filters used to select executions (and, by
// the same shape, claims) by time range, action type, agent, session, and
// risk.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

// TimeRange is an inclusive [From, To] window in UTC.
type TimeRange struct {
	From time.Time
	To   time.Time
}

var timeRangePattern = regexp.MustCompile(`^(\d+)([hdw])$`)

// ParseTimeRange parses strings of the form "<n>{h|d|w}" (e.g. "24h", "7d",
// "2w") into a range ending now and starting n units earlier.
func ParseTimeRange(s string, now time.Time) (TimeRange, error) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeRange{}, fmt.Errorf("query: invalid time range %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("query: invalid time range %q: %w", s, err)
	}
	var d time.Duration
	switch m[2] {
	case "h":
		d = time.Duration(n) * time.Hour
	case "d":
		d = time.Duration(n) * 24 * time.Hour
	case "w":
		d = time.Duration(n) * 7 * 24 * time.Hour
	}
	now = now.UTC()
	return TimeRange{From: now.Add(-d), To: now}, nil
}

// Filter selects executions matching all populated criteria. Zero-value
// fields are treated as "don't filter on this dimension".
type Filter struct {
	Range          *TimeRange
	ActionTypes    map[ledger.ActionType]bool
	Agent          string
	Session        string
	MinRisk        *int
	MaxRisk        *int
	RiskLabels     map[ledger.RiskLabel]bool // non-empty means "must intersect"
}

// Matches reports whether e satisfies every populated criterion in f.
func (f *Filter) Matches(e *ledger.Execution) bool {
	if f.Range != nil {
		ts, err := ledger.ParseTs(e.Ts)
		if err != nil {
			return false
		}
		if ts.Before(f.Range.From) || ts.After(f.Range.To) {
			return false
		}
	}
	if len(f.ActionTypes) > 0 && !f.ActionTypes[e.Action.Type] {
		return false
	}
	if f.Agent != "" && f.Agent != e.Agent {
		return false
	}
	if f.Session != "" && f.Session != e.Session {
		return false
	}
	if f.MinRisk != nil && e.Risk.Score < *f.MinRisk {
		return false
	}
	if f.MaxRisk != nil && e.Risk.Score > *f.MaxRisk {
		return false
	}
	if len(f.RiskLabels) > 0 {
		found := false
		for _, l := range e.Risk.Labels {
			if f.RiskLabels[l] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply filters a slice of executions, preserving order.
func (f *Filter) Apply(entries []*ledger.Execution) []*ledger.Execution {
	var out []*ledger.Execution
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// CandidateFiles prunes a chronologically sorted list of "YYYY-MM-DD.*"
// filenames to those that can possibly contain a record inside f.Range,
// so short-window queries don't have to scan the full history.
func CandidateFiles(files []string, r *TimeRange) []string {
	if r == nil {
		return files
	}
	from := r.From.Format("2006-01-02")
	to := r.To.Format("2006-01-02")
	var out []string
	for _, name := range files {
		if len(name) < 10 {
			continue
		}
		date := name[:10]
		if date < from || date > to {
			continue
		}
		out = append(out, name)
	}
	return out
}
