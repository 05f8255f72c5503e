package correlation

import (
	"path"
	"strings"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func commandsMatch(a, b string) bool {
	a, b = normalizeWhitespace(a), normalizeWhitespace(b)
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	fa := strings.Fields(a)
	fb := strings.Fields(b)
	if len(fa) == 0 || len(fb) == 0 {
		return false
	}
	return path.Base(fa[0]) == path.Base(fb[0])
}

func isExecAction(t ledger.ActionType) bool {
	return t == ledger.ActionExecCommand || t == ledger.ActionExecScript
}

// CorrelateProcess pairs process_spawned witnesses with exec.command /
// exec.script executions.
func CorrelateProcess(witnesses []*ledger.Witness, executions []*ledger.Execution) []Pair {
	var pairs []Pair
	for _, w := range witnesses {
		if w.Source != ledger.SourceProcess || w.Event.Type != ledger.WitnessEventType(ledger.ProcessSpawned) {
			continue
		}
		wTs, err := ledger.ParseTs(w.Ts)
		if err != nil {
			continue
		}

		for _, e := range executions {
			if !isExecAction(e.Action.Type) {
				continue
			}
			command := e.Action.Target
			if command == "" {
				command = e.Action.Detail
			}
			if !commandsMatch(w.Event.Command, command) {
				continue
			}
			eTs, err := ledger.ParseTs(e.Ts)
			if err != nil {
				continue
			}
			delta := abs(wTs.Sub(eTs))
			if delta > 5*time.Second {
				continue
			}
			pairs = append(pairs, buildProcessPair(w, e, delta))
		}
	}
	return pairs
}

func buildProcessPair(w *ledger.Witness, e *ledger.Execution, delta time.Duration) Pair {
	pair := Pair{Witness: w, Execution: e, WitnessID: w.ID, ExecutionID: e.ID, Confidence: 100}

	if pid, ok := processEvidencePID(e); ok && pid != w.Event.PID {
		pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
			Type: DiscrepancyEvidenceMismatch, Severity: SeverityWarning,
			Detail: "reported PID does not match the observed process",
		})
		pair.Confidence -= 20
	}

	if delta > 2*time.Second {
		pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
			Type: DiscrepancyTiming, Severity: SeverityInfo,
			Detail: "observed spawn and claimed execution timestamps diverge by more than 2 seconds",
		})
		pair.Confidence -= 10
	}

	if pair.Confidence < 0 {
		pair.Confidence = 0
	}
	return pair
}

func processEvidencePID(e *ledger.Execution) (int, bool) {
	if e.Meta == nil {
		return 0, false
	}
	raw, ok := e.Meta["processEvidence"]
	if !ok {
		return 0, false
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return 0, false
	}
	v, ok := m["pid"].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}
