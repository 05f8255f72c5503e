package correlation

import (
	"path"
	"strings"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

var sensitivePathSubstrings = []string{
	"/.ssh/", "/.env", "/.gnupg/", "/credentials", "/.aws/", "/.config/",
	"/id_rsa", "/id_ed25519", "/authorized_keys",
}

func isSensitivePath(p string) bool {
	low := strings.ToLower(p)
	for _, s := range sensitivePathSubstrings {
		if strings.Contains(low, s) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	return path.Clean(p)
}

func pathsMatch(a, b string) bool {
	a, b = normalizePath(a), normalizePath(b)
	if a == b {
		return true
	}
	if strings.HasSuffix(a, b) || strings.HasSuffix(b, a) {
		return true
	}
	baseA, baseB := path.Base(a), path.Base(b)
	return baseA != "" && baseA == baseB
}

func expectedActionForFileEvent(t ledger.WitnessEventType) ledger.ActionType {
	switch ledger.FileEventType(t) {
	case ledger.FileCreated, ledger.FileModified:
		return ledger.ActionFileWrite
	case ledger.FileDeleted:
		return ledger.ActionFileDelete
	case ledger.FileAccessed:
		return ledger.ActionFileRead
	}
	return ""
}

// CorrelateFile pairs filesystem witnesses with file.read/write/delete
// executions.
func CorrelateFile(witnesses []*ledger.Witness, executions []*ledger.Execution) []Pair {
	var pairs []Pair
	for _, w := range witnesses {
		if w.Source != ledger.SourceFilesystem {
			continue
		}
		wTs, err := ledger.ParseTs(w.Ts)
		if err != nil {
			continue
		}

		for _, e := range executions {
			if !isFileAction(e.Action.Type) {
				continue
			}
			if !pathsMatch(w.Event.Path, e.Action.Target) {
				continue
			}
			eTs, err := ledger.ParseTs(e.Ts)
			if err != nil {
				continue
			}
			delta := abs(wTs.Sub(eTs))
			if delta > 10*time.Second {
				continue
			}
			pairs = append(pairs, buildFilePair(w, e, delta))
		}
	}
	return pairs
}

func isFileAction(t ledger.ActionType) bool {
	return t == ledger.ActionFileRead || t == ledger.ActionFileWrite || t == ledger.ActionFileDelete
}

func buildFilePair(w *ledger.Witness, e *ledger.Execution, delta time.Duration) Pair {
	pair := Pair{Witness: w, Execution: e, WitnessID: w.ID, ExecutionID: e.ID, Confidence: 100}

	if expected := expectedActionForFileEvent(w.Event.Type); expected != "" && expected != e.Action.Type {
		pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
			Type: DiscrepancyTargetMismatch, Severity: SeverityCritical,
			Detail: "observed filesystem event type does not match the claimed action type",
		})
		pair.Confidence -= 30
	}

	if w.Event.Stat != nil {
		if fe, ok := fileEvidence(e); ok {
			if fe.contentHashPrefix != "" && w.Event.Stat.ContentHashPrefix != "" &&
				fe.contentHashPrefix != w.Event.Stat.ContentHashPrefix {
				sev := SeverityWarning
				if isSensitivePath(e.Action.Target) {
					sev = SeverityCritical
				}
				pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
					Type: DiscrepancyEvidenceMismatch, Severity: sev,
					Detail: "content hash prefix reported by the agent does not match the observed file",
				})
				pair.Confidence -= 20
			}
			if fe.sizeBytes != 0 && fe.sizeBytes != w.Event.Stat.SizeBytes {
				pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
					Type: DiscrepancyEvidenceMismatch, Severity: SeverityWarning,
					Detail: "reported file size does not match the observed file",
				})
				pair.Confidence -= 20
			}
		}
	}

	if delta > 5*time.Second {
		sev := SeverityInfo
		if delta > 30*time.Second {
			sev = SeverityCritical
		}
		pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
			Type: DiscrepancyTiming, Severity: sev,
			Detail: "observed event and claimed action timestamps diverge by more than 5 seconds",
		})
		pair.Confidence -= 10
	}

	if pair.Confidence < 0 {
		pair.Confidence = 0
	}
	return pair
}

type fileEvidenceSummary struct {
	contentHashPrefix string
	sizeBytes         int64
}

func fileEvidence(e *ledger.Execution) (fileEvidenceSummary, bool) {
	if e.Meta == nil {
		return fileEvidenceSummary{}, false
	}
	raw, ok := e.Meta["fileEvidence"]
	if !ok {
		return fileEvidenceSummary{}, false
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return fileEvidenceSummary{}, false
	}
	var summary fileEvidenceSummary
	if v, ok := m["contentHashPrefix"].(string); ok {
		summary.contentHashPrefix = v
	}
	if v, ok := m["sizeBytes"].(float64); ok {
		summary.sizeBytes = int64(v)
	}
	return summary, true
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
