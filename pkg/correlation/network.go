package correlation

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

// extractHostname pulls a bare hostname out of a full URL, a host:port
// pair, or an already-bare host.
func extractHostname(target string) string {
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	if host, _, err := splitHostPort(target); err == nil {
		return host
	}
	return target
}

func splitHostPort(s string) (string, string, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", "", errNoPort
	}
	return s[:idx], s[idx+1:], nil
}

var errNoPort = &hostPortError{}

type hostPortError struct{}

func (*hostPortError) Error() string { return "no port in address" }

func hostsMatch(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func isNetworkAction(t ledger.ActionType) bool {
	switch t {
	case ledger.ActionAPICall, ledger.ActionWebFetch, ledger.ActionWebSearch, ledger.ActionWebBrowse:
		return true
	}
	return false
}

// CorrelateNetwork pairs connection_opened witnesses with network-shaped
// executions.
func CorrelateNetwork(witnesses []*ledger.Witness, executions []*ledger.Execution) []Pair {
	var pairs []Pair
	for _, w := range witnesses {
		if w.Source != ledger.SourceNetwork || w.Event.Type != ledger.WitnessEventType(ledger.ConnectionOpened) {
			continue
		}
		wTs, err := ledger.ParseTs(w.Ts)
		if err != nil {
			continue
		}

		for _, e := range executions {
			if !isNetworkAction(e.Action.Type) {
				continue
			}
			host := extractHostname(e.Action.Target)
			if !hostsMatch(w.Event.RemoteHost, host) {
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
			pairs = append(pairs, buildNetworkPair(w, e, delta, host))
		}
	}
	return pairs
}

func buildNetworkPair(w *ledger.Witness, e *ledger.Execution, delta time.Duration, host string) Pair {
	pair := Pair{Witness: w, Execution: e, WitnessID: w.ID, ExecutionID: e.ID, Confidence: 100}

	if ev, ok := networkEvidence(e); ok {
		mismatch := false
		if ev.host != "" && !hostsMatch(ev.host, w.Event.RemoteHost) {
			mismatch = true
		}
		if ev.port != nil && w.Event.RemotePort != nil && *ev.port != *w.Event.RemotePort {
			mismatch = true
		}
		if mismatch {
			pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
				Type: DiscrepancyEvidenceMismatch, Severity: SeverityWarning,
				Detail: "reported host or port does not match the observed connection",
			})
			pair.Confidence -= 15
		}
	}

	if delta > 5*time.Second {
		pair.Discrepancies = append(pair.Discrepancies, Discrepancy{
			Type: DiscrepancyTiming, Severity: SeverityInfo,
			Detail: "observed connection and claimed request timestamps diverge by more than 5 seconds",
		})
		pair.Confidence -= 10
	}

	if pair.Confidence < 0 {
		pair.Confidence = 0
	}
	return pair
}

type networkEvidenceSummary struct {
	host string
	port *int
}

func networkEvidence(e *ledger.Execution) (networkEvidenceSummary, bool) {
	if e.Meta == nil {
		return networkEvidenceSummary{}, false
	}
	raw, ok := e.Meta["networkEvidence"]
	if !ok {
		return networkEvidenceSummary{}, false
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return networkEvidenceSummary{}, false
	}
	var summary networkEvidenceSummary
	if v, ok := m["host"].(string); ok {
		summary.host = v
	}
	if v, ok := m["port"].(float64); ok {
		port := int(v)
		summary.port = &port
	} else if v, ok := m["port"].(string); ok {
		if p, err := strconv.Atoi(v); err == nil {
			summary.port = &p
		}
	}
	return summary, true
}
