package correlation

import "github.com/agenttrust/core/pkg/ledger"

// Options configures a Correlate run.
type Options struct {
	Noise NoiseConfig
}

// Correlate runs the three per-family correlators, classifies noise, and
// aggregates into unwitnessed/silent/unlogged findings plus the witness
// confidence score.
func Correlate(witnesses []*ledger.Witness, executions []*ledger.Execution, opts Options) *Report {
	pairs := append(append(
		CorrelateFile(witnesses, executions),
		CorrelateProcess(witnesses, executions)...),
		CorrelateNetwork(witnesses, executions)...)

	coveredExec := make(map[string]bool, len(pairs))
	coveredWitness := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		coveredExec[p.ExecutionID] = true
		coveredWitness[p.WitnessID] = true
	}

	var findings []Finding
	for _, p := range pairs {
		for _, d := range p.Discrepancies {
			findings = append(findings, Finding{
				Type:      discrepancyToFindingType(d.Type),
				Severity:  d.Severity,
				EntryID:   p.ExecutionID,
				WitnessID: p.WitnessID,
				Detail:    d.Detail,
			})
		}
	}

	for _, e := range executions {
		if coveredExec[e.ID] || !isWitnessableAction(e.Action.Type) {
			continue
		}
		if isExecAction(e.Action.Type) {
			findings = append(findings, Finding{
				Type: FindingPhantomProcess, Severity: SeverityCritical, EntryID: e.ID,
				Detail: "no process_spawned witness corresponds to this execution",
			})
			continue
		}
		sev := SeverityWarning
		if e.Risk.Score >= 7 {
			sev = SeverityCritical
		}
		findings = append(findings, Finding{
			Type: FindingUnwitnessedExecution, Severity: sev, EntryID: e.ID,
			Detail: "no independent observation corresponds to this execution",
		})
	}

	classifier := NewClassifier(opts.Noise)
	var backgroundNoise, infrastructureTraffic int
	for _, w := range witnesses {
		class := classifier.Classify(w)
		switch class {
		case NoiseBackground:
			backgroundNoise++
			continue
		case NoiseInfrastructure:
			infrastructureTraffic++
			continue
		}
		if coveredWitness[w.ID] {
			continue
		}
		switch w.Event.Type {
		case ledger.WitnessEventType(ledger.ConnectionOpened):
			findings = append(findings, Finding{
				Type: FindingSilentNetwork, Severity: SeverityWarning, WitnessID: w.ID,
				Detail: "observed outbound connection has no corresponding execution",
			})
		case ledger.WitnessEventType(ledger.FileAccessed):
			if isSensitivePath(w.Event.Path) {
				findings = append(findings, Finding{
					Type: FindingSilentFileAccess, Severity: SeverityWarning, WitnessID: w.ID,
					Detail:  "observed access to a sensitive path has no corresponding execution",
					Details: map[string]interface{}{"sensitive": true},
				})
			}
		case ledger.WitnessEventType(ledger.ProcessSpawned):
			findings = append(findings, Finding{
				Type: FindingUnloggedObservation, Severity: SeverityInfo, WitnessID: w.ID,
				Detail: "observed process spawn has no corresponding execution",
			})
		}
	}

	confidence := WitnessConfidence(len(witnesses), backgroundNoise, infrastructureTraffic, len(executions), findings)

	return &Report{
		Pairs:                 pairs,
		Findings:              findings,
		WitnessConfidence:     confidence,
		TotalWitnessEvents:    len(witnesses),
		BackgroundNoise:       backgroundNoise,
		InfrastructureTraffic: infrastructureTraffic,
	}
}

func discrepancyToFindingType(t DiscrepancyType) FindingType {
	switch t {
	case DiscrepancyTargetMismatch:
		return FindingTargetDiscrepancy
	case DiscrepancyEvidenceMismatch:
		return FindingEvidenceMismatch
	case DiscrepancyTiming:
		return FindingTimingDiscrepancy
	default:
		return FindingTimingDiscrepancy
	}
}

func isWitnessableAction(t ledger.ActionType) bool {
	if isFileAction(t) || isExecAction(t) || isNetworkAction(t) {
		return true
	}
	return false
}

// WitnessConfidence computes the confidence score per the documented
// formula: T = totalWitnessEvents − backgroundNoise − infrastructureTraffic,
// then a proportional penalty driven by the warning/critical finding ratio
// plus a fixed penalty for phantom_process and evidence_mismatch findings.
func WitnessConfidence(totalWitnessEvents, backgroundNoise, infrastructureTraffic, executionCount int, findings []Finding) int {
	t := totalWitnessEvents - backgroundNoise - infrastructureTraffic
	if t <= 0 {
		if executionCount == 0 {
			return 100
		}
		return 50
	}

	var u, fixedCount int
	for _, f := range findings {
		if f.Severity == SeverityWarning || f.Severity == SeverityCritical {
			u++
		}
		if f.Type == FindingPhantomProcess || f.Type == FindingEvidenceMismatch {
			fixedCount++
		}
	}

	r := float64(u) / float64(maxInt(t, 1))
	var proportional float64
	switch {
	case r < 0.05:
		proportional = 0
	case r <= 0.20:
		proportional = r * 100
	default:
		proportional = 20 + (r-0.20)*200
	}

	fixed := float64(15 * fixedCount)

	confidence := 100 - proportional - fixed
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return int(roundFloat(confidence))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func roundFloat(f float64) float64 {
	if f >= 0 {
		return float64(int(f + 0.5))
	}
	return float64(int(f - 0.5))
}
