package ledger

import "fmt"

// Validate checks an Execution's required fields, enum values, and ranges.
func (e *Execution) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("ledger: execution missing id")
	}
	if e.V != SchemaVersion {
		return fmt.Errorf("ledger: execution has unsupported schema version %d", e.V)
	}
	if e.Ts == "" {
		return fmt.Errorf("ledger: execution missing ts")
	}
	if e.Agent == "" {
		return fmt.Errorf("ledger: execution missing agent")
	}
	if e.Session == "" {
		return fmt.Errorf("ledger: execution missing session")
	}
	if !IsValidActionType(e.Action.Type) {
		return fmt.Errorf("ledger: execution has invalid action type %q", e.Action.Type)
	}
	if e.Action.Target == "" {
		return fmt.Errorf("ledger: execution missing action.target")
	}
	if !e.Outcome.Status.valid() {
		return fmt.Errorf("ledger: execution has invalid outcome.status %q", e.Outcome.Status)
	}
	if e.Risk.Score < 0 || e.Risk.Score > 10 {
		return fmt.Errorf("ledger: execution risk.score %d out of range 0..10", e.Risk.Score)
	}
	for _, l := range e.Risk.Labels {
		if !validRiskLabels[l] {
			return fmt.Errorf("ledger: execution has invalid risk label %q", l)
		}
	}
	if e.Risk.AutoFlagged != AutoFlag(e.Risk.Score) {
		return fmt.Errorf("ledger: execution autoFlagged does not match score %d", e.Risk.Score)
	}
	return nil
}

// Validate checks a Claim's required fields, enum values, and ranges.
func (c *Claim) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("ledger: claim missing id")
	}
	if c.V != SchemaVersion {
		return fmt.Errorf("ledger: claim has unsupported schema version %d", c.V)
	}
	if c.Ts == "" {
		return fmt.Errorf("ledger: claim missing ts")
	}
	if c.Agent == "" {
		return fmt.Errorf("ledger: claim missing agent")
	}
	if c.Session == "" {
		return fmt.Errorf("ledger: claim missing session")
	}
	if !IsValidActionType(c.Intent.PlannedAction) {
		return fmt.Errorf("ledger: claim has invalid intent.plannedAction %q", c.Intent.PlannedAction)
	}
	if c.Intent.PlannedTarget == "" {
		return fmt.Errorf("ledger: claim missing intent.plannedTarget")
	}
	if !c.Intent.ExpectedOutcome.valid() {
		return fmt.Errorf("ledger: claim has invalid intent.expectedOutcome %q", c.Intent.ExpectedOutcome)
	}
	if c.Intent.SelfAssessedRisk < 0 || c.Intent.SelfAssessedRisk > 10 {
		return fmt.Errorf("ledger: claim selfAssessedRisk %d out of range 0..10", c.Intent.SelfAssessedRisk)
	}
	return nil
}

// Validate checks a Witness's required fields and enum values.
func (w *Witness) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("ledger: witness missing id")
	}
	if w.V != SchemaVersion {
		return fmt.Errorf("ledger: witness has unsupported schema version %d", w.V)
	}
	if w.Ts == "" {
		return fmt.Errorf("ledger: witness missing ts")
	}
	switch w.Source {
	case SourceFilesystem, SourceProcess, SourceNetwork:
	default:
		return fmt.Errorf("ledger: witness has invalid source %q", w.Source)
	}
	switch w.Source {
	case SourceFilesystem:
		switch FileEventType(w.Event.Type) {
		case FileCreated, FileModified, FileDeleted, FileAccessed:
		default:
			return fmt.Errorf("ledger: filesystem witness has invalid event type %q", w.Event.Type)
		}
		if w.Event.Path == "" {
			return fmt.Errorf("ledger: filesystem witness missing event.path")
		}
	case SourceProcess:
		switch ProcessEventType(w.Event.Type) {
		case ProcessSpawned, ProcessExited:
		default:
			return fmt.Errorf("ledger: process witness has invalid event type %q", w.Event.Type)
		}
		if w.Event.PID == 0 {
			return fmt.Errorf("ledger: process witness missing event.pid")
		}
	case SourceNetwork:
		switch NetworkEventType(w.Event.Type) {
		case ConnectionOpened, ConnectionClosed, DNSQuery:
		default:
			return fmt.Errorf("ledger: network witness has invalid event type %q", w.Event.Type)
		}
		if w.Event.RemoteHost == "" {
			return fmt.Errorf("ledger: network witness missing event.remoteHost")
		}
	}
	return nil
}
