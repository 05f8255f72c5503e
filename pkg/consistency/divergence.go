package consistency

import "github.com/agenttrust/core/pkg/ledger"

// DetectFindings runs the divergence rules over every match.
func DetectFindings(matches []Match) []Finding {
	var findings []Finding
	for _, m := range matches {
		switch {
		case m.Claim == nil && m.Execution != nil:
			findings = append(findings, unclaimedExecutionFinding(m.Execution))
		case m.Claim != nil && m.Execution == nil:
			findings = append(findings, Finding{
				Type: DivergenceUnfulfilledClaim, Severity: SeverityWarning,
				ClaimID: m.Claim.ID, Detail: "claim was never matched to an execution",
			})
		case m.Claim != nil && m.Execution != nil:
			findings = append(findings, pairedFindings(m.Claim, m.Execution)...)
		}
	}
	return findings
}

func unclaimedExecutionFinding(e *ledger.Execution) Finding {
	sev := SeverityWarning
	if e.Risk.Score < 3 {
		sev = SeverityInfo
	}
	return Finding{
		Type: DivergenceUnclaimedExecution, Severity: sev, EntryID: e.ID,
		Detail: "execution has no corresponding claim",
	}
}

func pairedFindings(c *ledger.Claim, e *ledger.Execution) []Finding {
	var out []Finding

	if c.Intent.PlannedTarget != e.Action.Target {
		sev := SeverityWarning
		if e.Risk.Score >= 7 {
			sev = SeverityCritical
		}
		out = append(out, Finding{
			Type: DivergenceTargetMismatch, Severity: sev, ClaimID: c.ID, EntryID: e.ID,
			Detail: "planned target differs from the action's actual target",
		})
	}

	if c.Intent.PlannedAction != e.Action.Type {
		out = append(out, Finding{
			Type: DivergenceActionTypeMismatch, Severity: SeverityCritical, ClaimID: c.ID, EntryID: e.ID,
			Detail: "planned action type differs from the action actually taken",
		})
	}

	if e.Risk.Score-c.Intent.SelfAssessedRisk >= 3 {
		out = append(out, Finding{
			Type: DivergenceRiskUnderestimate, Severity: SeverityWarning, ClaimID: c.ID, EntryID: e.ID,
			Detail: "self-assessed risk is at least 3 points below the computed risk score",
		})
	}

	if c.Constraints.WithinScope && isScopeViolatingAction(c, e) {
		out = append(out, Finding{
			Type: DivergenceScopeViolation, Severity: SeverityCritical, ClaimID: c.ID, EntryID: e.ID,
			Detail: "action claimed to be within scope is an escalation, payment, or undeclared external comms",
		})
	}

	if !c.Constraints.RequiresElevation && isElevatedAction(e.Action.Type) {
		out = append(out, Finding{
			Type: DivergenceEscalationUndeclared, Severity: SeverityCritical, ClaimID: c.ID, EntryID: e.ID,
			Detail: "execution used elevation the claim did not declare",
		})
	}

	if c.Intent.ExpectedOutcome == ledger.ExpectedSuccess &&
		(e.Outcome.Status == ledger.OutcomeFailure || e.Outcome.Status == ledger.OutcomeBlocked) {
		out = append(out, Finding{
			Type: DivergenceOutcomeUnexpected, Severity: SeverityInfo, ClaimID: c.ID, EntryID: e.ID,
			Detail: "claim expected success but the execution failed or was blocked",
		})
	}

	return out
}

func isElevatedAction(t ledger.ActionType) bool {
	return t == ledger.ActionElevatedEnable || t == ledger.ActionElevatedCommand
}

func isScopeViolatingAction(c *ledger.Claim, e *ledger.Execution) bool {
	switch e.Action.Type {
	case ledger.ActionElevatedEnable, ledger.ActionElevatedCommand,
		ledger.ActionPaymentInitiate, ledger.ActionPaymentConfirm:
		return true
	case ledger.ActionMessageSend, ledger.ActionSessionSend:
		return !c.Constraints.InvolvesExternalComms
	}
	return false
}
