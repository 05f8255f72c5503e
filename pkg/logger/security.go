// Package logger: security- and audit-event helpers scoped to the trust
// and audit core's own domain — rule matches, integrity failures,
// consistency divergence, witness coverage gaps, and trust verdicts.
package logger

import (
	"context"
	"log/slog"
)

// SecurityEventType defines the fixed vocabulary of security-relevant
// events this core can emit.
type SecurityEventType string

const (
	// Ledger integrity events
	IntegrityHashMismatch   SecurityEventType = "integrity_hash_mismatch"
	IntegrityChainBroken    SecurityEventType = "integrity_chain_broken"
	IntegrityParseFailure   SecurityEventType = "integrity_parse_failure"

	// Rule engine events
	RuleMatched             SecurityEventType = "rule_matched"
	RuleEvaluationFailed    SecurityEventType = "rule_evaluation_failed"

	// Consistency engine events
	ConsistencyDivergence   SecurityEventType = "consistency_divergence"
	ConsistencyScoreLow     SecurityEventType = "consistency_score_low"

	// Witness and correlation events
	WitnessCoverageGap      SecurityEventType = "witness_coverage_gap"
	WitnessProbeFailed      SecurityEventType = "witness_probe_failed"
	CorrelationDiscrepancy  SecurityEventType = "correlation_discrepancy"

	// Blame and trust events
	BlameRootIdentified     SecurityEventType = "blame_root_identified"
	TrustVerdictComputed    SecurityEventType = "trust_verdict_computed"
	TrustVerdictUntrusted   SecurityEventType = "trust_verdict_untrusted"
)

// SecurityLogger provides security-specific logging methods.
type SecurityLogger struct {
	logger *Logger
}

// NewSecurityLogger creates a new security logger scoped to a "security"
// component.
func NewSecurityLogger(baseLogger *Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: baseLogger.WithComponent("security"),
	}
}

// LogIntegrityHashMismatch logs a record whose stored hash does not match
// its recomputed hash.
func (sl *SecurityLogger) LogIntegrityHashMismatch(ctx context.Context, file string, line int, recordID string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("record_id", recordID),
	}
	sl.logger.SecurityEvent(ctx, string(IntegrityHashMismatch), append(baseAttrs, attrs...)...)
}

// LogIntegrityChainBroken logs a record whose prevHash does not match the
// prior record's hash.
func (sl *SecurityLogger) LogIntegrityChainBroken(ctx context.Context, file string, line int, expectedPrevHash, actualPrevHash string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("expected_prev_hash", expectedPrevHash),
		slog.String("actual_prev_hash", actualPrevHash),
	}
	sl.logger.SecurityEvent(ctx, string(IntegrityChainBroken), append(baseAttrs, attrs...)...)
}

// LogIntegrityParseFailure logs a single line that failed to parse; per
// the core's error taxonomy this is a warning, not a fatal condition — the
// surrounding file remains usable.
func (sl *SecurityLogger) LogIntegrityParseFailure(ctx context.Context, file string, line int, reason string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("reason", reason),
	}
	sl.logger.SecurityEvent(ctx, string(IntegrityParseFailure), append(baseAttrs, attrs...)...)
}

// LogRuleMatched logs a risk rule firing against an execution.
func (sl *SecurityLogger) LogRuleMatched(ctx context.Context, ruleID, entryID, severity string, contribution int, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("rule_id", ruleID),
		slog.String("entry_id", entryID),
		slog.String("severity", severity),
		slog.Int("contribution", contribution),
	}
	sl.logger.SecurityEvent(ctx, string(RuleMatched), append(baseAttrs, attrs...)...)
}

// LogRuleEvaluationFailed logs a rule that panicked or errored during
// batch evaluation; the batch continues with that rule's result omitted.
func (sl *SecurityLogger) LogRuleEvaluationFailed(ctx context.Context, ruleID, entryID string, recovered any, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("rule_id", ruleID),
		slog.String("entry_id", entryID),
		slog.Any("recovered", recovered),
	}
	sl.logger.SecurityEvent(ctx, string(RuleEvaluationFailed), append(baseAttrs, attrs...)...)
}

// LogConsistencyDivergence logs one claim/execution divergence finding.
func (sl *SecurityLogger) LogConsistencyDivergence(ctx context.Context, findingType, claimID, entryID, severity string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("finding_type", findingType),
		slog.String("claim_id", claimID),
		slog.String("entry_id", entryID),
		slog.String("severity", severity),
	}
	sl.logger.SecurityEvent(ctx, string(ConsistencyDivergence), append(baseAttrs, attrs...)...)
}

// LogConsistencyScoreLow logs a consistency report whose score fell below
// the configured risk threshold.
func (sl *SecurityLogger) LogConsistencyScoreLow(ctx context.Context, score, threshold int, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.Int("score", score),
		slog.Int("threshold", threshold),
	}
	sl.logger.SecurityEvent(ctx, string(ConsistencyScoreLow), append(baseAttrs, attrs...)...)
}

// LogWitnessCoverageGap logs an execution or witness event the correlator
// could not pair with its counterpart (phantom process, silent network
// access, and similar coverage-gap findings).
func (sl *SecurityLogger) LogWitnessCoverageGap(ctx context.Context, findingType, entryID, witnessID string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("finding_type", findingType),
		slog.String("entry_id", entryID),
		slog.String("witness_id", witnessID),
	}
	sl.logger.SecurityEvent(ctx, string(WitnessCoverageGap), append(baseAttrs, attrs...)...)
}

// LogWitnessProbeFailed logs a host probe (process list, connection list,
// file hash) that failed or timed out; the next poll cycle retries.
func (sl *SecurityLogger) LogWitnessProbeFailed(ctx context.Context, monitor string, err error, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("monitor", monitor),
		slog.String("error", err.Error()),
	}
	sl.logger.SecurityEvent(ctx, string(WitnessProbeFailed), append(baseAttrs, attrs...)...)
}

// LogCorrelationDiscrepancy logs a witness/execution pair whose targets,
// evidence, or timing diverged.
func (sl *SecurityLogger) LogCorrelationDiscrepancy(ctx context.Context, discrepancyType, witnessID, executionID string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("discrepancy_type", discrepancyType),
		slog.String("witness_id", witnessID),
		slog.String("execution_id", executionID),
	}
	sl.logger.SecurityEvent(ctx, string(CorrelationDiscrepancy), append(baseAttrs, attrs...)...)
}

// LogBlameRootIdentified logs the outcome of a blame analysis.
func (sl *SecurityLogger) LogBlameRootIdentified(ctx context.Context, incidentID, blameRootID string, factorCount int, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("incident_id", incidentID),
		slog.String("blame_root_id", blameRootID),
		slog.Int("factor_count", factorCount),
	}
	sl.logger.SecurityEvent(ctx, string(BlameRootIdentified), append(baseAttrs, attrs...)...)
}

// LogTrustVerdictComputed logs a composed trust verdict. If the level is
// "untrusted" it additionally emits a TrustVerdictUntrusted event, since
// that outcome is the one operators most need surfaced.
func (sl *SecurityLogger) LogTrustVerdictComputed(ctx context.Context, trustScore int, level string, integrity, consistency, witnessConfidence int, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.Int("trust_score", trustScore),
		slog.String("level", level),
		slog.Int("integrity", integrity),
		slog.Int("consistency", consistency),
		slog.Int("witness_confidence", witnessConfidence),
	}
	sl.logger.SecurityEvent(ctx, string(TrustVerdictComputed), append(baseAttrs, attrs...)...)
	if level == "untrusted" {
		sl.logger.SecurityEvent(ctx, string(TrustVerdictUntrusted), append(baseAttrs, attrs...)...)
	}
}

// LogSecurityEvent logs a generic security event with a custom event type,
// for call sites that don't fit the predefined categories above.
func (sl *SecurityLogger) LogSecurityEvent(eventType string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event_type", eventType),
	}
	sl.logger.SecurityEvent(context.Background(), eventType, append(baseAttrs, attrs...)...)
}
