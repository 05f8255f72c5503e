package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

// setupTestLogger creates a test logger with a buffer for capturing output
func setupTestLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	baseLogger, _ := New(Config{
		Level:     "info",
		Format:    "json",
		Output:    "stdout",
		Component: "test",
	})

	jsonHandler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	baseLogger.Logger = slog.New(jsonHandler)

	return baseLogger, &buf
}

func parseLogOutput(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}
	return logEntry
}

func TestNewSecurityLogger(t *testing.T) {
	baseLogger, _ := New(Config{
		Level:     "info",
		Format:    "text",
		Output:    "stdout",
		Component: "base",
	})

	secLog := NewSecurityLogger(baseLogger)
	if secLog == nil {
		t.Fatal("NewSecurityLogger() returned nil")
	}
	if secLog.logger == nil {
		t.Error("Security logger has nil base logger")
	}
}

func TestLogIntegrityHashMismatch(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogIntegrityHashMismatch(ctx, "2026-03-15.executions.jsonl", 42, "exec-001")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "integrity_hash_mismatch" {
		t.Errorf("event_type = %v, want integrity_hash_mismatch", logEntry["event_type"])
	}
	if logEntry["file"] != "2026-03-15.executions.jsonl" {
		t.Errorf("file = %v, want the ledger filename", logEntry["file"])
	}
	if logEntry["line"] != float64(42) {
		t.Errorf("line = %v, want 42", logEntry["line"])
	}
	if logEntry["record_id"] != "exec-001" {
		t.Errorf("record_id = %v, want exec-001", logEntry["record_id"])
	}
	if logEntry["category"] != "security" {
		t.Errorf("category = %v, want security", logEntry["category"])
	}

	if logEntry["timestamp"] == nil {
		t.Error("Missing timestamp")
	} else if _, err := time.Parse(time.RFC3339, logEntry["timestamp"].(string)); err != nil {
		t.Errorf("Invalid timestamp format: %v", err)
	}
}

func TestLogIntegrityChainBroken(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogIntegrityChainBroken(ctx, "2026-03-15.claims.jsonl", 7, "abc123", "def456")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "integrity_chain_broken" {
		t.Errorf("event_type = %v, want integrity_chain_broken", logEntry["event_type"])
	}
	if logEntry["expected_prev_hash"] != "abc123" {
		t.Errorf("expected_prev_hash = %v, want abc123", logEntry["expected_prev_hash"])
	}
	if logEntry["actual_prev_hash"] != "def456" {
		t.Errorf("actual_prev_hash = %v, want def456", logEntry["actual_prev_hash"])
	}
}

func TestLogIntegrityParseFailure(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogIntegrityParseFailure(ctx, "2026-03-15.witness.jsonl", 3, "unexpected end of JSON input")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "integrity_parse_failure" {
		t.Errorf("event_type = %v, want integrity_parse_failure", logEntry["event_type"])
	}
	if logEntry["reason"] != "unexpected end of JSON input" {
		t.Errorf("reason = %v, want the parse error", logEntry["reason"])
	}
}

func TestLogRuleMatched(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogRuleMatched(ctx, "fin-001", "exec-042", "critical", 40)

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "rule_matched" {
		t.Errorf("event_type = %v, want rule_matched", logEntry["event_type"])
	}
	if logEntry["rule_id"] != "fin-001" {
		t.Errorf("rule_id = %v, want fin-001", logEntry["rule_id"])
	}
	if logEntry["contribution"] != float64(40) {
		t.Errorf("contribution = %v, want 40", logEntry["contribution"])
	}
}

func TestLogRuleEvaluationFailed(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogRuleEvaluationFailed(ctx, "esc-002", "exec-099", "index out of range")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "rule_evaluation_failed" {
		t.Errorf("event_type = %v, want rule_evaluation_failed", logEntry["event_type"])
	}
	if logEntry["rule_id"] != "esc-002" {
		t.Errorf("rule_id = %v, want esc-002", logEntry["rule_id"])
	}
}

func TestLogConsistencyDivergence(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogConsistencyDivergence(ctx, "scope_violation", "claim-1", "exec-1", "critical")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "consistency_divergence" {
		t.Errorf("event_type = %v, want consistency_divergence", logEntry["event_type"])
	}
	if logEntry["finding_type"] != "scope_violation" {
		t.Errorf("finding_type = %v, want scope_violation", logEntry["finding_type"])
	}
}

func TestLogConsistencyScoreLow(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogConsistencyScoreLow(ctx, 55, 70)

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "consistency_score_low" {
		t.Errorf("event_type = %v, want consistency_score_low", logEntry["event_type"])
	}
	if logEntry["score"] != float64(55) {
		t.Errorf("score = %v, want 55", logEntry["score"])
	}
	if logEntry["threshold"] != float64(70) {
		t.Errorf("threshold = %v, want 70", logEntry["threshold"])
	}
}

func TestLogWitnessCoverageGap(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogWitnessCoverageGap(ctx, "phantom_process", "", "wit-1")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "witness_coverage_gap" {
		t.Errorf("event_type = %v, want witness_coverage_gap", logEntry["event_type"])
	}
	if logEntry["witness_id"] != "wit-1" {
		t.Errorf("witness_id = %v, want wit-1", logEntry["witness_id"])
	}
}

func TestLogWitnessProbeFailed(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogWitnessProbeFailed(ctx, "process", errors.New("permission denied"))

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "witness_probe_failed" {
		t.Errorf("event_type = %v, want witness_probe_failed", logEntry["event_type"])
	}
	if logEntry["monitor"] != "process" {
		t.Errorf("monitor = %v, want process", logEntry["monitor"])
	}
	if logEntry["error"] != "permission denied" {
		t.Errorf("error = %v, want permission denied", logEntry["error"])
	}
}

func TestLogCorrelationDiscrepancy(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogCorrelationDiscrepancy(ctx, "target_discrepancy", "wit-2", "exec-2")

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "correlation_discrepancy" {
		t.Errorf("event_type = %v, want correlation_discrepancy", logEntry["event_type"])
	}
	if logEntry["discrepancy_type"] != "target_discrepancy" {
		t.Errorf("discrepancy_type = %v, want target_discrepancy", logEntry["discrepancy_type"])
	}
}

func TestLogBlameRootIdentified(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogBlameRootIdentified(ctx, "incident-1", "exec-risky", 3)

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "blame_root_identified" {
		t.Errorf("event_type = %v, want blame_root_identified", logEntry["event_type"])
	}
	if logEntry["blame_root_id"] != "exec-risky" {
		t.Errorf("blame_root_id = %v, want exec-risky", logEntry["blame_root_id"])
	}
	if logEntry["factor_count"] != float64(3) {
		t.Errorf("factor_count = %v, want 3", logEntry["factor_count"])
	}
}

func TestLogTrustVerdictComputed(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogTrustVerdictComputed(ctx, 79, "moderate", 100, 80, 60)

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "trust_verdict_computed" {
		t.Errorf("event_type = %v, want trust_verdict_computed", logEntry["event_type"])
	}
	if logEntry["trust_score"] != float64(79) {
		t.Errorf("trust_score = %v, want 79", logEntry["trust_score"])
	}
	if logEntry["level"] != "moderate" {
		t.Errorf("level = %v, want moderate", logEntry["level"])
	}
}

func TestLogTrustVerdictComputedEmitsUntrustedEventWhenUntrusted(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	ctx := context.Background()
	secLog.LogTrustVerdictComputed(ctx, 0, "untrusted", 0, 80, 60)

	// Two JSON objects were written to buf; the second is the dedicated
	// untrusted event.
	decoder := json.NewDecoder(buf)
	var first, second map[string]interface{}
	if err := decoder.Decode(&first); err != nil {
		t.Fatalf("failed to decode first log line: %v", err)
	}
	if err := decoder.Decode(&second); err != nil {
		t.Fatalf("failed to decode second log line: %v", err)
	}
	if first["event_type"] != "trust_verdict_computed" {
		t.Errorf("first event_type = %v, want trust_verdict_computed", first["event_type"])
	}
	if second["event_type"] != "trust_verdict_untrusted" {
		t.Errorf("second event_type = %v, want trust_verdict_untrusted", second["event_type"])
	}
}

func TestLogSecurityEventGeneric(t *testing.T) {
	logger, buf := setupTestLogger()
	secLog := NewSecurityLogger(logger)

	secLog.LogSecurityEvent("custom_event", slog.String("detail", "value"))

	logEntry := parseLogOutput(t, buf)
	if logEntry["event_type"] != "custom_event" {
		t.Errorf("event_type = %v, want custom_event", logEntry["event_type"])
	}
	if logEntry["detail"] != "value" {
		t.Errorf("detail = %v, want value", logEntry["detail"])
	}
}

func TestAllSecurityEventTypesHaveValues(t *testing.T) {
	expectedTypes := []SecurityEventType{
		IntegrityHashMismatch, IntegrityChainBroken, IntegrityParseFailure,
		RuleMatched, RuleEvaluationFailed,
		ConsistencyDivergence, ConsistencyScoreLow,
		WitnessCoverageGap, WitnessProbeFailed, CorrelationDiscrepancy,
		BlameRootIdentified, TrustVerdictComputed, TrustVerdictUntrusted,
	}
	for _, eventType := range expectedTypes {
		if string(eventType) == "" {
			t.Errorf("Security event type %v has empty string value", eventType)
		}
	}
}

func BenchmarkSecurityLogging(b *testing.B) {
	logger, _ := New(Config{
		Level:     "info",
		Format:    "json",
		Output:    "stdout",
		Component: "bench",
	})
	secLog := NewSecurityLogger(logger)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		secLog.LogRuleMatched(ctx, "fin-001", "exec-bench", "critical", 40)
	}
}

func TestConcurrentSecurityLogging(t *testing.T) {
	logger, _ := New(Config{
		Level:     "info",
		Format:    "json",
		Output:    "stdout",
		Component: "test",
	})
	secLog := NewSecurityLogger(logger)
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				secLog.LogRuleMatched(ctx, "fin-001", "exec-concurrent", "warning", 10)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
