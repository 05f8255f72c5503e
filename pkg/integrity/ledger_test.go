package integrity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	agenterrors "github.com/agenttrust/core/pkg/errors"
	"github.com/agenttrust/core/pkg/ledger"
)

func TestVerifyExecutionFileMissingFileReturnsTracedError(t *testing.T) {
	_, err := VerifyExecutionFile(t.TempDir(), "2026-08-02.executions.jsonl")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	var traced *agenterrors.TracedError
	if !errors.As(err, &traced) {
		t.Fatalf("expected a *errors.TracedError, got %T", err)
	}
	if traced.Code != "LEDGER-021" {
		t.Errorf("Code = %q, want LEDGER-021", traced.Code)
	}
}

func TestVerifyAllExecutionsListFailureReturnsTracedError(t *testing.T) {
	// A regular file in place of the store directory makes os.ReadDir fail,
	// which is the only way List() returns a non-nil error.
	dir := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(dir, []byte("x"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := ledger.NewExecutionStore(dir)
	_, err := VerifyAllExecutions(store)
	if err == nil {
		t.Fatal("expected an error when the store directory is unreadable")
	}

	var traced *agenterrors.TracedError
	if !errors.As(err, &traced) {
		t.Fatalf("expected a *errors.TracedError, got %T", err)
	}
	if traced.Code != "LEDGER-021" {
		t.Errorf("Code = %q, want LEDGER-021", traced.Code)
	}
}
