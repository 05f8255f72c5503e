package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	agenterrors "github.com/agenttrust/core/pkg/errors"
)

func TestLoadNoPathSearchedReturnsDefaults(t *testing.T) {
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(oldWd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no config file present should fall back to defaults, got err=%v", err)
	}
	if cfg.RiskThreshold != DefaultConfig().RiskThreshold {
		t.Errorf("RiskThreshold = %d, want default %d", cfg.RiskThreshold, DefaultConfig().RiskThreshold)
	}
}

func TestLoadMissingExplicitPathReturnsTracedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for a missing explicit config path")
	}

	var traced *agenterrors.TracedError
	if !errors.As(err, &traced) {
		t.Fatalf("expected a *errors.TracedError, got %T", err)
	}
	if traced.Code != "CONFIG-001" {
		t.Errorf("Code = %q, want CONFIG-001", traced.Code)
	}
}

func TestLoadInvalidYAMLReturnsTracedError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agenttrust.yaml")
	if err := os.WriteFile(path, []byte("riskThreshold: [not, a, number"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}

	var traced *agenterrors.TracedError
	if !errors.As(err, &traced) {
		t.Fatalf("expected a *errors.TracedError, got %T", err)
	}
	if traced.Code != "CONFIG-001" {
		t.Errorf("Code = %q, want CONFIG-001", traced.Code)
	}
}

func TestLoadOutOfRangeValueReturnsTracedError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agenttrust.yaml")
	if err := os.WriteFile(path, []byte("riskThreshold: 99\n"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var traced *agenterrors.TracedError
	if !errors.As(err, &traced) {
		t.Fatalf("expected a *errors.TracedError, got %T", err)
	}
	if traced.Code != "CONFIG-002" {
		t.Errorf("Code = %q, want CONFIG-002", traced.Code)
	}
}

func TestLoadInfrastructurePatternsMissingFileReturnsEmpty(t *testing.T) {
	patterns := LoadInfrastructurePatterns(filepath.Join(t.TempDir(), "nope.yaml"))
	if patterns != nil {
		t.Errorf("expected nil patterns for a missing file, got %v", patterns)
	}
}
