package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.RiskThreshold != 7 {
		t.Errorf("RiskThreshold should default to 7, got %d", cfg.RiskThreshold)
	}
	if cfg.LogRetentionDays != 90 {
		t.Errorf("LogRetentionDays should default to 90, got %d", cfg.LogRetentionDays)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level should default to info, got %s", cfg.Logging.Level)
	}
	if len(cfg.Witness.InfrastructurePatterns) != 0 {
		t.Error("InfrastructurePatterns should default to empty")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig validation failed: %v", err)
	}

	cfg.RiskThreshold = 15
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range riskThreshold")
	}

	cfg = DefaultConfig()
	cfg.LogRetentionDays = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative logRetentionDays")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid log level")
	}
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agenttrust.yaml")
	contents := `
riskThreshold: 5
logRetentionDays: 30
witness:
  infrastructurePatterns:
    - host: "*.internal.example.com"
      label: "internal services"
    - host: "metrics.example.com"
      port: 9090
      label: "metrics scraper"
`
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RiskThreshold != 5 {
		t.Errorf("expected riskThreshold 5, got %d", cfg.RiskThreshold)
	}
	if len(cfg.Witness.InfrastructurePatterns) != 2 {
		t.Fatalf("expected 2 infrastructure patterns, got %d", len(cfg.Witness.InfrastructurePatterns))
	}
	if cfg.Witness.InfrastructurePatterns[1].Port == nil || *cfg.Witness.InfrastructurePatterns[1].Port != 9090 {
		t.Error("expected second pattern's port to be 9090")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Error("expected Load to error on an explicit missing path")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestLoadInfrastructurePatternsNeverErrors(t *testing.T) {
	if patterns := LoadInfrastructurePatterns("/nonexistent/path/config.yaml"); patterns != nil {
		t.Error("expected nil patterns for a missing file")
	}

	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(malformed, []byte("not: [valid yaml"), 0600); err != nil {
		t.Fatal(err)
	}
	if patterns := LoadInfrastructurePatterns(malformed); patterns != nil {
		t.Error("expected nil patterns for a malformed file")
	}

	good := filepath.Join(dir, "good.yaml")
	contents := `
witness:
  infrastructurePatterns:
    - host: "*.aws.internal"
      label: "cloud metadata"
`
	if err := os.WriteFile(good, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	patterns := LoadInfrastructurePatterns(good)
	if len(patterns) != 1 || patterns[0].Host != "*.aws.internal" {
		t.Errorf("unexpected patterns: %+v", patterns)
	}
}

func TestToNoiseConfigConvertsPatterns(t *testing.T) {
	port := 443
	cfg := DefaultConfig()
	cfg.Witness.InfrastructurePatterns = []InfrastructurePattern{
		{Host: "api.example.com", Port: &port, Label: "api"},
	}
	noiseCfg := cfg.ToNoiseConfig()
	if len(noiseCfg.CustomInfrastructurePatterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(noiseCfg.CustomInfrastructurePatterns))
	}
	if noiseCfg.CustomInfrastructurePatterns[0].Host != "api.example.com" {
		t.Error("host not copied correctly")
	}
}
