package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agenttrust/core/pkg/errors"
)

// Load loads configuration from a file path. If path is empty, it searches
// the default locations. If none is found, it returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, p := range ConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		slog.Default().With("component", "config").Info("no configuration file found, using defaults")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewBuilder("CONFIG-001").
			WithMessagef("read %s: %v", path, err).
			WithInput("path", path).
			Wrap(err).Build()
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewBuilder("CONFIG-001").
			WithMessagef("parse %s: %v", path, err).
			WithInput("path", path).
			Wrap(err).Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewBuilder("CONFIG-002").
			WithMessagef("invalid configuration from %s: %v", path, err).
			WithInput("path", path).
			Wrap(err).Build()
	}

	return cfg, nil
}

// LoadInfrastructurePatterns reads just the witness.infrastructurePatterns
// list from path. Per the core's error-handling policy for config, a
// missing or malformed file collapses to an empty list rather than
// propagating an error: startup must never block on this.
func LoadInfrastructurePatterns(path string) []InfrastructurePattern {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc struct {
		Witness WitnessConfig `yaml:"witness"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Witness.InfrastructurePatterns
}

// Save writes cfg to path as YAML, validating first.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return errors.NewBuilder("CONFIG-002").
			WithMessagef("cannot save invalid configuration: %v", err).
			Wrap(err).Build()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewBuilder("CONFIG-001").
			WithMessagef("marshal: %v", err).
			Wrap(err).Build()
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.NewBuilder("CONFIG-001").
			WithMessagef("write %s: %v", path, err).
			WithInput("path", path).
			Wrap(err).Build()
	}
	return nil
}
