// Package config loads the YAML configuration consumed (but not owned)
// by the core: the risk threshold, log retention policy, and witness
// infrastructure noise patterns.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agenttrust/core/pkg/correlation"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

// WitnessConfig holds witness-correlation configuration.
type WitnessConfig struct {
	InfrastructurePatterns []InfrastructurePattern `yaml:"infrastructurePatterns"`
}

// InfrastructurePattern mirrors the YAML shape of one noise-classifier
// entry: a glob host pattern, an optional port, and a human label.
type InfrastructurePattern struct {
	Host  string `yaml:"host"`
	Port  *int   `yaml:"port,omitempty"`
	Label string `yaml:"label"`
}

// Config holds all configuration recognized by the core.
type Config struct {
	RiskThreshold    int           `yaml:"riskThreshold"`
	LogRetentionDays int           `yaml:"logRetentionDays"`
	Witness          WitnessConfig `yaml:"witness"`
	Logging          LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RiskThreshold:    7,
		LogRetentionDays: 90,
		Witness:          WitnessConfig{InfrastructurePatterns: nil},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// ConfigPaths returns the list of default configuration file paths to check.
func ConfigPaths() []string {
	homeDir, _ := os.UserHomeDir()
	return []string{
		filepath.Join(homeDir, ".agenttrust", "config.yaml"),
		filepath.Join("/etc", "agenttrust", "config.yaml"),
		"./agenttrust.yaml",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.RiskThreshold < 0 || c.RiskThreshold > 10 {
		return fmt.Errorf("%w: riskThreshold must be between 0 and 10", ErrInvalidConfig)
	}
	if c.LogRetentionDays < 0 {
		return fmt.Errorf("%w: logRetentionDays cannot be negative", ErrInvalidConfig)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: logging.level must be one of: debug, info, warn, error", ErrInvalidConfig)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return fmt.Errorf("%w: logging.format must be one of: json, text", ErrInvalidConfig)
	}

	return nil
}

// ToNoiseConfig converts the witness infrastructure patterns into the
// shape the correlation package's noise classifier consumes.
func (c *Config) ToNoiseConfig() correlation.NoiseConfig {
	patterns := make([]correlation.InfrastructurePattern, 0, len(c.Witness.InfrastructurePatterns))
	for _, p := range c.Witness.InfrastructurePatterns {
		patterns = append(patterns, correlation.InfrastructurePattern{
			Host:  p.Host,
			Port:  p.Port,
			Label: p.Label,
		})
	}
	return correlation.NoiseConfig{CustomInfrastructurePatterns: patterns}
}
