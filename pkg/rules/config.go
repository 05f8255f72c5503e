package rules

import (
	"fmt"
	"regexp"
)

// Config holds the rule engine's tunable thresholds and overrides. Regex
// patterns are compiled once via Compile and cached, per the design note
// that implementations must not recompile per entry.
type Config struct {
	RiskThreshold          int             `yaml:"riskThreshold"`
	MaxActionsPerMinute    int             `yaml:"maxActionsPerMinute"`
	SensitivePathPatterns  []string        `yaml:"sensitivePathPatterns"`
	SensitiveDomains       []string        `yaml:"sensitiveDomains"`
	RuleOverrides          map[string]bool `yaml:"ruleOverrides"`

	compiledPaths []*regexp.Regexp
}

// DefaultConfig returns the "default" canonical preset: moderate
// thresholds, all 14 rules enabled.
func DefaultConfig() *Config {
	return &Config{
		RiskThreshold:       7,
		MaxActionsPerMinute: 20,
		SensitivePathPatterns: []string{
			`\.ssh/`, `\.pem$`, `\.key$`, `\.env`, `credentials`, `secrets`,
			`tokens`, `password`, `keychain`, `vault`,
		},
		SensitiveDomains: []string{
			"stripe.com", "paypal.com", "venmo.com",
		},
		RuleOverrides: map[string]bool{},
	}
}

// StrictConfig returns the "strict" canonical preset: lower thresholds, no
// rules disabled.
func StrictConfig() *Config {
	c := DefaultConfig()
	c.RiskThreshold = 5
	c.MaxActionsPerMinute = 10
	return c
}

// MinimalConfig returns the "minimal" canonical preset: only the
// credential and escalation rules enabled, everything else off.
func MinimalConfig() *Config {
	c := DefaultConfig()
	c.RiskThreshold = 9
	c.MaxActionsPerMinute = 60
	c.RuleOverrides = map[string]bool{
		"fin-001": false, "fin-002": false,
		"comm-001": false, "comm-002": false,
		"exfil-001": false, "scope-001": false, "freq-001": false,
		"destr-001": false, "destr-002": false,
	}
	return c
}

// Compile precompiles SensitivePathPatterns (case-insensitive, unanchored,
// per the design note's documented regex semantics) and caches the result.
// Must be called before the config is used by the engine; subsequent calls
// recompile idempotently.
func (c *Config) Compile() error {
	c.compiledPaths = make([]*regexp.Regexp, 0, len(c.SensitivePathPatterns))
	for _, p := range c.SensitivePathPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("rules: compile sensitive path pattern %q: %w", p, err)
		}
		c.compiledPaths = append(c.compiledPaths, re)
	}
	return nil
}

// MatchesSensitivePath reports whether target matches any compiled
// sensitive path pattern. Compile must have been called first; if it has
// not, this lazily compiles once.
func (c *Config) MatchesSensitivePath(target string) bool {
	if c.compiledPaths == nil {
		_ = c.Compile()
	}
	for _, re := range c.compiledPaths {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// IsEnabled reports whether ruleID is enabled, honoring RuleOverrides over
// the rule's own enabledByDefault.
func (c *Config) IsEnabled(ruleID string, enabledByDefault bool) bool {
	if override, ok := c.RuleOverrides[ruleID]; ok {
		return override
	}
	return enabledByDefault
}
