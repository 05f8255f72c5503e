package correlation

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/agenttrust/core/pkg/ledger"
)

// defaultBackgroundCommands is the built-in exclusion set of process
// commands treated as background noise regardless of caller configuration.
var defaultBackgroundCommands = []string{
	"launchd", "systemd", "kernel_task", "mdworker", "mds_stores",
	"Finder", "WindowServer", "coreaudiod", "cfprefsd", "syslogd",
}

// defaultInfrastructurePatterns is the built-in set of known-provider host
// patterns, merged with caller-supplied customInfrastructurePatterns.
var defaultInfrastructurePatterns = []string{
	"api.anthropic.com", "*.githubusercontent.com", "*.github.com",
	"*.amazonaws.com", "*.googleapis.com", "*.cloudfront.net",
}

// InfrastructurePattern is one host/port classification rule.
type InfrastructurePattern struct {
	Host string
	Port *int
	Label string
}

// NoiseConfig configures the classifier.
type NoiseConfig struct {
	BackgroundCommands          []string
	CustomInfrastructurePatterns []InfrastructurePattern
}

// compiledPattern pairs a compiled glob with its optional port.
type compiledPattern struct {
	g    glob.Glob
	port *int
}

// Classifier classifies witness entries into background/infrastructure/
// agent-relevant buckets.
type Classifier struct {
	background map[string]bool
	infra      []compiledPattern
}

// NewClassifier compiles cfg's patterns once for reuse across a batch.
func NewClassifier(cfg NoiseConfig) *Classifier {
	c := &Classifier{background: make(map[string]bool)}
	for _, cmd := range defaultBackgroundCommands {
		c.background[cmd] = true
	}
	for _, cmd := range cfg.BackgroundCommands {
		c.background[cmd] = true
	}

	for _, p := range defaultInfrastructurePatterns {
		if g, err := glob.Compile(p); err == nil {
			c.infra = append(c.infra, compiledPattern{g: g})
		}
	}
	for _, p := range cfg.CustomInfrastructurePatterns {
		if g, err := glob.Compile(p.Host); err == nil {
			c.infra = append(c.infra, compiledPattern{g: g, port: p.Port})
		}
	}
	return c
}

// Classify returns the noise class of one witness entry.
func (c *Classifier) Classify(w *ledger.Witness) NoiseClass {
	switch w.Event.Type {
	case ledger.WitnessEventType(ledger.ProcessSpawned):
		if c.isBackgroundCommand(w.Event.Command) {
			return NoiseBackground
		}
	case ledger.WitnessEventType(ledger.ConnectionOpened):
		if c.isInfrastructure(w.Event.RemoteHost, w.Event.RemotePort) {
			return NoiseInfrastructure
		}
	}
	return NoiseAgentRelevant
}

func (c *Classifier) isBackgroundCommand(command string) bool {
	base := baseCommand(command)
	return c.background[base]
}

func baseCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	first := fields[0]
	if idx := strings.LastIndex(first, "/"); idx >= 0 {
		return first[idx+1:]
	}
	return first
}

func (c *Classifier) isInfrastructure(host string, port *int) bool {
	if host == "" {
		return false
	}
	for _, p := range c.infra {
		if !p.g.Match(host) {
			continue
		}
		if p.port != nil && (port == nil || *port != *p.port) {
			continue
		}
		return true
	}
	return false
}
