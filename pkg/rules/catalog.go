package rules

import (
	"strings"
	"time"

	"github.com/agenttrust/core/pkg/ledger"
)

// funcRule is a Rule built from plain fields plus an evaluation closure,
// avoiding fourteen near-identical struct definitions.
type funcRule struct {
	id                string
	name              string
	category          Category
	description       string
	enabledByDefault  bool
	evalFn            func(entry *ledger.Execution, ctx *Context) *Match
}

func (r *funcRule) ID() string                 { return r.id }
func (r *funcRule) Name() string               { return r.name }
func (r *funcRule) Category() Category         { return r.category }
func (r *funcRule) Description() string        { return r.description }
func (r *funcRule) EnabledByDefault() bool     { return r.enabledByDefault }
func (r *funcRule) Evaluate(e *ledger.Execution, ctx *Context) *Match {
	return r.evalFn(e, ctx)
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsAny(s string, candidates []string) bool {
	low := strings.ToLower(s)
	for _, c := range candidates {
		if strings.Contains(low, c) {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the full 14-rule catalog described in §4.F.
func DefaultCatalog() []Rule {
	return []Rule{
		&funcRule{
			id: "fin-001", name: "Payment action", category: CategoryFinancial,
			description:      "Any action whose type begins with payment.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if !strings.HasPrefix(string(e.Action.Type), "payment.") {
					return nil
				}
				return &Match{RuleID: "fin-001", Name: "Payment action", Category: CategoryFinancial,
					Severity: SeverityHigh, Contribution: 8,
					Description: "action type begins with payment."}
			},
		},
		&funcRule{
			id: "fin-002", name: "Financial API call", category: CategoryFinancial,
			description:      "api.call targeting a known payment provider/keyword.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionAPICall {
					return nil
				}
				keywords := []string{"payment", "stripe", "paypal", "venmo", "banking",
					"checkout", "billing", "invoice", "transaction"}
				if !containsAny(e.Action.Target, keywords) {
					return nil
				}
				return &Match{RuleID: "fin-002", Name: "Financial API call", Category: CategoryFinancial,
					Severity: SeverityHigh, Contribution: 7,
					Description: "api.call target matches a financial keyword"}
			},
		},
		&funcRule{
			id: "cred-001", name: "SSH/key file read", category: CategoryCredential,
			description:      "file.read of an SSH directory member, .pem, or .key file.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionFileRead {
					return nil
				}
				t := e.Action.Target
				if !strings.Contains(t, ".ssh/") && !strings.HasSuffix(t, ".pem") && !strings.HasSuffix(t, ".key") {
					return nil
				}
				return &Match{RuleID: "cred-001", Name: "SSH/key file read", Category: CategoryCredential,
					Severity: SeverityCritical, Contribution: 9,
					Description: "file.read targets an SSH key or certificate file"}
			},
		},
		&funcRule{
			id: "cred-002", name: "Secrets file read", category: CategoryCredential,
			description:      "file.read of an .env, credentials, secrets, or tokens file.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionFileRead {
					return nil
				}
				if !containsAny(e.Action.Target, []string{".env", "credentials", "secrets", "tokens"}) {
					return nil
				}
				return &Match{RuleID: "cred-002", Name: "Secrets file read", Category: CategoryCredential,
					Severity: SeverityHigh, Contribution: 8,
					Description: "file.read targets a secrets-shaped file"}
			},
		},
		&funcRule{
			id: "cred-003", name: "Password/vault file read", category: CategoryCredential,
			description:      "file.read of a password, keychain, or vault file.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionFileRead {
					return nil
				}
				if !containsAny(e.Action.Target, []string{"password", "keychain", "vault"}) {
					return nil
				}
				return &Match{RuleID: "cred-003", Name: "Password/vault file read", Category: CategoryCredential,
					Severity: SeverityCritical, Contribution: 9,
					Description: "file.read targets a password/vault-shaped file"}
			},
		},
		&funcRule{
			id: "comm-001", name: "Outbound message", category: CategoryCommunication,
			description:      "Any message.send action.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionMessageSend {
					return nil
				}
				return &Match{RuleID: "comm-001", Name: "Outbound message", Category: CategoryCommunication,
					Severity: SeverityMedium, Contribution: 5,
					Description: "message.send action"}
			},
		},
		&funcRule{
			id: "comm-002", name: "Message to new target", category: CategoryCommunication,
			description:      "message.send to a target not previously seen.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionMessageSend {
					return nil
				}
				if ctx.KnownTargets[e.Action.Target] {
					return nil
				}
				return &Match{RuleID: "comm-002", Name: "Message to new target", Category: CategoryCommunication,
					Severity: SeverityHigh, Contribution: 7,
					Description: "message.send to a target not in knownTargets"}
			},
		},
		&funcRule{
			id: "esc-001", name: "Elevated action", category: CategoryEscalation,
			description:      "elevated.enable or elevated.command.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionElevatedEnable && e.Action.Type != ledger.ActionElevatedCommand {
					return nil
				}
				return &Match{RuleID: "esc-001", Name: "Elevated action", Category: CategoryEscalation,
					Severity: SeverityCritical, Contribution: 9,
					Description: "action type is an elevated.* type"}
			},
		},
		&funcRule{
			id: "esc-002", name: "sudo in exec.command", category: CategoryEscalation,
			description:      "exec.command whose target or detail contains sudo.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionExecCommand {
					return nil
				}
				if !contains(e.Action.Target, "sudo") && !contains(e.Action.Detail, "sudo") {
					return nil
				}
				return &Match{RuleID: "esc-002", Name: "sudo in exec.command", Category: CategoryEscalation,
					Severity: SeverityCritical, Contribution: 9,
					Description: "exec.command target or detail contains sudo"}
			},
		},
		&funcRule{
			id: "exfil-001", name: "Sensitive read then egress", category: CategoryDataExfil,
			description:      "api.call/web.fetch/web.search within 60s after a sensitive file.read in the same session.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				switch e.Action.Type {
				case ledger.ActionAPICall, ledger.ActionWebFetch, ledger.ActionWebSearch:
				default:
					return nil
				}
				curTs, err := ledger.ParseTs(e.Ts)
				if err != nil {
					return nil
				}
				for i := len(ctx.SessionHistory) - 1; i >= 0; i-- {
					prior := ctx.SessionHistory[i]
					if prior.ID == e.ID {
						continue
					}
					if prior.Action.Type != ledger.ActionFileRead {
						continue
					}
					if !ctx.Config.MatchesSensitivePath(prior.Action.Target) {
						continue
					}
					priorTs, err := ledger.ParseTs(prior.Ts)
					if err != nil {
						continue
					}
					delta := curTs.Sub(priorTs)
					if delta < 0 || delta > 60*time.Second {
						continue
					}
					return &Match{RuleID: "exfil-001", Name: "Sensitive read then egress", Category: CategoryDataExfil,
						Severity: SeverityCritical, Contribution: 10,
						Description: "egress action within 60s of a sensitive file.read in this session",
						Evidence: map[string]interface{}{
							"sensitiveEntryId": prior.ID,
							"sensitiveTarget":  prior.Action.Target,
							"timeDeltaMs":      delta.Milliseconds(),
						},
					}
				}
				return nil
			},
		},
		&funcRule{
			id: "scope-001", name: "In-scope claim but risky action", category: CategoryScopeDrift,
			description:      "Paired claim declares withinScope but the action is escalation/payment or a sensitive path.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if ctx.PairedClaim == nil || !ctx.PairedClaim.Constraints.WithinScope {
					return nil
				}
				risky := isEscalationOrPayment(e.Action.Type) || ctx.Config.MatchesSensitivePath(e.Action.Target)
				if !risky {
					return nil
				}
				return &Match{RuleID: "scope-001", Name: "In-scope claim but risky action", Category: CategoryScopeDrift,
					Severity: SeverityHigh, Contribution: 8,
					Description: "claimed withinScope but action is escalation/payment or sensitive-path"}
			},
		},
		&funcRule{
			id: "freq-001", name: "High action frequency", category: CategoryFrequency,
			description:      "More than maxActionsPerMinute entries in the trailing 60s.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				curTs, err := ledger.ParseTs(e.Ts)
				if err != nil {
					return nil
				}
				windowStart := curTs.Add(-60 * time.Second)
				count := 0
				for _, r := range ctx.RecentEntries {
					rTs, err := ledger.ParseTs(r.Ts)
					if err != nil {
						continue
					}
					if !rTs.Before(windowStart) && !rTs.After(curTs) {
						count++
					}
				}
				if count <= ctx.Config.MaxActionsPerMinute {
					return nil
				}
				return &Match{RuleID: "freq-001", Name: "High action frequency", Category: CategoryFrequency,
					Severity: SeverityMedium, Contribution: 6,
					Description: "recent-entry count in trailing 60s exceeds maxActionsPerMinute",
					Evidence:    map[string]interface{}{"count": count}}
			},
		},
		&funcRule{
			id: "destr-001", name: "File deletion", category: CategoryDestructive,
			description:      "file.delete; severity escalates when the target matches a sensitive pattern.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionFileDelete {
					return nil
				}
				if ctx.Config.MatchesSensitivePath(e.Action.Target) {
					return &Match{RuleID: "destr-001", Name: "File deletion", Category: CategoryDestructive,
						Severity: SeverityHigh, Contribution: 8,
						Description: "file.delete of a sensitive-pattern target"}
				}
				return &Match{RuleID: "destr-001", Name: "File deletion", Category: CategoryDestructive,
					Severity: SeverityMedium, Contribution: 5,
					Description: "file.delete"}
			},
		},
		&funcRule{
			id: "destr-002", name: "Recursive force delete", category: CategoryDestructive,
			description:      "exec.command containing rm -rf or rm -r.",
			enabledByDefault: true,
			evalFn: func(e *ledger.Execution, ctx *Context) *Match {
				if e.Action.Type != ledger.ActionExecCommand {
					return nil
				}
				if !containsAny(e.Action.Target, []string{"rm -rf", "rm -r"}) &&
					!containsAny(e.Action.Detail, []string{"rm -rf", "rm -r"}) {
					return nil
				}
				return &Match{RuleID: "destr-002", Name: "Recursive force delete", Category: CategoryDestructive,
					Severity: SeverityCritical, Contribution: 9,
					Description: "exec.command target or detail contains rm -rf or rm -r"}
			},
		},
	}
}

func isEscalationOrPayment(t ledger.ActionType) bool {
	switch t {
	case ledger.ActionElevatedEnable, ledger.ActionElevatedCommand,
		ledger.ActionPaymentInitiate, ledger.ActionPaymentConfirm:
		return true
	}
	return false
}
