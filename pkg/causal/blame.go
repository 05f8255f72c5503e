package causal

import (
	"fmt"
	"strings"

	"github.com/agenttrust/core/pkg/consistency"
	"github.com/agenttrust/core/pkg/ledger"
)

// FactorType enumerates the fixed blame-factor vocabulary.
type FactorType string

const (
	FactorEscalation   FactorType = "escalation"
	FactorScopeDrift    FactorType = "scope_drift"
	FactorMissingClaim  FactorType = "missing_claim"
	FactorRuleViolation FactorType = "rule_violation"
	FactorTrigger       FactorType = "trigger"
)

// Factor is one contributing cause identified along an incident's chain.
type Factor struct {
	Type    FactorType `json:"type"`
	EntryID string     `json:"entryId"`
	Detail  string     `json:"detail"`
}

// BlameResult is the output of analyzing one incident.
type BlameResult struct {
	BlameRootID    string   `json:"blameRootId"`
	Chain          []Node   `json:"-"`
	Factors        []Factor `json:"factors"`
	Narrative      string   `json:"narrative"`
	Recommendation string   `json:"recommendation"`
}

var scopeDriftFindingTypes = map[consistency.DivergenceType]bool{
	consistency.DivergenceTargetMismatch:     true,
	consistency.DivergenceActionTypeMismatch: true,
	consistency.DivergenceRiskUnderestimate:  true,
	consistency.DivergenceScopeViolation:     true,
}

// AnalyzeBlame computes the chain for incidentID, marks the blame root —
// the first node in that chain with non-empty rule matches, or the
// incident itself if none fired — and scans the chain for contributing
// factors.
func AnalyzeBlame(incidentID string, g *Graph) *BlameResult {
	chain := g.GetChain(incidentID)
	if len(chain) == 0 {
		return nil
	}

	blameRoot := chain[len(chain)-1]
	for _, node := range chain {
		if len(node.RuleMatches) > 0 {
			blameRoot = node
			break
		}
	}
	if idx, ok := g.IndexOf(blameRoot.Entry.ID); ok {
		g.Nodes[idx].IsBlameRoot = true
	}

	var factors []Factor
	for _, node := range chain {
		if isEscalationOrPaymentType(node.Entry.Action.Type) {
			factors = append(factors, Factor{Type: FactorEscalation, EntryID: node.Entry.ID,
				Detail: fmt.Sprintf("%s is an elevated or payment action", node.Entry.Action.Type)})
		}
		if node.ConsistencyFinding != nil && scopeDriftFindingTypes[node.ConsistencyFinding.Type] {
			factors = append(factors, Factor{Type: FactorScopeDrift, EntryID: node.Entry.ID,
				Detail: fmt.Sprintf("consistency finding %s", node.ConsistencyFinding.Type)})
		}
		if node.Claim == nil && len(node.RuleMatches) > 0 {
			factors = append(factors, Factor{Type: FactorMissingClaim, EntryID: node.Entry.ID,
				Detail: "rule matches fired with no paired claim"})
		}
		for _, m := range node.RuleMatches {
			factors = append(factors, Factor{Type: FactorRuleViolation, EntryID: node.Entry.ID,
				Detail: fmt.Sprintf("%s: %s", m.RuleID, m.Name)})
		}
	}

	root := chain[0]
	if root.Entry.Context.Trigger == "inbound_message" || root.Entry.Context.Trigger == "chain" {
		factors = append(factors, Factor{Type: FactorTrigger, EntryID: root.Entry.ID,
			Detail: fmt.Sprintf("chain root was triggered by %s", root.Entry.Context.Trigger)})
	}

	return &BlameResult{
		BlameRootID:    blameRoot.Entry.ID,
		Chain:          chain,
		Factors:        factors,
		Narrative:      narrative(chain, blameRoot, factors),
		Recommendation: recommendation(factors),
	}
}

func isEscalationOrPaymentType(t ledger.ActionType) bool {
	switch t {
	case ledger.ActionElevatedEnable, ledger.ActionElevatedCommand,
		ledger.ActionPaymentInitiate, ledger.ActionPaymentConfirm:
		return true
	}
	return false
}

func narrative(chain []Node, blameRoot Node, factors []Factor) string {
	incident := chain[len(chain)-1]
	var b strings.Builder
	fmt.Fprintf(&b, "Incident %s traces back through a %d-step chain to %s, ", incident.Entry.ID, len(chain)-1, blameRoot.Entry.ID)
	if blameRoot.Entry.ID == incident.Entry.ID {
		b.WriteString("which is the incident itself: no upstream node carried a rule match.")
	} else {
		fmt.Fprintf(&b, "the first upstream step that triggered a rule match (%s).", blameRoot.Entry.Action.Type)
	}
	if len(factors) > 0 {
		fmt.Fprintf(&b, " %d contributing factor(s) were identified along the chain.", len(factors))
	}
	return b.String()
}

func recommendation(factors []Factor) string {
	counts := map[FactorType]int{}
	for _, f := range factors {
		counts[f.Type]++
	}
	switch {
	case counts[FactorEscalation] > 0:
		return "Review the elevation/payment step identified in the chain before allowing similar actions to proceed unattended."
	case counts[FactorScopeDrift] > 0:
		return "The agent's declared intent diverged from its actual action; tighten claim validation before execution."
	case counts[FactorMissingClaim] > 0:
		return "Require a claim for this action type before execution so future incidents can be matched and scored."
	case counts[FactorRuleViolation] > 0:
		return "One or more risk rules fired along this chain; consider lowering the relevant risk threshold."
	default:
		return "No specific contributing factor was identified; monitor this chain for recurrence."
	}
}
