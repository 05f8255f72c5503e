// Package causal builds the execution causal graph and derives blame
// analysis for an incident: which upstream action set the chain in motion,
// and what factors contributed to it.
package causal

import (
	"github.com/agenttrust/core/pkg/consistency"
	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/rules"
)

// Node is one execution's position in the causal graph. The graph itself
// is an arena — a flat slice of Nodes — with parent/children expressed as
// indexes into that slice rather than pointers, so the structure has no
// ownership cycle.
type Node struct {
	Entry              *ledger.Execution
	Claim              *ledger.Claim
	ParentIdx          int // -1 if this node is a root
	ChildrenIdx        []int
	Depth              int
	RuleMatches        []rules.Match
	ConsistencyFinding *consistency.Finding
	IsBlameRoot        bool
}

// Graph is the arena: Nodes indexed by position, plus the separate root
// index list and the maximum depth reached.
type Graph struct {
	Nodes    []Node
	RootIdx  []int
	MaxDepth int

	indexByID map[string]int
}
