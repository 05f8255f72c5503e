package causal

import (
	"github.com/agenttrust/core/pkg/consistency"
	"github.com/agenttrust/core/pkg/ledger"
	"github.com/agenttrust/core/pkg/rules"
)

// BuildInput carries the lookups Build needs alongside the raw entries.
type BuildInput struct {
	Entries             []*ledger.Execution
	ClaimsByEntryID      map[string]*ledger.Claim
	RuleMatchesByEntryID  map[string][]rules.Match
	FindingsByEntryID     map[string]*consistency.Finding
}

// Build constructs the causal graph: one node per entry, edges wired by
// entry.context.parentAction, roots are entries whose parent is absent
// from the set, depths assigned by BFS from the roots.
func Build(input BuildInput) *Graph {
	g := &Graph{indexByID: make(map[string]int, len(input.Entries))}

	for i, e := range input.Entries {
		g.indexByID[e.ID] = i
		node := Node{
			Entry:       e,
			ParentIdx:   -1,
			RuleMatches: input.RuleMatchesByEntryID[e.ID],
			Depth:       -1,
		}
		if input.ClaimsByEntryID != nil {
			node.Claim = input.ClaimsByEntryID[e.ID]
		}
		if input.FindingsByEntryID != nil {
			node.ConsistencyFinding = input.FindingsByEntryID[e.ID]
		}
		g.Nodes = append(g.Nodes, node)
	}

	for i, e := range input.Entries {
		parentID := e.Context.ParentAction
		if parentID == "" {
			g.RootIdx = append(g.RootIdx, i)
			continue
		}
		parentIdx, ok := g.indexByID[parentID]
		if !ok {
			g.RootIdx = append(g.RootIdx, i)
			continue
		}
		g.Nodes[i].ParentIdx = parentIdx
		g.Nodes[parentIdx].ChildrenIdx = append(g.Nodes[parentIdx].ChildrenIdx, i)
	}

	g.assignDepths()
	return g
}

func (g *Graph) assignDepths() {
	var queue []int
	for _, root := range g.RootIdx {
		g.Nodes[root].Depth = 0
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		depth := g.Nodes[idx].Depth
		if depth > g.MaxDepth {
			g.MaxDepth = depth
		}
		for _, child := range g.Nodes[idx].ChildrenIdx {
			g.Nodes[child].Depth = depth + 1
			queue = append(queue, child)
		}
	}
}

// IndexOf returns the arena index of the node for entryID, if present.
func (g *Graph) IndexOf(entryID string) (int, bool) {
	idx, ok := g.indexByID[entryID]
	return idx, ok
}

// GetChain returns the root-to-node path for entryID by walking parent
// links and reversing, per property P8: the result has length
// node.Depth+1 and its last element is the node itself.
func (g *Graph) GetChain(entryID string) []Node {
	idx, ok := g.indexByID[entryID]
	if !ok {
		return nil
	}
	var reversed []Node
	for idx != -1 {
		reversed = append(reversed, g.Nodes[idx])
		idx = g.Nodes[idx].ParentIdx
	}
	chain := make([]Node, len(reversed))
	for i, n := range reversed {
		chain[len(reversed)-1-i] = n
	}
	return chain
}
