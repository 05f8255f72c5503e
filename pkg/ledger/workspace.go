package ledger

import "path/filepath"

// Workspace bundles the three sibling stores rooted at
// <workspace>/.agenttrust/{ledger,claims,witness}.
type Workspace struct {
	Root       string
	Executions *ExecutionStore
	Claims     *ClaimStore
	Witness    *WitnessStore
}

// Init creates the three ledger directories under root's ".agenttrust"
// subtree with owner-only permissions and returns a ready-to-use
// Workspace.
func Init(root string) (*Workspace, error) {
	base := filepath.Join(root, ".agenttrust")
	ledgerDir := filepath.Join(base, "ledger")
	claimsDir := filepath.Join(base, "claims")
	witnessDir := filepath.Join(base, "witness")

	for _, dir := range []string{ledgerDir, claimsDir, witnessDir} {
		if err := EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	return &Workspace{
		Root:       root,
		Executions: NewExecutionStore(ledgerDir),
		Claims:     NewClaimStore(claimsDir),
		Witness:    NewWitnessStore(witnessDir),
	}, nil
}

// Open returns a Workspace bound to root without creating directories; use
// when the caller only intends to read.
func Open(root string) *Workspace {
	base := filepath.Join(root, ".agenttrust")
	return &Workspace{
		Root:       root,
		Executions: NewExecutionStore(filepath.Join(base, "ledger")),
		Claims:     NewClaimStore(filepath.Join(base, "claims")),
		Witness:    NewWitnessStore(filepath.Join(base, "witness")),
	}
}
