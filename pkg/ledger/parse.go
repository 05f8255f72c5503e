package ledger

import (
	"encoding/json"
	"fmt"
)

// ParseExecutionLine JSON-decodes and validates a single line as an
// Execution. A non-nil error means the line is unusable (malformed JSON or
// a failed invariant); callers reading a file treat this as a skippable
// parse warning, not a fatal condition.
func ParseExecutionLine(line string) (*Execution, error) {
	var e Execution
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return nil, fmt.Errorf("ledger: parse execution line: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseClaimLine JSON-decodes and validates a single line as a Claim.
func ParseClaimLine(line string) (*Claim, error) {
	var c Claim
	if err := json.Unmarshal([]byte(line), &c); err != nil {
		return nil, fmt.Errorf("ledger: parse claim line: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseWitnessLine JSON-decodes and validates a single line as a Witness.
func ParseWitnessLine(line string) (*Witness, error) {
	var w Witness
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return nil, fmt.Errorf("ledger: parse witness line: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}
