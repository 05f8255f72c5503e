package ledger

import (
	"fmt"
	"time"

	"github.com/agenttrust/core/pkg/canon"
	"github.com/agenttrust/core/pkg/idgen"
)

// nowISO formats the current UTC instant with millisecond precision, per
// the record timestamp contract in §3 of the data model.
func nowISO() string {
	return FormatTs(time.Now())
}

// ExecutionInput carries everything the caller supplies to create an
// execution record; id/v/ts/prevHash/hash are assigned by CreateExecution.
type ExecutionInput struct {
	Agent   string
	Session string
	Action  Action
	Context Context
	Outcome Outcome
	Risk    Risk
	Meta    map[string]interface{}
}

// CreateExecution assigns a fresh ULID, schema version, current timestamp,
// and the supplied prevHash, then computes the record's self-hash.
func CreateExecution(input ExecutionInput, prevHash string) (*Execution, error) {
	input.Risk.AutoFlagged = AutoFlag(input.Risk.Score)
	e := &Execution{
		ID:       idgen.New(),
		V:        SchemaVersion,
		Ts:       nowISO(),
		PrevHash: prevHash,
		Agent:    input.Agent,
		Session:  input.Session,
		Action:   input.Action,
		Context:  input.Context,
		Outcome:  input.Outcome,
		Risk:     input.Risk,
		Meta:     input.Meta,
	}
	hash, err := canon.HashRecord(e)
	if err != nil {
		return nil, fmt.Errorf("ledger: hash execution: %w", err)
	}
	e.Hash = hash
	return e, nil
}

// ClaimInput carries everything the caller supplies to create a claim
// record.
type ClaimInput struct {
	Agent       string
	Session     string
	Intent      Intent
	Constraints Constraints
	Meta        map[string]interface{}
}

// CreateClaim assigns a fresh ULID, schema version, current timestamp, and
// the supplied prevHash, then computes the record's self-hash.
func CreateClaim(input ClaimInput, prevHash string) (*Claim, error) {
	c := &Claim{
		ID:          idgen.New(),
		V:           SchemaVersion,
		Ts:          nowISO(),
		PrevHash:    prevHash,
		Agent:       input.Agent,
		Session:     input.Session,
		Intent:      input.Intent,
		Constraints: input.Constraints,
		Meta:        input.Meta,
	}
	hash, err := canon.HashRecord(c)
	if err != nil {
		return nil, fmt.Errorf("ledger: hash claim: %w", err)
	}
	c.Hash = hash
	return c, nil
}

// WitnessInput carries everything the caller supplies to create a witness
// record.
type WitnessInput struct {
	Source WitnessSource
	Event  Event
}

// CreateWitness assigns a fresh ULID, schema version, current timestamp,
// and the supplied prevHash, then computes the record's self-hash.
func CreateWitness(input WitnessInput, prevHash string) (*Witness, error) {
	w := &Witness{
		ID:       idgen.New(),
		V:        SchemaVersion,
		Ts:       nowISO(),
		PrevHash: prevHash,
		Source:   input.Source,
		Event:    input.Event,
	}
	hash, err := canon.HashRecord(w)
	if err != nil {
		return nil, fmt.Errorf("ledger: hash witness: %w", err)
	}
	w.Hash = hash
	return w, nil
}
