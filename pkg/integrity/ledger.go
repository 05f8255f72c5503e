package integrity

import (
	"github.com/agenttrust/core/pkg/errors"
	"github.com/agenttrust/core/pkg/ledger"
)

// VerifyExecutionFile walks one execution ledger file end to end.
func VerifyExecutionFile(dir, filename string) (*Report, error) {
	lines, err := ledger.ReadRawLines(dir, filename)
	if err != nil {
		return nil, errors.NewBuilder("LEDGER-021").
			WithMessagef("read %s: %v", filename, err).
			WithInput("file", filename).
			Wrap(err).Build()
	}
	return VerifyLines(filename, lines, ledger.ParseExecutionLine), nil
}

// VerifyAllExecutions walks every file the store knows about and
// aggregates the per-file reports.
func VerifyAllExecutions(store *ledger.ExecutionStore) (*Report, error) {
	files, err := store.List()
	if err != nil {
		return nil, errors.WrapWithMessage("LEDGER-021", err, "list execution files: "+err.Error())
	}
	var reports []*Report
	for _, f := range files {
		r, err := VerifyExecutionFile(store.Dir(), f)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return Merge(reports), nil
}

// VerifyClaimFile walks one claim ledger file end to end.
func VerifyClaimFile(dir, filename string) (*Report, error) {
	lines, err := ledger.ReadRawLines(dir, filename)
	if err != nil {
		return nil, errors.NewBuilder("LEDGER-021").
			WithMessagef("read %s: %v", filename, err).
			WithInput("file", filename).
			Wrap(err).Build()
	}
	return VerifyLines(filename, lines, ledger.ParseClaimLine), nil
}

// VerifyAllClaims walks every file the store knows about and aggregates
// the per-file reports.
func VerifyAllClaims(store *ledger.ClaimStore) (*Report, error) {
	files, err := store.List()
	if err != nil {
		return nil, errors.WrapWithMessage("LEDGER-021", err, "list claim files: "+err.Error())
	}
	var reports []*Report
	for _, f := range files {
		r, err := VerifyClaimFile(store.Dir(), f)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return Merge(reports), nil
}

// VerifyWitnessFile walks one witness ledger file end to end.
func VerifyWitnessFile(dir, filename string) (*Report, error) {
	lines, err := ledger.ReadRawLines(dir, filename)
	if err != nil {
		return nil, errors.NewBuilder("LEDGER-021").
			WithMessagef("read %s: %v", filename, err).
			WithInput("file", filename).
			Wrap(err).Build()
	}
	return VerifyLines(filename, lines, ledger.ParseWitnessLine), nil
}

// VerifyAllWitness walks every file the store knows about and aggregates
// the per-file reports.
func VerifyAllWitness(store *ledger.WitnessStore) (*Report, error) {
	files, err := store.List()
	if err != nil {
		return nil, errors.WrapWithMessage("LEDGER-021", err, "list witness files: "+err.Error())
	}
	var reports []*Report
	for _, f := range files {
		r, err := VerifyWitnessFile(store.Dir(), f)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return Merge(reports), nil
}
