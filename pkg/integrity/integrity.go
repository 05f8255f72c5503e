// Package integrity verifies the tamper-evident chain of ledger files:
// walking each file, re-hashing every record, and checking prevHash
// linkage, without any partial credit for a file with errors.
package integrity

import (
	"fmt"
	"strings"

	"github.com/agenttrust/core/pkg/canon"
)

// ErrorType classifies a single verification error.
type ErrorType string

const (
	ErrHashMismatch ErrorType = "hash_mismatch"
	ErrChainBroken  ErrorType = "chain_broken"
	ErrParseError   ErrorType = "parse_error"
)

// Error carries one verification failure at precise file/line coordinates.
type Error struct {
	File   string    `json:"file"`
	Line   int       `json:"line"`
	Type   ErrorType `json:"type"`
	Detail string    `json:"detail"`
}

// Report is the result of verifying one or more files.
type Report struct {
	Valid        bool    `json:"valid"`
	FilesChecked int     `json:"filesChecked"`
	TotalEntries int     `json:"totalEntries"`
	Errors       []Error `json:"errors"`
}

// score returns the integrity score for a report: 100 if it has no errors,
// else 0 — there is no partial credit (§4.D).
func (r *Report) score() int {
	if len(r.Errors) == 0 {
		return 100
	}
	return 0
}

// Score returns the integrity score for this report: 100 if valid, else 0.
func (r *Report) Score() int {
	return r.score()
}

// record is the minimal shape integrity needs from a parsed line: its own
// hash/prevHash plus the ability to recompute the hash from its non-hash
// fields.
type record interface {
	canon.Hasher
}

// verifyRecords runs the hash-mismatch and chain checks across an
// already-parsed, in-order slice of records, appending errors at the
// given file name and the supplied 1-based line numbers.
func verifyRecords[T record](file string, lineNos []int, records []T) []Error {
	var errs []Error
	for i, r := range records {
		ok, err := canon.VerifySelf(r)
		if err != nil {
			errs = append(errs, Error{File: file, Line: lineNos[i], Type: ErrHashMismatch, Detail: err.Error()})
			continue
		}
		if !ok {
			errs = append(errs, Error{File: file, Line: lineNos[i], Type: ErrHashMismatch, Detail: "recomputed hash does not match stored hash"})
		}
	}

	hashers := make([]canon.Hasher, len(records))
	for i, r := range records {
		hashers[i] = r
	}
	if brk := canon.VerifyChain(hashers); brk != nil {
		errs = append(errs, Error{File: file, Line: lineNos[brk.Index], Type: ErrChainBroken, Detail: brk.Reason})
	}
	return errs
}

// VerifyLines runs the full integrity walk over one file's raw lines:
// parsing each (reporting parse failures without aborting), then
// hash-checking and chain-checking the records that did parse.
func VerifyLines[T record](file string, lines []string, parse func(string) (T, error)) *Report {
	report := &Report{FilesChecked: 1}

	var valid []T
	var lineNos []int
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parse(line)
		if err != nil {
			report.Errors = append(report.Errors, Error{File: file, Line: i + 1, Type: ErrParseError, Detail: err.Error()})
			continue
		}
		valid = append(valid, rec)
		lineNos = append(lineNos, i+1)
	}

	report.TotalEntries = len(valid)
	report.Errors = append(report.Errors, verifyRecords(file, lineNos, valid)...)
	report.Valid = len(report.Errors) == 0
	return report
}

// Merge combines per-file reports into one aggregate report, as
// verifyAll(dir) does across every file in a store.
func Merge(reports []*Report) *Report {
	agg := &Report{Valid: true}
	for _, r := range reports {
		agg.FilesChecked += r.FilesChecked
		agg.TotalEntries += r.TotalEntries
		agg.Errors = append(agg.Errors, r.Errors...)
		if !r.Valid {
			agg.Valid = false
		}
	}
	return agg
}

// ErrorsByType returns a count of errors in report grouped by type, a
// convenience for callers rendering a summary line.
func ErrorsByType(report *Report) map[ErrorType]int {
	counts := make(map[ErrorType]int)
	for _, e := range report.Errors {
		counts[e.Type]++
	}
	return counts
}

// Summary renders a single human-readable line describing the report,
// matching the CLI's "single-line message" contract in §7.
func Summary(report *Report) string {
	if report.Valid {
		return fmt.Sprintf("ok: %d files, %d entries, no errors", report.FilesChecked, report.TotalEntries)
	}
	return fmt.Sprintf("FAILED: %d files, %d entries, %d errors", report.FilesChecked, report.TotalEntries, len(report.Errors))
}
