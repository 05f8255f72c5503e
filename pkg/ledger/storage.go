package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agenttrust/core/pkg/canon"
)

// canonicalLine returns the canonical JSON bytes for a record, ready to be
// appended as a single line.
func canonicalLine(record interface{}) ([]byte, error) {
	b, err := canon.Bytes(record)
	if err != nil {
		return nil, fmt.Errorf("ledger: canonicalize record: %w", err)
	}
	return b, nil
}

// fileSuffix identifies which of the three sibling ledgers a directory
// holds, used both for filename construction and List's glob.
type fileSuffix string

const (
	suffixExecutions fileSuffix = "agenttrust.jsonl"
	suffixClaims     fileSuffix = "claims.jsonl"
	suffixWitness    fileSuffix = "witness.jsonl"
)

// EnsureDir creates dir (and parents) with owner-only permissions if it
// does not already exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ledger: ensure dir %s: %w", dir, err)
	}
	return nil
}

// dateFileName returns the bucketed filename for t under suffix.
func dateFileName(t time.Time, suffix fileSuffix) string {
	return fmt.Sprintf("%s.%s", t.UTC().Format("2006-01-02"), suffix)
}

// todayFilePath returns the path of today's file in dir for suffix,
// without requiring it to exist yet.
func todayFilePath(dir string, suffix fileSuffix) string {
	return filepath.Join(dir, dateFileName(time.Now(), suffix))
}

// appendLine appends a single canonical line (without its own trailing
// newline) plus "\n" to today's file in dir, creating the directory and
// file as needed with the mode contract from §3 (dirs 0700, files 0600).
func appendLine(dir string, suffix fileSuffix, line []byte) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}
	path := todayFilePath(dir, suffix)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("ledger: write %s: %w", path, err)
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return fmt.Errorf("ledger: write %s: %w", path, err)
	}
	return nil
}

// readLines reads every non-empty line of path. A missing file collapses
// to an empty slice with no error, matching §4.C's "missing-directory
// errors on read collapse to empty". Truncated trailing lines (no final
// newline) are still returned; callers attempting to parse them as records
// will simply fail that one line.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("ledger: scan %s: %w", path, err)
	}
	return lines, nil
}

// ReadRawLines reads every non-empty line of dir/filename, for callers
// (the integrity verifier) that need raw text rather than pre-parsed
// records so they can report parse failures themselves. Unlike the store
// reads, a missing file is an error here.
func ReadRawLines(dir, filename string) ([]string, error) {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("ledger: stat %s: %w", path, err)
	}
	return readLines(path)
}

// listFiles enumerates dir's entries matching suffix, lexicographically
// sorted — which equals chronological order given the YYYY-MM-DD filename
// prefix. A missing directory collapses to an empty slice.
func listFiles(dir string, suffix fileSuffix) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: read dir %s: %w", dir, err)
	}
	var names []string
	want := "." + string(suffix)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), want) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
