package ledger

import "sync"

// ClaimStore is the append-only, hash-chained store for claim records
// rooted at <workspace>/.agenttrust/claims.
type ClaimStore struct {
	dir string
	mu  sync.Mutex
}

// NewClaimStore returns a store rooted at dir (typically
// "<workspace>/.agenttrust/claims").
func NewClaimStore(dir string) *ClaimStore {
	return &ClaimStore{dir: dir}
}

// Append creates and persists a new claim record, chaining it to the last
// record in today's file.
func (s *ClaimStore) Append(input ClaimInput) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.getLastRecordLocked()
	if err != nil {
		return nil, err
	}
	prevHash := ""
	if last != nil {
		prevHash = last.Hash
	}
	c, err := CreateClaim(input, prevHash)
	if err != nil {
		return nil, err
	}
	line, err := canonicalLine(c)
	if err != nil {
		return nil, err
	}
	if err := appendLine(s.dir, suffixClaims, line); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every claim filename in the store, chronologically sorted.
func (s *ClaimStore) List() ([]string, error) {
	return listFiles(s.dir, suffixClaims)
}

// Read parses every valid record in the named file, skipping lines that
// fail to parse or validate.
func (s *ClaimStore) Read(filename string) ([]*Claim, error) {
	lines, err := readLines(s.path(filename))
	if err != nil {
		return nil, err
	}
	var out []*Claim
	for _, line := range lines {
		c, err := ParseClaimLine(line)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadAll reads every file in the store, in chronological order.
func (s *ClaimStore) ReadAll() ([]*Claim, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	var all []*Claim
	for _, f := range files {
		recs, err := s.Read(f)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// GetLastRecord returns the last valid record in today's file, or nil if
// there is none.
func (s *ClaimStore) GetLastRecord() (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLastRecordLocked()
}

func (s *ClaimStore) getLastRecordLocked() (*Claim, error) {
	path := todayFilePath(s.dir, suffixClaims)
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	for i := len(lines) - 1; i >= 0; i-- {
		c, err := ParseClaimLine(lines[i])
		if err == nil {
			return c, nil
		}
	}
	return nil, nil
}

func (s *ClaimStore) path(filename string) string {
	return s.dir + "/" + filename
}

// Dir returns the store's backing directory.
func (s *ClaimStore) Dir() string { return s.dir }
