// Package idgen generates the time-sortable identifiers used for every
// persisted record: 48 bits of millisecond timestamp followed by 80 bits
// of randomness, strictly increasing within a process for a given
// millisecond.
package idgen

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(ulid.DefaultEntropy(), 0)
)

// New returns a fresh 26-character base32 ULID string for the current
// instant. Safe for concurrent use; monotonicity is guaranteed only across
// calls that go through this function.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a fresh ULID string for the given instant. Exposed
// separately so callers constructing fixtures can pin the timestamp while
// still exercising the real entropy source.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return id.String()
}

// Valid reports whether s parses as a well-formed ULID string.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time extracts the millisecond timestamp encoded in a ULID string. The
// second return value is false if s does not parse.
func Time(s string) (time.Time, bool) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()), true
}

// Less reports whether a sorts strictly before b as ULID strings. Two
// malformed strings fall back to a byte-wise comparison so callers get a
// total order even over corrupted input.
func Less(a, b string) bool {
	return a < b
}
