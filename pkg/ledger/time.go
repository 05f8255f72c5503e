package ledger

import (
	"fmt"
	"time"
)

const tsLayout = "2006-01-02T15:04:05.000Z"

// ParseTs parses a record's ISO-8601 millisecond-precision UTC timestamp.
func ParseTs(ts string) (time.Time, error) {
	t, err := time.Parse(tsLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger: parse ts %q: %w", ts, err)
	}
	return t, nil
}

// FormatTs formats t per the record timestamp contract.
func FormatTs(t time.Time) string {
	return t.UTC().Format(tsLayout)
}
