// Package securerandom generates the cryptographically secure per-run ID
// the daemon uses to correlate every log line from one process lifetime.
package securerandom

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
)

// ID generates a cryptographically secure random ID of the specified byte length
// Returns a hex-encoded string (2x the byte length)
func ID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MustID generates a random ID or panics
// Use only in initialization or when failure is unrecoverable
func MustID(byteLen int) string {
	id, err := ID(byteLen)
	if err != nil {
		panic(fmt.Sprintf("securerandom.ID failed: %v", err))
	}
	return id
}
