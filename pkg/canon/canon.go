// Package canon implements the deterministic JSON canonicalization and
// SHA-256 hashing that every persisted record (execution, claim, witness)
// is built on, along with self-hash and chain verification.
//
// Canonical form: object keys emitted in Unicode code-point order,
// recursively, with no inserted whitespace, standard JSON string escaping,
// and arrays left in their original order. This is the exact byte string
// fed to SHA-256.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Bytes returns the canonical JSON encoding of v. v must already be
// JSON-marshalable (structs with json tags, maps, slices, primitives).
func Bytes(v interface{}) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encode(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toGeneric round-trips v through encoding/json into the generic
// map/slice/json.Number representation that encode() knows how to sort.
func toGeneric(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canon: decode: %w", err)
	}
	return generic, nil
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(string(t))
	case string:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encode(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canon: unsupported type %T", v)
	}
	return nil
}

// HashRecord returns the SHA-256 hex digest of the canonical JSON of v with
// its "hash" field removed. v must marshal to a JSON object.
func HashRecord(v interface{}) (string, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return "", err
	}
	m, ok := generic.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("canon: HashRecord requires a JSON object, got %T", generic)
	}
	delete(m, "hash")
	var buf bytes.Buffer
	if err := encode(&buf, m); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Hasher is implemented by any record type that reports its own persisted
// hash and previous-hash fields, so VerifySelf/VerifyChain can operate
// across execution, claim, and witness records uniformly.
type Hasher interface {
	GetHash() string
	GetPrevHash() string
}

// VerifySelf recomputes r's hash from its non-hash fields and compares it
// against the persisted hash field.
func VerifySelf(r Hasher) (bool, error) {
	want, err := HashRecord(r)
	if err != nil {
		return false, err
	}
	return want == r.GetHash(), nil
}

// ChainBreak describes the first broken link found by VerifyChain.
type ChainBreak struct {
	Index  int
	Reason string
}

// VerifyChain walks records in order and checks record[0].prevHash == "" and
// record[i].prevHash == record[i-1].hash for i>0. It returns the index of
// the first broken link, or nil if the chain is intact. An empty slice is
// trivially valid.
func VerifyChain(records []Hasher) *ChainBreak {
	for i, r := range records {
		if i == 0 {
			if r.GetPrevHash() != "" {
				return &ChainBreak{Index: i, Reason: "first record has non-empty prevHash"}
			}
			continue
		}
		if r.GetPrevHash() != records[i-1].GetHash() {
			return &ChainBreak{Index: i, Reason: "prevHash does not match prior record's hash"}
		}
	}
	return nil
}
