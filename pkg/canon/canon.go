// Package canon implements the canonical serialization contract shared by
// every artifact racksmith produces. Canonical form is compact JSON with a
// stable key order: struct fields serialize in declaration order and map keys
// are sorted, so identical values always produce identical bytes. The sha256
// of those bytes is the artifact's content hash, which is the handoff
// contract to rendering and export layers.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Marshal serializes v into canonical bytes: compact JSON, no trailing
// newline. encoding/json already sorts map keys and emits struct fields in
// declaration order, which is exactly the stability this contract needs.
func Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize value: %w", err)
	}
	return data, nil
}

// Hash returns the lowercase hex sha256 of the canonical bytes of v.
func Hash(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes returns the lowercase hex sha256 of raw bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
