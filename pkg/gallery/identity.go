package gallery

import (
	"fmt"
	"regexp"

	"github.com/racksmith/racksmith/pkg/canon"
)

// IdentityLength is the length in hex characters of a revision identity:
// the first 16 bytes of the sha256 of the entry's canonical JSON.
const IdentityLength = 32

var identityPattern = regexp.MustCompile(`^[0-9a-f]+$`)

// Identity computes the content-addressed revision identity of an entry.
// The identity covers only the entry's documented facts, so appending the
// same facts twice always collides regardless of who appends them.
func Identity(e *Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("invalid entry: %w", err)
	}
	h, err := canon.Hash(e)
	if err != nil {
		return "", fmt.Errorf("failed to hash entry: %w", err)
	}
	return h[:IdentityLength], nil
}

// ValidIdentity reports whether s is a full-length revision identity.
func ValidIdentity(s string) bool {
	return len(s) == IdentityLength && identityPattern.MatchString(s)
}

// ValidIdentityPrefix reports whether s could be a prefix of a revision
// identity (hex, no longer than a full identity).
func ValidIdentityPrefix(s string) bool {
	return len(s) > 0 && len(s) <= IdentityLength && identityPattern.MatchString(s)
}
