// Package resolver turns short revision-identity prefixes typed on the
// command line into full identities.
package resolver

import (
	"context"
	"fmt"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// MinShortIDLength is the minimum required length for identity prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// ResolveIdentity resolves a revision-identity prefix to the full identity.
// Returns the full identity if exactly one stored revision matches.
//
// The function handles three cases:
// 1. Input is already a full identity (32 hex chars) - validates existence
// 2. Input is too short (< 6 chars) - returns validation error
// 3. Input is a short prefix - scans for matches and returns unique result
func ResolveIdentity(ctx context.Context, store *gallery.Store, shortID string) (string, error) {
	if gallery.ValidIdentity(shortID) {
		matches, err := store.FindByIdentity(ctx, shortID)
		if err != nil {
			return "", fmt.Errorf("failed to verify revision existence: %w", err)
		}
		if len(matches) == 0 {
			return "", &NotFoundError{ShortID: shortID}
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("revision prefix must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}
	if !gallery.ValidIdentityPrefix(shortID) {
		return "", fmt.Errorf("invalid revision prefix: %q (identities are lowercase hex)", shortID)
	}

	matches, err := store.FindByIdentity(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for revision: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0].Identity, nil
	default:
		identities := make([]string, 0, len(matches))
		for _, m := range matches {
			identities = append(identities, m.Identity)
		}
		return "", &AmbiguousError{ShortID: shortID, Matches: identities}
	}
}

// NotFoundError indicates no stored revisions matched the prefix.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no revisions found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple revisions matched the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous revision prefix '%s' matches %d revisions", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous
// prefixes. Lists all matching identities (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous revision prefix '%s' matches %d revisions:\n", err.ShortID, len(err.Matches))

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}

	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}

	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse a longer prefix to uniquely identify the revision."
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
