package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/racksmith/racksmith/internal/resolver"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// GetEntry retrieves a single stored revision and writes it as
// pretty-printed JSON to the writer. The reference is either a module key
// ("demo/osc", resolved to its latest revision) or a revision identity
// prefix (resolved through the short-id resolver).
func GetEntry(ctx context.Context, store *gallery.Store, ref string, w io.Writer) error {
	stored, err := lookup(ctx, store, ref)
	if err != nil {
		return err
	}

	if err := FormatSingleJSON(w, stored); err != nil {
		return fmt.Errorf("failed to format entry: %w", err)
	}

	return nil
}

func lookup(ctx context.Context, store *gallery.Store, ref string) (*gallery.StoredEntry, error) {
	if strings.Contains(ref, "/") {
		if !gallery.ValidModuleKey(ref) {
			return nil, fmt.Errorf("invalid module key: %q", ref)
		}
		stored, err := store.Latest(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch module: %w", err)
		}
		return stored, nil
	}

	identity, err := resolver.ResolveIdentity(ctx, store, ref)
	if err != nil {
		return nil, err
	}
	matches, err := store.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revision: %w", err)
	}
	if len(matches) == 0 {
		return nil, &resolver.NotFoundError{ShortID: ref}
	}
	return matches[0], nil
}
