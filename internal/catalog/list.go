package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/racksmith/racksmith/internal/filter"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// OutputFormat specifies how to format the module list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated fields
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete entries as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ListEntries retrieves all stored revisions in the workspace and writes
// them to the provided writer. The store lists in (module key, revision)
// order, so output is stable across runs. Applies filter criteria if
// provided.
func ListEntries(ctx context.Context, store *gallery.Store, format OutputFormat, criteria *filter.Criteria, w io.Writer) error {
	all, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list gallery entries: %w", err)
	}

	entries := make([]*gallery.StoredEntry, 0, len(all))
	for _, e := range all {
		if criteria != nil && !criteria.Matches(e) {
			continue
		}
		entries = append(entries, e)
	}

	switch format {
	case OutputFormatDefault:
		FormatTable(w, entries, store.Workspace())
	case OutputFormatJSONL:
		if err := FormatJSONL(w, entries); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
