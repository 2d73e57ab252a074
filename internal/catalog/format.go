// Package catalog renders gallery listings for the CLI: a compact table for
// humans, JSONL for pipelines, and pretty JSON for single entries.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// FormatTable writes stored entries as a formatted table to the provided
// writer. Returns the number of entries formatted.
func FormatTable(w io.Writer, entries []*gallery.StoredEntry, workspace string) int {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No modules found in workspace '%s'\n", workspace)
		return 0
	}

	fmt.Fprintf(w, "Modules in workspace '%s':\n\n", workspace)

	fmt.Fprintf(w, "%-28s %-4s %-10s %-4s %-6s %-8s %s\n",
		"KEY", "REV", "IDENTITY", "HP", "JACKS", "AGE", "TAGS")
	fmt.Fprintf(w, "%-28s %-4s %-10s %-4s %-6s %-8s %s\n",
		"----------------------------", "----", "----------", "----", "------", "--------", "--------------------")

	for _, e := range entries {
		fmt.Fprintf(w, "%-28s %-4s %-10s %-4d %-6d %-8s %s\n",
			formatKey(e.ModuleKey),
			fmt.Sprintf("r%d", e.Revision),
			formatIdentity(e.Identity),
			e.Entry.WidthHP,
			len(e.Entry.Jacks),
			formatTimestamp(e.AppendedAtMs),
			formatTags(e.Entry.Tags),
		)
	}

	countMsg := "revision"
	if len(entries) != 1 {
		countMsg = "revisions"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(entries), countMsg)

	return len(entries)
}

// FormatJSONL writes stored entries as line-delimited JSON (JSONL) to the
// provided writer. Each entry is written as a single JSON object on its own
// line. This format is ideal for streaming and processing with tools like jq.
func FormatJSONL(w io.Writer, entries []*gallery.StoredEntry) error {
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single stored entry as pretty-printed JSON to
// the provided writer. Used in get mode to display complete module details.
func FormatSingleJSON(w io.Writer, e *gallery.StoredEntry) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}

// formatIdentity truncates a revision identity to 8 characters for compact
// display.
func formatIdentity(identity string) string {
	if len(identity) > 8 {
		return identity[:8]
	}
	return identity
}

// formatKey truncates long module keys for table display.
func formatKey(key string) string {
	if len(key) > 28 {
		return key[:25] + "..."
	}
	return key
}

// formatTags joins tags for table display, truncated to keep rows narrow.
// Empty tag lists return "-".
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	joined := strings.Join(tags, ",")
	if len(joined) > 40 {
		return joined[:37] + "..."
	}
	return joined
}

// formatTimestamp formats Unix timestamp in milliseconds to human-readable
// relative time like "2m ago", "1h ago", etc.
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.Unix(timestampMs/1000, (timestampMs%1000)*1000000)
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
