// Package filter narrows gallery listings for the CLI.
package filter

import (
	"path/filepath"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// Criteria defines filtering criteria for stored gallery entries.
// All filters are ANDed together - an entry must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	KeyGlob          string // Glob pattern for the module key, empty = no filter
	Tag              string // Exact match against the entry's tags, empty = no filter
}

// Matches returns true if the stored entry matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(e *gallery.StoredEntry) bool {
	if c.SinceTimestampMs > 0 && e.AppendedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && e.AppendedAtMs > c.UntilTimestampMs {
		return false
	}

	if c.KeyGlob != "" {
		matched, err := filepath.Match(c.KeyGlob, e.ModuleKey)
		if err != nil || !matched {
			return false
		}
	}

	if c.Tag != "" {
		found := false
		for _, tag := range e.Entry.AllTags() {
			if tag == c.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.KeyGlob != "" ||
		c.Tag != ""
}
