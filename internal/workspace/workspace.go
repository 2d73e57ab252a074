// Package workspace handles workspace naming and discovery. A workspace is
// an isolated gallery namespace on a Redis server; every key the store
// writes is prefixed with the workspace name.
package workspace

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultNamePrefix is the prefix for auto-generated workspace names.
	DefaultNamePrefix = "default-"

	// MaxNameLength is the maximum length for a workspace name
	// (DNS-compatible, so names can double as container or host labels).
	MaxNameLength = 63
)

// NamePattern is the regex pattern for valid workspace names: lowercase
// alphanumeric with hyphens, not at start or end.
var NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks if a workspace name is valid according to DNS naming
// rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("workspace name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid workspace name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// Discover scans a Redis server for workspaces holding gallery data and
// returns their names sorted. A workspace exists once any of its keys does.
func Discover(ctx context.Context, rdb *redis.Client) ([]string, error) {
	seen := make(map[string]bool)
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, "racksmith:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan for workspaces: %w", err)
		}
		for _, key := range keys {
			parts := strings.SplitN(key, ":", 3)
			if len(parts) >= 2 && parts[1] != "" {
				seen[parts[1]] = true
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GenerateDefaultName returns the next free default-N workspace name on the
// server, starting from default-1.
func GenerateDefaultName(ctx context.Context, rdb *redis.Client) (string, error) {
	existing, err := Discover(ctx, rdb)
	if err != nil {
		return "", err
	}

	highest := 0
	for _, name := range existing {
		if !strings.HasPrefix(name, DefaultNamePrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, DefaultNamePrefix))
		if err == nil && n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%d", DefaultNamePrefix, highest+1), nil
}
