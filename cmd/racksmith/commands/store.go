package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/racksmith/racksmith/internal/config"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// openStore loads the project config and connects a gallery store to the
// configured workspace. The caller owns the returned store's Close.
func openStore(configPath string) (*gallery.Store, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := gallery.NewStore(&redis.Options{Addr: cfg.RedisAddr()}, cfg.Workspace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to gallery store: %w", err)
	}

	return store, cfg, nil
}
