package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/racksmith/racksmith/internal/scaffold"
	"github.com/racksmith/racksmith/internal/workspace"
)

var (
	forceInit     bool
	initWorkspace string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new racksmith project",
	Long: `Initialize a new racksmith project with default configuration,
a demo rig and starter gallery entries.

Creates:
  • racksmith.yml - Project configuration file
  • rig.yml - Demo rig declaration
  • templates/starter.yml - Example patch template pack
  • gallery/demo-modules.yml - Seed module entries for the gallery

Use --force to reinitialize an existing project (WARNING: destroys existing configuration).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialization (removes existing project files)")
	initCmd.Flags().StringVarP(&initWorkspace, "workspace", "w", "", "Workspace name (generated if omitted)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := initWorkspace
	if name == "" {
		name = defaultWorkspaceName()
	} else if err := workspace.ValidateName(name); err != nil {
		return err
	}

	// Check for existing files (unless --force)
	if !forceInit {
		if err := scaffold.CheckExisting(); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(name, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(name)

	return nil
}

// defaultWorkspaceName picks the next free default-N name when the local
// Redis server answers, and falls back to a random studio name when it
// doesn't (init must work offline).
func defaultWorkspaceName() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer rdb.Close()

	if name, err := workspace.GenerateDefaultName(ctx, rdb); err == nil {
		return name
	}
	return scaffold.GenerateWorkspaceName()
}
