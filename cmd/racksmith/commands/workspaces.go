package commands

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/racksmith/racksmith/internal/printer"
	"github.com/racksmith/racksmith/internal/workspace"
)

var workspacesRedisAddr string

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List workspaces on a Redis server",
	Long: `List every workspace holding gallery data on a Redis server.

Workspaces are isolated namespaces: each one carries its own module
gallery, so several projects can share one server without seeing each
other's entries.`,
	RunE: runWorkspaces,
}

func init() {
	workspacesCmd.Flags().StringVar(&workspacesRedisAddr, "redis", "localhost:6379", "Redis server to scan")
	rootCmd.AddCommand(workspacesCmd)
}

func runWorkspaces(cmd *cobra.Command, args []string) error {
	rdb := redis.NewClient(&redis.Options{Addr: workspacesRedisAddr})
	defer rdb.Close()

	names, err := workspace.Discover(context.Background(), rdb)
	if err != nil {
		return printer.Error(
			"failed to discover workspaces",
			err.Error(),
			[]string{"Check that Redis is reachable at " + workspacesRedisAddr + "."},
		)
	}

	if len(names) == 0 {
		printer.Info("No workspaces found on %s\n", workspacesRedisAddr)
		return nil
	}

	printer.Info("Workspaces on %s:\n", workspacesRedisAddr)
	for _, name := range names {
		printer.Println("  " + name)
	}
	return nil
}
