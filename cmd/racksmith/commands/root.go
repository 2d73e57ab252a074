package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "racksmith",
	Short: "Racksmith - Eurorack rig planner and patch librarian",
	Long: `Racksmith turns a declared Eurorack rig into concrete, playable plans:
it canonicalizes the rig against an append-only module gallery, maps the
rig's capabilities, suggests case layouts, and generates a curated library
of validated patch ideas.

All artifacts are deterministic: the same rig, gallery contents and
constraints always produce byte-identical output.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
