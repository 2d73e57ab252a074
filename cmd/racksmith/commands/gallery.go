package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/racksmith/racksmith/internal/catalog"
	"github.com/racksmith/racksmith/internal/filter"
	"github.com/racksmith/racksmith/internal/printer"
	"github.com/racksmith/racksmith/internal/resolver"
	"github.com/racksmith/racksmith/internal/timespec"
	"github.com/racksmith/racksmith/pkg/gallery"
)

var (
	galleryConfigPath   string
	galleryOutputFormat string
	galleryListSince    string
	galleryListUntil    string
	galleryListKeyGlob  string
	galleryListTag      string
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Inspect and grow the module gallery",
	Long: `Inspect and grow the append-only module gallery.

The gallery stores one immutable revision per documented module version.
Corrections never overwrite: appending changed facts for the same module
creates a new revision, and rigs resolve to the latest unless pinned.`,
}

var galleryAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Append module entries from a YAML file",
	Long: `Append module entries from a YAML file to the gallery.

The file declares a list of module entries:

  modules:
    - manufacturer: Make Noise
      name: Maths
      width_hp: 20
      jacks: [...]

Unchanged re-imports are reported and skipped; changed facts for an
existing module key become a new revision.

Examples:
  racksmith gallery add gallery/demo-modules.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runGalleryAdd,
}

var galleryGetCmd = &cobra.Command{
	Use:   "get REF",
	Short: "Show one module revision as JSON",
	Long: `Show complete details of a single module revision as pretty-printed JSON.

REF is either a module key (shows the latest revision) or a revision
identity prefix of at least 6 characters.

Examples:
  racksmith gallery get make-noise/maths
  racksmith gallery get 3f9a1c`,
	Args: cobra.ExactArgs(1),
	RunE: runGalleryGet,
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored module revisions",
	Long: `List every revision in the workspace's gallery.

Output Formats:
  default - Human-readable table
  jsonl   - One complete JSON entry per line, for piping into jq

Examples:
  # Everything, as a table
  racksmith gallery list

  # Modules appended in the last day, as JSONL
  racksmith gallery list --since 24h --output=jsonl

  # One manufacturer only
  racksmith gallery list --key 'make-noise/*'`,
	RunE: runGalleryList,
}

var galleryLatestCmd = &cobra.Command{
	Use:   "latest MODULE_KEY",
	Short: "Show the latest revision of a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runGalleryLatest,
}

var galleryWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream gallery appends as they happen",
	Long: `Subscribe to the gallery's append events and print each new revision
as it lands. Runs until interrupted.`,
	RunE: runGalleryWatch,
}

func init() {
	galleryCmd.PersistentFlags().StringVarP(&galleryConfigPath, "config", "c", "racksmith.yml", "Path to the project config")

	galleryListCmd.Flags().StringVarP(&galleryOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	galleryListCmd.Flags().StringVar(&galleryListSince, "since", "", "Only revisions appended after this time ('1h30m' or RFC3339)")
	galleryListCmd.Flags().StringVar(&galleryListUntil, "until", "", "Only revisions appended before this time ('1h30m' or RFC3339)")
	galleryListCmd.Flags().StringVar(&galleryListKeyGlob, "key", "", "Glob pattern over module keys")
	galleryListCmd.Flags().StringVar(&galleryListTag, "tag", "", "Only entries carrying this tag")

	galleryCmd.AddCommand(galleryAddCmd)
	galleryCmd.AddCommand(galleryGetCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryLatestCmd)
	galleryCmd.AddCommand(galleryWatchCmd)
	rootCmd.AddCommand(galleryCmd)
}

// entryFile is the YAML shape accepted by gallery add.
type entryFile struct {
	Modules []gallery.Entry `yaml:"modules"`
}

func runGalleryAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	var file entryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	if len(file.Modules) == 0 {
		return printer.Error(
			"no modules in file",
			fmt.Sprintf("%s declares no module entries.", args[0]),
			[]string{"Declare entries under a top-level 'modules:' list."},
		)
	}

	store, _, err := openStore(galleryConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	appended := 0
	for i := range file.Modules {
		e := &file.Modules[i]
		stored, err := store.Append(ctx, e)
		if err != nil {
			if gallery.IsCollision(err) {
				printer.Warning("%s unchanged, skipped\n", e.ModuleKey())
				continue
			}
			return fmt.Errorf("failed to append %s: %w", e.ModuleKey(), err)
		}
		appended++
		printer.Success("%s r%d (%s)\n", stored.ModuleKey, stored.Revision, stored.Identity[:8])
	}

	printer.Info("\n%d of %d entries appended\n", appended, len(file.Modules))
	return nil
}

func runGalleryGet(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(galleryConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	err = catalog.GetEntry(context.Background(), store, args[0], os.Stdout)
	if err != nil {
		if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
			fmt.Fprintln(os.Stderr, resolver.FormatAmbiguousError(ambiguous))
			return fmt.Errorf("ambiguous revision prefix")
		}
		return err
	}
	return nil
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	var format catalog.OutputFormat
	switch galleryOutputFormat {
	case "default":
		format = catalog.OutputFormatDefault
	case "jsonl":
		format = catalog.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", galleryOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	sinceMS, untilMS, err := timespec.ParseRange(galleryListSince, galleryListUntil)
	if err != nil {
		return err
	}
	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMS,
		UntilTimestampMs: untilMS,
		KeyGlob:          galleryListKeyGlob,
		Tag:              galleryListTag,
	}

	store, _, err := openStore(galleryConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return catalog.ListEntries(context.Background(), store, format, criteria, os.Stdout)
}

func runGalleryLatest(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !gallery.ValidModuleKey(key) {
		return printer.Error(
			"invalid module key",
			fmt.Sprintf("%q is not a valid module key.", key),
			[]string{"Module keys look like 'manufacturer/name', lowercase with hyphens."},
		)
	}

	store, _, err := openStore(galleryConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.Latest(context.Background(), key)
	if err != nil {
		return err
	}
	return catalog.FormatSingleJSON(os.Stdout, stored)
}

func runGalleryWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, cfg, err := openStore(galleryConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sub, err := store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to gallery events: %w", err)
	}
	defer sub.Close()

	printer.Info("Watching gallery appends in workspace '%s' (ctrl-c to stop)...\n\n", cfg.Workspace)

	for {
		select {
		case <-ctx.Done():
			printer.Info("\nStopped.\n")
			return nil
		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			printer.Warning("watch error: %v\n", err)
		case stored, ok := <-sub.Events():
			if !ok {
				return nil
			}
			printer.Success("%s r%d (%s) %dHP, %d jacks\n",
				stored.ModuleKey, stored.Revision, stored.Identity[:8],
				stored.Entry.WidthHP, len(stored.Entry.Jacks))
		}
	}
}
