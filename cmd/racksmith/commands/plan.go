package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/racksmith/racksmith/internal/pipeline"
	"github.com/racksmith/racksmith/internal/printer"
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/internal/template"
	"github.com/racksmith/racksmith/pkg/canon"
)

var (
	planConfigPath string
	planRigPath    string
	planOutDir     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run the full rig-to-library pipeline",
	Long: `Run the full pipeline for the declared rig: canonicalize it against
the gallery, map capabilities, suggest layouts, and generate and curate
the patch library.

The run is deterministic. Identical gallery contents, rig declaration
and constraints reproduce every output file byte for byte, so the
printed stage hashes double as a regression check.

Outputs are written as canonical JSON into the output directory:
  canonical_rig.json
  metrics.json
  layouts.json
  patch_library.json

Examples:
  racksmith plan
  racksmith plan --rig live-case.yml --out plan/live`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planConfigPath, "config", "c", "racksmith.yml", "Path to the project config")
	planCmd.Flags().StringVarP(&planRigPath, "rig", "r", "rig.yml", "Path to the rig declaration")
	planCmd.Flags().StringVarP(&planOutDir, "out", "o", "plan", "Directory for the output artifacts")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	spec, err := rig.LoadSpec(planRigPath)
	if err != nil {
		return printer.Error(
			"failed to load rig",
			err.Error(),
			[]string{
				"Check that the rig file exists and is valid YAML.",
				"Run 'racksmith init' to scaffold a starter rig.yml.",
			},
		)
	}

	store, cfg, err := openStore(planConfigPath)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := template.Builtin()
	for _, pack := range cfg.TemplatePacks {
		n, err := registry.LoadPack(pack)
		if err != nil {
			return fmt.Errorf("failed to load template pack %s: %w", pack, err)
		}
		printer.Info("Loaded %d templates from %s\n", n, pack)
	}

	engine := pipeline.NewEngine(store, pipeline.Options{
		Case:      cfg.LayoutCase(),
		Registry:  registry,
		Tier:      cfg.Constraints.EffectiveTier(),
		Generator: cfg.Constraints.GeneratorOptions(),
		Curator:   cfg.Constraints.CuratorOptions(),
	})

	bundle, err := engine.Run(context.Background(), spec)
	if err != nil {
		return err
	}

	if err := writeBundle(planOutDir, bundle); err != nil {
		return err
	}

	printer.Success("Plan written to %s/\n\n", planOutDir)
	printer.Printf("  rig      %s  (%d modules)\n", bundle.Hashes.Rig, len(bundle.Rig.Modules))
	printer.Printf("  metrics  %s\n", bundle.Hashes.Metrics)
	printer.Printf("  layouts  %s  (%d suggestions)\n", bundle.Hashes.Layouts, len(bundle.Layouts))
	printer.Printf("  library  %s  (%d patches)\n", bundle.Hashes.Library, len(bundle.Library.Items))
	return nil
}

// writeBundle serializes each stage artifact with the canonical encoder so
// the files carry exactly the bytes the stage hashes were computed over.
func writeBundle(dir string, bundle *pipeline.Bundle) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	artifacts := []struct {
		name string
		v    interface{}
	}{
		{"canonical_rig.json", bundle.Rig},
		{"metrics.json", bundle.Metrics},
		{"layouts.json", bundle.Layouts},
		{"patch_library.json", bundle.Library},
	}
	for _, a := range artifacts {
		data, err := canon.Marshal(a.v)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", a.name, err)
		}
		path := filepath.Join(dir, a.name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", a.name, err)
		}
	}
	return nil
}
