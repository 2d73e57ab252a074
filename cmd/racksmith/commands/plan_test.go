package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/racksmith/racksmith/internal/curator"
	"github.com/racksmith/racksmith/internal/layout"
	"github.com/racksmith/racksmith/internal/patchgen"
	"github.com/racksmith/racksmith/internal/pipeline"
	"github.com/racksmith/racksmith/internal/template"
	"github.com/racksmith/racksmith/internal/testutil"
	"github.com/racksmith/racksmith/pkg/canon"
	"github.com/racksmith/racksmith/pkg/gallery"
)

var planArtifacts = []string{
	"canonical_rig.json",
	"metrics.json",
	"layouts.json",
	"patch_library.json",
}

// setupPlanProject seeds a miniredis-backed gallery and writes a minimal
// project (racksmith.yml + rig.yml) into dir.
func setupPlanProject(t *testing.T, dir string) *gallery.Store {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	store, err := gallery.NewStore(&redis.Options{Addr: mr.Addr()}, "plan-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, e := range []*gallery.Entry{testutil.OscillatorEntry(), testutil.MixerEntry()} {
		if _, err := store.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	config := fmt.Sprintf(`version: "1.0"
workspace: plan-test
redis:
  addr: %s
case:
  rows: 2
  row_width_hp: 104
constraints:
  tier: 1
`, mr.Addr())
	if err := os.WriteFile(filepath.Join(dir, "racksmith.yml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	rigSpec := `name: scenario
modules:
  - id: oscillator
    key: demo/osc
  - id: mixer
    key: demo/mixer
`
	if err := os.WriteFile(filepath.Join(dir, "rig.yml"), []byte(rigSpec), 0644); err != nil {
		t.Fatal(err)
	}

	return store
}

func runPlanInDir(t *testing.T, dir, out string) {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(originalDir)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	// Reset flags so runs don't leak into each other
	planConfigPath = "racksmith.yml"
	planRigPath = "rig.yml"

	rootCmd.SetArgs([]string{"plan", "--out", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	store := setupPlanProject(t, dir)

	runPlanInDir(t, dir, "plan1")
	runPlanInDir(t, dir, "plan2")

	t.Run("re-running produces byte-identical output files", func(t *testing.T) {
		for _, name := range planArtifacts {
			first, err := os.ReadFile(filepath.Join(dir, "plan1", name))
			if err != nil {
				t.Fatalf("missing artifact %s: %v", name, err)
			}
			if len(first) == 0 {
				t.Errorf("artifact %s is empty", name)
			}
			second, err := os.ReadFile(filepath.Join(dir, "plan2", name))
			if err != nil {
				t.Fatalf("missing artifact %s: %v", name, err)
			}
			if string(first) != string(second) {
				t.Errorf("artifact %s differs between runs", name)
			}
		}
	})

	t.Run("library file carries the scenario patch", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "plan1", "patch_library.json"))
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"oscillator.out", "mixer.in"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("patch_library.json should mention %s", want)
			}
		}
	})

	t.Run("file bytes hash to the stage hashes", func(t *testing.T) {
		// Same inputs as the project written above: config tier 1, every
		// other constraint at its default.
		engine := pipeline.NewEngine(store, pipeline.Options{
			Case:      layout.Case{Rows: 2, RowWidthHP: 104},
			Registry:  template.Builtin(),
			Tier:      1,
			Generator: patchgen.Options{CandidateCap: 64, MaxCables: 8},
			Curator: curator.Options{
				MaxTotal:       12,
				MaxPerCategory: 4,
				MaxPerTemplate: 3,
				DropRunaway:    true,
			},
			Quiet: true,
		})
		bundle, err := engine.Run(context.Background(), testutil.ScenarioSpec())
		if err != nil {
			t.Fatal(err)
		}

		want := map[string]string{
			"canonical_rig.json": bundle.Hashes.Rig,
			"metrics.json":       bundle.Hashes.Metrics,
			"layouts.json":       bundle.Hashes.Layouts,
			"patch_library.json": bundle.Hashes.Library,
		}
		for name, wantHash := range want {
			data, err := os.ReadFile(filepath.Join(dir, "plan1", name))
			if err != nil {
				t.Fatal(err)
			}
			if got := canon.HashBytes(data); got != wantHash {
				t.Errorf("%s: file bytes hash to %s, stage hash is %s", name, got, wantHash)
			}
		}
	})
}
