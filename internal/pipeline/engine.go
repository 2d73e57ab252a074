// Package pipeline runs the full rig-to-library flow: canonicalize the
// declared rig against the gallery, map its capabilities, suggest layouts,
// expand templates into patch candidates, validate them, and curate the
// library. One run is synchronous and deterministic; re-running on
// identical inputs reproduces every artifact byte for byte.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/racksmith/racksmith/internal/capability"
	"github.com/racksmith/racksmith/internal/curator"
	"github.com/racksmith/racksmith/internal/layout"
	"github.com/racksmith/racksmith/internal/patch"
	"github.com/racksmith/racksmith/internal/patchgen"
	"github.com/racksmith/racksmith/internal/patchval"
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/internal/template"
	"github.com/racksmith/racksmith/pkg/canon"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Options configure one engine.
type Options struct {
	Case      layout.Case
	Registry  *template.Registry
	Tier      int
	Generator patchgen.Options
	Curator   curator.Options

	// Quiet suppresses the per-stage log lines (used by tests).
	Quiet bool
}

// Bundle is everything one run produces, plus the canonical hash of each
// stage artifact. The hashes are the handoff contract to rendering.
type Bundle struct {
	Rig     *rig.Rig                  `json:"rig"`
	Metrics *capability.MetricsPacket `json:"metrics"`
	Layouts []layout.Suggestion       `json:"layouts"`
	Library *patch.Library            `json:"library"`

	Hashes StageHashes `json:"hashes"`
}

// StageHashes carries the canonical content hash of each produced artifact.
type StageHashes struct {
	Rig     string `json:"rig"`
	Metrics string `json:"metrics"`
	Layouts string `json:"layouts"`
	Library string `json:"library"`
}

// Engine runs the pipeline against one gallery store.
type Engine struct {
	store *gallery.Store
	opts  Options
}

// NewEngine builds an engine. The registry must already hold every
// template the run should consider.
func NewEngine(store *gallery.Store, opts Options) *Engine {
	return &Engine{store: store, opts: opts}
}

func (e *Engine) logf(format string, args ...interface{}) {
	if !e.opts.Quiet {
		log.Printf("[Pipeline] "+format, args...)
	}
}

// Run executes every stage for one rig spec and returns the bundle.
// Failures are fatal and wrapped: a missing gallery entry surfaces the
// store's NotFoundError, an undersized case the layout OverflowError.
func (e *Engine) Run(ctx context.Context, spec *rig.Spec) (*Bundle, error) {
	e.logf("Canonicalizing rig '%s' (%d modules)", spec.Name, len(spec.Modules))
	r, err := rig.Build(ctx, e.store, spec)
	if err != nil {
		return nil, fmt.Errorf("rig build failed: %w", err)
	}
	rigHash, err := canon.Hash(r)
	if err != nil {
		return nil, fmt.Errorf("failed to hash rig: %w", err)
	}
	e.logf("Canonical rig %s", rigHash)

	metrics, err := capability.Map(r)
	if err != nil {
		return nil, fmt.Errorf("capability mapping failed: %w", err)
	}
	metricsHash, err := canon.Hash(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to hash metrics: %w", err)
	}
	e.logf("Capability metrics %s", metricsHash)

	layouts, err := layout.Suggest(r, e.opts.Case)
	if err != nil {
		return nil, fmt.Errorf("layout suggestion failed: %w", err)
	}
	layoutsHash, err := canon.Hash(layouts)
	if err != nil {
		return nil, fmt.Errorf("failed to hash layouts: %w", err)
	}
	e.logf("Suggested %d layouts %s", len(layouts), layoutsHash)

	library, err := e.buildLibrary(r, rigHash)
	if err != nil {
		return nil, err
	}
	libraryHash, err := canon.Hash(library)
	if err != nil {
		return nil, fmt.Errorf("failed to hash library: %w", err)
	}
	e.logf("Curated library of %d patches %s", len(library.Items), libraryHash)

	return &Bundle{
		Rig:     r,
		Metrics: metrics,
		Layouts: layouts,
		Library: library,
		Hashes: StageHashes{
			Rig:     rigHash,
			Metrics: metricsHash,
			Layouts: layoutsHash,
			Library: libraryHash,
		},
	}, nil
}

// buildLibrary expands every in-tier template, validates each compiled
// graph, and curates the result. The candidate cap is a run-wide budget
// shared across templates in id order.
func (e *Engine) buildLibrary(r *rig.Rig, rigHash string) (*patch.Library, error) {
	buckets := template.BuildBuckets(r)
	owners := r.OwnerIndex()

	remaining := e.opts.Generator.CandidateCap
	var candidates []curator.Candidate
	for _, tpl := range e.opts.Registry.WithinTier(e.opts.Tier) {
		if remaining <= 0 {
			break
		}
		opts := e.opts.Generator
		opts.CandidateCap = remaining
		graphs, err := patchgen.Generate(rigHash, tpl, buckets, opts)
		if err != nil {
			return nil, fmt.Errorf("generation failed for template %s: %w", tpl.ID, err)
		}
		remaining -= len(graphs)
		e.logf("Template %s produced %d candidates", tpl.ID, len(graphs))

		for _, g := range graphs {
			candidates = append(candidates, curator.Candidate{
				Graph:  g,
				Report: patchval.Validate(r, g),
			})
		}
	}

	return curator.Curate(rigHash, candidates, owners, e.opts.Curator), nil
}
