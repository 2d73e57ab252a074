// Package testutil provides shared fixtures for tests: a miniredis-backed
// gallery store and a small demo catalog covering every capability category
// the pipeline cares about.
package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// NewStore starts a miniredis instance and returns a store scoped to a test
// workspace. Both are cleaned up with the test.
func NewStore(t *testing.T) *gallery.Store {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store, err := gallery.NewStore(&redis.Options{Addr: mr.Addr()}, "test-workspace")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// OscillatorEntry is a minimal audio source: one audio output.
func OscillatorEntry() *gallery.Entry {
	return &gallery.Entry{
		Manufacturer: "Demo",
		Name:         "Osc",
		WidthHP:      8,
		Jacks: []gallery.Jack{
			{ID: "out", Label: "Out", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindAudio, Rate: "audio"}},
			{ID: "pitch", Label: "1V/Oct", Direction: gallery.DirectionIn,
				Contract: gallery.SignalContract{Kind: gallery.KindPitchCV, Rate: "control"}},
		},
		Tags: []string{"oscillator"},
	}
}

// MixerEntry is a one-in/one-out audio mixer, matching the acceptance
// scenario exactly: adding inputs here changes how many topologies the
// builtin voice templates produce.
func MixerEntry() *gallery.Entry {
	return &gallery.Entry{
		Manufacturer: "Demo",
		Name:         "Mixer",
		WidthHP:      6,
		Jacks: []gallery.Jack{
			{ID: "in", Label: "In", Direction: gallery.DirectionIn,
				Contract: gallery.SignalContract{Kind: gallery.KindAudio, Rate: "audio"}},
			{ID: "mix_out", Label: "Mix", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindAudio, Rate: "audio"}},
		},
		Tags: []string{"mixer"},
	}
}

// FilterEntry shapes audio and accepts cutoff CV, with a wildcard input.
func FilterEntry() *gallery.Entry {
	return &gallery.Entry{
		Manufacturer: "Demo",
		Name:         "Filter",
		WidthHP:      10,
		Jacks: []gallery.Jack{
			{ID: "in", Label: "In", Direction: gallery.DirectionIn,
				Contract: gallery.SignalContract{Kind: gallery.KindAudio, Rate: "audio"}},
			{ID: "cutoff", Label: "Cutoff CV", Direction: gallery.DirectionIn,
				Contract: gallery.SignalContract{Kind: gallery.KindCV, Rate: "control"}},
			{ID: "aux", Label: "Aux", Direction: gallery.DirectionIn,
				Contract: gallery.SignalContract{Kind: gallery.KindCVOrAudio}},
			{ID: "out", Label: "Out", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindAudio, Rate: "audio"}},
		},
		Tags: []string{"filter"},
	}
}

// LFOEntry is a modulation source with an LFO and a random output.
func LFOEntry() *gallery.Entry {
	return &gallery.Entry{
		Manufacturer: "Demo",
		Name:         "LFO",
		WidthHP:      4,
		Jacks: []gallery.Jack{
			{ID: "sine", Label: "Sine", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindLFO, Rate: "control"}},
			{ID: "rnd", Label: "Random", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindRandom, Rate: "control"}},
		},
		Tags: []string{"lfo"},
	}
}

// ClockEntry is a clock source with gate output.
func ClockEntry() *gallery.Entry {
	return &gallery.Entry{
		Manufacturer: "Demo",
		Name:         "Clock",
		WidthHP:      4,
		Jacks: []gallery.Jack{
			{ID: "clk", Label: "Clock", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindClock, Rate: "control"}},
			{ID: "gate", Label: "Gate", Direction: gallery.DirectionOut,
				Contract: gallery.SignalContract{Kind: gallery.KindGate, Rate: "control"}},
		},
		Tags: []string{"clock"},
	}
}

// SeedDemoGallery appends the demo entries and returns their module keys.
func SeedDemoGallery(t *testing.T, store *gallery.Store) []string {
	t.Helper()
	ctx := context.Background()
	entries := []*gallery.Entry{
		OscillatorEntry(), MixerEntry(), FilterEntry(), LFOEntry(), ClockEntry(),
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		stored, err := store.Append(ctx, e)
		require.NoError(t, err)
		keys = append(keys, stored.ModuleKey)
	}
	return keys
}

// ScenarioSpec is the two-module acceptance rig: an oscillator feeding a
// mixer.
func ScenarioSpec() *rig.Spec {
	return &rig.Spec{
		Name: "scenario",
		Modules: []rig.ModuleRef{
			{ID: "oscillator", Key: "demo/osc"},
			{ID: "mixer", Key: "demo/mixer"},
		},
	}
}

// DemoSpec declares one instance of every demo entry.
func DemoSpec() *rig.Spec {
	return &rig.Spec{
		Name: "demo",
		Modules: []rig.ModuleRef{
			{ID: "osc1", Key: "demo/osc"},
			{ID: "osc2", Key: "demo/osc"},
			{ID: "vcf", Key: "demo/filter"},
			{ID: "mix", Key: "demo/mixer"},
			{ID: "wobble", Key: "demo/lfo"},
			{ID: "tick", Key: "demo/clock"},
		},
		Normals: []rig.Normal{
			{From: "osc1.out", To: "vcf.in"},
		},
	}
}

// BuildDemoRig seeds the gallery and canonicalizes DemoSpec.
func BuildDemoRig(t *testing.T) (*rig.Rig, *gallery.Store) {
	t.Helper()
	store := NewStore(t)
	SeedDemoGallery(t, store)
	r, err := rig.Build(context.Background(), store, DemoSpec())
	require.NoError(t, err)
	return r, store
}
