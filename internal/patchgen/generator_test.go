package patchgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/internal/patch"
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/internal/template"
	"github.com/racksmith/racksmith/internal/testutil"
	"github.com/racksmith/racksmith/pkg/gallery"
)

func scenarioSetup(t *testing.T) (string, *template.Buckets) {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.SeedDemoGallery(t, store)
	r, err := rig.Build(context.Background(), store, testutil.ScenarioSpec())
	require.NoError(t, err)
	hash, err := r.Hash()
	require.NoError(t, err)
	return hash, template.BuildBuckets(r)
}

func basicVoice(t *testing.T) template.Template {
	t.Helper()
	tpl, ok := template.Builtin().Get("basic_voice")
	require.True(t, ok)
	return tpl
}

func TestGenerate(t *testing.T) {
	rigHash, buckets := scenarioSetup(t)
	tpl := basicVoice(t)

	t.Run("expands all assignments in lexicographic order", func(t *testing.T) {
		graphs, err := Generate(rigHash, tpl, buckets, Options{CandidateCap: 64})
		require.NoError(t, err)
		require.Len(t, graphs, 2)

		assert.Equal(t, "mixer.mix_out", graphs[0].Assignment["audio_out"])
		assert.Equal(t, "mixer.in", graphs[0].Assignment["audio_in"])
		assert.Equal(t, "oscillator.out", graphs[1].Assignment["audio_out"])
		assert.Equal(t, "mixer.in", graphs[1].Assignment["audio_in"])
	})

	t.Run("candidate cap stops the search early", func(t *testing.T) {
		graphs, err := Generate(rigHash, tpl, buckets, Options{CandidateCap: 1})
		require.NoError(t, err)
		require.Len(t, graphs, 1)
		assert.Equal(t, "mixer.mix_out", graphs[0].Assignment["audio_out"])
	})

	t.Run("zero cap yields nothing", func(t *testing.T) {
		graphs, err := Generate(rigHash, tpl, buckets, Options{})
		require.NoError(t, err)
		assert.Empty(t, graphs)
	})

	t.Run("post-filter drops assignments silently", func(t *testing.T) {
		graphs, err := Generate(rigHash, tpl, buckets, Options{
			CandidateCap: 64,
			PostFilter: func(_ template.Template, assignment map[string]string) bool {
				return assignment["audio_out"] != "mixer.mix_out"
			},
		})
		require.NoError(t, err)
		require.Len(t, graphs, 1)
		assert.Equal(t, "oscillator.out", graphs[0].Assignment["audio_out"])
	})

	t.Run("max cables skips oversized templates", func(t *testing.T) {
		seq, ok := template.Builtin().Get("sequenced_voice")
		require.True(t, ok)
		graphs, err := Generate(rigHash, seq, buckets, Options{CandidateCap: 64, MaxCables: 2})
		require.NoError(t, err)
		assert.Empty(t, graphs)
	})

	t.Run("empty role bucket yields nothing", func(t *testing.T) {
		clock, ok := template.Builtin().Get("clock_pulse")
		require.True(t, ok)
		graphs, err := Generate(rigHash, clock, buckets, Options{CandidateCap: 64})
		require.NoError(t, err)
		assert.Empty(t, graphs)
	})

	t.Run("two runs produce identical graphs", func(t *testing.T) {
		a, err := Generate(rigHash, tpl, buckets, Options{CandidateCap: 64})
		require.NoError(t, err)
		b, err := Generate(rigHash, tpl, buckets, Options{CandidateCap: 64})
		require.NoError(t, err)
		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Equal(t, a[i].ID, b[i].ID)
			assert.Equal(t, a[i].Cables, b[i].Cables)
		}
	})
}

func TestGenerateDistinctJacks(t *testing.T) {
	r, _ := testutil.BuildDemoRig(t)
	rigHash, err := r.Hash()
	require.NoError(t, err)
	buckets := template.BuildBuckets(r)

	crossfade := template.Template{
		ID:         "crossfade",
		Archetype:  "two sources into a mixer",
		Category:   "voice",
		Difficulty: 2,
		Roles: map[string]template.RoleConstraint{
			"a_out":  {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"b_out":  {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"a_in":   {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"b_in":   {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio}},
		},
		Slots: []template.Slot{
			{From: "a_out", To: "a_in", Kind: gallery.KindAudio},
			{From: "b_out", To: "b_in", Kind: gallery.KindAudio},
		},
	}
	require.NoError(t, crossfade.Validate())

	graphs, err := Generate(rigHash, crossfade, buckets, Options{CandidateCap: 1000})
	require.NoError(t, err)
	require.NotEmpty(t, graphs)

	for _, g := range graphs {
		seen := make(map[string]bool)
		for _, jack := range g.Assignment {
			assert.False(t, seen[jack], "jack %s claimed twice in %v", jack, g.Assignment)
			seen[jack] = true
		}
	}

	// 4 audio outs x 3 remaining, 2 audio ins x 1 remaining.
	assert.Len(t, graphs, 4*3*2*1)
}

func TestCompiledGraphShape(t *testing.T) {
	rigHash, buckets := scenarioSetup(t)
	graphs, err := Generate(rigHash, basicVoice(t), buckets, Options{CandidateCap: 64})
	require.NoError(t, err)
	require.Len(t, graphs, 2)

	g := graphs[1]
	assert.Equal(t, rigHash, g.RigHash)
	assert.Equal(t, "basic_voice", g.TemplateID)
	assert.Equal(t, "voice", g.Category)
	assert.Equal(t, 1, g.Difficulty)
	require.Len(t, g.Cables, 1)
	assert.Equal(t, patch.Cable{From: "oscillator.out", To: "mixer.in", Kind: gallery.KindAudio}, g.Cables[0])

	wantID, err := patch.ComputeID(rigHash, "basic_voice", g.Assignment)
	require.NoError(t, err)
	assert.Equal(t, wantID, g.ID)

	require.Len(t, g.Macros, 2)
	assert.Equal(t, "drift", g.Macros[0].Name)
	assert.Equal(t, []string{"oscillator.out"}, g.Macros[0].Targets)
	assert.Equal(t, "swell", g.Macros[1].Name)
	assert.Equal(t, []string{"mixer.in"}, g.Macros[1].Targets)

	require.Len(t, g.Timeline, len(patch.Phases))
	for i, step := range g.Timeline {
		assert.Equal(t, patch.Phases[i], step.Phase)
		assert.NotEmpty(t, step.Action)
	}
}
