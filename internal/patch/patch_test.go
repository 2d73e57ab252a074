package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/pkg/gallery"
)

func TestComputeID(t *testing.T) {
	assignment := map[string]string{
		"audio_out": "oscillator.out",
		"audio_in":  "mixer.in",
	}

	t.Run("identical inputs hash identically", func(t *testing.T) {
		a, err := ComputeID("rig-hash", "basic_voice", assignment)
		require.NoError(t, err)
		b, err := ComputeID("rig-hash", "basic_voice", map[string]string{
			"audio_in":  "mixer.in",
			"audio_out": "oscillator.out",
		})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("any input change changes the id", func(t *testing.T) {
		base, err := ComputeID("rig-hash", "basic_voice", assignment)
		require.NoError(t, err)

		otherRig, err := ComputeID("other-hash", "basic_voice", assignment)
		require.NoError(t, err)
		assert.NotEqual(t, base, otherRig)

		otherTemplate, err := ComputeID("rig-hash", "fx_send", assignment)
		require.NoError(t, err)
		assert.NotEqual(t, base, otherTemplate)

		otherAssignment, err := ComputeID("rig-hash", "basic_voice", map[string]string{
			"audio_out": "oscillator.out",
			"audio_in":  "mixer.in2",
		})
		require.NoError(t, err)
		assert.NotEqual(t, base, otherAssignment)
	})
}

func TestTopologySignature(t *testing.T) {
	t.Run("cable order does not matter", func(t *testing.T) {
		a := TopologySignature([]Cable{
			{From: "osc.out", To: "vcf.in", Kind: gallery.KindAudio},
			{From: "lfo.sine", To: "vcf.cutoff", Kind: gallery.KindCV},
		})
		b := TopologySignature([]Cable{
			{From: "lfo.sine", To: "vcf.cutoff", Kind: gallery.KindCV},
			{From: "osc.out", To: "vcf.in", Kind: gallery.KindAudio},
		})
		assert.Equal(t, a, b)
		assert.Equal(t, "lfo.sine>vcf.cutoff:cv|osc.out>vcf.in:audio", a)
	})

	t.Run("direction matters", func(t *testing.T) {
		a := TopologySignature([]Cable{{From: "a.x", To: "b.y", Kind: gallery.KindAudio}})
		b := TopologySignature([]Cable{{From: "b.y", To: "a.x", Kind: gallery.KindAudio}})
		assert.NotEqual(t, a, b)
	})

	t.Run("empty graph has empty signature", func(t *testing.T) {
		assert.Equal(t, "", TopologySignature(nil))
	})
}

func TestGraphModulesAndCoherence(t *testing.T) {
	owners := map[string]string{
		"osc.out":    "osc",
		"vcf.in":     "vcf",
		"vcf.out":    "vcf",
		"mix.in":     "mix",
		"lfo.sine":   "lfo",
		"vcf.cutoff": "vcf",
	}

	g := &Graph{Cables: []Cable{
		{From: "osc.out", To: "vcf.in", Kind: gallery.KindAudio},
		{From: "vcf.out", To: "mix.in", Kind: gallery.KindAudio},
		{From: "lfo.sine", To: "vcf.cutoff", Kind: gallery.KindCV},
	}}

	assert.Equal(t, []string{"lfo", "mix", "osc", "vcf"}, g.Modules(owners))
	assert.InDelta(t, 0.75, g.Coherence(owners), 1e-9)

	empty := &Graph{}
	assert.Empty(t, empty.Modules(owners))
	assert.Zero(t, empty.Coherence(owners))
}

func TestReportClean(t *testing.T) {
	clean := &Report{Stability: 1.0}
	assert.True(t, clean.Clean())

	flagged := &Report{RunawayRisk: []string{"mixer"}, Stability: 0.75}
	assert.False(t, flagged.Clean())
}

func TestLibraryHashDeterminism(t *testing.T) {
	lib := &Library{
		RigHash: "abc",
		Items: []Card{
			{Signature: "a>b:audio", Score: 1.0},
		},
	}
	h1, err := lib.Hash()
	require.NoError(t, err)
	h2, err := lib.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
