package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/pkg/gallery"
)

func moduleWith(tags []string, jacks ...rig.Jack) *rig.Module {
	return &rig.Module{Instance: "m1", Key: "demo/m", Tags: tags, Jacks: jacks}
}

func outJack(id string, kind gallery.SignalKind) rig.Jack {
	return rig.Jack{ID: "m1." + id, Module: "m1", Local: id,
		Direction: gallery.DirectionOut, Contract: gallery.SignalContract{Kind: kind}}
}

func inJack(id string, kind gallery.SignalKind) rig.Jack {
	return rig.Jack{ID: "m1." + id, Module: "m1", Local: id,
		Direction: gallery.DirectionIn, Contract: gallery.SignalContract{Kind: kind}}
}

func TestClassify(t *testing.T) {
	t.Run("explicit tags win", func(t *testing.T) {
		m := moduleWith([]string{"reverb"}, outJack("out", gallery.KindAudio))
		assert.Equal(t, []Category{CategoryFX}, Classify(m))
	})

	t.Run("mode tags count", func(t *testing.T) {
		m := moduleWith(nil, outJack("out", gallery.KindAudio))
		m.Modes = []gallery.Mode{{Name: "lfo mode", Tags: []string{"lfo"}}}
		assert.Equal(t, []Category{CategoryModulators}, Classify(m))
	})

	t.Run("audio out only falls back to sources", func(t *testing.T) {
		m := moduleWith(nil, outJack("out", gallery.KindAudio))
		assert.Equal(t, []Category{CategorySources}, Classify(m))
	})

	t.Run("audio in and out falls back to shapers", func(t *testing.T) {
		m := moduleWith(nil, inJack("in", gallery.KindAudio), outJack("out", gallery.KindAudio))
		assert.Equal(t, []Category{CategoryShapers}, Classify(m))
	})

	t.Run("multiple audio ins fall back to routers", func(t *testing.T) {
		m := moduleWith(nil,
			inJack("in1", gallery.KindAudio), inJack("in2", gallery.KindAudio),
			outJack("out", gallery.KindAudio))
		assert.Equal(t, []Category{CategoryRouters}, Classify(m))
	})

	t.Run("cv and clock outputs stack", func(t *testing.T) {
		m := moduleWith(nil, outJack("env", gallery.KindEnvelope), outJack("eoc", gallery.KindTrigger))
		assert.Equal(t, []Category{CategoryModulators, CategoryClock}, Classify(m))
	})

	t.Run("unclassifiable module lands in io-external", func(t *testing.T) {
		m := moduleWith(nil, inJack("cv", gallery.KindCV))
		assert.Equal(t, []Category{CategoryIO}, Classify(m))
	})

	t.Run("category order is fixed", func(t *testing.T) {
		m := moduleWith([]string{"mixer", "oscillator"}, outJack("out", gallery.KindAudio))
		assert.Equal(t, []Category{CategorySources, CategoryRouters}, Classify(m))
	})
}

func demoRig() *rig.Rig {
	mk := func(instance, tag string, jacks ...rig.Jack) rig.Module {
		return rig.Module{Instance: instance, Key: "demo/" + instance, Tags: []string{tag}, Jacks: jacks}
	}
	return &rig.Rig{
		Name: "demo",
		Modules: []rig.Module{
			mk("lfo1", "lfo", outJack("sine", gallery.KindLFO)),
			mk("mix", "mixer", inJack("in", gallery.KindAudio)),
			mk("osc1", "oscillator", outJack("out", gallery.KindAudio)),
			mk("tick", "clock", outJack("clk", gallery.KindClock)),
		},
		Normals: []rig.Normal{{From: "osc1.out", To: "mix.in"}},
	}
}

func TestCounts(t *testing.T) {
	counts := Counts(demoRig())
	assert.Equal(t, 1, counts[CategorySources])
	assert.Equal(t, 1, counts[CategoryModulators])
	assert.Equal(t, 1, counts[CategoryRouters])
	assert.Equal(t, 1, counts[CategoryClock])
	assert.Equal(t, 1, counts[CategoryNormals], "semi-normalled edges count toward normals-internal")
}

func TestMap(t *testing.T) {
	r := demoRig()

	packet, err := Map(r)
	require.NoError(t, err)

	t.Run("carries policy version and rig hash", func(t *testing.T) {
		assert.Equal(t, ScorePolicyVersion, packet.PolicyVersion)
		assert.Len(t, packet.RigHash, 64)
		assert.Equal(t, 4, packet.ModuleCount)
	})

	t.Run("all nine categories serialized", func(t *testing.T) {
		assert.Len(t, packet.Counts, 9)
		assert.Contains(t, packet.Counts, "fx-space")
	})

	t.Run("scores stay in range", func(t *testing.T) {
		for _, s := range []float64{
			packet.Scores.ModulationBudget,
			packet.Scores.RoutingFlexibility,
			packet.Scores.ClockCoherence,
			packet.Scores.ChaosHeadroom,
			packet.Scores.PerformanceDensity,
		} {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	})

	t.Run("pure function of the rig", func(t *testing.T) {
		again, err := Map(demoRig())
		require.NoError(t, err)
		assert.Equal(t, packet, again)
	})

	t.Run("clock coherence clamps at one", func(t *testing.T) {
		clocky := &rig.Rig{Modules: []rig.Module{
			{Instance: "c1", Tags: []string{"clock"}},
		}}
		p, err := Map(clocky)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p.Scores.ClockCoherence)
	})
}
