package rig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/internal/testutil"
	"github.com/racksmith/racksmith/pkg/gallery"
)

func TestBuild(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.SeedDemoGallery(t, store)
	ctx := context.Background()

	t.Run("resolves every instance against latest revisions", func(t *testing.T) {
		r, err := rig.Build(ctx, store, testutil.ScenarioSpec())
		require.NoError(t, err)
		require.Len(t, r.Modules, 2)

		// Modules are sorted by instance id.
		assert.Equal(t, "mixer", r.Modules[0].Instance)
		assert.Equal(t, "oscillator", r.Modules[1].Instance)
		assert.Equal(t, "demo/mixer", r.Modules[0].Key)
		assert.True(t, gallery.ValidIdentity(r.Modules[0].Revision))
	})

	t.Run("same-type instances never alias jack identity", func(t *testing.T) {
		spec := &rig.Spec{
			Name: "twins",
			Modules: []rig.ModuleRef{
				{ID: "osc1", Key: "demo/osc"},
				{ID: "osc2", Key: "demo/osc"},
			},
		}
		r, err := rig.Build(ctx, store, spec)
		require.NoError(t, err)

		idx := r.JackIndex()
		require.Contains(t, idx, "osc1.out")
		require.Contains(t, idx, "osc2.out")
		assert.NotSame(t, idx["osc1.out"], idx["osc2.out"])
		assert.Equal(t, "osc1", idx["osc1.out"].Module)
		assert.Equal(t, "osc2", idx["osc2.out"].Module)
	})

	t.Run("pinned revision wins over latest", func(t *testing.T) {
		first, err := store.Latest(ctx, "demo/osc")
		require.NoError(t, err)

		corrected := testutil.OscillatorEntry()
		corrected.WidthHP = 12
		_, err = store.Append(ctx, corrected)
		require.NoError(t, err)

		spec := &rig.Spec{
			Name:    "pinned",
			Modules: []rig.ModuleRef{{ID: "osc1", Key: "demo/osc", Revision: first.Identity}},
		}
		r, err := rig.Build(ctx, store, spec)
		require.NoError(t, err)
		assert.Equal(t, first.Identity, r.Modules[0].Revision)
		assert.Equal(t, 8, r.Modules[0].WidthHP)
	})

	t.Run("unknown module key fails NotFound", func(t *testing.T) {
		spec := &rig.Spec{
			Name:    "missing",
			Modules: []rig.ModuleRef{{ID: "ghost", Key: "nobody/nothing"}},
		}
		_, err := rig.Build(ctx, store, spec)
		require.Error(t, err)
		assert.True(t, gallery.IsNotFound(err))
	})

	t.Run("owner index maps jacks to instances", func(t *testing.T) {
		r, err := rig.Build(ctx, store, testutil.ScenarioSpec())
		require.NoError(t, err)
		owners := r.OwnerIndex()
		assert.Equal(t, "oscillator", owners["oscillator.out"])
		assert.Equal(t, "mixer", owners["mixer.mix_out"])
	})
}

func TestRigHashDeterminism(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.SeedDemoGallery(t, store)
	ctx := context.Background()

	r1, err := rig.Build(ctx, store, testutil.DemoSpec())
	require.NoError(t, err)
	r2, err := rig.Build(ctx, store, testutil.DemoSpec())
	require.NoError(t, err)

	h1, err := r1.Hash()
	require.NoError(t, err)
	h2, err := r2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
