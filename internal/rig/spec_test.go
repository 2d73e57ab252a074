package rig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specFixture() *Spec {
	return &Spec{
		Name: "fixture",
		Modules: []ModuleRef{
			{ID: "osc1", Key: "demo/osc"},
			{ID: "mix", Key: "demo/mixer"},
		},
		Normals: []Normal{{From: "osc1.out", To: "mix.in"}},
	}
}

func TestSpecValidate(t *testing.T) {
	t.Run("accepts valid spec", func(t *testing.T) {
		require.NoError(t, specFixture().Validate())
	})

	t.Run("rejects empty module list", func(t *testing.T) {
		s := &Spec{Name: "empty"}
		assert.ErrorContains(t, s.Validate(), "at least one module")
	})

	t.Run("rejects duplicate instance ids", func(t *testing.T) {
		s := specFixture()
		s.Modules[1].ID = "osc1"
		assert.ErrorContains(t, s.Validate(), "duplicate instance id")
	})

	t.Run("rejects uppercase instance id", func(t *testing.T) {
		s := specFixture()
		s.Modules[0].ID = "Osc1"
		assert.ErrorContains(t, s.Validate(), "invalid instance id")
	})

	t.Run("rejects malformed module key", func(t *testing.T) {
		s := specFixture()
		s.Modules[0].Key = "no-slash"
		assert.ErrorContains(t, s.Validate(), "invalid module key")
	})

	t.Run("rejects malformed pinned revision", func(t *testing.T) {
		s := specFixture()
		s.Modules[0].Revision = "zz"
		assert.ErrorContains(t, s.Validate(), "invalid pinned revision")
	})

	t.Run("rejects normal with unknown instance", func(t *testing.T) {
		s := specFixture()
		s.Normals = []Normal{{From: "ghost.out", To: "mix.in"}}
		assert.ErrorContains(t, s.Validate(), "unknown instance")
	})

	t.Run("rejects normal without dot", func(t *testing.T) {
		s := specFixture()
		s.Normals = []Normal{{From: "osc1", To: "mix.in"}}
		assert.ErrorContains(t, s.Validate(), "invalid normal endpoint")
	})
}

func TestSplitJackID(t *testing.T) {
	instance, jack, ok := SplitJackID("osc1.out")
	require.True(t, ok)
	assert.Equal(t, "osc1", instance)
	assert.Equal(t, "out", jack)

	// Only the first dot separates instance from jack.
	instance, jack, ok = SplitJackID("osc1.out.b")
	require.True(t, ok)
	assert.Equal(t, "osc1", instance)
	assert.Equal(t, "out.b", jack)

	for _, bad := range []string{"", "osc1", ".out", "osc1."} {
		_, _, ok := SplitJackID(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}

func TestLoadSpec(t *testing.T) {
	t.Run("loads valid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rig.yml")
		content := `name: test-rig
modules:
  - id: osc1
    key: demo/osc
  - id: mix
    key: demo/mixer
normals:
  - from: osc1.out
    to: mix.in
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		spec, err := LoadSpec(path)
		require.NoError(t, err)
		assert.Equal(t, "test-rig", spec.Name)
		require.Len(t, spec.Modules, 2)
		assert.Equal(t, "demo/osc", spec.Modules[0].Key)
		require.Len(t, spec.Normals, 1)
	})

	t.Run("rejects invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rig.yml")
		require.NoError(t, os.WriteFile(path, []byte("modules: {not: a list}"), 0644))
		_, err := LoadSpec(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}
