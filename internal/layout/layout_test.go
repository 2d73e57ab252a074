package layout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racksmith/racksmith/internal/layout"
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/internal/testutil"
)

func demoCase() layout.Case {
	return layout.Case{Rows: 2, RowWidthHP: 84}
}

func TestSuggest(t *testing.T) {
	r, _ := testutil.BuildDemoRig(t)

	suggestions, err := layout.Suggest(r, demoCase())
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	t.Run("three philosophies in fixed order", func(t *testing.T) {
		assert.Equal(t, layout.PhilosophyBeginner, suggestions[0].Philosophy)
		assert.Equal(t, layout.PhilosophyPerformance, suggestions[1].Philosophy)
		assert.Equal(t, layout.PhilosophyExperimental, suggestions[2].Philosophy)
	})

	t.Run("placements cover every module exactly once", func(t *testing.T) {
		for _, s := range suggestions {
			seen := make(map[string]int)
			for _, p := range s.Placements {
				seen[p.Module]++
			}
			assert.Len(t, seen, len(r.Modules), "%s layout", s.Philosophy)
			for module, n := range seen {
				assert.Equal(t, 1, n, "module %s placed %d times in %s layout", module, n, s.Philosophy)
			}
		}
	})

	t.Run("no row overlap and rows within width", func(t *testing.T) {
		for _, s := range suggestions {
			type span struct{ from, to int }
			rows := make(map[int][]span)
			for _, p := range s.Placements {
				sp := span{p.XOffsetHP, p.XOffsetHP + p.WidthHP}
				assert.LessOrEqual(t, sp.to, demoCase().RowWidthHP, "%s layout", s.Philosophy)
				for _, other := range rows[p.Row] {
					overlap := sp.from < other.to && other.from < sp.to
					assert.False(t, overlap, "%s layout has overlapping modules in row %d", s.Philosophy, p.Row)
				}
				rows[p.Row] = append(rows[p.Row], sp)
			}
		}
	})

	t.Run("scores are in range", func(t *testing.T) {
		for _, s := range suggestions {
			assert.GreaterOrEqual(t, s.Score.Total, 0.0)
			assert.LessOrEqual(t, s.Score.Total, 1.0)
			assert.GreaterOrEqual(t, s.Score.LearningGradient, 0.0)
			assert.LessOrEqual(t, s.Score.LearningGradient, 1.0)
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		again, err := layout.Suggest(r, demoCase())
		require.NoError(t, err)
		assert.Equal(t, suggestions, again)
	})
}

func TestSuggestOverflow(t *testing.T) {
	r, _ := testutil.BuildDemoRig(t)

	t.Run("case too small reports module and width", func(t *testing.T) {
		_, err := layout.Suggest(r, layout.Case{Rows: 1, RowWidthHP: 12})
		require.Error(t, err)
		var overflow *layout.OverflowError
		require.ErrorAs(t, err, &overflow)
		assert.NotEmpty(t, overflow.Module)
		assert.Greater(t, overflow.WidthHP, 0)
	})

	t.Run("module wider than any row overflows", func(t *testing.T) {
		_, err := layout.Suggest(r, layout.Case{Rows: 10, RowWidthHP: 4})
		var overflow *layout.OverflowError
		require.ErrorAs(t, err, &overflow)
	})

	t.Run("invalid case is rejected", func(t *testing.T) {
		_, err := layout.Suggest(r, layout.Case{Rows: 0, RowWidthHP: 84})
		assert.Error(t, err)
	})
}

func TestBeginnerOrdering(t *testing.T) {
	r, _ := testutil.BuildDemoRig(t)

	suggestions, err := layout.Suggest(r, layout.Case{Rows: 1, RowWidthHP: 200})
	require.NoError(t, err)
	beginner := suggestions[0]

	// Sources come before the mixer in a single beginner row. The demo rig
	// has osc1/osc2 (sources) and mix (routers-mix).
	pos := make(map[string]int)
	for _, p := range beginner.Placements {
		pos[p.Module] = p.XOffsetHP
	}
	assert.Less(t, pos["osc1"], pos["mix"])
	assert.Less(t, pos["osc2"], pos["mix"])
	assert.Less(t, pos["osc1"], pos["osc2"], "ties break on instance id")
}

func TestPerformanceCentersTouchModules(t *testing.T) {
	r, _ := testutil.BuildDemoRig(t)

	c := layout.Case{Rows: 1, RowWidthHP: 200}
	suggestions, err := layout.Suggest(r, c)
	require.NoError(t, err)
	performance := suggestions[1]

	var mix, first layout.Placement
	for _, p := range performance.Placements {
		if p.Module == "mix" {
			mix = p
		}
		if p.XOffsetHP == 0 {
			first = p
		}
	}
	assert.NotEqual(t, "mix", first.Module, "touch module should not sit at the row edge")
	assert.Greater(t, mix.XOffsetHP, 0)
}

func TestLayoutTotalityOnTightFit(t *testing.T) {
	// Demo rig widths sum to 40 HP; a 2x24 case leaves little slack for any
	// of the three orderings.
	r, _ := testutil.BuildDemoRig(t)
	suggestions, err := layout.Suggest(r, layout.Case{Rows: 2, RowWidthHP: 24})
	require.NoError(t, err)
	for _, s := range suggestions {
		total := 0
		for _, p := range s.Placements {
			total += p.WidthHP
		}
		assert.Equal(t, 40, total)
	}
}

func TestSingleModuleRig(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.SeedDemoGallery(t, store)
	spec := &rig.Spec{Name: "solo", Modules: []rig.ModuleRef{{ID: "osc1", Key: "demo/osc"}}}
	r, err := rig.Build(context.Background(), store, spec)
	require.NoError(t, err)

	suggestions, err := layout.Suggest(r, demoCase())
	require.NoError(t, err)
	for _, s := range suggestions {
		require.Len(t, s.Placements, 1)
		assert.Equal(t, 0, s.Placements[0].Row)
		assert.Equal(t, 0, s.Placements[0].XOffsetHP)
		assert.Equal(t, 1.0, s.Score.LearningGradient)
	}
}
