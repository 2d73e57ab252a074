package layout

import (
	"math"
	"sort"

	"github.com/racksmith/racksmith/internal/capability"
)

// Sub-metric combination weights, policy constants. Cost metrics contribute
// as (1 - cost); the rest contribute directly.
const (
	weightReach    = 0.25
	weightCross    = 0.20
	weightGradient = 0.20
	weightUtility  = 0.15
	weightCoverage = 0.20
)

// crossPairs lists the category pairs that usually end up cabled together;
// splitting such a pair across rows costs cable crossings.
var crossPairs = [][2]capability.Category{
	{capability.CategorySources, capability.CategoryShapers},
	{capability.CategorySources, capability.CategoryRouters},
	{capability.CategoryShapers, capability.CategoryRouters},
	{capability.CategoryModulators, capability.CategorySources},
	{capability.CategoryModulators, capability.CategoryShapers},
	{capability.CategoryClock, capability.CategoryModulators},
	{capability.CategoryClock, capability.CategoryControllers},
}

// utilityNeighbors are the categories a routing module wants close by.
var utilityNeighbors = map[capability.Category]bool{
	capability.CategorySources: true,
	capability.CategoryShapers: true,
	capability.CategoryFX:      true,
}

// coverageNeeds are the category pairs the built-in patch archetypes draw
// on; a layout that keeps each pair in one row is easier to patch from print.
var coverageNeeds = [][2]capability.Category{
	{capability.CategorySources, capability.CategoryShapers},
	{capability.CategorySources, capability.CategoryRouters},
	{capability.CategoryModulators, capability.CategoryShapers},
	{capability.CategoryClock, capability.CategoryModulators},
}

// score computes the five sub-metrics for one packed layout.
// ordered and placements are index-aligned.
func score(ordered []moduleProfile, placements []Placement, c Case) ScoreBreakdown {
	b := ScoreBreakdown{
		ReachCost:        reachCost(ordered, placements, c),
		CableCrossCost:   cableCrossCost(ordered, placements, c),
		LearningGradient: learningGradient(ordered, placements),
		UtilityProximity: utilityProximity(ordered, placements, c),
		TemplateCoverage: templateCoverage(ordered, placements),
	}
	b.Total = weightReach*(1-b.ReachCost) +
		weightCross*(1-b.CableCrossCost) +
		weightGradient*b.LearningGradient +
		weightUtility*b.UtilityProximity +
		weightCoverage*b.TemplateCoverage
	return b
}

// reachCost measures how far touch-heavy modules sit from the case sweet
// spot: horizontally the row center, vertically the middle row.
func reachCost(ordered []moduleProfile, placements []Placement, c Case) float64 {
	var total float64
	var count int
	for i, m := range ordered {
		if !m.touch {
			continue
		}
		p := placements[i]
		center := float64(p.XOffsetHP) + float64(p.WidthHP)/2
		horiz := math.Abs(center-float64(c.RowWidthHP)/2) / (float64(c.RowWidthHP) / 2)
		var vert float64
		if c.Rows > 1 {
			mid := float64(c.Rows-1) / 2
			vert = math.Abs(float64(p.Row)-mid) / mid
		}
		total += 0.6*horiz + 0.4*vert
		count++
	}
	if count == 0 {
		return 0
	}
	return clamp01(total / float64(count))
}

// cableCrossCost charges every usually-connected module pair for the rows
// separating it.
func cableCrossCost(ordered []moduleProfile, placements []Placement, c Case) float64 {
	if c.Rows <= 1 {
		return 0
	}
	var total float64
	var pairs int
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			if !categoriesCross(ordered[i].categories, ordered[j].categories) {
				continue
			}
			pairs++
			dist := math.Abs(float64(placements[i].Row - placements[j].Row))
			total += dist / float64(c.Rows-1)
		}
	}
	if pairs == 0 {
		return 0
	}
	return clamp01(total / float64(pairs))
}

func categoriesCross(a, b []capability.Category) bool {
	for _, pair := range crossPairs {
		if (contains(a, pair[0]) && contains(b, pair[1])) ||
			(contains(a, pair[1]) && contains(b, pair[0])) {
			return true
		}
	}
	return false
}

// learningGradient rewards reading order (row by row, left to right) that
// never steps backwards through the pedagogical sequence.
func learningGradient(ordered []moduleProfile, placements []Placement) float64 {
	if len(ordered) <= 1 {
		return 1
	}
	type placed struct {
		pedIndex int
		row, x   int
	}
	seq := make([]placed, len(ordered))
	for i, m := range ordered {
		seq[i] = placed{pedIndex: m.pedIndex, row: placements[i].Row, x: placements[i].XOffsetHP}
	}
	// Reading order.
	sort.Slice(seq, func(i, j int) bool {
		if seq[i].row != seq[j].row {
			return seq[i].row < seq[j].row
		}
		return seq[i].x < seq[j].x
	})
	monotone := 0
	for i := 1; i < len(seq); i++ {
		if seq[i].pedIndex >= seq[i-1].pedIndex {
			monotone++
		}
	}
	return float64(monotone) / float64(len(seq)-1)
}

// utilityProximity scores how close each routing module sits to its usual
// neighbors. No routing modules means nothing can be misplaced.
func utilityProximity(ordered []moduleProfile, placements []Placement, c Case) float64 {
	var total float64
	var count int
	for i, m := range ordered {
		if !contains(m.categories, capability.CategoryRouters) {
			continue
		}
		count++
		best := math.MaxFloat64
		for j, other := range ordered {
			if i == j || !hasNeighborCategory(other.categories) {
				continue
			}
			d := placementDistance(placements[i], placements[j], c)
			if d < best {
				best = d
			}
		}
		if best == math.MaxFloat64 {
			total += 0.5
			continue
		}
		total += 1 - clamp01(best)
	}
	if count == 0 {
		return 1
	}
	return clamp01(total / float64(count))
}

func hasNeighborCategory(cats []capability.Category) bool {
	for _, c := range cats {
		if utilityNeighbors[c] {
			return true
		}
	}
	return false
}

// placementDistance is a normalized case distance: full rows count as the
// dominant term, horizontal offset as the minor one.
func placementDistance(a, b Placement, c Case) float64 {
	rowDist := math.Abs(float64(a.Row - b.Row))
	ca := float64(a.XOffsetHP) + float64(a.WidthHP)/2
	cb := float64(b.XOffsetHP) + float64(b.WidthHP)/2
	horiz := math.Abs(ca-cb) / float64(c.RowWidthHP)
	denom := float64(c.Rows)
	return (rowDist + horiz) / denom
}

// templateCoverage proxies how many built-in archetypes the layout serves:
// full credit when a needed category pair shares a row, half when it is
// split, nothing when the rig lacks it.
func templateCoverage(ordered []moduleProfile, placements []Placement) float64 {
	var total float64
	for _, need := range coverageNeeds {
		bestRows := -1
		for i := range ordered {
			if !contains(ordered[i].categories, need[0]) {
				continue
			}
			for j := range ordered {
				if i == j || !contains(ordered[j].categories, need[1]) {
					continue
				}
				dist := placements[i].Row - placements[j].Row
				if dist < 0 {
					dist = -dist
				}
				if bestRows == -1 || dist < bestRows {
					bestRows = dist
				}
			}
		}
		switch {
		case bestRows == 0:
			total += 1
		case bestRows > 0:
			total += 0.5
		}
	}
	return total / float64(len(coverageNeeds))
}

func contains(cats []capability.Category, want capability.Category) bool {
	for _, c := range cats {
		if c == want {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
