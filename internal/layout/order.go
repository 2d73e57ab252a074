package layout

import (
	"sort"

	"github.com/racksmith/racksmith/internal/capability"
)

// pedagogicalOrder is the category sequence a beginner reads a rack in:
// sound is born, shaped, articulated, then routed outward. Policy constant.
var pedagogicalOrder = []capability.Category{
	capability.CategorySources,
	capability.CategoryShapers,
	capability.CategoryModulators,
	capability.CategoryControllers,
	capability.CategoryClock,
	capability.CategoryRouters,
	capability.CategoryFX,
	capability.CategoryIO,
	capability.CategoryNormals,
}

// touchHeavy marks the categories a performer keeps under their hands.
var touchHeavy = map[capability.Category]bool{
	capability.CategoryControllers: true,
	capability.CategoryRouters:     true,
}

// pedagogicalIndex returns the position of a module's primary category in
// the pedagogical order. Modules always have at least one category.
func pedagogicalIndex(cats []capability.Category) int {
	best := len(pedagogicalOrder)
	for _, c := range cats {
		for i, p := range pedagogicalOrder {
			if c == p && i < best {
				best = i
			}
		}
	}
	return best
}

func isTouchHeavy(cats []capability.Category) bool {
	for _, c := range cats {
		if touchHeavy[c] {
			return true
		}
	}
	return false
}

// order arranges modules deterministically for one philosophy. Every
// ordering ties break on instance id so identical rigs always produce
// identical sequences.
func order(mods []moduleProfile, phil Philosophy) []moduleProfile {
	ordered := append([]moduleProfile(nil), mods...)
	sortPedagogical(ordered)

	switch phil {
	case PhilosophyBeginner:
		return ordered
	case PhilosophyPerformance:
		return centerTouch(ordered)
	case PhilosophyExperimental:
		return roundRobin(ordered)
	default:
		return ordered
	}
}

func sortPedagogical(mods []moduleProfile) {
	sort.Slice(mods, func(i, j int) bool {
		if mods[i].pedIndex != mods[j].pedIndex {
			return mods[i].pedIndex < mods[j].pedIndex
		}
		return mods[i].instance < mods[j].instance
	})
}

// centerTouch keeps the pedagogical order for non-touch modules but splices
// the touch-heavy ones into the middle of the sequence, which first-fit
// packing then places near the row center.
func centerTouch(mods []moduleProfile) []moduleProfile {
	var touch, rest []moduleProfile
	for _, m := range mods {
		if m.touch {
			touch = append(touch, m)
		} else {
			rest = append(rest, m)
		}
	}
	half := len(rest) / 2
	out := make([]moduleProfile, 0, len(mods))
	out = append(out, rest[:half]...)
	out = append(out, touch...)
	out = append(out, rest[half:]...)
	return out
}

// roundRobin deals one module from each category bucket in pedagogical
// order, cycling until every bucket is drained.
func roundRobin(mods []moduleProfile) []moduleProfile {
	buckets := make([][]moduleProfile, len(pedagogicalOrder)+1)
	for _, m := range mods {
		buckets[m.pedIndex] = append(buckets[m.pedIndex], m)
	}
	out := make([]moduleProfile, 0, len(mods))
	for len(out) < len(mods) {
		for i := range buckets {
			if len(buckets[i]) > 0 {
				out = append(out, buckets[i][0])
				buckets[i] = buckets[i][1:]
			}
		}
	}
	return out
}
