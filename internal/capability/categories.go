// Package capability classifies rig modules into capability categories and
// derives the rig's aggregate metrics packet. The category set, the tag
// mapping, and the score formulas are versioned policy: downstream layout
// and curation stages depend on their stability, so changes require a new
// policy version, never a silent edit.
package capability

import (
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Category is one of the nine capability categories.
type Category string

const (
	CategorySources     Category = "sources"
	CategoryShapers     Category = "shapers"
	CategoryControllers Category = "controllers"
	CategoryModulators  Category = "modulators"
	CategoryRouters     Category = "routers-mix"
	CategoryClock       Category = "clock-domain"
	CategoryFX          Category = "fx-space"
	CategoryIO          Category = "io-external"
	CategoryNormals     Category = "normals-internal"
)

// Categories lists every category in fixed policy order.
var Categories = []Category{
	CategorySources,
	CategoryShapers,
	CategoryControllers,
	CategoryModulators,
	CategoryRouters,
	CategoryClock,
	CategoryFX,
	CategoryIO,
	CategoryNormals,
}

// tagCategories maps documented module/mode tags to categories. Tags are the
// primary classification signal; jack kinds are only a fallback.
var tagCategories = map[string]Category{
	"source":      CategorySources,
	"oscillator":  CategorySources,
	"noise":       CategorySources,
	"sampler":     CategorySources,
	"filter":      CategoryShapers,
	"waveshaper":  CategoryShapers,
	"wavefolder":  CategoryShapers,
	"vca":         CategoryShapers,
	"controller":  CategoryControllers,
	"keyboard":    CategoryControllers,
	"touch":       CategoryControllers,
	"joystick":    CategoryControllers,
	"modulator":   CategoryModulators,
	"lfo":         CategoryModulators,
	"envelope":    CategoryModulators,
	"random":      CategoryModulators,
	"mixer":       CategoryRouters,
	"router":      CategoryRouters,
	"matrix":      CategoryRouters,
	"switch":      CategoryRouters,
	"mult":        CategoryRouters,
	"clock":       CategoryClock,
	"sequencer":   CategoryClock,
	"divider":     CategoryClock,
	"quantizer":   CategoryClock,
	"reverb":      CategoryFX,
	"delay":       CategoryFX,
	"fx":          CategoryFX,
	"granular":    CategoryFX,
	"interface":   CategoryIO,
	"io":          CategoryIO,
	"midi":        CategoryIO,
	"output":      CategoryIO,
	"normalled":   CategoryNormals,
	"semi-normal": CategoryNormals,
}

var cvFamily = map[gallery.SignalKind]bool{
	gallery.KindCV:       true,
	gallery.KindLFO:      true,
	gallery.KindEnvelope: true,
	gallery.KindRandom:   true,
	gallery.KindPitchCV:  true,
}

var clockFamily = map[gallery.SignalKind]bool{
	gallery.KindClock:   true,
	gallery.KindGate:    true,
	gallery.KindTrigger: true,
}

// Classify assigns a module one or more categories. Explicit tags on the
// module and its modes win; when no tag matches, categories are derived from
// the module's jack signal kinds. A module that matches nothing falls back to
// io-external.
func Classify(m *rig.Module) []Category {
	found := make(map[Category]bool)

	for _, tag := range m.Tags {
		if c, ok := tagCategories[tag]; ok {
			found[c] = true
		}
	}
	for _, mode := range m.Modes {
		for _, tag := range mode.Tags {
			if c, ok := tagCategories[tag]; ok {
				found[c] = true
			}
		}
	}

	if len(found) == 0 {
		classifyFromJacks(m, found)
	}
	if len(found) == 0 {
		found[CategoryIO] = true
	}

	// Fixed policy order keeps classification output deterministic.
	var cats []Category
	for _, c := range Categories {
		if found[c] {
			cats = append(cats, c)
		}
	}
	return cats
}

func classifyFromJacks(m *rig.Module, found map[Category]bool) {
	var audioIns, audioOuts, cvOuts, clockOuts int
	for _, j := range m.Jacks {
		kind := j.Contract.Kind
		if j.Direction.PermitsInput() && (kind == gallery.KindAudio || kind == gallery.KindCVOrAudio) {
			audioIns++
		}
		if j.Direction.PermitsOutput() {
			switch {
			case kind == gallery.KindAudio:
				audioOuts++
			case cvFamily[kind]:
				cvOuts++
			case clockFamily[kind]:
				clockOuts++
			}
		}
	}

	switch {
	case audioIns >= 2 && audioOuts >= 1:
		found[CategoryRouters] = true
	case audioIns >= 1 && audioOuts >= 1:
		found[CategoryShapers] = true
	case audioOuts >= 1:
		found[CategorySources] = true
	}
	if cvOuts >= 1 {
		found[CategoryModulators] = true
	}
	if clockOuts >= 1 {
		found[CategoryClock] = true
	}
}

// Counts tallies category membership across the rig. A module belonging to
// several categories counts once in each.
func Counts(r *rig.Rig) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for i := range r.Modules {
		for _, c := range Classify(&r.Modules[i]) {
			counts[c]++
		}
	}
	if len(r.Normals) > 0 {
		counts[CategoryNormals] += len(r.Normals)
	}
	return counts
}

// fullCounts renders counts with every category present, so canonical
// serialization always carries all nine keys.
func fullCounts(counts map[Category]int) map[string]int {
	out := make(map[string]int, len(Categories))
	for _, c := range Categories {
		out[string(c)] = counts[c]
	}
	return out
}
