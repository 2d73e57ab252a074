// Package patchval checks compiled patch graphs against the rig they were
// generated for. Findings (illegal connections, silence risk, runaway risk)
// are data carried in the report, never errors: the curator decides whether
// a flagged graph survives.
package patchval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/racksmith/racksmith/internal/patch"
	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Stability penalty weights. Versioned policy: library ordering depends on
// these values, so they are never adjusted silently.
const (
	penaltyIllegal = 0.25 // per illegal finding
	illegalCap     = 0.75 // total illegal penalty never exceeds this
	penaltySilence = 0.15
	penaltyRunaway = 0.25
)

// cvFamily kinds are mutually patchable control signals.
var cvFamily = map[gallery.SignalKind]bool{
	gallery.KindCV:       true,
	gallery.KindLFO:      true,
	gallery.KindEnvelope: true,
	gallery.KindRandom:   true,
	gallery.KindPitchCV:  true,
}

// pulseFamily kinds are mutually patchable timing signals.
var pulseFamily = map[gallery.SignalKind]bool{
	gallery.KindClock:   true,
	gallery.KindGate:    true,
	gallery.KindTrigger: true,
}

// Compatible reports whether a signal of kind src may legally drive a jack
// of kind dst. The table is deliberately asymmetric: the wildcard
// "cv-or-audio" accepts anything as a destination, but a wildcard source is
// only legal into another wildcard; inputs are more permissive than
// outputs.
func Compatible(src, dst gallery.SignalKind) bool {
	if dst == gallery.KindCVOrAudio {
		return true
	}
	if src == gallery.KindAudio && dst == gallery.KindAudio {
		return true
	}
	if cvFamily[src] && cvFamily[dst] {
		return true
	}
	if pulseFamily[src] && pulseFamily[dst] {
		return true
	}
	return false
}

// Validate inspects every cable of the graph against the rig and returns
// the report. The graph and rig are never mutated.
func Validate(r *rig.Rig, g *patch.Graph) *patch.Report {
	jacks := r.JackIndex()
	owners := r.OwnerIndex()
	report := &patch.Report{
		Illegal:     []string{},
		SilenceRisk: []string{},
		RunawayRisk: []string{},
	}

	audioPath := false
	for _, c := range g.Cables {
		src, srcOK := jacks[c.From]
		if !srcOK {
			report.Illegal = append(report.Illegal,
				fmt.Sprintf("cable %s -> %s: unknown source jack %q", c.From, c.To, c.From))
		}
		dst, dstOK := jacks[c.To]
		if !dstOK {
			report.Illegal = append(report.Illegal,
				fmt.Sprintf("cable %s -> %s: unknown destination jack %q", c.From, c.To, c.To))
		}
		if !srcOK || !dstOK {
			continue
		}

		if !src.Direction.PermitsOutput() {
			report.Illegal = append(report.Illegal,
				fmt.Sprintf("cable %s -> %s: %s is not an output", c.From, c.To, c.From))
			continue
		}
		if !dst.Direction.PermitsInput() {
			report.Illegal = append(report.Illegal,
				fmt.Sprintf("cable %s -> %s: %s is not an input", c.From, c.To, c.To))
			continue
		}
		if !Compatible(src.Contract.Kind, dst.Contract.Kind) {
			report.Illegal = append(report.Illegal,
				fmt.Sprintf("cable %s -> %s: %s signal cannot drive a %s jack",
					c.From, c.To, src.Contract.Kind, dst.Contract.Kind))
			continue
		}

		if src.Contract.Kind == gallery.KindAudio &&
			(dst.Contract.Kind == gallery.KindAudio || dst.Contract.Kind == gallery.KindCVOrAudio) {
			audioPath = true
		}
	}

	if !audioPath {
		report.SilenceRisk = append(report.SilenceRisk,
			"no audio source reaches an audio or wildcard input")
	}

	if cycle := cycleModules(g, owners); len(cycle) > 0 {
		report.RunawayRisk = append(report.RunawayRisk,
			fmt.Sprintf("feedback loop through %s", joinModules(cycle)))
	}

	report.Stability = stability(report)
	return report
}

// stability applies the capped per-reason penalties and clamps to [0,1].
func stability(r *patch.Report) float64 {
	s := 1.0
	illegal := penaltyIllegal * float64(len(r.Illegal))
	if illegal > illegalCap {
		illegal = illegalCap
	}
	s -= illegal
	if len(r.SilenceRisk) > 0 {
		s -= penaltySilence
	}
	if len(r.RunawayRisk) > 0 {
		s -= penaltyRunaway
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func joinModules(mods []string) string {
	sort.Strings(mods)
	return strings.Join(mods, ", ")
}
