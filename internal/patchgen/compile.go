package patchgen

import (
	"fmt"
	"sort"

	"github.com/racksmith/racksmith/internal/patch"
	"github.com/racksmith/racksmith/internal/template"
)

// compile turns an accepted role assignment into an immutable patch graph:
// one cable per slot, the two standard macro suggestions, and the phased
// performance timeline.
func compile(rigHash string, tpl template.Template, assignment map[string]string) (*patch.Graph, error) {
	id, err := patch.ComputeID(rigHash, tpl.ID, assignment)
	if err != nil {
		return nil, err
	}

	cables := make([]patch.Cable, 0, len(tpl.Slots))
	for _, s := range tpl.Slots {
		cables = append(cables, patch.Cable{
			From: assignment[s.From],
			To:   assignment[s.To],
			Kind: s.Kind,
		})
	}

	assigned := make(map[string]string, len(assignment))
	for k, v := range assignment {
		assigned[k] = v
	}

	return &patch.Graph{
		ID:         id,
		RigHash:    rigHash,
		TemplateID: tpl.ID,
		Category:   tpl.Category,
		Difficulty: tpl.Difficulty,
		Assignment: assigned,
		Cables:     cables,
		Macros:     macros(cables),
		Timeline:   timeline(tpl, cables),
	}, nil
}

// macros derives the two standard performance controls: drift rides the
// patch's sources, swell rides its destinations.
func macros(cables []patch.Cable) []patch.Macro {
	sources := make([]string, 0, len(cables))
	sinks := make([]string, 0, len(cables))
	seenSrc := make(map[string]bool)
	seenDst := make(map[string]bool)
	for _, c := range cables {
		if !seenSrc[c.From] {
			seenSrc[c.From] = true
			sources = append(sources, c.From)
		}
		if !seenDst[c.To] {
			seenDst[c.To] = true
			sinks = append(sinks, c.To)
		}
	}
	sort.Strings(sources)
	sort.Strings(sinks)

	return []patch.Macro{
		{
			Name:        "drift",
			Description: "slowly vary the source levels against each other",
			Targets:     sources,
		},
		{
			Name:        "swell",
			Description: "open and close the destination inputs together",
			Targets:     sinks,
		},
	}
}

// timeline writes the five-phase performance arc for the patch.
func timeline(tpl template.Template, cables []patch.Cable) []patch.TimelineStep {
	first := ""
	if len(cables) > 0 {
		first = cables[0].From
	}
	return []patch.TimelineStep{
		{Phase: patch.PhasePrep, Action: "zero every level, then seat all cables"},
		{Phase: patch.PhaseThreshold, Action: fmt.Sprintf("raise %s until it just registers", first)},
		{Phase: patch.PhasePeak, Action: fmt.Sprintf("push the %s patch to full intensity", tpl.Category)},
		{Phase: patch.PhaseRelease, Action: "back the drift macro off and let the patch settle"},
		{Phase: patch.PhaseSeal, Action: "fade the swell macro to silence and note the settings"},
	}
}
