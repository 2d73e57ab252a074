// Package patch defines the patch artifacts the pipeline produces: concrete
// cable graphs compiled from a template assignment, their validation
// reports, and the curated library handed to rendering.
package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/racksmith/racksmith/pkg/canon"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Cable is one patched connection between two canonical jack ids.
type Cable struct {
	From string             `json:"from"`
	To   string             `json:"to"`
	Kind gallery.SignalKind `json:"kind"`
}

// Macro is a suggested performance control over the patch. Targets are
// canonical jack ids the player rides while the patch runs.
type Macro struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Targets     []string `json:"targets,omitempty"`
}

// Phase names one stage of a patch's suggested arc.
type Phase string

const (
	PhasePrep      Phase = "prep"
	PhaseThreshold Phase = "threshold"
	PhasePeak      Phase = "peak"
	PhaseRelease   Phase = "release"
	PhaseSeal      Phase = "seal"
)

// Phases is the fixed five-phase timeline order.
var Phases = []Phase{PhasePrep, PhaseThreshold, PhasePeak, PhaseRelease, PhaseSeal}

// TimelineStep pairs a phase with what the player does during it.
type TimelineStep struct {
	Phase  Phase  `json:"phase"`
	Action string `json:"action"`
}

// Graph is one compiled patch: the cables realizing a template assignment
// on a specific rig, plus the macro and timeline suggestions. Graphs are
// immutable once compiled; the id is a content hash.
type Graph struct {
	ID         string            `json:"id"`
	RigHash    string            `json:"rig_hash"`
	TemplateID string            `json:"template_id"`
	Category   string            `json:"category"`
	Difficulty int               `json:"difficulty"`
	Assignment map[string]string `json:"assignment"` // role -> canonical jack id
	Cables     []Cable           `json:"cables"`
	Macros     []Macro           `json:"macros"`
	Timeline   []TimelineStep    `json:"timeline"`
}

// identitySeed is the hashed content of a graph id. Only the fields that
// determine the topology participate; macros and timeline are derived.
type identitySeed struct {
	RigHash    string            `json:"rig_hash"`
	TemplateID string            `json:"template_id"`
	Assignment map[string]string `json:"assignment"`
}

// ComputeID derives a graph's content id from the rig, template and role
// assignment. Identical assignments always hash identically.
func ComputeID(rigHash, templateID string, assignment map[string]string) (string, error) {
	return canon.Hash(identitySeed{
		RigHash:    rigHash,
		TemplateID: templateID,
		Assignment: assignment,
	})
}

// Modules returns the distinct instance ids touched by the graph's cables,
// sorted. Ownership is resolved through owners (canonical jack id ->
// instance id); jacks missing from owners are skipped.
func (g *Graph) Modules(owners map[string]string) []string {
	seen := make(map[string]bool)
	for _, c := range g.Cables {
		if m, ok := owners[c.From]; ok {
			seen[m] = true
		}
		if m, ok := owners[c.To]; ok {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Coherence measures how tightly the patch focuses its cabling: cables per
// distinct module touched. Denser graphs read as more intentional and win
// ties during curation.
func (g *Graph) Coherence(owners map[string]string) float64 {
	mods := g.Modules(owners)
	if len(mods) == 0 {
		return 0
	}
	return float64(len(g.Cables)) / float64(len(mods))
}

// TopologySignature normalizes a cable list to a canonical string: one
// "from>to:kind" token per cable, sorted and joined. Two graphs with the
// same signature wire the rig identically regardless of which template or
// role names produced them.
func TopologySignature(cables []Cable) string {
	tokens := make([]string, 0, len(cables))
	for _, c := range cables {
		tokens = append(tokens, fmt.Sprintf("%s>%s:%s", c.From, c.To, c.Kind))
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "|")
}

// Report is the validator's verdict on one graph. Findings are data, not
// errors: a graph with findings stays in the candidate set until the
// curator's drop flags say otherwise.
type Report struct {
	Illegal     []string `json:"illegal"`
	SilenceRisk []string `json:"silence_risk"`
	RunawayRisk []string `json:"runaway_risk"`
	Stability   float64  `json:"stability"`
}

// Clean reports whether the graph validated with no findings at all.
func (r *Report) Clean() bool {
	return len(r.Illegal) == 0 && len(r.SilenceRisk) == 0 && len(r.RunawayRisk) == 0
}

// Card is one curated library item: a graph, its validation report, and
// the curation metadata that ranked it.
type Card struct {
	Graph     Graph   `json:"graph"`
	Report    Report  `json:"report"`
	Signature string  `json:"signature"`
	Coherence float64 `json:"coherence"`
	Score     float64 `json:"score"`
}

// Library is the curated patch set for one rig.
type Library struct {
	RigHash string `json:"rig_hash"`
	Items   []Card `json:"items"`
}

// Hash returns the library's canonical content hash.
func (l *Library) Hash() (string, error) {
	return canon.Hash(l)
}
