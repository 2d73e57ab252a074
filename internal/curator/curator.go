// Package curator turns validated patch candidates into the final library:
// it deduplicates identical topologies, ranks what remains, and enforces
// the keep caps. Every step is deterministic for fixed inputs.
package curator

import (
	"sort"

	"github.com/racksmith/racksmith/internal/patch"
)

// Candidate pairs a generated graph with its validation report.
type Candidate struct {
	Graph  *patch.Graph
	Report *patch.Report
}

// Options control curation. Caps of zero or less are unlimited; weight
// maps may be nil (every multiplier defaults to 1).
type Options struct {
	MaxTotal       int
	MaxPerCategory int
	MaxPerTemplate int

	// DropRunaway and DropSilence exclude flagged candidates outright
	// instead of letting the stability penalty rank them down.
	DropRunaway bool
	DropSilence bool

	CategoryWeights   map[string]float64
	DifficultyWeights map[int]float64
}

// Curate builds the library for one rig. Candidates must arrive in
// generation order: dedup keeps the first occurrence of each topology
// signature. Owners maps canonical jack ids to instance ids (for the
// coherence tie-break).
func Curate(rigHash string, candidates []Candidate, owners map[string]string, opts Options) *patch.Library {
	cards := make([]patch.Card, 0, len(candidates))
	seen := make(map[string]bool)
	for _, c := range candidates {
		if opts.DropRunaway && len(c.Report.RunawayRisk) > 0 {
			continue
		}
		if opts.DropSilence && len(c.Report.SilenceRisk) > 0 {
			continue
		}
		sig := patch.TopologySignature(c.Graph.Cables)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		cards = append(cards, patch.Card{
			Graph:     *c.Graph,
			Report:    *c.Report,
			Signature: sig,
			Coherence: c.Graph.Coherence(owners),
			Score:     c.Report.Stability * weight(opts, c.Graph),
		})
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Score != cards[j].Score {
			return cards[i].Score > cards[j].Score
		}
		if cards[i].Coherence != cards[j].Coherence {
			return cards[i].Coherence > cards[j].Coherence
		}
		if len(cards[i].Graph.Cables) != len(cards[j].Graph.Cables) {
			return len(cards[i].Graph.Cables) < len(cards[j].Graph.Cables)
		}
		return cards[i].Graph.ID < cards[j].Graph.ID
	})

	kept := make([]patch.Card, 0, len(cards))
	byCategory := make(map[string]int)
	byTemplate := make(map[string]int)
	for _, card := range cards {
		if opts.MaxTotal > 0 && len(kept) >= opts.MaxTotal {
			break
		}
		if opts.MaxPerCategory > 0 && byCategory[card.Graph.Category] >= opts.MaxPerCategory {
			continue
		}
		if opts.MaxPerTemplate > 0 && byTemplate[card.Graph.TemplateID] >= opts.MaxPerTemplate {
			continue
		}
		byCategory[card.Graph.Category]++
		byTemplate[card.Graph.TemplateID]++
		kept = append(kept, card)
	}

	return &patch.Library{RigHash: rigHash, Items: kept}
}

// weight multiplies the user's category and difficulty multipliers for a
// graph; absent entries count as 1.
func weight(opts Options, g *patch.Graph) float64 {
	w := 1.0
	if v, ok := opts.CategoryWeights[g.Category]; ok {
		w *= v
	}
	if v, ok := opts.DifficultyWeights[g.Difficulty]; ok {
		w *= v
	}
	return w
}
