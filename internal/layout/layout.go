// Package layout packs a canonical rig into case placements under three
// competing philosophies and scores each result. Exactly three suggestions
// are produced per rig: Beginner, Performance, and Experimental.
package layout

import (
	"fmt"

	"github.com/racksmith/racksmith/internal/capability"
	"github.com/racksmith/racksmith/internal/rig"
)

// Philosophy names one of the three placement strategies.
type Philosophy string

const (
	// PhilosophyBeginner orders modules left to right in pedagogical
	// category order, signal flow reading like a textbook.
	PhilosophyBeginner Philosophy = "beginner"

	// PhilosophyPerformance pulls touch-heavy categories toward the row
	// center where hands naturally rest.
	PhilosophyPerformance Philosophy = "performance"

	// PhilosophyExperimental interleaves categories round-robin to invite
	// unusual cable runs.
	PhilosophyExperimental Philosophy = "experimental"
)

// Philosophies lists the three strategies in output order.
var Philosophies = []Philosophy{PhilosophyBeginner, PhilosophyPerformance, PhilosophyExperimental}

// Case describes the physical case a rig must fit into.
type Case struct {
	Rows       int `json:"rows" yaml:"rows"`
	RowWidthHP int `json:"row_width_hp" yaml:"row_width_hp"`
}

// Validate checks the case geometry.
func (c Case) Validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("case must have at least one row, got %d", c.Rows)
	}
	if c.RowWidthHP <= 0 {
		return fmt.Errorf("case row width must be positive, got %d", c.RowWidthHP)
	}
	return nil
}

// Placement is one module's position: row index (top to bottom) and
// horizontal offset in HP from the row's left edge.
type Placement struct {
	Module    string `json:"module"`
	Row       int    `json:"row"`
	XOffsetHP int    `json:"x_offset_hp"`
	WidthHP   int    `json:"width_hp"`
}

// ScoreBreakdown carries the five weighted sub-metrics and their combined
// total. Costs are reported raw; the total combines (1 - cost) terms and
// direct-score terms under the fixed policy weights.
type ScoreBreakdown struct {
	ReachCost        float64 `json:"reach_cost"`
	CableCrossCost   float64 `json:"cable_cross_cost"`
	LearningGradient float64 `json:"learning_gradient"`
	UtilityProximity float64 `json:"utility_proximity"`
	TemplateCoverage float64 `json:"template_coverage"`
	Total            float64 `json:"total"`
}

// Suggestion is one named layout with its placements and score.
type Suggestion struct {
	Philosophy Philosophy     `json:"philosophy"`
	Placements []Placement    `json:"placements"`
	Score      ScoreBreakdown `json:"score"`
}

// OverflowError reports a rig that cannot fit the case, naming the first
// module that failed to place and the width it required.
type OverflowError struct {
	Module     string
	WidthHP    int
	Case       Case
	Philosophy Philosophy
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("case overflow (%s layout): module %s needs %d HP but no row space remains in %dx%d HP",
		e.Philosophy, e.Module, e.WidthHP, e.Case.Rows, e.Case.RowWidthHP)
}

// Suggest produces the three layout suggestions for a rig. Fails with an
// OverflowError if any philosophy cannot place every module.
func Suggest(r *rig.Rig, c Case) ([]Suggestion, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mods := profile(r)
	suggestions := make([]Suggestion, 0, len(Philosophies))
	for _, phil := range Philosophies {
		ordered := order(mods, phil)
		placements, err := pack(ordered, c, phil)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, Suggestion{
			Philosophy: phil,
			Placements: placements,
			Score:      score(ordered, placements, c),
		})
	}
	return suggestions, nil
}

// moduleProfile is the layout-relevant view of one module.
type moduleProfile struct {
	instance   string
	widthHP    int
	categories []capability.Category
	pedIndex   int // index of primary category in pedagogical order
	touch      bool
}

func profile(r *rig.Rig) []moduleProfile {
	mods := make([]moduleProfile, 0, len(r.Modules))
	for i := range r.Modules {
		m := &r.Modules[i]
		cats := capability.Classify(m)
		mods = append(mods, moduleProfile{
			instance:   m.Instance,
			widthHP:    m.WidthHP,
			categories: cats,
			pedIndex:   pedagogicalIndex(cats),
			touch:      isTouchHeavy(cats),
		})
	}
	return mods
}
