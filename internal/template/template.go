// Package template holds the patch template registry: the catalog of
// role-typed cabling archetypes the generator instantiates against a rig.
// Templates are static configuration (built-ins plus optional YAML packs)
// and never depend on any particular rig.
package template

import (
	"fmt"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// Slot is one typed cable in a template: it connects the jack assigned to
// the from-role to the jack assigned to the to-role, carrying the given
// signal kind.
type Slot struct {
	From string             `json:"from" yaml:"from"`
	To   string             `json:"to" yaml:"to"`
	Kind gallery.SignalKind `json:"kind" yaml:"kind"`
}

// RoleConstraint restricts which rig jacks may be assigned to a role:
// the jack must permit the given use (source for "out", destination for
// "in") and carry one of the listed signal kinds.
type RoleConstraint struct {
	Direction gallery.Direction    `json:"direction" yaml:"direction"`
	Kinds     []gallery.SignalKind `json:"kinds" yaml:"kinds"`
}

// Template is a cabling archetype: an ordered list of typed slots over a
// set of constrained roles, tagged with a patch category and a difficulty
// tier used for constraint filtering and curation weighting.
type Template struct {
	ID         string                    `json:"id" yaml:"id"`
	Archetype  string                    `json:"archetype" yaml:"archetype"`
	Category   string                    `json:"category" yaml:"category"`
	Difficulty int                       `json:"difficulty" yaml:"difficulty"`
	Roles      map[string]RoleConstraint `json:"roles" yaml:"roles"`
	Slots      []Slot                    `json:"slots" yaml:"slots"`
}

// MinDifficulty and MaxDifficulty bound the difficulty tiers templates may
// declare. Tier 1 is a first patch; tier 4 assumes comfort with feedback.
const (
	MinDifficulty = 1
	MaxDifficulty = 4
)

// Validate checks the template's structural integrity: every slot must
// reference declared roles, every role constraint must be well formed, and
// the from side of a slot must be an output-capable role (and the to side
// input-capable).
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	if t.Category == "" {
		return fmt.Errorf("template %s: category cannot be empty", t.ID)
	}
	if t.Difficulty < MinDifficulty || t.Difficulty > MaxDifficulty {
		return fmt.Errorf("template %s: difficulty %d out of range [%d,%d]",
			t.ID, t.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if len(t.Slots) == 0 {
		return fmt.Errorf("template %s: must declare at least one slot", t.ID)
	}
	if len(t.Roles) == 0 {
		return fmt.Errorf("template %s: must declare at least one role", t.ID)
	}
	for name, rc := range t.Roles {
		if name == "" {
			return fmt.Errorf("template %s: role name cannot be empty", t.ID)
		}
		if err := rc.Direction.Validate(); err != nil {
			return fmt.Errorf("template %s role %s: %w", t.ID, name, err)
		}
		if len(rc.Kinds) == 0 {
			return fmt.Errorf("template %s role %s: must list at least one signal kind", t.ID, name)
		}
		for _, k := range rc.Kinds {
			if err := k.Validate(); err != nil {
				return fmt.Errorf("template %s role %s: %w", t.ID, name, err)
			}
		}
	}
	for i, s := range t.Slots {
		from, ok := t.Roles[s.From]
		if !ok {
			return fmt.Errorf("template %s slot %d: unknown from-role %q", t.ID, i, s.From)
		}
		to, ok := t.Roles[s.To]
		if !ok {
			return fmt.Errorf("template %s slot %d: unknown to-role %q", t.ID, i, s.To)
		}
		if !from.Direction.PermitsOutput() {
			return fmt.Errorf("template %s slot %d: from-role %q cannot source a cable", t.ID, i, s.From)
		}
		if !to.Direction.PermitsInput() {
			return fmt.Errorf("template %s slot %d: to-role %q cannot receive a cable", t.ID, i, s.To)
		}
		if err := s.Kind.Validate(); err != nil {
			return fmt.Errorf("template %s slot %d: %w", t.ID, i, err)
		}
	}
	return nil
}

// RoleOrder returns the role names in slot-reference order: roles appear in
// the order a depth-first assignment should fill them (from-role before
// to-role, slot by slot), each role once. The generator iterates this order
// so that backtracking is deterministic.
func (t *Template) RoleOrder() []string {
	seen := make(map[string]bool, len(t.Roles))
	order := make([]string, 0, len(t.Roles))
	for _, s := range t.Slots {
		if !seen[s.From] {
			seen[s.From] = true
			order = append(order, s.From)
		}
		if !seen[s.To] {
			seen[s.To] = true
			order = append(order, s.To)
		}
	}
	return order
}
