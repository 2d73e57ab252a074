// Package patchgen expands patch templates against a rig: a capped
// exhaustive backtracking search assigns rig jacks to template roles and
// compiles each accepted assignment into a patch graph.
package patchgen

import (
	"fmt"

	"github.com/racksmith/racksmith/internal/patch"
	"github.com/racksmith/racksmith/internal/template"
)

// PostFilter inspects a complete role assignment before it is compiled.
// Returning false drops the assignment silently.
type PostFilter func(tpl template.Template, assignment map[string]string) bool

// Options bound one generation call.
type Options struct {
	// CandidateCap stops the search once this many assignments have been
	// accepted. Zero or negative means no candidates.
	CandidateCap int

	// MaxCables skips templates declaring more slots than this. Zero means
	// no limit.
	MaxCables int

	// PostFilter, when set, vets complete assignments.
	PostFilter PostFilter
}

// frame is one node of the explicit depth-first worklist: the next role to
// fill plus the assignment so far. Assignment and used maps are copied on
// push so sibling branches never share state.
type frame struct {
	roleIdx    int
	assignment map[string]string
	used       map[string]bool
}

// Generate runs the backtracking search for one template. Roles are filled
// in slot-reference order; bucket candidates are tried in lexicographic
// jack-id order; each jack may be claimed by at most one role. The search
// is depth-first so the first accepted assignments are the
// lexicographically earliest, independent of map iteration order.
func Generate(rigHash string, tpl template.Template, buckets *template.Buckets, opts Options) ([]*patch.Graph, error) {
	if opts.CandidateCap <= 0 {
		return nil, nil
	}
	if opts.MaxCables > 0 && len(tpl.Slots) > opts.MaxCables {
		return nil, nil
	}

	roles := tpl.RoleOrder()
	candidates := make([][]string, len(roles))
	for i, role := range roles {
		candidates[i] = buckets.Candidates(tpl.Roles[role])
		if len(candidates[i]) == 0 {
			return nil, nil
		}
	}

	var graphs []*patch.Graph
	stack := []frame{{
		roleIdx:    0,
		assignment: map[string]string{},
		used:       map[string]bool{},
	}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.roleIdx == len(roles) {
			if opts.PostFilter != nil && !opts.PostFilter(tpl, top.assignment) {
				continue
			}
			g, err := compile(rigHash, tpl, top.assignment)
			if err != nil {
				return nil, fmt.Errorf("failed to compile %s assignment: %w", tpl.ID, err)
			}
			graphs = append(graphs, g)
			if len(graphs) >= opts.CandidateCap {
				return graphs, nil
			}
			continue
		}

		role := roles[top.roleIdx]
		pool := candidates[top.roleIdx]
		// Push in reverse so the LIFO pops the lexicographically first
		// candidate next.
		for i := len(pool) - 1; i >= 0; i-- {
			jack := pool[i]
			if top.used[jack] {
				continue
			}
			next := frame{
				roleIdx:    top.roleIdx + 1,
				assignment: make(map[string]string, len(top.assignment)+1),
				used:       make(map[string]bool, len(top.used)+1),
			}
			for k, v := range top.assignment {
				next.assignment[k] = v
			}
			for k := range top.used {
				next.used[k] = true
			}
			next.assignment[role] = jack
			next.used[jack] = true
			stack = append(stack, next)
		}
	}

	return graphs, nil
}
