package patchval

import (
	"sort"

	"github.com/racksmith/racksmith/internal/patch"
)

// cycleModules collapses the graph's cables to module-level edges and runs
// Kahn's algorithm over them: any node that cannot be consumed by repeated
// zero-indegree removal sits on a directed cycle. A cable whose two ends
// share a module is a self-loop and always cycles. Returns the modules left
// on cycles, sorted, or nil when the graph is acyclic.
func cycleModules(g *patch.Graph, owners map[string]string) []string {
	edges := make(map[string]map[string]bool)
	indegree := make(map[string]int)
	for _, c := range g.Cables {
		from, okFrom := owners[c.From]
		to, okTo := owners[c.To]
		if !okFrom || !okTo {
			continue
		}
		if _, ok := indegree[from]; !ok {
			indegree[from] = 0
		}
		if _, ok := indegree[to]; !ok {
			indegree[to] = 0
		}
		if edges[from] == nil {
			edges[from] = make(map[string]bool)
		}
		if !edges[from][to] {
			edges[from][to] = true
			indegree[to]++
		}
	}

	queue := make([]string, 0, len(indegree))
	for node, deg := range indegree {
		if deg == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	consumed := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		consumed++

		next := make([]string, 0, len(edges[node]))
		for succ := range edges[node] {
			indegree[succ]--
			if indegree[succ] == 0 {
				next = append(next, succ)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	if consumed == len(indegree) {
		return nil
	}
	remaining := make([]string, 0, len(indegree)-consumed)
	for node, deg := range indegree {
		if deg > 0 {
			remaining = append(remaining, node)
		}
	}
	sort.Strings(remaining)
	return remaining
}
