package template

import (
	"sort"

	"github.com/racksmith/racksmith/internal/rig"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Buckets index a rig's jacks by usable direction and signal kind. They are
// built once per rig and shared by every template the generator expands.
// Every slice is sorted by canonical jack id.
type Buckets struct {
	sources map[gallery.SignalKind][]string
	sinks   map[gallery.SignalKind][]string
}

// BuildBuckets scans the rig's jacks into direction × kind buckets. A bidir
// jack lands in both the source and the sink bucket of its kind.
func BuildBuckets(r *rig.Rig) *Buckets {
	b := &Buckets{
		sources: make(map[gallery.SignalKind][]string),
		sinks:   make(map[gallery.SignalKind][]string),
	}
	for i := range r.Modules {
		for _, j := range r.Modules[i].Jacks {
			kind := j.Contract.Kind
			if j.Direction.PermitsOutput() {
				b.sources[kind] = append(b.sources[kind], j.ID)
			}
			if j.Direction.PermitsInput() {
				b.sinks[kind] = append(b.sinks[kind], j.ID)
			}
		}
	}
	for kind := range b.sources {
		sort.Strings(b.sources[kind])
	}
	for kind := range b.sinks {
		sort.Strings(b.sinks[kind])
	}
	return b
}

// Candidates returns the jacks a role constraint may be assigned, sorted by
// canonical jack id. A jack carrying several of the constraint's kinds
// appears once.
func (b *Buckets) Candidates(rc RoleConstraint) []string {
	var pool map[gallery.SignalKind][]string
	if rc.Direction.PermitsOutput() {
		pool = b.sources
	} else {
		pool = b.sinks
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, kind := range rc.Kinds {
		for _, id := range pool[kind] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}
