package rig

import (
	"context"
	"fmt"
	"sort"

	"github.com/racksmith/racksmith/pkg/canon"
	"github.com/racksmith/racksmith/pkg/gallery"
)

// Jack is a per-instance copy of a gallery jack. Its ID is canonical
// ("instance.jack"), so two instances of the same module type never alias
// jack identity.
type Jack struct {
	ID        string                 `json:"id"`
	Module    string                 `json:"module"` // owning instance id
	Local     string                 `json:"local"`  // jack id within the module
	Label     string                 `json:"label"`
	Direction gallery.Direction      `json:"direction"`
	Contract  gallery.SignalContract `json:"contract"`
}

// Module is one resolved module instance with its own jack copies.
type Module struct {
	Instance string         `json:"instance"`
	Key      string         `json:"key"`
	Revision string         `json:"revision"` // resolved revision identity
	WidthHP  int            `json:"width_hp"`
	Tags     []string       `json:"tags,omitempty"`
	Modes    []gallery.Mode `json:"modes,omitempty"`
	Jacks    []Jack         `json:"jacks"`
}

// Rig is the canonical, gallery-independent snapshot of a declared rig.
// It is built once per run and never mutated.
type Rig struct {
	Name    string   `json:"name"`
	Modules []Module `json:"modules"` // sorted by instance id
	Normals []Normal `json:"normals,omitempty"`
}

// Build resolves spec against the gallery store: each instance's module key
// is resolved to its latest (or pinned) revision and the revision's jacks are
// copied into an instance-scoped module. Fails with the store's NotFoundError
// when a reference is absent. The store is never mutated.
func Build(ctx context.Context, store *gallery.Store, spec *Spec) (*Rig, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rig spec: %w", err)
	}

	rig := &Rig{
		Name:    spec.Name,
		Modules: make([]Module, 0, len(spec.Modules)),
		Normals: append([]Normal(nil), spec.Normals...),
	}

	for _, ref := range spec.Modules {
		var stored *gallery.StoredEntry
		var err error
		if ref.Revision != "" {
			stored, err = store.Get(ctx, ref.Key, ref.Revision)
		} else {
			stored, err = store.Latest(ctx, ref.Key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve instance %s: %w", ref.ID, err)
		}

		entry := stored.Entry
		mod := Module{
			Instance: ref.ID,
			Key:      stored.ModuleKey,
			Revision: stored.Identity,
			WidthHP:  entry.WidthHP,
			Tags:     append([]string(nil), entry.Tags...),
			Modes:    append([]gallery.Mode(nil), entry.Modes...),
			Jacks:    make([]Jack, 0, len(entry.Jacks)),
		}
		for _, j := range entry.Jacks {
			mod.Jacks = append(mod.Jacks, Jack{
				ID:        ref.ID + "." + j.ID,
				Module:    ref.ID,
				Local:     j.ID,
				Label:     j.Label,
				Direction: j.Direction,
				Contract:  j.Contract,
			})
		}
		rig.Modules = append(rig.Modules, mod)
	}

	sort.Slice(rig.Modules, func(i, j int) bool {
		return rig.Modules[i].Instance < rig.Modules[j].Instance
	})
	sort.Slice(rig.Normals, func(i, j int) bool {
		if rig.Normals[i].From != rig.Normals[j].From {
			return rig.Normals[i].From < rig.Normals[j].From
		}
		return rig.Normals[i].To < rig.Normals[j].To
	})

	return rig, nil
}

// JackIndex returns a map from canonical jack id to the jack.
func (r *Rig) JackIndex() map[string]*Jack {
	idx := make(map[string]*Jack)
	for i := range r.Modules {
		for j := range r.Modules[i].Jacks {
			jack := &r.Modules[i].Jacks[j]
			idx[jack.ID] = jack
		}
	}
	return idx
}

// OwnerIndex returns a map from canonical jack id to owning instance id.
// Module ownership is explicit here rather than derived from jack id string
// prefixes, so renaming conventions can never skew graph analyses.
func (r *Rig) OwnerIndex() map[string]string {
	idx := make(map[string]string)
	for i := range r.Modules {
		for j := range r.Modules[i].Jacks {
			idx[r.Modules[i].Jacks[j].ID] = r.Modules[i].Instance
		}
	}
	return idx
}

// Module returns the module with the given instance id, or nil.
func (r *Rig) Module(instance string) *Module {
	for i := range r.Modules {
		if r.Modules[i].Instance == instance {
			return &r.Modules[i]
		}
	}
	return nil
}

// Hash returns the rig's canonical content hash.
func (r *Rig) Hash() (string, error) {
	return canon.Hash(r)
}
