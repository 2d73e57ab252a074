// Package rig defines declared rig specs and their canonicalization: the
// resolution of every module reference against the gallery into a
// self-contained, gallery-independent wiring snapshot.
package rig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// ModuleRef declares one module instance in a rig spec.
type ModuleRef struct {
	ID       string `yaml:"id"`                 // instance id, unique within the rig
	Key      string `yaml:"key"`                // gallery module key
	Revision string `yaml:"revision,omitempty"` // pinned revision identity; empty = latest
}

// Normal declares a semi-normalled edge: an implicit default connection that
// is broken when a cable lands on the destination jack. Endpoints use
// canonical jack ids ("instance.jack").
type Normal struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Spec is the declared rig: the external, immutable input to the pipeline.
type Spec struct {
	Name    string      `yaml:"name"`
	Modules []ModuleRef `yaml:"modules"`
	Normals []Normal    `yaml:"normals,omitempty"`
}

// LoadSpec reads and validates a rig spec YAML file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig spec: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse rig spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rig spec: %w", err)
	}
	return &spec, nil
}

var instanceIDAllowed = func(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}

// Validate checks the spec's structure: non-empty unique instance ids,
// well-formed module keys and normal endpoints.
func (s *Spec) Validate() error {
	if len(s.Modules) == 0 {
		return fmt.Errorf("rig must declare at least one module")
	}
	seen := make(map[string]bool, len(s.Modules))
	for _, m := range s.Modules {
		if m.ID == "" {
			return fmt.Errorf("module instance id cannot be empty")
		}
		for _, r := range m.ID {
			if !instanceIDAllowed(r) {
				return fmt.Errorf("invalid instance id %q: lowercase alphanumeric, '-' and '_' only", m.ID)
			}
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate instance id %q", m.ID)
		}
		seen[m.ID] = true
		if !gallery.ValidModuleKey(m.Key) {
			return fmt.Errorf("instance %s: invalid module key %q", m.ID, m.Key)
		}
		if m.Revision != "" && !gallery.ValidIdentity(m.Revision) {
			return fmt.Errorf("instance %s: invalid pinned revision %q", m.ID, m.Revision)
		}
	}
	for _, n := range s.Normals {
		for _, ref := range []string{n.From, n.To} {
			instance, _, ok := SplitJackID(ref)
			if !ok {
				return fmt.Errorf("invalid normal endpoint %q: want \"instance.jack\"", ref)
			}
			if !seen[instance] {
				return fmt.Errorf("normal endpoint %q references unknown instance %q", ref, instance)
			}
		}
	}
	return nil
}

// SplitJackID splits a canonical jack id into its instance and jack parts.
func SplitJackID(id string) (instance, jack string, ok bool) {
	i := strings.IndexByte(id, '.')
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}
