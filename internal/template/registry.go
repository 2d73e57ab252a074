package template

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/racksmith/racksmith/pkg/gallery"
)

// Registry is the set of templates available to a pipeline run: the
// built-in archetypes plus any loaded packs. Lookups and listings are
// always in template-id order.
type Registry struct {
	templates map[string]Template
}

// Builtin returns a registry seeded with the built-in archetypes.
func Builtin() *Registry {
	r := &Registry{templates: make(map[string]Template, len(builtins))}
	for _, t := range builtins {
		r.templates[t.ID] = t
	}
	return r
}

// Empty returns a registry with no templates. Used by tests that want
// full control over the template set.
func Empty() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// Add registers a template, replacing any existing template with the same
// id. Invalid templates are dropped and reported via the return value so
// the caller can count them; they are never an error.
func (r *Registry) Add(t Template) bool {
	if err := t.Validate(); err != nil {
		return false
	}
	r.templates[t.ID] = t
	return true
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Templates returns all registered templates sorted by id.
func (r *Registry) Templates() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WithinTier returns the templates whose difficulty does not exceed tier,
// sorted by id.
func (r *Registry) WithinTier(tier int) []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		if t.Difficulty <= tier {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// pack is the on-disk YAML shape of a template pack file.
type pack struct {
	Templates []Template `yaml:"templates"`
}

// LoadPack reads a YAML template pack and registers its templates.
// Malformed individual templates are silently dropped; the returned count
// is the number actually registered. A file that cannot be read or parsed
// at all is an error.
func (r *Registry) LoadPack(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read template pack %s: %w", path, err)
	}
	var p pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("failed to parse template pack %s: %w", path, err)
	}
	loaded := 0
	for _, t := range p.Templates {
		if r.Add(t) {
			loaded++
		}
	}
	return loaded, nil
}

// builtins are the archetypes every installation ships with. IDs are
// stable: patch graphs hash over them.
var builtins = []Template{
	{
		ID:         "basic_voice",
		Archetype:  "source into sink",
		Category:   "voice",
		Difficulty: 1,
		Roles: map[string]RoleConstraint{
			"audio_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"audio_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio, gallery.KindCVOrAudio}},
		},
		Slots: []Slot{
			{From: "audio_out", To: "audio_in", Kind: gallery.KindAudio},
		},
	},
	{
		ID:         "clock_pulse",
		Archetype:  "clock into pulse sink",
		Category:   "rhythm",
		Difficulty: 1,
		Roles: map[string]RoleConstraint{
			"clock_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindClock}},
			"pulse_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindClock, gallery.KindGate, gallery.KindTrigger}},
		},
		Slots: []Slot{
			{From: "clock_out", To: "pulse_in", Kind: gallery.KindClock},
		},
	},
	{
		ID:         "modulated_voice",
		Archetype:  "voice with one modulation lane",
		Category:   "voice",
		Difficulty: 2,
		Roles: map[string]RoleConstraint{
			"audio_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"audio_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio, gallery.KindCVOrAudio}},
			"mod_out":   {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindCV, gallery.KindLFO, gallery.KindEnvelope, gallery.KindRandom}},
			"mod_in":    {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindCV}},
		},
		Slots: []Slot{
			{From: "audio_out", To: "audio_in", Kind: gallery.KindAudio},
			{From: "mod_out", To: "mod_in", Kind: gallery.KindCV},
		},
	},
	{
		ID:         "fx_send",
		Archetype:  "dry signal into an effect",
		Category:   "texture",
		Difficulty: 2,
		Roles: map[string]RoleConstraint{
			"dry_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"fx_in":   {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindCVOrAudio}},
		},
		Slots: []Slot{
			{From: "dry_out", To: "fx_in", Kind: gallery.KindAudio},
		},
	},
	{
		ID:         "sequenced_voice",
		Archetype:  "pitch and gate driven voice",
		Category:   "melody",
		Difficulty: 3,
		Roles: map[string]RoleConstraint{
			"pitch_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindPitchCV}},
			"pitch_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindPitchCV}},
			"gate_out":  {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindGate, gallery.KindTrigger, gallery.KindClock}},
			"gate_in":   {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindGate, gallery.KindTrigger}},
			"audio_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"audio_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio, gallery.KindCVOrAudio}},
		},
		Slots: []Slot{
			{From: "pitch_out", To: "pitch_in", Kind: gallery.KindPitchCV},
			{From: "gate_out", To: "gate_in", Kind: gallery.KindGate},
			{From: "audio_out", To: "audio_in", Kind: gallery.KindAudio},
		},
	},
	{
		ID:         "feedback_texture",
		Archetype:  "audio loop through two stages",
		Category:   "texture",
		Difficulty: 4,
		Roles: map[string]RoleConstraint{
			"send_out":  {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"stage_in":  {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio, gallery.KindCVOrAudio}},
			"stage_out": {Direction: gallery.DirectionOut, Kinds: []gallery.SignalKind{gallery.KindAudio}},
			"return_in": {Direction: gallery.DirectionIn, Kinds: []gallery.SignalKind{gallery.KindAudio, gallery.KindCVOrAudio}},
		},
		Slots: []Slot{
			{From: "send_out", To: "stage_in", Kind: gallery.KindAudio},
			{From: "stage_out", To: "return_in", Kind: gallery.KindAudio},
		},
	},
}
