package gallery

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction describes how a jack may be used in a patch.
type Direction string

const (
	// DirectionIn marks a jack that only accepts incoming cables.
	DirectionIn Direction = "in"

	// DirectionOut marks a jack that only drives outgoing cables.
	DirectionOut Direction = "out"

	// DirectionBidir marks a jack usable as either end of a cable.
	DirectionBidir Direction = "bidir"
)

// PermitsOutput reports whether a jack with this direction may be the source
// end of a cable.
func (d Direction) PermitsOutput() bool {
	return d == DirectionOut || d == DirectionBidir
}

// PermitsInput reports whether a jack with this direction may be the
// destination end of a cable.
func (d Direction) PermitsInput() bool {
	return d == DirectionIn || d == DirectionBidir
}

// Validate checks that the direction is a known enum value.
func (d Direction) Validate() error {
	switch d {
	case DirectionIn, DirectionOut, DirectionBidir:
		return nil
	default:
		return fmt.Errorf("unknown jack direction: %q", d)
	}
}

// SignalKind classifies what a jack carries. The validator's compatibility
// table is defined over these kinds.
type SignalKind string

const (
	KindAudio    SignalKind = "audio"
	KindCV       SignalKind = "cv"
	KindLFO      SignalKind = "lfo"
	KindEnvelope SignalKind = "envelope"
	KindRandom   SignalKind = "random"
	KindPitchCV  SignalKind = "pitch-cv"
	KindGate     SignalKind = "gate"
	KindTrigger  SignalKind = "trigger"
	KindClock    SignalKind = "clock"

	// KindCVOrAudio is the wildcard input kind: any source may legally feed
	// it. It is deliberately more permissive as a destination than as a
	// source.
	KindCVOrAudio SignalKind = "cv-or-audio"
)

// Validate checks that the signal kind is a known enum value.
func (k SignalKind) Validate() error {
	switch k {
	case KindAudio, KindCV, KindLFO, KindEnvelope, KindRandom, KindPitchCV,
		KindGate, KindTrigger, KindClock, KindCVOrAudio:
		return nil
	default:
		return fmt.Errorf("unknown signal kind: %q", k)
	}
}

// SignalContract describes what a jack carries: its kind, the rate domain it
// operates in, and optional documented range and polarity.
type SignalContract struct {
	Kind     SignalKind `json:"kind" yaml:"kind"`
	Rate     string     `json:"rate,omitempty" yaml:"rate,omitempty"`         // "audio" or "control"
	Range    string     `json:"range,omitempty" yaml:"range,omitempty"`       // e.g. "+-5V"
	Polarity string     `json:"polarity,omitempty" yaml:"polarity,omitempty"` // "bipolar" or "unipolar"
}

// Validate checks the contract's kind and optional fields.
func (c SignalContract) Validate() error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	switch c.Rate {
	case "", "audio", "control":
	default:
		return fmt.Errorf("unknown signal rate: %q", c.Rate)
	}
	switch c.Polarity {
	case "", "bipolar", "unipolar":
	default:
		return fmt.Errorf("unknown signal polarity: %q", c.Polarity)
	}
	return nil
}

// Jack is a documented connection point on a module type.
type Jack struct {
	ID        string         `json:"id" yaml:"id"`
	Label     string         `json:"label" yaml:"label"`
	Direction Direction      `json:"direction" yaml:"direction"`
	Contract  SignalContract `json:"contract" yaml:"contract"`
}

// Validate checks the jack's fields.
func (j *Jack) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("jack id cannot be empty")
	}
	if strings.Contains(j.ID, ".") {
		return fmt.Errorf("jack id %q cannot contain '.'", j.ID)
	}
	if err := j.Direction.Validate(); err != nil {
		return fmt.Errorf("jack %s: %w", j.ID, err)
	}
	if err := j.Contract.Validate(); err != nil {
		return fmt.Errorf("jack %s: %w", j.ID, err)
	}
	return nil
}

// Mode is an alternate operating mode of a module, carrying its own tags for
// capability classification.
type Mode struct {
	Name string   `json:"name" yaml:"name"`
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Entry is one revision of a module type's documented facts. Entries are
// immutable once appended; corrections are new revisions.
type Entry struct {
	Manufacturer string   `json:"manufacturer" yaml:"manufacturer"`
	Name         string   `json:"name" yaml:"name"`
	WidthHP      int      `json:"width_hp" yaml:"width_hp"`
	Jacks        []Jack   `json:"jacks" yaml:"jacks"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Modes        []Mode   `json:"modes,omitempty" yaml:"modes,omitempty"`
}

var moduleKeyPattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9/]*[a-z0-9])?$`)

// ModuleKey derives the entry's stable catalog key:
// "<manufacturer>/<name>" lowercased with runs of whitespace collapsed to a
// single hyphen.
func (e *Entry) ModuleKey() string {
	return fmt.Sprintf("%s/%s", keyComponent(e.Manufacturer), keyComponent(e.Name))
}

func keyComponent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "-")
}

// ValidModuleKey reports whether s is a well-formed module key.
func ValidModuleKey(s string) bool {
	return strings.Count(s, "/") == 1 && moduleKeyPattern.MatchString(s)
}

// Validate checks the entry's field values, including jack uniqueness.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Manufacturer) == "" {
		return fmt.Errorf("manufacturer cannot be empty")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if e.WidthHP <= 0 {
		return fmt.Errorf("width must be positive, got %d", e.WidthHP)
	}
	if len(e.Jacks) == 0 {
		return fmt.Errorf("module must document at least one jack")
	}
	seen := make(map[string]bool, len(e.Jacks))
	for i := range e.Jacks {
		j := &e.Jacks[i]
		if err := j.Validate(); err != nil {
			return err
		}
		if seen[j.ID] {
			return fmt.Errorf("duplicate jack id %q", j.ID)
		}
		seen[j.ID] = true
	}
	for _, m := range e.Modes {
		if m.Name == "" {
			return fmt.Errorf("mode name cannot be empty")
		}
	}
	return nil
}

// AllTags returns the entry's tags plus the tags of all its modes, in
// document order. Used by capability classification.
func (e *Entry) AllTags() []string {
	tags := make([]string, 0, len(e.Tags))
	tags = append(tags, e.Tags...)
	for _, m := range e.Modes {
		tags = append(tags, m.Tags...)
	}
	return tags
}

// StoredEntry is an Entry together with the storage metadata assigned at
// append time. The identity and revision number are not part of the entry's
// content hash.
type StoredEntry struct {
	ModuleKey    string `json:"module_key"`
	Identity     string `json:"identity"`
	Revision     int    `json:"revision"`
	AppendedAtMs int64  `json:"appended_at_ms"`
	Entry        Entry  `json:"entry"`
}
