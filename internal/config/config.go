// Package config loads and validates racksmith.yml, the per-project
// configuration: which Redis server and workspace to use, the case
// geometry, and the constraint record handed to the pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/racksmith/racksmith/internal/curator"
	"github.com/racksmith/racksmith/internal/layout"
	"github.com/racksmith/racksmith/internal/patchgen"
	"github.com/racksmith/racksmith/internal/template"
	"github.com/racksmith/racksmith/internal/workspace"
)

// Constraint defaults. Optional fields are pointers so an explicit zero is
// distinguishable from "not set".
const (
	DefaultTier           = 3
	DefaultMaxCables      = 8
	DefaultCandidateCap   = 64
	DefaultMaxTotal       = 12
	DefaultMaxPerCategory = 4
	DefaultMaxPerTemplate = 3
)

// Config is the top-level racksmith.yml configuration.
type Config struct {
	Version       string      `yaml:"version"`
	Workspace     string      `yaml:"workspace"`
	Redis         Redis       `yaml:"redis,omitempty"`
	Case          Case        `yaml:"case"`
	Constraints   Constraints `yaml:"constraints,omitempty"`
	TemplatePacks []string    `yaml:"template_packs,omitempty"`
}

// Redis locates the server backing the gallery store.
type Redis struct {
	Addr string `yaml:"addr,omitempty"` // default: localhost:6379
}

// Case declares the physical case the layout suggester packs into.
type Case struct {
	Rows       int `yaml:"rows"`
	RowWidthHP int `yaml:"row_width_hp"`
}

// Constraints is the constraint record from the presentation layer: how
// hard the generator may search and how much the curator may keep.
type Constraints struct {
	Tier          *int `yaml:"tier,omitempty"`       // max template difficulty
	MaxCables     *int `yaml:"max_cables,omitempty"` // skip templates above this
	AllowFeedback bool `yaml:"allow_feedback,omitempty"`
	CandidateCap  *int `yaml:"candidate_cap,omitempty"` // total accepted assignments

	MaxTotal       *int `yaml:"max_total,omitempty"`
	MaxPerCategory *int `yaml:"max_per_category,omitempty"`
	MaxPerTemplate *int `yaml:"max_per_template,omitempty"`

	// DropRunaway defaults to the inverse of AllowFeedback when unset.
	DropRunaway *bool `yaml:"drop_runaway,omitempty"`
	DropSilence bool  `yaml:"drop_silence,omitempty"`

	CategoryWeights   map[string]float64 `yaml:"category_weights,omitempty"`
	DifficultyWeights map[int]float64    `yaml:"difficulty_weights,omitempty"`
}

// Load reads, parses and validates a racksmith.yml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := workspace.ValidateName(c.Workspace); err != nil {
		return err
	}

	if err := c.LayoutCase().Validate(); err != nil {
		return err
	}

	if err := c.Constraints.validate(); err != nil {
		return err
	}

	return nil
}

func (cr *Constraints) validate() error {
	check := func(name string, v *int) error {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", name, *v)
		}
		return nil
	}
	if cr.Tier != nil && (*cr.Tier < template.MinDifficulty || *cr.Tier > template.MaxDifficulty) {
		return fmt.Errorf("tier must be between %d and %d, got %d",
			template.MinDifficulty, template.MaxDifficulty, *cr.Tier)
	}
	for name, v := range map[string]*int{
		"max_cables":       cr.MaxCables,
		"candidate_cap":    cr.CandidateCap,
		"max_total":        cr.MaxTotal,
		"max_per_category": cr.MaxPerCategory,
		"max_per_template": cr.MaxPerTemplate,
	} {
		if err := check(name, v); err != nil {
			return err
		}
	}
	for cat, w := range cr.CategoryWeights {
		if w < 0 {
			return fmt.Errorf("category weight for %q cannot be negative, got %v", cat, w)
		}
	}
	for d, w := range cr.DifficultyWeights {
		if w < 0 {
			return fmt.Errorf("difficulty weight for %d cannot be negative, got %v", d, w)
		}
	}
	return nil
}

// RedisAddr returns the configured Redis address or the default.
func (c *Config) RedisAddr() string {
	if c.Redis.Addr != "" {
		return c.Redis.Addr
	}
	return "localhost:6379"
}

// LayoutCase converts the case geometry for the layout suggester.
func (c *Config) LayoutCase() layout.Case {
	return layout.Case{Rows: c.Case.Rows, RowWidthHP: c.Case.RowWidthHP}
}

// EffectiveTier returns the configured max template difficulty or the
// default.
func (c *Constraints) EffectiveTier() int {
	if c.Tier != nil {
		return *c.Tier
	}
	return DefaultTier
}

// GeneratorOptions resolves the constraint record into patch generator
// options. The candidate cap is the run-wide budget; the pipeline
// decrements it across templates.
func (c *Constraints) GeneratorOptions() patchgen.Options {
	opts := patchgen.Options{
		CandidateCap: DefaultCandidateCap,
		MaxCables:    DefaultMaxCables,
	}
	if c.CandidateCap != nil {
		opts.CandidateCap = *c.CandidateCap
	}
	if c.MaxCables != nil {
		opts.MaxCables = *c.MaxCables
	}
	return opts
}

// CuratorOptions resolves the constraint record into curation options.
func (c *Constraints) CuratorOptions() curator.Options {
	opts := curator.Options{
		MaxTotal:          DefaultMaxTotal,
		MaxPerCategory:    DefaultMaxPerCategory,
		MaxPerTemplate:    DefaultMaxPerTemplate,
		DropRunaway:       !c.AllowFeedback,
		DropSilence:       c.DropSilence,
		CategoryWeights:   c.CategoryWeights,
		DifficultyWeights: c.DifficultyWeights,
	}
	if c.MaxTotal != nil {
		opts.MaxTotal = *c.MaxTotal
	}
	if c.MaxPerCategory != nil {
		opts.MaxPerCategory = *c.MaxPerCategory
	}
	if c.MaxPerTemplate != nil {
		opts.MaxPerTemplate = *c.MaxPerTemplate
	}
	if c.DropRunaway != nil {
		opts.DropRunaway = *c.DropRunaway
	}
	return opts
}
