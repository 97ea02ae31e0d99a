// Package enemy provides enemy trainer templates and the live opponents built
// from them.
package enemy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defaults applied when a file omits them.
const (
	DefaultMaxHP = 100
	DefaultSpeed = 10
)

// ErrTemplateNotFound is returned when an enemy template id does not resolve.
var ErrTemplateNotFound = errors.New("enemy template not found")

// RosterEntry is one creature an enemy trainer brings to battle.
type RosterEntry struct {
	Species string `yaml:"species"`
	Level   int    `yaml:"level"`
}

// Dialogue holds the lines an enemy trainer speaks.
type Dialogue struct {
	Intro string `yaml:"intro"`
	Win   string `yaml:"win"`
	Lose  string `yaml:"lose"`
}

// Template defines a reusable enemy trainer loaded from YAML.
type Template struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Dialogue    Dialogue      `yaml:"dialogue"`
	Roster      []RosterEntry `yaml:"roster"`
	AIDomain    string        `yaml:"ai_domain"` // HTN domain ID; empty = always skip
	// Items maps item id to the stock the trainer starts each battle with.
	Items map[string]int `yaml:"items"`
	MaxHP int            `yaml:"max_hp"`
	Speed int            `yaml:"speed"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, the roster holds at
// least one entry with a species and a level in [1,100], and every item stock
// is positive; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if len(t.Roster) == 0 {
		return fmt.Errorf("enemy template %q: roster must not be empty", t.ID)
	}
	for i, r := range t.Roster {
		if r.Species == "" {
			return fmt.Errorf("enemy template %q: roster[%d] species must not be empty", t.ID, i)
		}
		if r.Level < 1 || r.Level > 100 {
			return fmt.Errorf("enemy template %q: roster[%d] level must be 1-100, got %d", t.ID, i, r.Level)
		}
	}
	for id, n := range t.Items {
		if n < 1 {
			return fmt.Errorf("enemy template %q: item %q stock must be >= 1", t.ID, id)
		}
	}
	if t.MaxHP < 0 || t.Speed < 0 {
		return fmt.Errorf("enemy template %q: max_hp and speed must not be negative", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template with MaxHP and Speed defaulted,
// or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if tmpl.MaxHP == 0 {
		tmpl.MaxHP = DefaultMaxHP
	}
	if tmpl.Speed == 0 {
		tmpl.Speed = DefaultSpeed
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// Registry indexes templates by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry builds a registry from templates.
//
// Postcondition: returns an error on a duplicate ID.
func NewRegistry(templates []*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := r.templates[t.ID]; dup {
			return nil, fmt.Errorf("enemy: duplicate template id %q", t.ID)
		}
		r.templates[t.ID] = t
	}
	return r, nil
}

// LoadRegistry loads every template in dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(templates)
}

// Template returns the template with id.
func (r *Registry) Template(id string) (*Template, error) {
	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

// IDs returns every template id in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.templates))
	for id := range r.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
