// Package condition holds the static definitions of status conditions: their
// labels, infliction messages, type immunities and duration dice.
package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Def is the static definition of a status condition, loaded from YAML.
//
// Messages may contain a single %s verb, replaced by the creature's name.
type Def struct {
	ID             effect.Status    `yaml:"id"`
	Name           string           `yaml:"name"`
	Description    string           `yaml:"description"`
	Volatile       bool             `yaml:"volatile"`
	Duration       string           `yaml:"duration"` // dice expression; empty = until cured
	ImmuneTypes    []typechart.Type `yaml:"immune_types"`
	InflictMessage string           `yaml:"inflict_message"`
}

// Validate checks the definition's invariants.
//
// Postcondition: returns nil iff the id is a known status, the duration (if
// any) parses, and every immune type is known.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition id must not be empty")
	}
	if !d.ID.IsMajor() && d.ID != effect.StatusConfusion && d.ID != effect.StatusFlinch {
		return fmt.Errorf("condition %q: unknown status id", d.ID)
	}
	if d.Volatile == d.ID.IsMajor() {
		return fmt.Errorf("condition %q: volatile flag disagrees with status kind", d.ID)
	}
	if d.Duration != "" {
		if _, err := dice.Parse(d.Duration); err != nil {
			return fmt.Errorf("condition %q: %w", d.ID, err)
		}
	}
	for _, ty := range d.ImmuneTypes {
		if !typechart.Known(ty) {
			return fmt.Errorf("condition %q: unknown immune type %q", d.ID, ty)
		}
	}
	return nil
}

// Registry holds all known Defs keyed by status.
type Registry struct {
	defs map[effect.Status]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[effect.Status]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id effect.Status) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot of every registered Def, ordered by id.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Def) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// Immune reports whether a creature of the given types is immune to status.
func (r *Registry) Immune(status effect.Status, types []typechart.Type) bool {
	d, ok := r.defs[status]
	if !ok {
		return false
	}
	for _, ty := range types {
		if slices.Contains(d.ImmuneTypes, ty) {
			return true
		}
	}
	return false
}

// RollDuration rolls the status's duration dice with roller.
//
// Postcondition: returns 0 when the status has no duration.
func (r *Registry) RollDuration(status effect.Status, roller *dice.Roller) int {
	d, ok := r.defs[status]
	if !ok || d.Duration == "" {
		return 0
	}
	res, err := roller.RollExpr(d.Duration)
	if err != nil {
		return 0
	}
	return res.Total()
}

// InflictMessage renders the log line for inflicting status on name.
func (r *Registry) InflictMessage(status effect.Status, name string) string {
	d, ok := r.defs[status]
	if !ok || d.InflictMessage == "" {
		return fmt.Sprintf("%s is %s!", name, strings.ToLower(status.DisplayName()))
	}
	return fmt.Sprintf(d.InflictMessage, name)
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
