// Package inventory holds item definitions and the trainer's item stacks.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/effect"
)

// Category constants for ItemDef.Category.
const (
	CategoryHealing = "healing"
	CategoryCapture = "capture"
	CategoryBuff    = "buff"
)

// Effect type constants for Effect.Type.
const (
	EffectHeal    = "heal_hp"
	EffectRevive  = "revive"
	EffectCapture = "capture"
	EffectBoost   = "boost"
)

// validCategories is the set of valid ItemDef categories.
var validCategories = map[string]bool{
	CategoryHealing: true,
	CategoryCapture: true,
	CategoryBuff:    true,
}

// Effect describes what an item does when used.
type Effect struct {
	Type string `yaml:"type"`
	// Value is HP restored for heal_hp, percent of max HP for revive, and
	// stages for boost.
	Value int `yaml:"value"`
	// Stat is the boosted stat for boost.
	Stat effect.Stat `yaml:"stat"`
	// CaptureBonus multiplies the base capture chance.
	CaptureBonus float64 `yaml:"capture_bonus"`
	// Guaranteed captures always succeed.
	Guaranteed bool `yaml:"guaranteed"`
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Effect      Effect `yaml:"effect"`
	MaxStack    int    `yaml:"max_stack"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validCategories[d.Category] {
		errs = append(errs, fmt.Errorf("Category must be one of healing, capture, buff; got %q", d.Category))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	switch d.Effect.Type {
	case EffectHeal, EffectRevive:
		if d.Effect.Value <= 0 {
			errs = append(errs, errors.New("Effect.Value must be > 0 for healing effects"))
		}
	case EffectCapture:
		if d.Effect.CaptureBonus <= 0 && !d.Effect.Guaranteed {
			errs = append(errs, errors.New("Effect.CaptureBonus must be > 0 unless guaranteed"))
		}
	case EffectBoost:
		if d.Effect.Stat == "" || d.Effect.Stat == effect.HP {
			errs = append(errs, fmt.Errorf("Effect.Stat %q cannot be boosted", d.Effect.Stat))
		}
	default:
		errs = append(errs, fmt.Errorf("Effect.Type %q is unknown", d.Effect.Type))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// IsCapture reports whether using the item is a capture attempt.
func (d *ItemDef) IsCapture() bool {
	return d.Effect.Type == EffectCapture
}

// TargetsFainted reports whether the item is used on fainted creatures.
func (d *ItemDef) TargetsFainted() bool {
	return d.Effect.Type == EffectRevive
}

// Use applies a non-capture item to c and returns the log line.
//
// Postcondition: ok is false and c is unchanged when the item has no effect
// on c (healing a fainted or full creature, reviving a conscious one, a
// boost at its cap, or any capture item).
func (d *ItemDef) Use(c *creature.Creature) (msg string, ok bool) {
	switch d.Effect.Type {
	case EffectHeal:
		healed := c.Heal(d.Effect.Value)
		if healed == 0 {
			return fmt.Sprintf("%s had no effect on %s.", d.Name, c.DisplayName()), false
		}
		return fmt.Sprintf("%s recovered %d HP!", c.DisplayName(), healed), true
	case EffectRevive:
		if !c.Revive(d.Effect.Value) {
			return fmt.Sprintf("%s had no effect on %s.", d.Name, c.DisplayName()), false
		}
		return fmt.Sprintf("%s was revived!", c.DisplayName()), true
	case EffectBoost:
		if c.Fainted {
			return fmt.Sprintf("%s had no effect on %s.", d.Name, c.DisplayName()), false
		}
		before := c.Modifiers
		res := effect.ApplyStatModifier(&c.Modifiers, d.Effect.Stat, d.Effect.Value)
		msg := fmt.Sprintf("%s's %s %s", c.DisplayName(), d.Effect.Stat.DisplayName(), res.Message)
		return msg, before != c.Modifiers
	}
	return "", false
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice ordered by file name.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var items []*ItemDef
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if d.MaxStack == 0 {
			d.MaxStack = DefaultMaxStack
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
