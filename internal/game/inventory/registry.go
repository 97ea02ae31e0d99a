package inventory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/tamer/internal/game/effect"
)

// DefaultMaxStack applies to item files that omit max_stack.
const DefaultMaxStack = 99

// ErrItemNotFound is returned when an item id does not resolve.
var ErrItemNotFound = errors.New("item not found")

// Registry holds all loaded item definitions indexed by ID.
type Registry struct {
	items map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// LoadRegistry loads every item file in dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range defs {
		if err := r.RegisterItem(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Lookup returns the ItemDef for id or an error wrapping ErrItemNotFound.
func (r *Registry) Lookup(id string) (*ItemDef, error) {
	if d, ok := r.items[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
}

// AllItems returns all registered ItemDefs ordered by ID.
//
// Postcondition: len(result) == number of registered items.
func (r *Registry) AllItems() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultRegistry returns the built-in item set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	heal := func(id, name, desc string, hp int) *ItemDef {
		return &ItemDef{ID: id, Name: name, Description: desc, Category: CategoryHealing, MaxStack: DefaultMaxStack, Effect: Effect{Type: EffectHeal, Value: hp}}
	}
	ball := func(id, name, desc string, bonus float64) *ItemDef {
		return &ItemDef{ID: id, Name: name, Description: desc, Category: CategoryCapture, MaxStack: DefaultMaxStack, Effect: Effect{Type: EffectCapture, CaptureBonus: bonus}}
	}
	boost := func(id, name, desc string, stat effect.Stat) *ItemDef {
		return &ItemDef{ID: id, Name: name, Description: desc, Category: CategoryBuff, MaxStack: DefaultMaxStack, Effect: Effect{Type: EffectBoost, Stat: stat, Value: 1}}
	}
	master := ball("master_ball", "Master Ball", "Never fails to capture any creature.", 255)
	master.Effect.Guaranteed = true
	for _, d := range []*ItemDef{
		heal("potion", "Potion", "Restores 20 HP to a creature.", 20),
		heal("super_potion", "Super Potion", "Restores 50 HP to a creature.", 50),
		heal("hyper_potion", "Hyper Potion", "Restores 200 HP to a creature.", 200),
		{ID: "revive", Name: "Revive", Description: "Revives a fainted creature with half HP.", Category: CategoryHealing, MaxStack: DefaultMaxStack, Effect: Effect{Type: EffectRevive, Value: 50}},
		ball("capture_ball", "Capture Ball", "A basic ball for capturing wild creatures.", 1.0),
		ball("great_ball", "Great Ball", "An improved ball with higher capture rate.", 1.5),
		ball("ultra_ball", "Ultra Ball", "A high-performance ball for tough captures.", 2.0),
		master,
		boost("x_attack", "X Attack", "Raises a creature's Attack.", effect.Atk),
		boost("x_defense", "X Defense", "Raises a creature's Defense.", effect.Def),
		boost("x_speed", "X Speed", "Raises a creature's Speed.", effect.Speed),
	} {
		// Built-in ids are unique.
		_ = r.RegisterItem(d)
	}
	return r
}
