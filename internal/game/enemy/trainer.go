package enemy

import (
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Trainer is a live enemy trainer built from a Template for one battle.
//
// Invariant: 0 <= CurrentHP <= MaxHP; every Items quantity is >= 1.
type Trainer struct {
	ID         string
	TemplateID string
	Name       string
	Dialogue   Dialogue
	AIDomain   string
	CurrentHP  int
	MaxHP      int
	Speed      int
	Creatures  []*creature.Creature
	Items      map[string]int
}

// New builds an enemy trainer and its roster. Roster creatures are created as
// wild so their skill points are spent at random.
//
// Precondition: tmpl has passed Validate; factory must be non-nil.
// Postcondition: returns an error wrapping catalog.ErrSpeciesNotFound when a
// roster species is unknown.
func New(tmpl *Template, factory *creature.Factory) (*Trainer, error) {
	roster := make([]*creature.Creature, 0, len(tmpl.Roster))
	for _, r := range tmpl.Roster {
		c, err := factory.New(r.Species, r.Level, true)
		if err != nil {
			return nil, fmt.Errorf("enemy %q roster: %w", tmpl.ID, err)
		}
		roster = append(roster, c)
	}
	maxHP := tmpl.MaxHP
	if maxHP == 0 {
		maxHP = DefaultMaxHP
	}
	speed := tmpl.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	items := maps.Clone(tmpl.Items)
	if items == nil {
		items = map[string]int{}
	}
	return &Trainer{
		ID:         uuid.NewString(),
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Dialogue:   tmpl.Dialogue,
		AIDomain:   tmpl.AIDomain,
		CurrentHP:  maxHP,
		MaxHP:      maxHP,
		Speed:      speed,
		Creatures:  roster,
		Items:      items,
	}, nil
}

// Intro returns the opening line of a battle against t.
func (t *Trainer) Intro() string {
	if t.Dialogue.Intro != "" {
		return t.Dialogue.Intro
	}
	return fmt.Sprintf("%s wants to battle!", t.Name)
}

// Active returns the first trainer.ActiveLimit non-fainted creatures.
func (t *Trainer) Active() []*creature.Creature {
	var out []*creature.Creature
	for _, c := range t.Creatures {
		if len(out) == trainer.ActiveLimit {
			break
		}
		if !c.Fainted {
			out = append(out, c)
		}
	}
	return out
}

// Creature returns the roster creature with id.
func (t *Trainer) Creature(id string) (*creature.Creature, bool) {
	for _, c := range t.Creatures {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// AllFainted reports whether every roster creature has fainted.
func (t *Trainer) AllFainted() bool {
	for _, c := range t.Creatures {
		if !c.Fainted {
			return false
		}
	}
	return true
}

// UseItem applies one itemID from the trainer's stock to the roster creature
// creatureID and returns the log line.
//
// Postcondition: the stock is decremented only when ok is true; capture items
// are never usable by an enemy trainer.
func (t *Trainer) UseItem(reg *inventory.Registry, itemID, creatureID string) (msg string, ok bool) {
	if t.Items[itemID] < 1 {
		return "", false
	}
	def, found := reg.Item(itemID)
	if !found || def.IsCapture() {
		return "", false
	}
	c, found := t.Creature(creatureID)
	if !found {
		return "", false
	}
	msg, ok = def.Use(c)
	if !ok {
		return msg, false
	}
	if t.Items[itemID]--; t.Items[itemID] == 0 {
		delete(t.Items, itemID)
	}
	return msg, true
}

// TakeDamage implements battle.Combatant.
func (t *Trainer) TakeDamage(amount int) bool {
	if amount > 0 {
		t.CurrentHP = max(0, t.CurrentHP-amount)
	}
	return t.CurrentHP <= 0
}

// CombatID implements battle.Combatant.
func (t *Trainer) CombatID() string { return t.ID }

// CombatName implements battle.Combatant.
func (t *Trainer) CombatName() string { return t.Name }

// HitPoints implements battle.Combatant.
func (t *Trainer) HitPoints() (int, int) { return t.CurrentHP, t.MaxHP }

// CombatStats implements battle.Combatant with the same placeholder offence
// and defence the player trainer uses.
func (t *Trainer) CombatStats() effect.Stats {
	return effect.Stats{
		HP: t.MaxHP, Atk: trainer.CombatAtk, Def: trainer.CombatDef,
		SpAtk: trainer.CombatSpAtk, SpDef: trainer.CombatSpDef, Speed: t.Speed,
	}
}

// CombatTypes implements battle.Combatant.
func (t *Trainer) CombatTypes() []typechart.Type { return []typechart.Type{typechart.Normal} }

// CombatLevel implements battle.Combatant.
func (t *Trainer) CombatLevel() int { return trainer.CombatLevel }

// Stages implements battle.Combatant.
func (t *Trainer) Stages() effect.Modifiers { return effect.Modifiers{} }

// Burned implements battle.Combatant.
func (t *Trainer) Burned() bool { return false }
