// Package trainer implements the player's persistent avatar: progression,
// trainer skills, and party and box management.
package trainer

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Party and battle limits.
const (
	MaxParty     = 6
	ActiveLimit  = 3
	StarterLevel = 5
)

// DefaultActionInterval is the trainer turn spacing without ranger skills.
const DefaultActionInterval = 5

// Placeholder combat stats a trainer uses in the damage formula.
const (
	CombatAtk   = 30
	CombatSpAtk = 20
	CombatDef   = 30
	CombatSpDef = 20
	CombatLevel = 5
)

// Stats is the trainer's simplified stat block.
type Stats struct {
	HP    int `json:"hp"`
	Speed int `json:"speed"`
}

// Trainer is the player's avatar.
//
// Invariant: 0 <= CurrentHP <= MaxHP; len(Party) <= MaxParty.
type Trainer struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          int      `json:"level"`
	Exp            int      `json:"exp"`
	ExpToNextLevel int      `json:"exp_to_next_level"`
	Stats          Stats    `json:"stats"`
	CurrentHP      int      `json:"current_hp"`
	MaxHP          int      `json:"max_hp"`
	SkillPoints    int      `json:"skill_points"`
	UnlockedSkills []string `json:"unlocked_skills"`

	Party []*creature.Creature `json:"party"`
	Box   []*creature.Creature `json:"box"`
}

// New creates a trainer with a level-5 starter.
//
// Precondition: name must be non-empty; factory must be non-nil.
// Postcondition: returns an error wrapping catalog.ErrSpeciesNotFound when
// the starter species is unknown.
func New(name, starterSpecies string, factory *creature.Factory) (*Trainer, error) {
	if name == "" {
		return nil, errors.New("trainer name must not be empty")
	}
	starter, err := factory.New(starterSpecies, StarterLevel, false)
	if err != nil {
		return nil, fmt.Errorf("invalid starter species: %w", err)
	}
	return &Trainer{
		ID:             uuid.NewString(),
		Name:           name,
		Level:          10,
		ExpToNextLevel: 100,
		Stats:          Stats{HP: 50, Speed: 15},
		CurrentHP:      50,
		MaxHP:          50,
		SkillPoints:    10,
		UnlockedSkills: []string{},
		Party:          []*creature.Creature{starter},
		Box:            []*creature.Creature{},
	}, nil
}

// ExpToNextLevel returns the experience a trainer at level needs to level up.
func ExpToNextLevel(level int) int {
	return int(math.Floor(math.Pow(float64(level+1), 3) * 0.8))
}

// AddExp adds exp and applies at most one level-up, carrying the remainder.
//
// Postcondition: on level-up, SkillPoints increases by 1 and both MaxHP and
// CurrentHP grow by 5 + level/2.
func (t *Trainer) AddExp(exp int) (leveledUp bool, newLevel int) {
	t.Exp += exp
	if t.Exp < t.ExpToNextLevel {
		return false, t.Level
	}
	t.Level++
	t.Exp -= t.ExpToNextLevel
	t.ExpToNextLevel = ExpToNextLevel(t.Level)
	t.SkillPoints++
	gain := 5 + t.Level/2
	t.MaxHP += gain
	t.CurrentHP = min(t.MaxHP, t.CurrentHP+gain)
	return true, t.Level
}

// HasSkill reports whether id is unlocked.
func (t *Trainer) HasSkill(id string) bool {
	return slices.Contains(t.UnlockedSkills, id)
}

// CanUnlockSkill reports whether id exists, is locked, is affordable and has
// every prerequisite unlocked.
func (t *Trainer) CanUnlockSkill(reg *SkillRegistry, id string) bool {
	s, err := reg.Skill(id)
	if err != nil || t.HasSkill(id) || t.SkillPoints < s.Cost {
		return false
	}
	for _, p := range s.Prerequisites {
		if !t.HasSkill(p) {
			return false
		}
	}
	return true
}

// UnlockSkill spends the skill's cost and records it.
//
// Postcondition: returns false and changes nothing when CanUnlockSkill is false.
func (t *Trainer) UnlockSkill(reg *SkillRegistry, id string) bool {
	if !t.CanUnlockSkill(reg, id) {
		return false
	}
	s, _ := reg.Skill(id)
	t.SkillPoints -= s.Cost
	t.UnlockedSkills = append(t.UnlockedSkills, id)
	return true
}

// ActionInterval returns how many turns pass between trainer turns.
func (t *Trainer) ActionInterval() int {
	switch {
	case t.HasSkill("ranger_3"):
		return 3
	case t.HasSkill("ranger_1"):
		return 4
	}
	return DefaultActionInterval
}

// PassiveStatMultiplier returns 1 plus the sum of unlocked passive stat buffs
// covering stat, as a fraction.
func (t *Trainer) PassiveStatMultiplier(reg *SkillRegistry, stat effect.Stat) float64 {
	mult := 1.0
	for _, id := range t.UnlockedSkills {
		s, err := reg.Skill(id)
		if err != nil || !s.Passive || !s.Buffs(stat) {
			continue
		}
		mult += float64(s.Effect.Value) / 100
	}
	return mult
}

// AddCreature places c in the party, or in the box when the party is full.
func (t *Trainer) AddCreature(c *creature.Creature) (toParty bool) {
	if len(t.Party) < MaxParty {
		t.Party = append(t.Party, c)
		return true
	}
	t.Box = append(t.Box, c)
	return false
}

// SwapToBox exchanges the party creature at partyIndex with the box creature
// at boxIndex.
func (t *Trainer) SwapToBox(partyIndex, boxIndex int) bool {
	if partyIndex < 0 || partyIndex >= len(t.Party) || boxIndex < 0 || boxIndex >= len(t.Box) {
		return false
	}
	t.Party[partyIndex], t.Box[boxIndex] = t.Box[boxIndex], t.Party[partyIndex]
	return true
}

// ReorderParty moves the party creature at from to position to.
func (t *Trainer) ReorderParty(from, to int) bool {
	if from < 0 || from >= len(t.Party) || to < 0 || to >= len(t.Party) {
		return false
	}
	c := t.Party[from]
	t.Party = slices.Delete(t.Party, from, from+1)
	t.Party = slices.Insert(t.Party, to, c)
	return true
}

// ActiveCreatures returns the first ActiveLimit non-fainted party creatures.
func (t *Trainer) ActiveCreatures() []*creature.Creature {
	var out []*creature.Creature
	for _, c := range t.Party {
		if len(out) == ActiveLimit {
			break
		}
		if !c.Fainted {
			out = append(out, c)
		}
	}
	return out
}

// FindCreature returns the party or box creature with id.
func (t *Trainer) FindCreature(id string) (*creature.Creature, bool) {
	for _, list := range [][]*creature.Creature{t.Party, t.Box} {
		for _, c := range list {
			if c.ID == id {
				return c, true
			}
		}
	}
	return nil, false
}

func (t *Trainer) partyCreature(id string) *creature.Creature {
	for _, c := range t.Party {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// HealCreature restores amount HP to the party creature id, reviving it if
// it was fainted.
func (t *Trainer) HealCreature(id string, amount int) bool {
	c := t.partyCreature(id)
	if c == nil || amount <= 0 {
		return false
	}
	c.CurrentHP = min(c.MaxHP, c.CurrentHP+amount)
	if c.Fainted && c.CurrentHP > 0 {
		c.Fainted = false
	}
	return true
}

// DamageCreature deals amount damage to the party creature id and reports
// whether it fainted.
func (t *Trainer) DamageCreature(id string, amount int) bool {
	c := t.partyCreature(id)
	if c == nil {
		return false
	}
	return c.TakeDamage(amount)
}

// Heal restores up to amount trainer HP.
func (t *Trainer) Heal(amount int) {
	if amount > 0 {
		t.CurrentHP = min(t.MaxHP, t.CurrentHP+amount)
	}
}

// Damage subtracts amount trainer HP and reports whether it reached zero.
func (t *Trainer) Damage(amount int) bool {
	if amount > 0 {
		t.CurrentHP = max(0, t.CurrentHP-amount)
	}
	return t.CurrentHP <= 0
}

// TakeDamage implements battle.Combatant.
func (t *Trainer) TakeDamage(amount int) bool { return t.Damage(amount) }

// FullHeal restores the trainer and every party creature.
func (t *Trainer) FullHeal() {
	t.CurrentHP = t.MaxHP
	for _, c := range t.Party {
		c.FullHeal()
	}
}

// AllFainted reports whether every party creature has fainted.
func (t *Trainer) AllFainted() bool {
	for _, c := range t.Party {
		if !c.Fainted {
			return false
		}
	}
	return true
}

// CombatID implements battle.Combatant.
func (t *Trainer) CombatID() string { return t.ID }

// CombatName implements battle.Combatant.
func (t *Trainer) CombatName() string { return t.Name }

// HitPoints implements battle.Combatant.
func (t *Trainer) HitPoints() (int, int) { return t.CurrentHP, t.MaxHP }

// CombatStats implements battle.Combatant with placeholder offence and defence.
func (t *Trainer) CombatStats() effect.Stats {
	return effect.Stats{HP: t.MaxHP, Atk: CombatAtk, Def: CombatDef, SpAtk: CombatSpAtk, SpDef: CombatSpDef, Speed: t.Stats.Speed}
}

// CombatTypes implements battle.Combatant.
func (t *Trainer) CombatTypes() []typechart.Type { return []typechart.Type{typechart.Normal} }

// CombatLevel implements battle.Combatant.
func (t *Trainer) CombatLevel() int { return CombatLevel }

// Stages implements battle.Combatant; trainers have no stat stages.
func (t *Trainer) Stages() effect.Modifiers { return effect.Modifiers{} }

// Burned implements battle.Combatant.
func (t *Trainer) Burned() bool { return false }
