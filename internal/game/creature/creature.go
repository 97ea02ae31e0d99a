// Package creature implements the battle-capable creature instance: creation
// from a species, skill-tree point allocation, hit point bookkeeping, and the
// experience and level-up loop.
package creature

import (
	"slices"

	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/skilltree"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// MaxMoves is the size of a creature's active move list.
const MaxMoves = 4

// Creature is one owned or wild creature.
//
// Invariant: 0 <= CurrentHP <= MaxHP; len(Moves) <= MaxMoves; every entry of
// Moves is in LearnedMoves; UnlockedNodes contains skilltree.RootID; at most
// one major Status at a time.
type Creature struct {
	ID          string `json:"id"`
	SpeciesID   string `json:"species_id"`
	SpeciesName string `json:"species_name"`
	Nickname    string `json:"nickname,omitempty"`
	Level       int    `json:"level"`

	CurrentHP int          `json:"current_hp"`
	MaxHP     int          `json:"max_hp"`
	Stats     effect.Stats `json:"stats"`

	Moves        []string `json:"moves"`
	LearnedMoves []string `json:"learned_moves"`

	Exp            int              `json:"exp"`
	ExpToNextLevel int              `json:"exp_to_next_level"`
	Types          []typechart.Type `json:"types"`
	Fainted        bool             `json:"fainted"`

	Status         effect.Status    `json:"status,omitempty"`
	SleepTurns     int              `json:"sleep_turns,omitempty"`
	ToxicCounter   int              `json:"toxic_counter,omitempty"`
	Confused       bool             `json:"confused,omitempty"`
	ConfusionTurns int              `json:"confusion_turns,omitempty"`
	Modifiers      effect.Modifiers `json:"modifiers"`

	SkillPoints   int      `json:"skill_points"`
	UnlockedNodes []string `json:"unlocked_nodes"`
}

// DisplayName is the nickname if set, otherwise the species name.
func (c *Creature) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.SpeciesName
}

// HasUnlocked reports whether nodeID is in the unlocked set.
func (c *Creature) HasUnlocked(nodeID string) bool {
	return slices.Contains(c.UnlockedNodes, nodeID)
}

// KnowsMove reports whether moveID is in the active move list.
func (c *Creature) KnowsMove(moveID string) bool {
	return slices.Contains(c.Moves, moveID)
}

// TakeDamage subtracts n hit points, flooring at zero, and marks the creature
// fainted when it reaches zero.
//
// Precondition: n >= 0.
// Postcondition: returns true iff the creature is fainted afterwards.
func (c *Creature) TakeDamage(n int) bool {
	if n > 0 {
		c.CurrentHP = max(0, c.CurrentHP-n)
	}
	if c.CurrentHP == 0 {
		c.Fainted = true
	}
	return c.Fainted
}

// Heal restores up to n hit points to a conscious creature and returns the
// amount actually restored.
func (c *Creature) Heal(n int) int {
	if c.Fainted || n <= 0 {
		return 0
	}
	before := c.CurrentHP
	c.CurrentHP = min(c.MaxHP, c.CurrentHP+n)
	return c.CurrentHP - before
}

// FullHeal restores all hit points, clears fainting and any major status.
func (c *Creature) FullHeal() {
	c.CurrentHP = c.MaxHP
	c.Fainted = false
	c.ClearStatus()
}

// Revive brings a fainted creature back with percent of its max HP (at least
// 1) and clears its major status.
//
// Postcondition: returns false and changes nothing if the creature is conscious.
func (c *Creature) Revive(percent int) bool {
	if !c.Fainted {
		return false
	}
	c.Fainted = false
	c.CurrentHP = max(1, min(c.MaxHP, c.MaxHP*percent/100))
	c.ClearStatus()
	return true
}

// Faint drops the creature to zero hit points.
func (c *Creature) Faint() {
	c.CurrentHP = 0
	c.Fainted = true
}

// SetStatus applies a major status. sleepTurns is only used for sleep.
//
// Postcondition: returns false without change if a major status is already set.
func (c *Creature) SetStatus(s effect.Status, sleepTurns int) bool {
	if !s.IsMajor() || !effect.CanApplyMajorStatus(c.Status) {
		return false
	}
	c.Status = s
	switch s {
	case effect.StatusSleep:
		c.SleepTurns = sleepTurns
	case effect.StatusBadlyPoisoned:
		c.ToxicCounter = 1
	}
	return true
}

// ClearStatus removes the major status and its counters.
func (c *Creature) ClearStatus() {
	c.Status = effect.StatusNone
	c.SleepTurns = 0
	c.ToxicCounter = 0
}

// Confuse applies confusion for turns turns.
//
// Postcondition: returns false without change if already confused.
func (c *Creature) Confuse(turns int) bool {
	if c.Confused {
		return false
	}
	c.Confused = true
	c.ConfusionTurns = turns
	return true
}

// ResetVolatile clears stat stages, confusion and the toxic counter. Major
// status, HP and progression persist.
func (c *Creature) ResetVolatile() {
	c.Modifiers = effect.Modifiers{}
	c.Confused = false
	c.ConfusionTurns = 0
	c.ToxicCounter = 0
}

// CombatID implements battle.Combatant.
func (c *Creature) CombatID() string { return c.ID }

// CombatName implements battle.Combatant.
func (c *Creature) CombatName() string { return c.DisplayName() }

// HitPoints implements battle.Combatant.
func (c *Creature) HitPoints() (int, int) { return c.CurrentHP, c.MaxHP }

// CombatStats implements battle.Combatant.
func (c *Creature) CombatStats() effect.Stats { return c.Stats }

// CombatTypes implements battle.Combatant.
func (c *Creature) CombatTypes() []typechart.Type { return c.Types }

// CombatLevel implements battle.Combatant.
func (c *Creature) CombatLevel() int { return c.Level }

// Stages implements battle.Combatant.
func (c *Creature) Stages() effect.Modifiers { return c.Modifiers }

// Burned implements battle.Combatant.
func (c *Creature) Burned() bool { return c.Status == effect.StatusBurn }

func newUnlocked() []string { return []string{skilltree.RootID} }
