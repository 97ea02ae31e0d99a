package battle

import (
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Combatant is the capability set damage and targeting code works against.
// Creatures, the player trainer and enemy trainers all implement it.
type Combatant interface {
	CombatID() string
	CombatName() string
	HitPoints() (current, max int)
	CombatStats() effect.Stats
	CombatTypes() []typechart.Type
	CombatLevel() int
	Stages() effect.Modifiers
	Burned() bool
	// TakeDamage subtracts amount HP and reports whether the combatant is down.
	TakeDamage(amount int) bool
}

// boosted scales a combatant's stats by the player trainer's passive skills.
type boosted struct {
	Combatant
	mult func(effect.Stat) float64
}

func (b boosted) CombatStats() effect.Stats {
	s := b.Combatant.CombatStats()
	scale := func(stat effect.Stat, v int) int { return int(float64(v) * b.mult(stat)) }
	return effect.Stats{
		HP:    s.HP,
		Atk:   scale(effect.Atk, s.Atk),
		Def:   scale(effect.Def, s.Def),
		SpAtk: scale(effect.SpAtk, s.SpAtk),
		SpDef: scale(effect.SpDef, s.SpDef),
		Speed: scale(effect.Speed, s.Speed),
	}
}
