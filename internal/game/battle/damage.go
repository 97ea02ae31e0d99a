package battle

import (
	"math"
	"slices"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// Damage formula constants.
const (
	CritOdds       = 16 // one in CritOdds hits is critical
	CritMultiplier = 1.5
	STABMultiplier = 1.5
)

// confusionHit is the typeless physical move a confused creature uses on itself.
var confusionHit = &catalog.Move{
	ID:       "confusion_hit",
	Name:     "Confusion",
	Category: catalog.Physical,
	Power:    40,
	Accuracy: 100,
}

// DamageResult is the outcome of one damage computation.
type DamageResult struct {
	Damage        int
	Effectiveness float64
	Critical      bool
}

// CalculateDamage computes the damage move deals from attacker to defender.
//
// Status moves deal 0 and draw nothing from src. Otherwise the crit roll is
// drawn first (only when effectiveness is above zero), then the random factor.
//
// Postcondition: Damage >= 0; Damage == 0 whenever Effectiveness == 0.
func CalculateDamage(src dice.Source, attacker, defender Combatant, move *catalog.Move) DamageResult {
	if move.Category == catalog.Status {
		return DamageResult{Effectiveness: 1}
	}
	as, am := attacker.CombatStats(), attacker.Stages()
	ds, dm := defender.CombatStats(), defender.Stages()

	attack, defense := 0.0, 0.0
	if move.Category == catalog.Physical {
		attack = float64(as.Atk) * effect.StageMultiplier(am.Atk)
		if attacker.Burned() {
			attack = math.Floor(attack * 0.5)
		}
		defense = float64(ds.Def) * effect.StageMultiplier(dm.Def)
	} else {
		attack = float64(as.SpAtk) * effect.StageMultiplier(am.SpAtk)
		defense = float64(ds.SpDef) * effect.StageMultiplier(dm.SpDef)
	}
	if defense <= 0 {
		defense = 1
	}

	eff := typechart.Effectiveness(move.Type, defender.CombatTypes()...)
	crit := false
	if eff > 0 {
		crit = src.Intn(CritOdds) == 0
	}
	critMult := 1.0
	if crit {
		critMult = CritMultiplier
	}
	stab := 1.0
	if move.Type != "" && slices.Contains(attacker.CombatTypes(), move.Type) {
		stab = STABMultiplier
	}
	random := float64(85+src.Intn(16)) / 100

	level := float64(attacker.CombatLevel())
	base := math.Floor(((2*level/5+2)*float64(move.Power)*attack/defense)/50 + 2)
	damage := int(math.Floor(base * eff * critMult * stab * random))
	return DamageResult{Damage: max(0, damage), Effectiveness: eff, Critical: crit}
}

// HitChance is the percent chance move lands given both sides' accuracy and
// evasion stages and a passive accuracy multiplier for the attacker.
func HitChance(move *catalog.Move, attacker, defender effect.Modifiers, passive float64) float64 {
	return float64(move.Accuracy) * passive *
		effect.AccuracyStageMultiplier(attacker.Accuracy) /
		effect.AccuracyStageMultiplier(defender.Evasion)
}

// Experience multipliers.
const (
	TrainerBattleExpMultiplier = 1.5
	TrainerExpShare            = 0.3
)

// ExpGain is the experience each participant earns when an enemy creature of
// the given yield and level faints.
//
// Postcondition: participants below 1 are treated as 1.
func ExpGain(yield, level int, trainerBattle bool, participants int) int {
	a := 1.0
	if trainerBattle {
		a = TrainerBattleExpMultiplier
	}
	s := float64(max(1, participants))
	return int(math.Floor(float64(yield*level) / 7 * a / s))
}

// TrainerExpGain is the player trainer's share for the same faint.
func TrainerExpGain(yield, level int, trainerBattle bool) int {
	return int(math.Floor(float64(ExpGain(yield, level, trainerBattle, 1)) * TrainerExpShare))
}
