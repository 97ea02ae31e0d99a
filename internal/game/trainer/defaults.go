package trainer

import "github.com/cory-johannsen/tamer/internal/game/effect"

// Skill kinds.
const (
	KindBuff    = "buff"
	KindCommand = "command"
)

// DefaultSkills returns the built-in fifteen-skill registry.
func DefaultSkills() *SkillRegistry {
	s := func(id, name, desc string, cost int, kind, branch string, tier int, passive bool, eff SkillEffect, prereq ...string) *Skill {
		return &Skill{
			ID: id, Name: name, Description: desc, Cost: cost, Kind: kind,
			Prerequisites: prereq, Branch: branch, Tier: tier, Passive: passive, Effect: eff,
		}
	}
	reg, err := NewSkillRegistry([]*Skill{
		s("warlord_1", "Battle Cry", "+10% ATK to all party for 3 turns.", 1, KindBuff, BranchWarlord, 1, false,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Atk, Value: 10, Duration: 3}),
		s("warlord_2", "Berserker Rage", "+20% ATK/SP.ATK to party (passive).", 2, KindBuff, BranchWarlord, 2, true,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Atk, AlsoStat: effect.SpAtk, Value: 20}, "warlord_1"),
		s("warlord_3", "Combo Master", "Next 3 attacks trigger 50% follow-up from strongest ally.", 3, KindCommand, BranchWarlord, 3, false,
			SkillEffect{Type: EffectFollowUp, Value: 50, Duration: 3}, "warlord_2"),

		s("commander_1", "Rally Defense", "+10% DEF to all party for 3 turns.", 1, KindBuff, BranchCommander, 1, false,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Def, Value: 10, Duration: 3}),
		s("commander_2", "Fortress", "+20% DEF/SP.DEF to party (passive).", 2, KindBuff, BranchCommander, 2, true,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Def, AlsoStat: effect.SpDef, Value: 20}, "commander_1"),
		s("commander_3", "Guardian Shield", "Redirect 30% of damage to trainer for 3 turns.", 3, KindBuff, BranchCommander, 3, false,
			SkillEffect{Type: EffectDamageRedirect, Value: 30, Duration: 3}, "commander_2"),

		s("ranger_1", "Quick Orders", "Play every 4 turns instead of 5.", 1, KindBuff, BranchRanger, 1, true,
			SkillEffect{Type: EffectTurnFrequency, Value: 4}),
		s("ranger_2", "Swift Strike", "+20% Speed to party (passive).", 2, KindBuff, BranchRanger, 2, true,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Speed, Value: 20}, "ranger_1"),
		s("ranger_3", "Rapid Command", "Play every 3 turns instead of 5.", 3, KindBuff, BranchRanger, 3, true,
			SkillEffect{Type: EffectTurnFrequency, Value: 3}, "ranger_2"),

		s("elementalist_1", "Fire Affinity", "Fire moves +15% damage.", 1, KindBuff, BranchElementalist, 1, true,
			SkillEffect{Type: EffectTypeBoost, ElementType: "fire", Value: 15}),
		s("elementalist_2", "Weather Master", "Weather effects last +2 turns.", 2, KindBuff, BranchElementalist, 2, true,
			SkillEffect{Type: EffectWeatherExtend, Value: 2}, "elementalist_1"),
		s("elementalist_3", "Elemental Surge", "Super-effective moves deal +25% damage.", 3, KindBuff, BranchElementalist, 3, true,
			SkillEffect{Type: EffectTypeBoost, Value: 25}, "elementalist_2"),

		s("tactician_1", "Focus Command", "+10% crit rate for party this turn.", 1, KindBuff, BranchTactician, 1, false,
			SkillEffect{Type: EffectCritBoost, Value: 10, Duration: 1}),
		s("tactician_2", "Precision", "+20% Accuracy for party (passive).", 2, KindBuff, BranchTactician, 2, true,
			SkillEffect{Type: EffectStatBuff, Stat: effect.Accuracy, Value: 20}, "tactician_1"),
		s("tactician_3", "Perfect Strategy", "First move each battle is guaranteed crit.", 3, KindCommand, BranchTactician, 3, true,
			SkillEffect{Type: EffectGuaranteedCrit, Value: 1}, "tactician_2"),
	})
	if err != nil {
		panic("trainer: built-in skills are invalid: " + err.Error())
	}
	return reg
}
