package creature

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/skilltree"
)

// GainExp adds amount experience and runs the level-up loop, returning the
// log lines it produced.
//
// Each level gained recomputes stats from species base plus skill-tree
// bonuses, heals by the max HP delta, grants the skill points of the new
// level, and teaches moves learned exactly at that level while room remains.
//
// Postcondition: Level <= catalog.MaxLevel; 0 <= CurrentHP <= MaxHP.
func (f *Factory) GainExp(c *Creature, amount int) []string {
	if amount <= 0 {
		return nil
	}
	sp := f.species(c)
	if sp == nil {
		return nil
	}
	growth := f.catalog.Growth()
	c.Exp += amount
	var log []string
	for c.Exp >= c.ExpToNextLevel && c.Level < catalog.MaxLevel {
		c.Level++
		log = append(log, fmt.Sprintf("%s grew to level %d!", c.DisplayName(), c.Level))

		oldMax := c.MaxHP
		c.Stats = f.EffectiveStats(c)
		c.MaxHP = c.Stats.HP
		if !c.Fainted {
			c.CurrentHP = max(0, min(c.MaxHP, c.CurrentHP+c.MaxHP-oldMax))
		}

		c.SkillPoints += skilltree.SkillPointsForLevel(c.Level) - skilltree.SkillPointsForLevel(c.Level-1)

		for _, lm := range sp.LevelUpMoves() {
			if lm.Level != c.Level || c.KnowsMove(lm.MoveID) {
				continue
			}
			name := lm.MoveID
			if m, err := f.catalog.Move(lm.MoveID); err == nil {
				name = m.Name
			}
			if len(c.Moves) >= MaxMoves {
				log = append(log, fmt.Sprintf("%s wants to learn %s, but already knows %d moves!", c.DisplayName(), name, MaxMoves))
				continue
			}
			c.Moves = append(c.Moves, lm.MoveID)
			if !slices.Contains(c.LearnedMoves, lm.MoveID) {
				c.LearnedMoves = append(c.LearnedMoves, lm.MoveID)
			}
			log = append(log, fmt.Sprintf("%s learned %s!", c.DisplayName(), name))
		}

		c.ExpToNextLevel = growth.ExperienceForLevel(sp.GrowthRate, c.Level+1)
	}
	f.logger.Debug("experience gained",
		zap.String("creature", c.ID),
		zap.Int("amount", amount),
		zap.Int("level", c.Level),
	)
	return log
}
