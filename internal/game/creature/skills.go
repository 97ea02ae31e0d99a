package creature

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/skilltree"
)

// CanUnlockNode reports whether nodeID may be unlocked now: the node exists,
// is still locked, the creature has a skill point, and the node is the root
// or adjacent to an unlocked node.
func (f *Factory) CanUnlockNode(c *Creature, nodeID string) bool {
	if _, ok := f.tree.Node(nodeID); !ok {
		return false
	}
	if c.HasUnlocked(nodeID) || c.SkillPoints < 1 {
		return false
	}
	if nodeID == skilltree.RootID {
		return true
	}
	for _, adj := range f.tree.Adjacent(nodeID) {
		if c.HasUnlocked(adj) {
			return true
		}
	}
	return false
}

// UnlockNode spends one skill point on nodeID and applies the node's effect.
//
// Postcondition: returns false and leaves c untouched when CanUnlockNode is
// false; 0 <= CurrentHP <= MaxHP holds either way.
func (f *Factory) UnlockNode(c *Creature, nodeID string) bool {
	if !f.CanUnlockNode(c, nodeID) {
		return false
	}
	n, _ := f.tree.Node(nodeID)
	c.SkillPoints--
	c.UnlockedNodes = append(c.UnlockedNodes, nodeID)

	if n.Kind == skilltree.KindStat {
		c.addStat(n.Stat, n.Value)
		return true
	}
	moveID, ok := f.tree.MoveForNode(f.species(c), nodeID)
	if !ok {
		c.addStat(n.Branch, skilltree.EmptyMoveStatValue)
		return true
	}
	if !slices.Contains(c.LearnedMoves, moveID) {
		c.LearnedMoves = append(c.LearnedMoves, moveID)
	}
	if !c.KnowsMove(moveID) && len(c.Moves) < MaxMoves {
		c.Moves = append(c.Moves, moveID)
	}
	f.logger.Debug("skill move unlocked", zap.String("creature", c.ID), zap.String("node", nodeID), zap.String("move", moveID))
	return true
}

func (c *Creature) addStat(stat effect.Stat, v int) {
	c.Stats = c.Stats.Add(stat, v)
	if stat == effect.HP {
		c.MaxHP += v
		c.CurrentHP = min(c.CurrentHP+v, c.MaxHP)
	}
}

// ResetSkillTree refunds every unlocked non-root node, restores species base
// stats and clears the active move list.
//
// Postcondition: UnlockedNodes == [RootID]; CurrentHP <= MaxHP.
func (f *Factory) ResetSkillTree(c *Creature) {
	refund := 0
	for _, id := range c.UnlockedNodes {
		if id != skilltree.RootID {
			refund++
		}
	}
	c.SkillPoints += refund
	c.UnlockedNodes = newUnlocked()
	if sp := f.species(c); sp != nil {
		c.Stats = sp.BaseStats
		c.MaxHP = sp.BaseStats.HP
	}
	c.CurrentHP = min(c.CurrentHP, c.MaxHP)
	c.Moves = []string{}
}

// StatBonuses sums the bonuses of every unlocked node, including the flat
// fallback of move nodes whose slot is empty for this species.
func (f *Factory) StatBonuses(c *Creature) effect.Stats {
	sp := f.species(c)
	var out effect.Stats
	for _, id := range c.UnlockedNodes {
		n, ok := f.tree.Node(id)
		if !ok {
			continue
		}
		if n.Kind == skilltree.KindStat {
			out = out.Add(n.Stat, n.Value)
			continue
		}
		if _, ok := f.tree.MoveForNode(sp, id); !ok {
			out = out.Add(n.Branch, skilltree.EmptyMoveStatValue)
		}
	}
	return out
}

// EffectiveStats is species base plus StatBonuses.
func (f *Factory) EffectiveStats(c *Creature) effect.Stats {
	sp := f.species(c)
	if sp == nil {
		return c.Stats
	}
	return sp.BaseStats.Plus(f.StatBonuses(c))
}

// MovesFromNodes lists the moves granted by unlocked move nodes, in unlock order.
func (f *Factory) MovesFromNodes(c *Creature) []string {
	sp := f.species(c)
	var out []string
	for _, id := range c.UnlockedNodes {
		if moveID, ok := f.tree.MoveForNode(sp, id); ok && !slices.Contains(out, moveID) {
			out = append(out, moveID)
		}
	}
	return out
}

// NodeDisplayName labels nodeID for this creature's species.
func (f *Factory) NodeDisplayName(c *Creature, nodeID string) string {
	return f.tree.DisplayName(f.catalog, f.species(c), nodeID)
}
