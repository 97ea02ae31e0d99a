package skilltree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/effect"
)

// fallbackOrder distributes unslotted level-up moves round-robin over branches.
var fallbackOrder = []effect.Stat{effect.Atk, effect.SpAtk, effect.Def, effect.SpDef, effect.HP, effect.Speed}

// ResolveMoveSlot returns the move a species learns at slot of branch.
//
// A learnable move explicitly pinned to the slot wins. Otherwise unpinned
// level-up moves, ordered by level, are dealt round-robin across the branches
// and the slot-th move dealt to branch is returned.
//
// Postcondition: ok is false when the slot is empty for this species.
func ResolveMoveSlot(sp *catalog.Species, branch effect.Stat, slot int) (string, bool) {
	if sp == nil || slot < 0 {
		return "", false
	}
	for _, lm := range sp.LearnableMoves {
		if lm.Slot != nil && lm.Slot.Branch == branch && lm.Slot.Index == slot {
			return lm.MoveID, true
		}
	}
	idx := slices.Index(fallbackOrder, branch)
	if idx < 0 {
		return "", false
	}
	var pool []catalog.LearnableMove
	for _, lm := range sp.LevelUpMoves() {
		if lm.Slot == nil {
			pool = append(pool, lm)
		}
	}
	slices.SortStableFunc(pool, func(a, b catalog.LearnableMove) int { return a.Level - b.Level })
	var dealt []string
	for i, lm := range pool {
		if i%len(fallbackOrder) == idx {
			dealt = append(dealt, lm.MoveID)
		}
	}
	if slot >= len(dealt) {
		return "", false
	}
	return dealt[slot], true
}

// MoveForNode resolves a move node for sp. Stat nodes never resolve.
func (t *Tree) MoveForNode(sp *catalog.Species, id string) (string, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Kind != KindMove {
		return "", false
	}
	return ResolveMoveSlot(sp, n.Branch, n.MoveSlot)
}

// DisplayName labels a node for sp: "+5 ATK" for stat nodes, the move's name
// for resolved move nodes, and "+10 ATK" for empty move slots.
func (t *Tree) DisplayName(cat *catalog.Catalog, sp *catalog.Species, id string) string {
	n, ok := t.nodes[id]
	if !ok {
		return id
	}
	if n.Kind == KindStat {
		return fmt.Sprintf("+%d %s", n.Value, strings.ToUpper(string(n.Stat)))
	}
	moveID, ok := t.MoveForNode(sp, id)
	if !ok {
		return fmt.Sprintf("+%d %s", EmptyMoveStatValue, strings.ToUpper(string(n.Branch)))
	}
	if cat != nil {
		if m, err := cat.Move(moveID); err == nil {
			return m.Name
		}
	}
	return catalog.DisplayName(moveID)
}
