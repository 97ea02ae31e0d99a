package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/session"
)

// healBelowPct is the hp percentage under which the pilot spends a potion.
const healBelowPct = 35

// pilot makes every selection for the player side of a session's battle.
type pilot struct {
	sess     *session.Session
	src      dice.Source
	maxTurns int
}

// run drives the current battle until it ends or maxTurns turns resolve.
//
// Postcondition: returns the final phase; a non-terminal phase means the turn
// cap was hit.
func (p *pilot) run(ctx context.Context) (battle.Phase, error) {
	b, err := p.sess.Battle()
	if err != nil {
		return "", err
	}
	for b.Active() && b.Turn() <= p.maxTurns {
		if err := ctx.Err(); err != nil {
			return b.Phase(), err
		}
		switch b.Phase() {
		case battle.PhaseTrainerSelect:
			err = b.SetTrainerAction(ctx, p.trainerAction(b))
		case battle.PhaseCreatureSelect:
			c, ok := b.CurrentCreature()
			if !ok {
				return b.Phase(), fmt.Errorf("no creature under the selection cursor")
			}
			err = b.SetCreatureAction(ctx, p.pickMove(c), p.pickTarget(b))
		case battle.PhaseResolution:
			err = p.sess.ExecuteTurn(ctx)
		default:
			return b.Phase(), fmt.Errorf("unexpected phase %s", b.Phase())
		}
		if err != nil {
			return b.Phase(), err
		}
	}
	return b.Phase(), nil
}

// trainerAction heals the most hurt active creature when one is low and a
// potion is left; otherwise the trainer just commands.
func (p *pilot) trainerAction(b *battle.Battle) battle.TrainerAction {
	inv := p.sess.Inventory()
	if !inv.Has("potion") {
		return battle.TrainerAction{Type: battle.TrainerCommand}
	}
	var hurt *creature.Creature
	for _, c := range b.PlayerCreatures() {
		if c.Fainted || c.MaxHP == 0 || c.CurrentHP*100 >= c.MaxHP*healBelowPct {
			continue
		}
		if hurt == nil || c.CurrentHP*hurt.MaxHP < hurt.CurrentHP*c.MaxHP {
			hurt = c
		}
	}
	if hurt == nil {
		return battle.TrainerAction{Type: battle.TrainerCommand}
	}
	return battle.TrainerAction{Type: battle.TrainerItem, ItemID: "potion", TargetID: hurt.ID}
}

func (p *pilot) pickMove(c *creature.Creature) string {
	if len(c.Moves) == 0 {
		return ""
	}
	return c.Moves[p.src.Intn(len(c.Moves))]
}

func (p *pilot) pickTarget(b *battle.Battle) string {
	for _, c := range b.EnemyCreatures() {
		if !c.Fainted {
			return c.ID
		}
	}
	return ""
}

// newLines returns the lines of cur not already present at the end of prev.
// The battle log is a sliding window, so cur may start partway into prev.
func newLines(prev, cur []string) []string {
	for k := min(len(prev), len(cur)); k > 0; k-- {
		if slices.Equal(prev[len(prev)-k:], cur[:k]) {
			return cur[k:]
		}
	}
	return cur
}

// stockSummary renders the inventory as "item x qty" pairs.
func stockSummary(inv *inventory.Inventory) string {
	out := ""
	for i, s := range inv.Items {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s x%d", s.ItemID, s.Quantity)
	}
	return out
}
