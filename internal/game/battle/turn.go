package battle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// ExecuteTurn resolves every queued action in priority order, applies
// end-of-turn status damage, advances the turn and checks for the end of the
// battle.
//
// Once started, resolution runs to completion; a cancelled ctx only skips
// the pacing delays.
//
// Precondition: Phase() == PhaseResolution.
// Postcondition: Phase() is the next selection phase or a terminal phase.
func (b *Battle) ExecuteTurn(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Current()) != PhaseResolution {
		return fmt.Errorf("%w: execute in %s", ErrInvalidPhase, b.phase.Current())
	}

	queue := b.buildQueue()
	b.logger.Debug("turn queue built",
		zapBattle(b),
		zap.Int("turn", b.turn),
		zap.Int("actions", len(queue)),
	)
	decided := false
	for i, qa := range queue {
		if i > 0 {
			pause(ctx, b.deps.Config.ActionDelay)
		}
		b.resolveAction(ctx, qa)
		if !b.active {
			return nil
		}
		if _, decided = b.outcome(); decided {
			break
		}
	}
	if !decided {
		b.endOfTurn()
	}
	b.turn++

	if event, over := b.outcome(); over {
		b.concede(event)
		b.finish(ctx, event)
		return nil
	}
	b.refill()
	return b.nextSelection(ctx)
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// buildQueue assembles this turn's actions. Enemy creatures pick a uniformly
// random known move and a uniformly random conscious player creature.
func (b *Battle) buildQueue() []queuedAction {
	var q []queuedAction
	if b.isTrainerTurn() && b.plan.TrainerAction != nil {
		q = append(q, queuedAction{
			kind:     actorPlayerTrainer,
			actorID:  b.trainer.ID,
			name:     b.trainer.Name,
			priority: PlayerTrainerPriority,
			trainer:  b.plan.TrainerAction,
		})
	}
	if b.enemy != nil {
		q = append(q, queuedAction{
			kind:     actorEnemyTrainer,
			actorID:  b.enemy.ID,
			name:     b.enemy.Name,
			priority: EnemyTrainerPriority,
		})
	}
	for i := range b.plan.CreatureActions {
		a := &b.plan.CreatureActions[i]
		c := findCreature(b.playerActive, a.CreatureID)
		if c == nil {
			continue
		}
		q = append(q, queuedAction{
			kind:     actorPlayerCreature,
			actorID:  c.ID,
			name:     c.DisplayName(),
			priority: effectiveSpeed(b.player(c)),
			creature: a,
		})
	}
	targets := living(b.playerActive)
	for _, c := range living(b.enemyActive) {
		if len(c.Moves) == 0 || len(targets) == 0 {
			continue
		}
		moveID := c.Moves[dice.Pick(b.deps.Roller, len(c.Moves))]
		target := targets[dice.Pick(b.deps.Roller, len(targets))]
		move, _ := b.deps.Factory.Catalog().Move(moveID)
		q = append(q, queuedAction{
			kind:     actorEnemyCreature,
			actorID:  c.ID,
			name:     c.DisplayName(),
			priority: effectiveSpeed(c),
			creature: &CreatureAction{CreatureID: c.ID, MoveID: moveID, TargetID: targetForMove(move, target.ID)},
		})
	}
	sortQueue(q)
	return q
}

func effectiveSpeed(c Combatant) int {
	return int(float64(c.CombatStats().Speed) * effect.StageMultiplier(c.Stages().Speed))
}

// player wraps a player creature with the trainer's passive stat multipliers.
func (b *Battle) player(c *creature.Creature) Combatant {
	return boosted{Combatant: c, mult: b.passive}
}

func (b *Battle) passive(stat effect.Stat) float64 {
	return b.trainer.PassiveStatMultiplier(b.deps.Skills, stat)
}

func findCreature(cs []*creature.Creature, id string) *creature.Creature {
	for _, c := range cs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (b *Battle) resolveAction(ctx context.Context, qa queuedAction) {
	b.logger.Debug("resolving action",
		zapBattle(b),
		zap.String("actor", qa.actorID),
		zap.Int("priority", qa.priority),
	)
	switch qa.kind {
	case actorPlayerTrainer:
		if b.trainer.CurrentHP <= 0 {
			return
		}
		b.resolveTrainerAction(ctx, qa.trainer)
	case actorEnemyTrainer:
		if b.enemy.CurrentHP <= 0 {
			return
		}
		b.resolveEnemyTrainer()
	case actorPlayerCreature, actorEnemyCreature:
		side := b.playerActive
		if qa.kind == actorEnemyCreature {
			side = b.enemyActive
		}
		c := findCreature(side, qa.actorID)
		if c == nil || c.Fainted {
			return
		}
		move, _ := b.deps.Factory.Catalog().Move(qa.creature.MoveID)
		var moveType typechart.Type
		if move != nil {
			moveType = move.Type
		}
		if !b.canAct(c, moveType) {
			return
		}
		b.resolveCreatureAction(c, qa.kind == actorEnemyCreature, qa.creature)
	}
}

// canAct runs the pre-action status gates and reports whether c may act.
// A confused creature that hits itself takes the damage here.
func (b *Battle) canAct(c *creature.Creature, moveType typechart.Type) bool {
	name := c.DisplayName()
	src := b.deps.Roller
	switch c.Status {
	case effect.StatusSleep:
		c.SleepTurns--
		if c.SleepTurns <= 0 || effect.CheckSleepWake(src, c.SleepTurns) {
			c.ClearStatus()
			b.addLog(fmt.Sprintf("%s woke up!", name))
		} else {
			b.addLog(fmt.Sprintf("%s is fast asleep.", name))
			return false
		}
	case effect.StatusFreeze:
		if effect.CheckFreezeThaw(src, string(moveType)) {
			c.ClearStatus()
			b.addLog(fmt.Sprintf("%s thawed out!", name))
		} else {
			b.addLog(fmt.Sprintf("%s is frozen solid!", name))
			return false
		}
	case effect.StatusParalysis:
		if effect.CheckParalysis(src) {
			b.addLog(fmt.Sprintf("%s is paralyzed! It can't move!", name))
			return false
		}
	}

	if c.Confused {
		c.ConfusionTurns--
		if c.ConfusionTurns <= 0 || effect.CheckConfusionEnd(src, c.ConfusionTurns) {
			c.Confused = false
			c.ConfusionTurns = 0
			b.addLog(fmt.Sprintf("%s snapped out of its confusion!", name))
		} else {
			b.addLog(fmt.Sprintf("%s is confused!", name))
			if effect.CheckConfusionSelfHit(src) {
				b.addLog("It hurt itself in its confusion!")
				self := b.combatant(c)
				res := CalculateDamage(src, self, self, confusionHit)
				fainted := c.TakeDamage(res.Damage)
				b.addEvent(c.ID, res.Damage, EventDamage)
				if fainted {
					b.faint(c)
				}
				return false
			}
		}
	}

	if b.flinched[c.ID] {
		delete(b.flinched, c.ID)
		b.addLog(fmt.Sprintf("%s flinched!", name))
		return false
	}
	return true
}

// combatant returns c as damage code sees it: boosted when it is the player's.
func (b *Battle) combatant(c *creature.Creature) Combatant {
	if findCreature(b.playerActive, c.ID) != nil {
		return b.player(c)
	}
	return c
}

// endOfTurn applies status damage to every conscious creature on the field.
func (b *Battle) endOfTurn() {
	field := append(living(b.playerActive), living(b.enemyActive)...)
	for _, c := range field {
		if c.Status == effect.StatusNone {
			continue
		}
		sd := effect.ProcessStatusDamage(c.Status, c.MaxHP, c.ToxicCounter)
		if sd.Damage <= 0 {
			continue
		}
		fainted := c.TakeDamage(sd.Damage)
		b.addLog(fmt.Sprintf("%s %s", c.DisplayName(), sd.Message))
		b.addEvent(c.ID, sd.Damage, EventDamage)
		if c.Status == effect.StatusBadlyPoisoned {
			c.ToxicCounter++
		}
		if fainted {
			b.faint(c)
		}
	}
	b.flinched = make(map[string]bool)
}

// outcome reports the terminal event the battle has reached, if any.
func (b *Battle) outcome() (string, bool) {
	switch {
	case b.trainer.CurrentHP <= 0:
		return evLose, true
	case b.enemyDefeated():
		return evWin, true
	case len(living(b.playerActive)) == 0 && len(b.partyReserve()) == 0:
		return evLose, true
	}
	return "", false
}

func (b *Battle) enemyDefeated() bool {
	if len(living(b.enemyActive)) > 0 {
		return false
	}
	return len(b.enemyReserve()) == 0
}

// benched lists the conscious creatures of roster not on field.
func benched(roster, field []*creature.Creature) []*creature.Creature {
	var out []*creature.Creature
	for _, c := range roster {
		if !c.Fainted && findCreature(field, c.ID) == nil {
			out = append(out, c)
		}
	}
	return out
}

func (b *Battle) enemyReserve() []*creature.Creature {
	if b.enemy == nil {
		return nil
	}
	return benched(b.enemy.Creatures, b.enemyActive)
}

func (b *Battle) partyReserve() []*creature.Creature {
	return benched(b.trainer.Party, b.playerActive)
}

// refill replaces fainted field creatures on both sides from their reserves.
func (b *Battle) refill() {
	for _, c := range b.partyReserve() {
		if !swapIn(b.playerActive, c) {
			break
		}
		b.addLog(fmt.Sprintf("Go! %s!", c.DisplayName()))
	}
	for _, c := range b.enemyReserve() {
		if !swapIn(b.enemyActive, c) {
			break
		}
		b.addLog(fmt.Sprintf("%s sent out %s!", b.enemy.Name, c.DisplayName()))
	}
}

// swapIn puts c in the first fainted slot of field and reports whether one existed.
func swapIn(field []*creature.Creature, c *creature.Creature) bool {
	for i, a := range field {
		if a.Fainted {
			c.ResetVolatile()
			field[i] = c
			return true
		}
	}
	return false
}

// concede logs the closing lines for a decided battle.
func (b *Battle) concede(event string) {
	if event == evLose && b.trainer.CurrentHP > 0 {
		b.addLog("All your creatures fainted!")
	}
	if b.enemy == nil {
		return
	}
	line := b.enemy.Dialogue.Win
	if event == evWin {
		line = b.enemy.Dialogue.Lose
	}
	if line != "" {
		b.addLog(line)
	}
}
