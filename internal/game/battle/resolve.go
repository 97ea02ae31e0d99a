package battle

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/ai"
	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
)

// DefaultExpYield is used when a fainted creature's species is unknown.
const DefaultExpYield = 50

// SplashPowerThreshold is the power at which a single-target enemy move
// grazes the player trainer for half damage.
const SplashPowerThreshold = 100

func (b *Battle) resolveTrainerAction(ctx context.Context, a *TrainerAction) {
	switch a.Type {
	case TrainerFlee:
		chance := b.deps.Config.WildFleeChance
		if b.kind == KindTrainer {
			chance = 0
		}
		if b.deps.Roller.Percent("flee", chance) {
			b.addLog("Got away safely!")
			b.finish(ctx, evFlee)
			return
		}
		b.addLog("Can't escape!")
	case TrainerItem:
		b.useItem(ctx, a)
	case TrainerSwitch:
		b.addLog("Switched creatures!")
	case TrainerSkill:
		name := a.SkillID
		if s, err := b.deps.Skills.Skill(a.SkillID); err == nil {
			name = s.Name
		}
		b.addLog(fmt.Sprintf("Used %s!", name))
	case TrainerCommand:
		b.logger.Debug("trainer command", zapBattle(b))
	}
}

func (b *Battle) useItem(ctx context.Context, a *TrainerAction) {
	def, ok := b.deps.Items.Item(a.ItemID)
	if !ok {
		b.addLog(fmt.Sprintf("Used %s!", a.ItemID))
		return
	}
	if !b.inventory.Has(def.ID) {
		b.addLog(fmt.Sprintf("You don't have any %s!", def.Name))
		return
	}
	b.addLog(fmt.Sprintf("Used %s!", def.Name))
	if def.IsCapture() {
		b.capture(ctx, def)
		return
	}

	c := b.itemTarget(def, a.TargetID)
	if c == nil {
		b.addLog("It won't have any effect.")
		return
	}
	before := c.CurrentHP
	msg, used := def.Use(c)
	if used {
		b.inventory.Remove(def.ID, 1)
	}
	b.addLog(msg)
	if healed := c.CurrentHP - before; healed > 0 {
		b.addEvent(c.ID, healed, EventHeal)
	}
}

// itemTarget resolves the party creature a non-capture item is used on.
func (b *Battle) itemTarget(def *inventory.ItemDef, targetID string) *creature.Creature {
	if targetID != "" {
		return findCreature(b.trainer.Party, targetID)
	}
	if def.TargetsFainted() {
		for _, c := range b.trainer.Party {
			if c.Fainted {
				return c
			}
		}
		return nil
	}
	if live := living(b.playerActive); len(live) > 0 {
		return live[0]
	}
	return nil
}

func (b *Battle) capture(ctx context.Context, def *inventory.ItemDef) {
	if b.kind == KindTrainer {
		b.addLog("You can't capture another trainer's creature!")
		return
	}
	candidates := living(b.enemyActive)
	if len(candidates) == 0 {
		b.addLog("There is no one to capture!")
		return
	}
	target := candidates[dice.Pick(b.deps.Roller, len(candidates))]
	b.inventory.Remove(def.ID, 1)

	caught := def.Effect.Guaranteed ||
		b.deps.Roller.Percent("capture", int(float64(b.deps.Config.CaptureChance)*def.Effect.CaptureBonus))
	if !caught {
		b.addLog("Oh no! The creature broke free!")
		return
	}
	b.addLog(fmt.Sprintf("Gotcha! %s was caught!", target.DisplayName()))
	target.ResetVolatile()
	if !b.trainer.AddCreature(target) {
		b.addLog(fmt.Sprintf("%s was sent to the box.", target.DisplayName()))
	}
	b.logger.Info("creature captured",
		zapBattle(b),
		zap.String("creature", target.ID),
		zap.String("species", target.SpeciesID),
	)
	b.finish(ctx, evWin)
}

// resolveEnemyTrainer runs the enemy trainer's AI domain, if it has one.
// Without a domain the enemy trainer passes.
func (b *Battle) resolveEnemyTrainer() {
	if b.enemy.AIDomain == "" || b.deps.Planners == nil {
		return
	}
	planner, ok := b.deps.Planners.PlannerFor(b.enemy.AIDomain)
	if !ok {
		b.logger.Warn("enemy ai domain not registered",
			zapBattle(b),
			zap.String("domain", b.enemy.AIDomain),
		)
		return
	}
	plan, err := planner.Plan(b.worldState())
	if err != nil {
		b.logger.Warn("enemy ai planning failed", zapBattle(b), zap.Error(err))
		return
	}
	if len(plan) == 0 {
		return
	}
	act := plan[0]
	b.logger.Debug("enemy ai action",
		zapBattle(b),
		zap.String("action", act.Action),
		zap.String("target", act.Target),
	)
	if act.Action != ai.ActionHeal {
		return
	}
	item := act.Item
	if item == "" {
		item = "potion"
	}
	c, found := b.enemy.Creature(act.Target)
	if !found {
		return
	}
	before := c.CurrentHP
	msg, used := b.enemy.UseItem(b.deps.Items, item, c.ID)
	if !used {
		return
	}
	name := item
	if def, ok := b.deps.Items.Item(item); ok {
		name = def.Name
	}
	b.addLog(fmt.Sprintf("%s used %s!", b.enemy.Name, name))
	b.addLog(msg)
	if healed := c.CurrentHP - before; healed > 0 {
		b.addEvent(c.ID, healed, EventHeal)
	}
}

// worldState snapshots the field from the enemy trainer's point of view.
func (b *Battle) worldState() *ai.WorldState {
	ws := &ai.WorldState{
		Actor: &ai.ActorState{
			UID:   b.enemy.ID,
			Name:  b.enemy.Name,
			Side:  ai.SideEnemy,
			HP:    b.enemy.CurrentHP,
			MaxHP: b.enemy.MaxHP,
			Items: make(map[string]int, len(b.enemy.Items)),
		},
		Turn: b.turn,
	}
	for id, n := range b.enemy.Items {
		ws.Actor.Items[id] = n
	}
	add := func(side string, cs []*creature.Creature) {
		for _, c := range cs {
			ws.Combatants = append(ws.Combatants, &ai.CombatantState{
				UID:     c.ID,
				Name:    c.DisplayName(),
				Side:    side,
				HP:      c.CurrentHP,
				MaxHP:   c.MaxHP,
				Level:   c.Level,
				Status:  string(c.Status),
				Fainted: c.Fainted,
			})
		}
	}
	add(ai.SideEnemy, b.enemyActive)
	add(ai.SidePlayer, b.playerActive)
	return ws
}

func (b *Battle) resolveCreatureAction(c *creature.Creature, enemySide bool, a *CreatureAction) {
	move, err := b.deps.Factory.Catalog().Move(a.MoveID)
	if err != nil {
		b.addLog(fmt.Sprintf("%s tried to use unknown move: %s", c.DisplayName(), a.MoveID))
		return
	}
	b.addLog(fmt.Sprintf("%s used %s!", c.DisplayName(), move.Name))

	targets := b.resolveTargets(c, enemySide, move, a.TargetID)
	if len(targets) == 0 {
		b.addLog("But there was no target...")
		return
	}
	for _, t := range targets {
		if c.Fainted {
			return
		}
		b.applyMove(c, enemySide, t, move)
	}
}

// resolveTargets expands a creature action's target into live combatants.
func (b *Battle) resolveTargets(c *creature.Creature, enemySide bool, move *catalog.Move, targetID string) []Combatant {
	own, opp := b.playerActive, b.enemyActive
	if enemySide {
		own, opp = b.enemyActive, b.playerActive
	}
	switch targetID {
	case TargetAllOpponents:
		return combatants(living(opp))
	case TargetAllAllies:
		return combatants(living(own))
	case TargetAllField:
		return combatants(append(living(b.playerActive), living(b.enemyActive)...))
	}
	if move.Target == catalog.TargetSelf || move.Target == catalog.TargetUser {
		return []Combatant{c}
	}
	if enemySide && targetID == b.trainer.ID {
		return []Combatant{b.trainer}
	}
	if t := findCreature(opp, targetID); t != nil {
		if !t.Fainted {
			return []Combatant{t}
		}
		if live := living(opp); len(live) > 0 {
			return []Combatant{live[0]}
		}
		return nil
	}
	if t := findCreature(own, targetID); t != nil && !t.Fainted {
		return []Combatant{t}
	}
	return nil
}

func combatants(cs []*creature.Creature) []Combatant {
	out := make([]Combatant, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

// applyMove resolves move from attacker against one target: accuracy,
// damage, faint, experience, trainer splash, then secondary effects.
func (b *Battle) applyMove(attacker *creature.Creature, enemySide bool, target Combatant, move *catalog.Move) {
	targetCreature, isCreature := target.(*creature.Creature)
	src := b.deps.Roller

	passive := 1.0
	if !enemySide {
		passive = b.passive(effect.Accuracy)
	}
	chance := HitChance(move, attacker.Modifiers, target.Stages(), passive)
	if float64(src.Intn(100)) >= chance {
		b.addLog(fmt.Sprintf("Missed %s!", target.CombatName()))
		b.addEvent(target.CombatID(), 0, EventMiss)
		return
	}

	defender := target
	if isCreature {
		defender = b.combatant(targetCreature)
	}
	res := CalculateDamage(src, b.combatant(attacker), defender, move)
	damage := 0
	if move.Category != catalog.Status {
		if res.Effectiveness == 0 {
			b.addLog("It had no effect...")
			return
		}
		damage = res.Damage
		b.hit(attacker, enemySide, target, res, move)
	}

	if isCreature {
		b.applyEffects(attacker, targetCreature, move, damage)
	}
}

// hit applies a successful damaging hit and everything that follows from it.
func (b *Battle) hit(attacker *creature.Creature, enemySide bool, target Combatant, res DamageResult, move *catalog.Move) {
	fainted := target.TakeDamage(res.Damage)
	kind := EventDamage
	if res.Critical {
		kind = EventCritical
	}
	b.addEvent(target.CombatID(), res.Damage, kind)
	switch {
	case res.Effectiveness > 1:
		b.addLog("It's super effective!")
	case res.Effectiveness < 1:
		b.addLog("It's not very effective...")
	}
	if res.Critical {
		b.addLog("A critical hit!")
	}

	targetCreature, isCreature := target.(*creature.Creature)
	if !isCreature {
		if fainted && target == Combatant(b.trainer) {
			b.addLog("You blacked out!")
		}
		return
	}
	foe := findCreature(b.enemyActive, targetCreature.ID) != nil
	if !enemySide && foe && res.Damage > 0 {
		b.participate(targetCreature.ID, attacker.ID)
	}
	if fainted {
		b.faint(targetCreature)
	}
	if enemySide && !foe && res.Damage > 0 {
		b.splash(move, res.Damage)
	}
}

func (b *Battle) participate(enemyID, creatureID string) {
	if !slices.Contains(b.participation[enemyID], creatureID) {
		b.participation[enemyID] = append(b.participation[enemyID], creatureID)
	}
}

// splash carries an enemy hit on a player creature over to the player trainer.
func (b *Battle) splash(move *catalog.Move, damage int) {
	var amount int
	switch {
	case move.IsAreaOfEffect():
		b.addLog("The attack also hit the trainer!")
		amount = damage
	case move.Power >= SplashPowerThreshold:
		b.addLog("The powerful attack grazed the trainer!")
		amount = damage / 2
	default:
		return
	}
	b.addEvent(b.trainer.ID, amount, EventDamage)
	if b.trainer.Damage(amount) {
		b.addLog("You blacked out!")
	}
}

// faint logs c fainting. An enemy creature's faint awards experience however
// it went down.
func (b *Battle) faint(c *creature.Creature) {
	b.addLog(fmt.Sprintf("%s fainted!", c.DisplayName()))
	if findCreature(b.enemyActive, c.ID) != nil {
		b.awardExp(c)
	}
}

// awardExp distributes experience for a fainted enemy creature to the
// conscious player creatures that damaged it, and the trainer's share.
func (b *Battle) awardExp(fainted *creature.Creature) {
	yield := DefaultExpYield
	if sp, err := b.deps.Factory.Catalog().Species(fainted.SpeciesID); err == nil {
		yield = sp.ExpYield
	}
	trainerBattle := b.kind == KindTrainer

	var earners []*creature.Creature
	for _, id := range b.participation[fainted.ID] {
		if c := findCreature(b.playerActive, id); c != nil && !c.Fainted {
			earners = append(earners, c)
		}
	}
	if len(earners) > 0 {
		xp := ExpGain(yield, fainted.Level, trainerBattle, len(earners))
		for _, c := range earners {
			b.addLog(fmt.Sprintf("%s gained %d Exp. Points!", c.DisplayName(), xp))
			for _, line := range b.deps.Factory.GainExp(c, xp) {
				b.addLog(line)
			}
		}
	}

	if xp := TrainerExpGain(yield, fainted.Level, trainerBattle); xp > 0 {
		b.addLog(fmt.Sprintf("Trainer gained %d Exp. Points!", xp))
		if up, level := b.trainer.AddExp(xp); up {
			b.addLog(fmt.Sprintf("Trainer leveled up to Lv. %d!", level))
			b.addLog("Trainer gained 1 Skill Point!")
		}
	}
}

// applyEffects rolls and applies each parsed secondary effect of move.
func (b *Battle) applyEffects(attacker, target *creature.Creature, move *catalog.Move, damage int) {
	for _, e := range move.Effects {
		if !b.deps.Roller.Percent("secondary effect", e.Chance) {
			continue
		}
		subject := target
		if e.Target == effect.TargetSelf {
			subject = attacker
		}
		if subject.Fainted {
			continue
		}
		switch e.Kind {
		case effect.KindStatChange:
			if e.Stat == "" || e.Stages == 0 {
				continue
			}
			res := effect.ApplyStatModifier(&subject.Modifiers, e.Stat, e.Stages)
			b.addLog(fmt.Sprintf("%s's %s %s", subject.DisplayName(), e.Stat.DisplayName(), res.Message))
		case effect.KindStatus:
			b.inflict(subject, e.Status)
		case effect.KindHeal:
			healed := subject.Heal(subject.MaxHP * e.HealPercent / 100)
			b.addEvent(subject.ID, healed, EventHeal)
			b.addLog(fmt.Sprintf("%s regained health!", subject.DisplayName()))
		case effect.KindDrain:
			if damage <= 0 {
				continue
			}
			healed := attacker.Heal(damage * e.DrainPercent / 100)
			b.addEvent(attacker.ID, healed, EventHeal)
			b.addLog(fmt.Sprintf("%s drained energy!", attacker.DisplayName()))
		case effect.KindRecoil:
			if damage <= 0 {
				continue
			}
			recoil := max(1, damage*e.RecoilPercent/100)
			fainted := attacker.TakeDamage(recoil)
			b.addEvent(attacker.ID, recoil, EventDamage)
			b.addLog(fmt.Sprintf("%s is hit with recoil!", attacker.DisplayName()))
			if fainted {
				b.faint(attacker)
				return
			}
		}
	}
}

// inflict applies a major or volatile status to c.
func (b *Battle) inflict(c *creature.Creature, status effect.Status) {
	conds := b.deps.Conditions
	switch {
	case status.IsMajor():
		if !effect.CanApplyMajorStatus(c.Status) {
			b.addLog("But it failed!")
			return
		}
		if conds.Immune(status, c.Types) {
			b.addLog(fmt.Sprintf("It doesn't affect %s...", c.DisplayName()))
			return
		}
		c.SetStatus(status, conds.RollDuration(status, b.deps.Roller))
		b.addLog(conds.InflictMessage(status, c.DisplayName()))
	case status == effect.StatusConfusion:
		if !c.Confuse(conds.RollDuration(status, b.deps.Roller)) {
			b.addLog("But it failed!")
			return
		}
		b.addLog(conds.InflictMessage(status, c.DisplayName()))
	case status == effect.StatusFlinch:
		b.flinched[c.ID] = true
	}
}
