// Package battle implements the turn-based battle engine: phase state
// machine, action queue, damage, status gates, experience and battle end.
package battle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/ai"
	"github.com/cory-johannsen/tamer/internal/game/condition"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/enemy"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
)

var (
	// ErrInvalidPhase is returned when an operation is not allowed in the
	// battle's current phase. The battle is left unchanged.
	ErrInvalidPhase = errors.New("battle: operation not allowed in current phase")
	// ErrInvalidAction is returned for a malformed selection.
	ErrInvalidAction = errors.New("battle: invalid action")
	// ErrNoCreatures is returned when a side has nothing able to fight.
	ErrNoCreatures = errors.New("battle: no creature able to fight")
)

// Kind distinguishes wild encounters from trainer battles.
type Kind string

const (
	KindWild    Kind = "wild"
	KindTrainer Kind = "trainer"
)

// Config holds the battle tuning knobs.
type Config struct {
	// StartDelay is how long Begin waits in the start phase.
	StartDelay time.Duration
	// ActionDelay paces consecutive queued actions. Zero disables pacing.
	ActionDelay time.Duration
	LogLimit    int
	// WildFleeChance is the percent chance fleeing a wild battle succeeds.
	WildFleeChance int
	// CaptureChance is the base percent chance a capture item succeeds,
	// before the item's bonus multiplier.
	CaptureChance int
}

// DefaultConfig returns the standard pacing and odds.
func DefaultConfig() Config {
	return Config{
		StartDelay:     1500 * time.Millisecond,
		ActionDelay:    800 * time.Millisecond,
		LogLimit:       DefaultLogLimit,
		WildFleeChance: 50,
		CaptureChance:  50,
	}
}

// Deps are the collaborators a battle needs.
type Deps struct {
	Factory *creature.Factory
	Roller  *dice.Roller
	// Skills, Items and Conditions fall back to the built-in defaults when nil.
	Skills     *trainer.SkillRegistry
	Items      *inventory.Registry
	Conditions *condition.Registry
	// Planners resolves enemy trainer AI domains; nil means every enemy
	// trainer skips its turn.
	Planners *ai.Registry
	Logger   *zap.Logger
	Config   Config
}

// Battle is one battle between the player's trainer and either wild creatures
// or an enemy trainer.
//
// Battle is safe for concurrent use: every method serializes on an internal
// mutex, and ExecuteTurn holds it for the whole resolution so readers never
// observe a half-resolved turn.
type Battle struct {
	mu     sync.Mutex
	id     string
	deps   Deps
	logger *zap.Logger
	phase  *fsm.FSM

	kind      Kind
	trainer   *trainer.Trainer
	inventory *inventory.Inventory
	enemy     *enemy.Trainer

	playerActive []*creature.Creature
	enemyActive  []*creature.Creature

	turn     int
	interval int
	plan     TurnPlan
	cursor   int
	active   bool

	log    []string
	events []DamageEvent
	// participation maps an enemy creature id to the player creatures that
	// damaged it, in first-hit order.
	participation map[string][]string
	flinched      map[string]bool
}

// New creates an idle battle for tr and inv. Call StartWild or StartTrainer
// to begin an encounter.
//
// Precondition: deps.Factory, deps.Roller, tr and inv must be non-nil.
func New(deps Deps, tr *trainer.Trainer, inv *inventory.Inventory) (*Battle, error) {
	if deps.Factory == nil || deps.Roller == nil {
		return nil, errors.New("battle: factory and roller are required")
	}
	if tr == nil || inv == nil {
		return nil, errors.New("battle: trainer and inventory are required")
	}
	if deps.Skills == nil {
		deps.Skills = trainer.DefaultSkills()
	}
	if deps.Items == nil {
		deps.Items = inventory.DefaultRegistry()
	}
	if deps.Conditions == nil {
		deps.Conditions = condition.Defaults()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.LogLimit <= 0 {
		deps.Config.LogLimit = DefaultLogLimit
	}
	return &Battle{
		deps:      deps,
		logger:    deps.Logger,
		phase:     newPhaseMachine(),
		trainer:   tr,
		inventory: inv,
	}, nil
}

// StartWild begins an encounter against up to trainer.ActiveLimit wild creatures.
//
// Postcondition: Phase() == PhaseStart; the opening line names every wild creature.
func (b *Battle) StartWild(wild []*creature.Creature) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var foes []*creature.Creature
	for _, c := range wild {
		if len(foes) < trainer.ActiveLimit && !c.Fainted {
			foes = append(foes, c)
		}
	}
	if len(foes) == 0 {
		return fmt.Errorf("%w: no wild creatures", ErrNoCreatures)
	}
	if err := b.reset(KindWild, nil, foes); err != nil {
		return err
	}
	names := make([]string, len(foes))
	for i, c := range foes {
		names[i] = c.DisplayName()
	}
	b.addLog(fmt.Sprintf("Wild %s appeared!", strings.Join(names, ", ")))
	return nil
}

// StartTrainer begins a battle against e's first trainer.ActiveLimit
// conscious creatures.
//
// Postcondition: Phase() == PhaseStart; the opening line is e's intro.
func (b *Battle) StartTrainer(e *enemy.Trainer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e == nil {
		return fmt.Errorf("%w: nil enemy trainer", ErrInvalidAction)
	}
	foes := e.Active()
	if len(foes) == 0 {
		return fmt.Errorf("%w: %s has no conscious creatures", ErrNoCreatures, e.Name)
	}
	if err := b.reset(KindTrainer, e, foes); err != nil {
		return err
	}
	b.addLog(e.Intro())
	return nil
}

func (b *Battle) reset(kind Kind, e *enemy.Trainer, foes []*creature.Creature) error {
	mine := b.trainer.ActiveCreatures()
	if len(mine) == 0 {
		return fmt.Errorf("%w: %s has no conscious creatures", ErrNoCreatures, b.trainer.Name)
	}
	for _, c := range mine {
		c.ResetVolatile()
	}
	for _, c := range foes {
		c.ResetVolatile()
	}
	b.id = uuid.NewString()
	b.phase = newPhaseMachine()
	b.kind = kind
	b.enemy = e
	b.playerActive = mine
	b.enemyActive = foes
	b.turn = 1
	b.interval = b.trainer.ActionInterval()
	b.plan = TurnPlan{}
	b.cursor = 0
	b.active = true
	b.log = nil
	b.events = nil
	b.participation = make(map[string][]string)
	b.flinched = make(map[string]bool)
	b.logger.Info("battle started",
		zapBattle(b),
		zap.String("kind", string(kind)),
		zap.Int("player_creatures", len(mine)),
		zap.Int("enemy_creatures", len(foes)),
	)
	return nil
}

// Begin waits out the start delay, then enters the first selection phase.
//
// Precondition: Phase() == PhaseStart.
// Postcondition: Phase() is PhaseTrainerSelect on a trainer turn, else
// PhaseCreatureSelect; returns ctx.Err() if ctx ends first.
func (b *Battle) Begin(ctx context.Context) error {
	b.mu.Lock()
	if !b.active || Phase(b.phase.Current()) != PhaseStart {
		b.mu.Unlock()
		return fmt.Errorf("%w: begin from %s", ErrInvalidPhase, b.phase.Current())
	}
	id := b.id
	delay := b.deps.Config.StartDelay
	b.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id != id || Phase(b.phase.Current()) != PhaseStart {
		return fmt.Errorf("%w: battle changed during start delay", ErrInvalidPhase)
	}
	return b.nextSelection(ctx)
}

// isTrainerTurn reports whether the player trainer acts this turn.
func (b *Battle) isTrainerTurn() bool {
	return b.turn == 1 || b.turn%b.interval == 1
}

func (b *Battle) nextSelection(ctx context.Context) error {
	b.plan = TurnPlan{}
	b.cursor = 0
	if b.isTrainerTurn() {
		return b.transition(ctx, evTrainerTurn)
	}
	return b.transition(ctx, evCreatureTurn)
}

// selectable lists the player creatures that still choose a move this turn.
func (b *Battle) selectable() []*creature.Creature {
	return living(b.playerActive)
}

// SetTrainerAction records the player trainer's choice.
//
// Precondition: Phase() == PhaseTrainerSelect.
// Postcondition: Phase() is PhaseCreatureSelect with the cursor on the first
// creature, or PhaseResolution when no creature can choose.
func (b *Battle) SetTrainerAction(ctx context.Context, a TrainerAction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Current()) != PhaseTrainerSelect {
		return fmt.Errorf("%w: trainer action in %s", ErrInvalidPhase, b.phase.Current())
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: trainer action type %q", ErrInvalidAction, a.Type)
	}
	b.plan = TurnPlan{TrainerAction: &a}
	b.cursor = 0
	if len(b.selectable()) == 0 {
		return b.transition(ctx, evResolve)
	}
	return b.transition(ctx, evCreatureTurn)
}

// SetCreatureAction records the move and target for the creature under the
// selection cursor and advances the cursor.
//
// Precondition: Phase() == PhaseCreatureSelect.
// Postcondition: after the last creature, Phase() == PhaseResolution.
func (b *Battle) SetCreatureAction(ctx context.Context, moveID, targetID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Current()) != PhaseCreatureSelect {
		return fmt.Errorf("%w: creature action in %s", ErrInvalidPhase, b.phase.Current())
	}
	choosers := b.selectable()
	if b.cursor >= len(choosers) {
		return fmt.Errorf("%w: no creature left to choose", ErrInvalidAction)
	}
	c := choosers[b.cursor]
	move, _ := b.deps.Factory.Catalog().Move(moveID)
	b.plan.CreatureActions = append(b.plan.CreatureActions, CreatureAction{
		CreatureID: c.ID,
		MoveID:     moveID,
		TargetID:   targetForMove(move, targetID),
	})
	b.cursor++
	if b.cursor >= len(choosers) {
		return b.transition(ctx, evResolve)
	}
	return nil
}

// finish ends the battle in the terminal phase reached by event.
//
// Postcondition: the battle is inactive and the volatile state of every
// party creature is reset.
func (b *Battle) finish(ctx context.Context, event string) {
	if err := b.transition(ctx, event); err != nil {
		b.logger.Error("battle end transition", zapBattle(b), zap.Error(err))
	}
	b.active = false
	for _, c := range b.trainer.Party {
		c.ResetVolatile()
	}
	b.flinched = make(map[string]bool)
	b.logger.Info("battle ended",
		zapBattle(b),
		zapPhase(Phase(b.phase.Current())),
		zap.Int("turn", b.turn),
	)
}

// ID returns the battle's unique id; it changes on every start.
func (b *Battle) ID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// Phase returns the current phase.
func (b *Battle) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Phase(b.phase.Current())
}

// Active reports whether the battle is in progress.
func (b *Battle) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Kind returns whether this is a wild or trainer battle.
func (b *Battle) Kind() Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kind
}

// Turn returns the 1-based turn number.
func (b *Battle) Turn() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.turn
}

// IsTrainerTurn reports whether the player trainer acts this turn.
func (b *Battle) IsTrainerTurn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isTrainerTurn()
}

// Log returns a copy of the most recent log lines, oldest first.
func (b *Battle) Log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.log...)
}

// DrainEvents returns and clears the pending damage-number events.
func (b *Battle) DrainEvents() []DamageEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

// Plan returns a copy of the selections made so far this turn.
func (b *Battle) Plan() TurnPlan {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := TurnPlan{CreatureActions: append([]CreatureAction(nil), b.plan.CreatureActions...)}
	if b.plan.TrainerAction != nil {
		a := *b.plan.TrainerAction
		p.TrainerAction = &a
	}
	return p
}

// CurrentCreature returns the creature under the selection cursor.
func (b *Battle) CurrentCreature() (*creature.Creature, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if Phase(b.phase.Current()) != PhaseCreatureSelect {
		return nil, false
	}
	choosers := b.selectable()
	if b.cursor >= len(choosers) {
		return nil, false
	}
	return choosers[b.cursor], true
}

// PlayerCreatures returns the player's creatures in this battle.
func (b *Battle) PlayerCreatures() []*creature.Creature {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*creature.Creature(nil), b.playerActive...)
}

// EnemyCreatures returns the opposing creatures currently on the field.
func (b *Battle) EnemyCreatures() []*creature.Creature {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*creature.Creature(nil), b.enemyActive...)
}

// Enemy returns the enemy trainer, or nil in a wild battle.
func (b *Battle) Enemy() *enemy.Trainer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enemy
}

// Participants returns the player creature ids that damaged enemy creature id.
func (b *Battle) Participants(enemyID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.participation[enemyID]...)
}

func living(cs []*creature.Creature) []*creature.Creature {
	var out []*creature.Creature
	for _, c := range cs {
		if !c.Fainted {
			out = append(out, c)
		}
	}
	return out
}
