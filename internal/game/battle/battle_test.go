package battle_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/enemy"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func testCatalog(t testingT) *catalog.Catalog {
	t.Helper()
	mv := func(id string, ty typechart.Type, cat catalog.Category, power int, target string, effects ...effect.Parsed) *catalog.Move {
		return &catalog.Move{
			ID: id, Name: catalog.DisplayName(id), Type: ty, Category: cat, Power: power,
			Accuracy: 100, PP: 20, Target: target, EffectChance: 100, Effects: effects,
		}
	}
	single := catalog.TargetSelectedOther
	moves := []*catalog.Move{
		mv("tackle", typechart.Normal, catalog.Physical, 40, single),
		mv("growl", typechart.Normal, catalog.Status, 0, catalog.TargetAllOpponents,
			effect.Parsed{Kind: effect.KindStatChange, Stat: effect.Atk, Stages: -1, Chance: 100, Target: effect.TargetOpponent}),
		mv("ember", typechart.Fire, catalog.Special, 40, single,
			effect.Parsed{Kind: effect.KindStatus, Status: effect.StatusBurn, Chance: 10, Target: effect.TargetOpponent}),
		mv("thunder_wave", typechart.Electric, catalog.Status, 0, single,
			effect.Parsed{Kind: effect.KindStatus, Status: effect.StatusParalysis, Chance: 100, Target: effect.TargetOpponent}),
		mv("surf", typechart.Water, catalog.Special, 90, catalog.TargetAllOpponents),
		mv("hyper_beam", typechart.Normal, catalog.Special, 150, single),
	}
	lvl := func(id string) catalog.LearnableMove {
		return catalog.LearnableMove{MoveID: id, Level: 1, Method: catalog.MethodLevelUp}
	}
	sp := func(id string, ty typechart.Type, stats effect.Stats, yield int, learn ...string) *catalog.Species {
		s := &catalog.Species{
			ID: id, Name: catalog.DisplayName(id), Types: []typechart.Type{ty},
			BaseStats: stats, ExpYield: yield, GrowthRate: catalog.GrowthMedium,
		}
		for _, m := range learn {
			s.LearnableMoves = append(s.LearnableMoves, lvl(m))
		}
		return s
	}
	species := []*catalog.Species{
		sp("emberling", typechart.Fire, effect.Stats{HP: 40, Atk: 52, Def: 43, SpAtk: 60, SpDef: 50, Speed: 65}, 62, "tackle", "ember"),
		sp("sprout", typechart.Grass, effect.Stats{HP: 45, Atk: 49, Def: 49, SpAtk: 65, SpDef: 65, Speed: 45}, 64, "tackle", "growl"),
		sp("zapper", typechart.Electric, effect.Stats{HP: 35, Atk: 55, Def: 40, SpAtk: 50, SpDef: 50, Speed: 90}, 112, "tackle", "thunder_wave"),
	}
	c, err := catalog.New(species, moves, nil)
	require.NoError(t, err)
	return c
}

type fixture struct {
	factory *creature.Factory
	trainer *trainer.Trainer
	inv     *inventory.Inventory
	battle  *battle.Battle
}

func testConfig() battle.Config {
	cfg := battle.DefaultConfig()
	cfg.StartDelay = 0
	cfg.ActionDelay = 0
	cfg.LogLimit = 100
	return cfg
}

func newFixture(t testingT, starter string, src dice.Source, mutate ...func(*battle.Deps)) *fixture {
	t.Helper()
	f := creature.NewFactory(testCatalog(t), nil, dice.NewSeededSource(1), nil)
	tr, err := trainer.New("Red", starter, f)
	require.NoError(t, err)
	inv := inventory.NewDefault()
	deps := battle.Deps{
		Factory: f,
		Roller:  dice.NewLoggedRoller(src, nil),
		Config:  testConfig(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	b, err := battle.New(deps, tr, inv)
	require.NoError(t, err)
	return &fixture{factory: f, trainer: tr, inv: inv, battle: b}
}

func (fx *fixture) creature(t testingT, species string, level int) *creature.Creature {
	t.Helper()
	c, err := fx.factory.New(species, level, false)
	require.NoError(t, err)
	return c
}

// wild starts a wild battle against one creature and enters the first
// selection phase.
func (fx *fixture) wild(t testingT, species string, level int) *creature.Creature {
	t.Helper()
	c := fx.creature(t, species, level)
	require.NoError(t, fx.battle.StartWild([]*creature.Creature{c}))
	require.NoError(t, fx.battle.Begin(context.Background()))
	return c
}

// turn plays one full turn: the trainer action when it is a trainer turn,
// then move against target for every choosing creature.
func (fx *fixture) turn(t testingT, action battle.TrainerAction, move, target string) {
	t.Helper()
	ctx := context.Background()
	if fx.battle.Phase() == battle.PhaseTrainerSelect {
		require.NoError(t, fx.battle.SetTrainerAction(ctx, action))
	}
	for fx.battle.Phase() == battle.PhaseCreatureSelect {
		require.NoError(t, fx.battle.SetCreatureAction(ctx, move, target))
	}
	require.Equal(t, battle.PhaseResolution, fx.battle.Phase())
	require.NoError(t, fx.battle.ExecuteTurn(ctx))
}

var command = battle.TrainerAction{Type: battle.TrainerCommand}

func logHas(t testingT, b *battle.Battle, line string) {
	t.Helper()
	assert.Contains(t, b.Log(), line)
}

func logIndex(b *battle.Battle, prefix string) int {
	for i, l := range b.Log() {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := battle.New(battle.Deps{}, &trainer.Trainer{}, inventory.NewDefault())
	assert.Error(t, err)
	f := creature.NewFactory(testCatalog(t), nil, dice.NewSeededSource(1), nil)
	_, err = battle.New(battle.Deps{Factory: f, Roller: dice.NewLoggedRoller(dice.NewFixed(0), nil)}, nil, nil)
	assert.Error(t, err)
}

func TestStartWild_OpeningLine(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	a, b := fx.creature(t, "sprout", 3), fx.creature(t, "zapper", 3)
	require.NoError(t, fx.battle.StartWild([]*creature.Creature{a, b}))
	assert.Equal(t, battle.PhaseStart, fx.battle.Phase())
	assert.Equal(t, battle.KindWild, fx.battle.Kind())
	assert.True(t, fx.battle.Active())
	assert.Equal(t, []string{"Wild Sprout, Zapper appeared!"}, fx.battle.Log())
	assert.Len(t, fx.battle.EnemyCreatures(), 2)
}

func TestStartWild_Errors(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	err := fx.battle.StartWild(nil)
	assert.True(t, errors.Is(err, battle.ErrNoCreatures))

	fx.trainer.Party[0].Faint()
	err = fx.battle.StartWild([]*creature.Creature{fx.creature(t, "sprout", 3)})
	assert.True(t, errors.Is(err, battle.ErrNoCreatures))
}

func TestStartWild_ResetsVolatileState(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	fx.trainer.Party[0].Modifiers.Atk = 3
	fx.trainer.Party[0].Confuse(3)
	fx.wild(t, "sprout", 3)
	assert.Equal(t, effect.Modifiers{}, fx.trainer.Party[0].Modifiers)
	assert.False(t, fx.trainer.Party[0].Confused)
}

func TestBegin_HonoursContext(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0), func(d *battle.Deps) {
		d.Config.StartDelay = time.Hour
	})
	require.NoError(t, fx.battle.StartWild([]*creature.Creature{fx.creature(t, "sprout", 3)}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fx.battle.Begin(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, battle.PhaseStart, fx.battle.Phase())
}

func TestSelection_InvalidPhase(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	require.NoError(t, fx.battle.StartWild([]*creature.Creature{fx.creature(t, "sprout", 3)}))

	assert.True(t, errors.Is(fx.battle.SetTrainerAction(ctx, command), battle.ErrInvalidPhase))
	assert.True(t, errors.Is(fx.battle.SetCreatureAction(ctx, "tackle", ""), battle.ErrInvalidPhase))
	assert.True(t, errors.Is(fx.battle.ExecuteTurn(ctx), battle.ErrInvalidPhase))
	assert.Equal(t, battle.PhaseStart, fx.battle.Phase())

	require.NoError(t, fx.battle.Begin(ctx))
	assert.True(t, errors.Is(fx.battle.Begin(ctx), battle.ErrInvalidPhase))
	assert.True(t, errors.Is(fx.battle.SetCreatureAction(ctx, "tackle", ""), battle.ErrInvalidPhase))
	err := fx.battle.SetTrainerAction(ctx, battle.TrainerAction{Type: "dance"})
	assert.True(t, errors.Is(err, battle.ErrInvalidAction))
	assert.Equal(t, battle.PhaseTrainerSelect, fx.battle.Phase())
}

func TestSelection_Flow(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	wild := fx.wild(t, "sprout", 3)
	require.Equal(t, battle.PhaseTrainerSelect, fx.battle.Phase())
	assert.True(t, fx.battle.IsTrainerTurn())
	assert.Equal(t, 1, fx.battle.Turn())

	require.NoError(t, fx.battle.SetTrainerAction(ctx, command))
	require.Equal(t, battle.PhaseCreatureSelect, fx.battle.Phase())
	cur, ok := fx.battle.CurrentCreature()
	require.True(t, ok)
	assert.Same(t, fx.trainer.Party[0], cur)

	require.NoError(t, fx.battle.SetCreatureAction(ctx, "tackle", wild.ID))
	assert.Equal(t, battle.PhaseResolution, fx.battle.Phase())
	_, ok = fx.battle.CurrentCreature()
	assert.False(t, ok)

	plan := fx.battle.Plan()
	require.NotNil(t, plan.TrainerAction)
	assert.Equal(t, battle.TrainerCommand, plan.TrainerAction.Type)
	assert.Equal(t, []battle.CreatureAction{{CreatureID: cur.ID, MoveID: "tackle", TargetID: wild.ID}}, plan.CreatureActions)
}

func TestSelection_AreaMovesUseTokens(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, "sprout", dice.NewFixed(0))
	wild := fx.wild(t, "emberling", 3)
	require.NoError(t, fx.battle.SetTrainerAction(ctx, command))
	require.NoError(t, fx.battle.SetCreatureAction(ctx, "growl", wild.ID))
	assert.Equal(t, battle.TargetAllOpponents, fx.battle.Plan().CreatureActions[0].TargetID)
}

func TestTrainerTurnInterval(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "sprout", 3)
	wild.Moves = []string{"growl"}
	for turn := 1; turn <= 5; turn++ {
		assert.Equal(t, turn == 1, fx.battle.IsTrainerTurn(), "turn %d", turn)
		fx.turn(t, command, "growl", wild.ID)
		require.True(t, fx.battle.Active())
	}
	assert.Equal(t, 6, fx.battle.Turn())
	assert.True(t, fx.battle.IsTrainerTurn())
	assert.Equal(t, battle.PhaseTrainerSelect, fx.battle.Phase())
}

func TestQueueOrder(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "zapper", 3)
	wild.Moves = []string{"tackle"}
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerSkill, SkillID: "warlord_1"}, "tackle", wild.ID)

	skill := logIndex(fx.battle, "Used Battle Cry!")
	zapper := logIndex(fx.battle, "Zapper used Tackle!")
	ember := logIndex(fx.battle, "Emberling used Tackle!")
	require.NotEqual(t, -1, skill)
	require.NotEqual(t, -1, zapper)
	require.NotEqual(t, -1, ember)
	assert.Less(t, skill, zapper, "trainer acts first")
	assert.Less(t, zapper, ember, "faster creature acts first")
}

func TestFlee_Wild(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	wild := fx.wild(t, "sprout", 3)
	fx.trainer.Party[0].Modifiers.Speed = 2
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerFlee}, "tackle", wild.ID)

	logHas(t, fx.battle, "Got away safely!")
	assert.Equal(t, battle.PhaseFled, fx.battle.Phase())
	assert.True(t, fx.battle.Phase().Terminal())
	assert.False(t, fx.battle.Active())
	assert.Equal(t, -1, logIndex(fx.battle, "Emberling used"), "remaining actions are discarded")
	assert.Equal(t, effect.Modifiers{}, fx.trainer.Party[0].Modifiers)
}

func TestFlee_Fails(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "sprout", 3)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerFlee}, "tackle", wild.ID)
	logHas(t, fx.battle, "Can't escape!")
	assert.True(t, fx.battle.Active())
	assert.Equal(t, battle.PhaseCreatureSelect, fx.battle.Phase())
}

func TestCapture(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	wild := fx.wild(t, "sprout", 3)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "capture_ball"}, "tackle", wild.ID)

	logHas(t, fx.battle, "Used Capture Ball!")
	logHas(t, fx.battle, "Gotcha! Sprout was caught!")
	assert.Equal(t, battle.PhaseVictory, fx.battle.Phase())
	assert.Equal(t, 9, fx.inv.Quantity("capture_ball"))
	require.Len(t, fx.trainer.Party, 2)
	assert.Same(t, wild, fx.trainer.Party[1])
}

func TestCapture_BreaksFree(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "sprout", 3)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "capture_ball"}, "tackle", wild.ID)
	logHas(t, fx.battle, "Oh no! The creature broke free!")
	assert.Equal(t, 9, fx.inv.Quantity("capture_ball"))
	assert.Len(t, fx.trainer.Party, 1)
	assert.True(t, fx.battle.Active())
}

func TestCapture_MasterBallNeverFails(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	require.NoError(t, fx.inv.Add("master_ball", 1, inventory.DefaultRegistry()))
	wild := fx.wild(t, "sprout", 3)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "master_ball"}, "tackle", wild.ID)
	assert.Equal(t, battle.PhaseVictory, fx.battle.Phase())
	assert.False(t, fx.inv.Has("master_ball"))
}

func TestItem_MissingStock(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "sprout", 3)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "revive"}, "tackle", wild.ID)
	logHas(t, fx.battle, "You don't have any Revive!")
}

func TestItem_PotionHealsFirstActive(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(99))
	wild := fx.wild(t, "sprout", 3)
	wild.Moves = []string{"growl"}
	starter := fx.trainer.Party[0]
	starter.TakeDamage(10)
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "potion"}, "tackle", wild.ID)

	logHas(t, fx.battle, "Emberling recovered 10 HP!")
	assert.Equal(t, 4, fx.inv.Quantity("potion"))
	assert.Equal(t, starter.MaxHP, starter.CurrentHP)
	assert.Contains(t, fx.battle.DrainEvents(), battle.DamageEvent{TargetID: starter.ID, Amount: 10, Kind: battle.EventHeal})
	assert.Empty(t, fx.battle.DrainEvents())
}

func TestTrainerBattle_NoCaptureNoFlee(t *testing.T) {
	fx := newFixture(t, "emberling", dice.NewFixed(0))
	e, err := enemy.New(&enemy.Template{ID: "camper", Name: "Camper Ann",
		Roster: []enemy.RosterEntry{{Species: "sprout", Level: 3}}}, fx.factory)
	require.NoError(t, err)
	e.Creatures[0].Moves = []string{"growl"}
	require.NoError(t, fx.battle.StartTrainer(e))
	logHas(t, fx.battle, "Camper Ann wants to battle!")
	require.NoError(t, fx.battle.Begin(context.Background()))
	require.NoError(t, fx.battle.SetTrainerAction(context.Background(), battle.TrainerAction{Type: battle.TrainerItem, ItemID: "capture_ball"}))
	require.NoError(t, fx.battle.SetCreatureAction(context.Background(), "growl", e.Creatures[0].ID))
	require.NoError(t, fx.battle.ExecuteTurn(context.Background()))

	logHas(t, fx.battle, "You can't capture another trainer's creature!")
	assert.Equal(t, 10, fx.inv.Quantity("capture_ball"))

	for range 4 {
		fx.turn(t, command, "growl", e.Creatures[0].ID)
	}
	require.True(t, fx.battle.IsTrainerTurn())
	fx.turn(t, battle.TrainerAction{Type: battle.TrainerFlee}, "growl", e.Creatures[0].ID)
	logHas(t, fx.battle, "Can't escape!")
	assert.True(t, fx.battle.Active())
}

func TestProperty_BattleInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		limit := rapid.IntRange(1, 12).Draw(rt, "limit")
		fx := newFixture(rt, "emberling", dice.NewSeededSource(seed), func(d *battle.Deps) {
			d.Config.LogLimit = limit
		})
		foes := []*creature.Creature{fx.creature(rt, "sprout", rapid.IntRange(1, 8).Draw(rt, "l1")), fx.creature(rt, "zapper", rapid.IntRange(1, 8).Draw(rt, "l2"))}
		require.NoError(rt, fx.battle.StartWild(foes))
		ctx := context.Background()
		require.NoError(rt, fx.battle.Begin(ctx))

		for range 40 {
			if !fx.battle.Active() {
				break
			}
			if fx.battle.Phase() == battle.PhaseTrainerSelect {
				require.NoError(rt, fx.battle.SetTrainerAction(ctx, command))
			}
			for fx.battle.Phase() == battle.PhaseCreatureSelect {
				c, ok := fx.battle.CurrentCreature()
				require.True(rt, ok)
				target := ""
				for _, f := range fx.battle.EnemyCreatures() {
					if !f.Fainted {
						target = f.ID
						break
					}
				}
				require.NoError(rt, fx.battle.SetCreatureAction(ctx, c.Moves[0], target))
			}
			require.NoError(rt, fx.battle.ExecuteTurn(ctx))

			assert.LessOrEqual(rt, len(fx.battle.Log()), limit)
			for _, c := range append(fx.battle.PlayerCreatures(), foes...) {
				assert.GreaterOrEqual(rt, c.CurrentHP, 0)
				assert.LessOrEqual(rt, c.CurrentHP, c.MaxHP)
				assert.Equal(rt, c.CurrentHP == 0, c.Fainted)
				for _, s := range []int{c.Modifiers.Atk, c.Modifiers.Def, c.Modifiers.Speed, c.Modifiers.Accuracy} {
					assert.GreaterOrEqual(rt, s, -6)
					assert.LessOrEqual(rt, s, 6)
				}
			}
			p := fx.battle.Phase()
			if fx.battle.Active() {
				assert.Contains(rt, []battle.Phase{battle.PhaseTrainerSelect, battle.PhaseCreatureSelect}, p)
			} else {
				assert.True(rt, p.Terminal())
			}
		}
	})
}
