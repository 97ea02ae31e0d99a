package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/session"
)

func newPilot(t *testing.T, seed uint64) (*pilot, *creature.Factory) {
	t.Helper()
	cat, err := catalog.Load(context.Background(), "../../content/catalog", nil)
	require.NoError(t, err)
	src := dice.NewSeededSource(seed)
	factory := creature.NewFactory(cat, nil, src, nil)
	cfg := battle.DefaultConfig()
	cfg.StartDelay = 0
	cfg.ActionDelay = 0
	deps := battle.Deps{
		Factory: factory,
		Roller:  dice.NewLoggedRoller(src, nil),
		Config:  cfg,
	}
	sess, err := session.NewGame(deps, "Red", "charmander", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return &pilot{sess: sess, src: src, maxTurns: 200}, factory
}

func TestPilot_RunsWildBattleToTheEnd(t *testing.T) {
	p, f := newPilot(t, 21)
	wild, err := encounter(f, p.src, "rattata", 2, 1)
	require.NoError(t, err)
	_, err = p.sess.StartWildBattle(context.Background(), wild)
	require.NoError(t, err)

	phase, err := p.run(context.Background())
	require.NoError(t, err)
	b, err := p.sess.Battle()
	require.NoError(t, err)
	if phase.Terminal() {
		assert.False(t, b.Active())
	} else {
		assert.Greater(t, b.Turn(), p.maxTurns)
	}
}

func TestPilot_RunWithoutBattle(t *testing.T) {
	p, _ := newPilot(t, 1)
	_, err := p.run(context.Background())
	assert.ErrorIs(t, err, session.ErrNoActiveBattle)
}

func TestPilot_TrainerActionHealsLowCreature(t *testing.T) {
	p, f := newPilot(t, 3)
	wild, err := encounter(f, p.src, "pidgey", 2, 1)
	require.NoError(t, err)
	b, err := p.sess.StartWildBattle(context.Background(), wild)
	require.NoError(t, err)
	require.Equal(t, battle.PhaseTrainerSelect, b.Phase())

	assert.Equal(t, battle.TrainerAction{Type: battle.TrainerCommand}, p.trainerAction(b))

	c := b.PlayerCreatures()[0]
	c.CurrentHP = 1
	assert.Equal(t, battle.TrainerAction{Type: battle.TrainerItem, ItemID: "potion", TargetID: c.ID}, p.trainerAction(b))

	p.sess.Inventory().Remove("potion", 5)
	assert.Equal(t, battle.TrainerAction{Type: battle.TrainerCommand}, p.trainerAction(b))
}

func TestEncounter(t *testing.T) {
	p, f := newPilot(t, 9)
	wild, err := encounter(f, p.src, "", 4, 3)
	require.NoError(t, err)
	require.Len(t, wild, 3)
	for _, c := range wild {
		assert.Equal(t, 4, c.Level)
	}

	_, err = encounter(f, p.src, "missingno", 4, 1)
	assert.ErrorIs(t, err, catalog.ErrSpeciesNotFound)
}

func TestNewLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, newLines(nil, []string{"a", "b"}))
	assert.Equal(t, []string{"c"}, newLines([]string{"a", "b"}, []string{"a", "b", "c"}))
	assert.Equal(t, []string{"d", "e"}, newLines([]string{"a", "b", "c"}, []string{"b", "c", "d", "e"}))
	assert.Empty(t, newLines([]string{"a", "b"}, []string{"a", "b"}))
	assert.Equal(t, []string{"x", "y"}, newLines([]string{"a", "b"}, []string{"x", "y"}))
}

func TestPropertyNewLinesReassemblesWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		full := make([]string, n)
		for i := range full {
			full[i] = rapid.StringMatching(`[a-z]{3}[0-9]`).Draw(t, "line") + string(rune('A'+i%26)) + string(rune('a'+i/26))
		}
		window := rapid.IntRange(1, 10).Draw(t, "window")
		cut := rapid.IntRange(0, n).Draw(t, "cut")

		prev := full[max(0, cut-window):cut]
		cur := full[max(0, n-window):]
		if n-window > cut {
			return
		}
		got := append(append([]string{}, prev...), newLines(prev, cur)...)
		if want := full[max(0, cut-window):]; !assert.ObjectsAreEqual(want, got) {
			t.Fatalf("reassembled %v, want %v", got, want)
		}
	})
}
