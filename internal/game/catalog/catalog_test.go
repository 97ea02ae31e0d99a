package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/effect"
	"github.com/cory-johannsen/tamer/internal/game/typechart"
)

const contentDir = "../../../content/catalog"

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestNormalizeMoveID(t *testing.T) {
	assert.Equal(t, "thunder_punch", catalog.NormalizeMoveID("Thunder-Punch"))
	assert.Equal(t, "self_destruct", catalog.NormalizeMoveID("self - destruct"))
	assert.Equal(t, "tackle", catalog.NormalizeMoveID(" tackle "))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Thunder Punch", catalog.DisplayName("thunder-punch"))
	assert.Equal(t, "Tackle", catalog.DisplayName("tackle"))
	assert.Equal(t, "Ice Beam", catalog.DisplayName("ice_beam"))
}

func TestLoad_RealContent(t *testing.T) {
	c, err := catalog.Load(context.Background(), contentDir, zap.NewNop())
	require.NoError(t, err)

	s, err := c.Species("Bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, []typechart.Type{typechart.Grass, typechart.Poison}, s.Types)
	assert.Equal(t, 45, s.BaseStats.HP)
	assert.NotEmpty(t, s.LevelUpMoves())

	growl, err := c.Move("growl")
	require.NoError(t, err)
	assert.Equal(t, catalog.Status, growl.Category)
	assert.Equal(t, 0, growl.Power)
	require.Len(t, growl.Effects, 1)
	assert.Equal(t, effect.Atk, growl.Effects[0].Stat)
	assert.Equal(t, -1, growl.Effects[0].Stages)

	sd, err := c.Move("swords-dance")
	require.NoError(t, err)
	assert.Equal(t, 100, sd.Accuracy, "blank accuracy defaults to 100")
	assert.Equal(t, "Swords Dance", sd.Name)

	for _, sp := range c.AllSpecies() {
		for _, lm := range sp.LearnableMoves {
			_, err := c.Move(lm.MoveID)
			assert.NoError(t, err, "%s -> %s", sp.ID, lm.MoveID)
		}
	}
}

func TestMove_FallbackByName(t *testing.T) {
	c, err := catalog.New(nil, []*catalog.Move{{ID: "odd_key", Name: "Thunder Punch", Type: typechart.Electric}}, nil)
	require.NoError(t, err)
	m, err := c.Move("thunder-punch")
	require.NoError(t, err)
	assert.Equal(t, "odd_key", m.ID)

	_, err = c.Move("nope")
	assert.True(t, errors.Is(err, catalog.ErrMoveNotFound))
}

func TestSpecies_NotFound(t *testing.T) {
	c, err := catalog.New(nil, nil, nil)
	require.NoError(t, err)
	_, err = c.Species("missingno")
	assert.True(t, errors.Is(err, catalog.ErrSpeciesNotFound))
}

func TestNew_RejectsDanglingMoveReference(t *testing.T) {
	sp := &catalog.Species{ID: "x", Types: []typechart.Type{typechart.Normal}, LearnableMoves: []catalog.LearnableMove{{MoveID: "ghost_move", Level: 1, Method: catalog.MethodLevelUp}}}
	_, err := catalog.New([]*catalog.Species{sp}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost_move")
}

func TestLoad_DerivesMoveFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "moves", "m.yaml"), `
moves:
  - name: Mystery-Glare
    type: psychic
    category: no-damage
    power: ""
    accuracy: ""
    pp: 10
    effect: Has a 40% chance to confuse the target.
    effect_chance: ""
  - name: big-hit
    type: fighting
    category: weird
    power: 120
    accuracy: 80
    pp: 5
`)
	writeFile(t, filepath.Join(dir, "species", "s.yaml"), `
species:
  - name: Glarer
    types: [psychic]
    base_stats: {hp: 50, atk: 50, def: 50, spAtk: 50, spDef: 50, speed: 50}
    moves:
      - {name: mystery glare, level: 1}
      - {name: big-hit, level: 5, method: level-up, slot: {branch: atk, index: 0}}
`)
	c, err := catalog.Load(context.Background(), dir, nil)
	require.NoError(t, err)

	m, err := c.Move("mystery_glare")
	require.NoError(t, err)
	assert.Equal(t, catalog.Status, m.Category)
	assert.Equal(t, 100, m.Accuracy)
	assert.Equal(t, 100, m.EffectChance)
	require.Len(t, m.Effects, 1)
	assert.Equal(t, 40, m.Effects[0].Chance)

	big, err := c.Move("big-hit")
	require.NoError(t, err)
	assert.Equal(t, catalog.Physical, big.Category)
	assert.Equal(t, 120, big.Power)

	s, err := c.Species("glarer")
	require.NoError(t, err)
	assert.Equal(t, 50, s.ExpYield)
	assert.Equal(t, catalog.DefaultGrowthRate, s.GrowthRate)
	require.NotNil(t, s.LearnableMoves[1].Slot)
	assert.Equal(t, effect.Atk, s.LearnableMoves[1].Slot.Branch)
}

func TestLoad_ErrorsNameTheFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "moves", "bad.yaml"), "moves:\n  - name: x\n    type: shadow\n")
	writeFile(t, filepath.Join(dir, "species", "ok.yaml"), "species: []\n")
	_, err := catalog.Load(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "moves", "m.yaml"), "moves:\n  - name: x\n    type: normal\n    bogus: 1\n")
	writeFile(t, filepath.Join(dir, "species", "s.yaml"), "species: []\n")
	_, err := catalog.Load(context.Background(), dir, nil)
	assert.Error(t, err)
}

func TestLoad_RejectsBadSpecies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "moves", "m.yaml"), "moves: []\n")
	writeFile(t, filepath.Join(dir, "species", "s.yaml"), "species:\n  - id: z\n    types: [a, b, c]\n")
	_, err := catalog.Load(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "types")
}

func TestLoad_GrowthOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "moves", "m.yaml"), "moves: []\n")
	writeFile(t, filepath.Join(dir, "species", "s.yaml"), "species: []\n")
	writeFile(t, filepath.Join(dir, "growth.yaml"), "experience:\n  - {growth_rate: 2, level: 2, experience: 9}\n")
	c, err := catalog.Load(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Growth().ExperienceForLevel(catalog.GrowthMedium, 2))
	assert.Equal(t, 27, c.Growth().ExperienceForLevel(catalog.GrowthMedium, 3))
}

func TestGrowth_KnownValues(t *testing.T) {
	g := catalog.NewGrowth()
	assert.Equal(t, 0, g.ExperienceForLevel(catalog.GrowthMedium, 1))
	assert.Equal(t, 125, g.ExperienceForLevel(catalog.GrowthMedium, 5))
	assert.Equal(t, 1_000_000, g.ExperienceForLevel(catalog.GrowthMedium, 100))
	assert.Equal(t, 135, g.ExperienceForLevel(catalog.GrowthMediumSlow, 5))
	assert.Equal(t, 1_059_860, g.ExperienceForLevel(catalog.GrowthMediumSlow, 100))
	assert.Equal(t, 600_000, g.ExperienceForLevel(catalog.GrowthErratic, 100))
	assert.Equal(t, 1_640_000, g.ExperienceForLevel(catalog.GrowthFluctuating, 100))
	assert.Equal(t, g.ExperienceForLevel(catalog.GrowthMediumSlow, 10), g.ExperienceForLevel(99, 10), "unknown rate falls back to medium-slow")
}

func TestProperty_GrowthMonotonicAndInvertible(t *testing.T) {
	g := catalog.NewGrowth()
	rapid.Check(t, func(rt *rapid.T) {
		rate := rapid.IntRange(1, 6).Draw(rt, "rate")
		level := rapid.IntRange(1, 99).Draw(rt, "level")
		lo := g.ExperienceForLevel(rate, level)
		hi := g.ExperienceForLevel(rate, level+1)
		assert.LessOrEqual(rt, lo, hi)
		got := g.LevelForExperience(rate, lo)
		assert.GreaterOrEqual(rt, got, level)
		if hi > lo {
			assert.Equal(rt, level, g.LevelForExperience(rate, hi-1))
		}
	})
}
