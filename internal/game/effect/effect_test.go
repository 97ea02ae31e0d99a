package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/effect"
)

func TestStageMultiplier_ExactValues(t *testing.T) {
	assert.Equal(t, 1.0, effect.StageMultiplier(0))
	assert.Equal(t, 1.5, effect.StageMultiplier(1))
	assert.Equal(t, 0.5, effect.StageMultiplier(-2))
	assert.Equal(t, 4.0, effect.StageMultiplier(6))
	assert.Equal(t, 0.25, effect.StageMultiplier(-6))
}

func TestAccuracyStageMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, effect.AccuracyStageMultiplier(0))
	assert.Equal(t, 3.0, effect.AccuracyStageMultiplier(6))
	assert.InDelta(t, 1.0/3.0, effect.AccuracyStageMultiplier(-6), 1e-12)
}

func TestProperty_StageMultiplierClamps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(-50, 50).Draw(rt, "stage")
		clamped := max(-6, min(6, x))
		assert.Equal(rt, effect.StageMultiplier(clamped), effect.StageMultiplier(x))
		if clamped >= 0 {
			assert.Equal(rt, float64(2+clamped)/2, effect.StageMultiplier(x))
		} else {
			assert.Equal(rt, 2/float64(2-clamped), effect.StageMultiplier(x))
		}
	})
}

func TestProperty_ApplyStatModifierStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var m effect.Modifiers
		deltas := rapid.SliceOfN(rapid.IntRange(-4, 4), 1, 30).Draw(rt, "deltas")
		for _, d := range deltas {
			res := effect.ApplyStatModifier(&m, effect.Speed, d)
			assert.GreaterOrEqual(rt, res.NewValue, -6)
			assert.LessOrEqual(rt, res.NewValue, 6)
			assert.Equal(rt, res.NewValue, m.Speed)
		}
	})
}

func TestApplyStatModifier_Messages(t *testing.T) {
	cases := []struct {
		delta int
		msg   string
	}{
		{1, "rose!"},
		{2, "rose sharply!"},
		{3, "rose drastically!"},
		{-1, "fell!"},
		{-2, "fell harshly!"},
		{-3, "fell drastically!"},
	}
	for _, tc := range cases {
		var m effect.Modifiers
		res := effect.ApplyStatModifier(&m, effect.Atk, tc.delta)
		assert.False(t, res.Clamped)
		assert.Equal(t, tc.msg, res.Message)
		assert.Equal(t, tc.delta, m.Atk)
	}
}

func TestApplyStatModifier_Clamped(t *testing.T) {
	m := effect.Modifiers{Def: 6, Evasion: -5}
	res := effect.ApplyStatModifier(&m, effect.Def, 1)
	assert.True(t, res.Clamped)
	assert.Equal(t, "can't go any higher!", res.Message)
	assert.Equal(t, 6, m.Def)

	res = effect.ApplyStatModifier(&m, effect.Evasion, -2)
	assert.True(t, res.Clamped)
	assert.Equal(t, "can't go any lower!", res.Message)
	assert.Equal(t, -6, m.Evasion)
}

func TestCanApplyMajorStatus(t *testing.T) {
	assert.True(t, effect.CanApplyMajorStatus(effect.StatusNone))
	assert.False(t, effect.CanApplyMajorStatus(effect.StatusBurn))
}

func TestProcessStatusDamage(t *testing.T) {
	assert.Equal(t, effect.StatusDamage{Damage: 12, Message: "is hurt by poison!"}, effect.ProcessStatusDamage(effect.StatusPoison, 100, 0))
	assert.Equal(t, 6, effect.ProcessStatusDamage(effect.StatusBurn, 100, 0).Damage)
	assert.Equal(t, 6, effect.ProcessStatusDamage(effect.StatusBadlyPoisoned, 100, 0).Damage)
	assert.Equal(t, 18, effect.ProcessStatusDamage(effect.StatusBadlyPoisoned, 100, 3).Damage)
	assert.Equal(t, 1, effect.ProcessStatusDamage(effect.StatusPoison, 5, 0).Damage)
	assert.Equal(t, effect.StatusDamage{}, effect.ProcessStatusDamage(effect.StatusSleep, 100, 0))
}

func TestProperty_StatusDamageAtLeastOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 999).Draw(rt, "maxHp")
		counter := rapid.IntRange(0, 15).Draw(rt, "toxic")
		for _, s := range []effect.Status{effect.StatusPoison, effect.StatusBadlyPoisoned, effect.StatusBurn} {
			assert.GreaterOrEqual(rt, effect.ProcessStatusDamage(s, hp, counter).Damage, 1)
		}
	})
}

func TestStatusGates(t *testing.T) {
	low := dice.NewFixed(0)
	high := dice.NewFixed(99)

	assert.True(t, effect.CheckParalysis(low))
	assert.False(t, effect.CheckParalysis(high))

	assert.True(t, effect.CheckFreezeThaw(high, "fire"))
	assert.False(t, effect.CheckFreezeThaw(high, "water"))
	assert.True(t, effect.CheckFreezeThaw(low, "water"))

	assert.False(t, effect.CheckSleepWake(low, 0))
	assert.True(t, effect.CheckSleepWake(high, 3))
	assert.True(t, effect.CheckSleepWake(low, 1))
	assert.False(t, effect.CheckSleepWake(high, 2))

	assert.False(t, effect.CheckConfusionEnd(low, 1))
	assert.True(t, effect.CheckConfusionEnd(high, 5))
	assert.True(t, effect.CheckConfusionEnd(low, 2))
	assert.False(t, effect.CheckConfusionEnd(high, 4))

	assert.True(t, effect.CheckConfusionSelfHit(low))
	assert.False(t, effect.CheckConfusionSelfHit(high))
}

func TestStatusDisplayNames(t *testing.T) {
	assert.Equal(t, "Badly Poisoned", effect.StatusBadlyPoisoned.DisplayName())
	assert.Equal(t, "Confused", effect.StatusConfusion.DisplayName())
	assert.True(t, effect.StatusSleep.IsMajor())
	assert.False(t, effect.StatusConfusion.IsMajor())
	assert.Equal(t, "Sp. Atk", effect.SpAtk.DisplayName())
}

func TestParseDescription_StatChanges(t *testing.T) {
	got := effect.ParseDescription("Raises the user's Attack by two stages.", 100, "user")
	require.Len(t, got, 1)
	assert.Equal(t, effect.Parsed{Kind: effect.KindStatChange, Stat: effect.Atk, Stages: 2, Chance: 100, Target: effect.TargetSelf}, got[0])

	got = effect.ParseDescription("Has a 10% chance to lower the target's Special Defense by one stage.", 10, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, effect.SpDef, got[0].Stat)
	assert.Equal(t, -1, got[0].Stages)
	assert.Equal(t, 10, got[0].Chance)
	assert.Equal(t, effect.TargetOpponent, got[0].Target)

	got = effect.ParseDescription("Sharply lowers the target's Speed.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, -2, got[0].Stages)

	got = effect.ParseDescription("Raises the user's Attack and Defense by one stage.", 100, "user")
	require.Len(t, got, 2)
	assert.Equal(t, effect.Atk, got[0].Stat)
	assert.Equal(t, effect.Def, got[1].Stat)
}

func TestParseDescription_Statuses(t *testing.T) {
	got := effect.ParseDescription("Has a 30% chance to paralyze the target.", 30, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, effect.StatusParalysis, got[0].Status)
	assert.Equal(t, 30, got[0].Chance)

	got = effect.ParseDescription("Badly poisons the target.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, effect.StatusBadlyPoisoned, got[0].Status)
	assert.Equal(t, 100, got[0].Chance)

	got = effect.ParseDescription("Puts the target to sleep.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, effect.StatusSleep, got[0].Status)

	got = effect.ParseDescription("Confuses the user.", 100, "user")
	require.Len(t, got, 1)
	assert.Equal(t, effect.TargetSelf, got[0].Target)

	got = effect.ParseDescription("May burn the target; chance listed separately.", 15, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].Chance)
}

func TestParseDescription_HealDrainRecoil(t *testing.T) {
	got := effect.ParseDescription("Restores half the user's max HP.", 100, "user")
	require.Len(t, got, 1)
	assert.Equal(t, effect.KindHeal, got[0].Kind)
	assert.Equal(t, 50, got[0].HealPercent)

	got = effect.ParseDescription("Drains half the damage inflicted.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].DrainPercent)

	got = effect.ParseDescription("Drains 75% of the damage inflicted.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, 75, got[0].DrainPercent)

	got = effect.ParseDescription("User takes 33% of the damage dealt as recoil.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, 33, got[0].RecoilPercent)
	assert.Equal(t, effect.TargetSelf, got[0].Target)

	got = effect.ParseDescription("User takes recoil damage.", 100, "selected-pokemon")
	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].RecoilPercent)
}

func TestParseDescription_Unrecognized(t *testing.T) {
	assert.Empty(t, effect.ParseDescription("", 100, "user"))
	assert.Empty(t, effect.ParseDescription("Inflicts regular damage.", 100, "selected-pokemon"))
}

func TestStats_GetAdd(t *testing.T) {
	s := effect.Stats{HP: 10, Atk: 5}
	s = s.Add(effect.Atk, 3).Add(effect.Speed, 2)
	assert.Equal(t, 8, s.Get(effect.Atk))
	assert.Equal(t, 2, s.Get(effect.Speed))
	assert.Equal(t, 0, s.Get(effect.Accuracy))
	assert.Equal(t, effect.Stats{HP: 20, Atk: 16, Speed: 4}, s.Plus(s))
}
