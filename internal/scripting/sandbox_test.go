package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tamer/internal/scripting"
)

func TestNewSandboxedState_OnlySafeLibraries(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s must not be reachable", name)
	}
	require.NoError(t, L.DoString(`
		assert(math.floor(7 / 2) == 3)
		assert(string.format("%d%%", 35) == "35%")
		local t = {3, 1, 2}
		table.sort(t)
		assert(t[1] == 1)
	`))
}

func TestNewSandboxedState_RunawayScriptStops(t *testing.T) {
	L := scripting.NewSandboxedState(10)
	defer L.Close()
	assert.Error(t, L.DoString(`while true do end`))
}

func TestBudget_CountsAndExhausts(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()

	small := scripting.SetInstructionBudget(L, 1000)
	require.NoError(t, L.DoString(`local hp = 20 + 15`))
	assert.Greater(t, small.Used(), 0)
	assert.Less(t, small.Used(), 1000)
	assert.False(t, small.Exhausted())
	small.Release()

	tight := scripting.SetInstructionBudget(L, 50)
	require.Error(t, L.DoString(`while true do end`))
	assert.True(t, tight.Exhausted())
	assert.Equal(t, 50, tight.Used())
	tight.Release()
	tight.Release()

	fresh := scripting.SetInstructionBudget(L, 0)
	defer fresh.Release()
	assert.NoError(t, L.DoString(`local x = 1 + 1`), "a fresh budget revives an exhausted state")
}

func TestPropertyRunawayScriptAlwaysExhaustsBudget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 80).Draw(t, "limit")
		L := scripting.NewSandboxedState(0)
		defer L.Close()
		b := scripting.SetInstructionBudget(L, limit)
		defer b.Release()
		if err := L.DoString(`while true do end`); err == nil {
			t.Fatalf("limit=%d: runaway script finished", limit)
		}
		if !b.Exhausted() || b.Used() != limit {
			t.Fatalf("limit=%d: used=%d exhausted=%v", limit, b.Used(), b.Exhausted())
		}
	})
}
