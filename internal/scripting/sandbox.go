// Package scripting provides a sandboxed GopherLua execution environment for
// content scripts such as enemy trainer AI preconditions. It has no dependency
// on game domain packages; game state reaches Lua as plain tables.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode allowance of one script execution
// when no limit is configured.
const DefaultInstructionLimit = 100_000

// sandboxGlobals are removed from every sandboxed state after the base
// library is opened.
var sandboxGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// Budget is the opcode allowance of one Lua execution. It is installed as
// the LState context: GopherLua polls Done once per opcode, and the budget
// cancels itself when the allowance is spent.
type Budget struct {
	context.Context
	cancel context.CancelFunc
	limit  int64
	left   atomic.Int64
}

func newBudget(limit int) *Budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Budget{Context: ctx, cancel: cancel, limit: int64(limit)}
	b.left.Store(int64(limit))
	return b
}

// Done spends one opcode and returns the cancellation channel.
func (b *Budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Used reports how many opcodes ran against the budget, capped at its limit.
func (b *Budget) Used() int {
	return int(min(b.limit, b.limit-b.left.Load()))
}

// Exhausted reports whether the allowance ran out.
func (b *Budget) Exhausted() bool {
	return b.left.Load() <= 0
}

// Release frees the budget's context. It is safe to call more than once.
func (b *Budget) Release() {
	b.cancel()
}

// SetInstructionBudget installs a fresh budget of instLimit opcodes on L for
// the next execution.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: the caller must Release the budget once the execution ends.
func SetInstructionBudget(L *lua.LState, instLimit int) *Budget {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	b := newBudget(instLimit)
	L.SetContext(b)
	return b
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, the sandboxGlobals removed, and a first budget
// of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range sandboxGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	SetInstructionBudget(L, instLimit)
	return L
}
