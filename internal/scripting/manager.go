package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/game/dice"
)

// GlobalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scoped VM is found.
const GlobalScope = "__global__"

// vm is one sandboxed LState. An LState is single-threaded, so every
// execution holds mu.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	budget *Budget
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same scope are
// serialized; different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope's VM is registered, replacing any previous one;
// returns an error on Lua load failure.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the GlobalScope VM, reachable as a CallHook fallback
// from any scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: the global VM is registered; returns an error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		budget := SetInstructionBudget(L, instLimit)
		err := L.DoFile(path)
		budget.Release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Debug("scripting: scope loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.budget != nil {
		v.budget.Release()
	}
	v.L.Close()
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the GlobalScope VM is tried as a fallback. Returns (LNil, nil) if the
// hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallHookWith calls hook with a single table argument converted from arg.
// The conversion happens inside the target VM, so callers never need an LState.
//
// Postcondition: same as CallHook.
func (m *Manager) CallHookWith(scope, hook string, arg map[string]any) (lua.LValue, error) {
	return m.call(scope, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{ToLua(L, arg)}
	})
}

func (m *Manager) call(scope, hook string, buildArgs func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[scope]
	if !ok {
		v = m.vms[GlobalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	v.budget = SetInstructionBudget(v.L, v.limit)
	defer func() {
		m.logger.Debug("scripting: hook finished",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Int("instructions", v.budget.Used()),
			zap.Bool("exhausted", v.budget.Exhausted()),
		)
		v.budget.Release()
		v.budget = nil
	}()

	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, buildArgs(v.L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every loaded VM.
//
// Postcondition: subsequent CallHook calls return (LNil, nil).
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
