package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.log and engine.dice Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
	} {
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: "+L.CheckString(1), zap.String("source", "script"))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(fmt.Sprintf("dice: %v", err)))
			return 2
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	L.SetField(diceTbl, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.roller.Percent("lua", L.CheckInt(1))))
		return 1
	}))
	L.SetField(engine, "dice", diceTbl)

	L.SetGlobal("engine", engine)
}
