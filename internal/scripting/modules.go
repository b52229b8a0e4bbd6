package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua module surface into L:
//
//	engine.roll(min, max)  -> integer drawn uniformly from [min, max]
//	engine.chance(percent) -> true with the given percent probability
//	engine.narrate(msg)    -> deliver msg through the Broadcast callback
//	engine.log(msg)        -> write msg to the server log at Info level
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		min := int(L.CheckNumber(1))
		max := int(L.CheckNumber(2))
		if max < min {
			min, max = max, min
		}
		L.Push(lua.LNumber(m.roller.Range(min, max)))
		return 1
	}))

	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		percent := int(L.CheckNumber(1))
		L.Push(lua.LBool(m.roller.Chance(percent)))
		return 1
	}))

	L.SetField(engine, "narrate", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		if m.Broadcast != nil {
			m.Broadcast(msg)
		}
		return 0
	}))

	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		m.logger.Info("script", zap.String("msg", msg))
		return 0
	}))

	L.SetGlobal("engine", engine)
}
