package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/expedition/internal/game/dice"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no level VM is found.
const globalKey = -1

// levelVM pairs one dungeon level's LState with the mutex that serializes
// every touch of it. An LState is single-threaded; callers must hold mu for
// the full duration of any GetGlobal/NewTable/CallByParam sequence.
type levelVM struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel context.CancelFunc
}

// Manager owns one sandboxed LState per dungeon level and exposes hook
// dispatch.
//
// Manager is safe for concurrent Dispatch/CallHook after all LoadLevel
// calls complete. Each levelVM's mutex serializes callers that land on the
// same VM, argument construction included; different levels run
// concurrently.
type Manager struct {
	mu     sync.RWMutex
	levels map[int]*levelVM
	roller *dice.Roller
	logger *zap.Logger

	// Broadcast delivers a script-authored narration line to whoever is
	// watching the expedition. Injected after construction; nil = no-op.
	Broadcast func(msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty level map.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		levels: make(map[int]*levelVM),
		roller: roller,
		logger: logger,
	}
}

// LoadLevel creates a sandboxed VM for the dungeon level, registers all
// engine.* modules, then executes every *.lua file in scriptDir in
// lexicographic order.
//
// Precondition: level must be >= 0; scriptDir must be a readable directory.
// Postcondition: Level VM is registered; returns error on Lua load failure.
func (m *Manager) LoadLevel(level int, scriptDir string, instLimit int) error {
	if level < 0 {
		return fmt.Errorf("scripting: level must be >= 0, got %d", level)
	}
	return m.loadInto(level, scriptDir, instLimit)
}

// LoadGlobal creates the shared fallback VM accessible from any level that
// has no VM of its own.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalKey, scriptDir, instLimit)
}

func (m *Manager) loadInto(key int, scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for level %d: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for level %d: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.levels[key]
	m.levels[key] = &levelVM{state: L, cancel: cancel}
	m.mu.Unlock()

	if old != nil {
		// Wait out any in-flight hook before tearing the old VM down.
		old.mu.Lock()
		old.cancel()
		old.state.Close()
		old.state = nil
		old.mu.Unlock()
	}
	return nil
}

// Close tears down every VM. The Manager is unusable afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, vm := range m.levels {
		vm.mu.Lock()
		vm.cancel()
		vm.state.Close()
		vm.state = nil
		vm.mu.Unlock()
		delete(m.levels, key)
	}
}

// resolve picks the level's VM, falling back to the global VM. Returns nil
// when neither exists.
func (m *Manager) resolve(level int) *levelVM {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if vm, ok := m.levels[level]; ok {
		return vm
	}
	return m.levels[globalKey]
}

// Dispatch calls the named Lua global function in the level's VM, with the
// global VM as fallback. build runs under the VM's mutex so hook arguments
// (tables in particular) are constructed on the same single-threaded state
// the call executes on; the mutex is held until the call returns, which
// serializes concurrent dispatches landing on the same VM. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime
// errors are logged at Warn level and never propagated: a script defect
// must not disturb battle resolution.
//
// Precondition: build must be non-nil and must only touch the LState it is
// handed.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) Dispatch(level int, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	vm := m.resolve(level)
	if vm == nil {
		m.logger.Debug("scripting: no VM for level",
			zap.Int("level", level),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	L := vm.state
	if L == nil {
		// Reloaded or closed between resolve and lock.
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.Int("level", level),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// CallHook dispatches pre-built arguments. Arguments must not reference any
// LState (plain numbers, strings, and booleans are safe); hooks that pass
// tables go through Dispatch so construction happens under the VM lock.
//
// Precondition: args must be state-independent lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(level int, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.Dispatch(level, hook, func(*lua.LState) []lua.LValue { return args })
}
