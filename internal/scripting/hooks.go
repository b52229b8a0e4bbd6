package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/expedition/internal/game/battle"
	"github.com/cory-johannsen/expedition/internal/game/character"
	"github.com/cory-johannsen/expedition/internal/game/npc"
)

// Lua hook function names dispatched by EventHooks.
const (
	HookBattleStart = "on_battle_start"
	HookVictory     = "on_victory"
	HookDefeat      = "on_defeat"
	HookRespawn     = "on_respawn"
)

// EventHooks adapts the Manager to the expedition session's hook
// interface: each lifecycle event becomes one Dispatch into the dungeon
// level's VM, with argument tables built under that VM's lock. Script
// errors never propagate; a failed hook is a logged no-op.
type EventHooks struct {
	mgr *Manager
}

// NewEventHooks wraps a Manager for use as an expedition.Hooks.
//
// Precondition: mgr must be non-nil.
func NewEventHooks(mgr *Manager) *EventHooks {
	return &EventHooks{mgr: mgr}
}

// OnBattleStart dispatches on_battle_start(level, player, hostile).
func (h *EventHooks) OnBattleStart(dungeonLevel int, player *character.Player, hostile *npc.NPC) {
	_, _ = h.mgr.Dispatch(dungeonLevel, HookBattleStart, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(dungeonLevel), playerTable(L, player), hostileTable(L, hostile)}
	})
}

// OnVictory dispatches on_victory(level, outcome).
func (h *EventHooks) OnVictory(dungeonLevel int, player *character.Player, outcome battle.Outcome) {
	h.dispatchOutcome(dungeonLevel, HookVictory, outcome)
}

// OnDefeat dispatches on_defeat(level, outcome).
func (h *EventHooks) OnDefeat(dungeonLevel int, player *character.Player, outcome battle.Outcome) {
	h.dispatchOutcome(dungeonLevel, HookDefeat, outcome)
}

// OnRespawn dispatches on_respawn(level, hostile).
func (h *EventHooks) OnRespawn(dungeonLevel int, hostile *npc.NPC) {
	_, _ = h.mgr.Dispatch(dungeonLevel, HookRespawn, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(dungeonLevel), hostileTable(L, hostile)}
	})
}

func (h *EventHooks) dispatchOutcome(dungeonLevel int, hook string, outcome battle.Outcome) {
	_, _ = h.mgr.Dispatch(dungeonLevel, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(dungeonLevel), outcomeTable(L, outcome)}
	})
}

// playerTable snapshots the player fields scripts may read. Tables are
// copies: scripts cannot mutate game state through them.
func playerTable(L *lua.LState, p *character.Player) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(p.Name))
	L.SetField(t, "level", lua.LNumber(p.Level))
	L.SetField(t, "health", lua.LNumber(p.Health))
	L.SetField(t, "max_health", lua.LNumber(p.MaxHealth))
	L.SetField(t, "attack", lua.LNumber(p.TotalAttack()))
	L.SetField(t, "defense", lua.LNumber(p.Defense))
	L.SetField(t, "agility", lua.LNumber(p.Agility))
	L.SetField(t, "credits", lua.LNumber(p.Credits))
	return t
}

func hostileTable(L *lua.LState, n *npc.NPC) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(n.Name))
	L.SetField(t, "level", lua.LNumber(n.Level))
	L.SetField(t, "boss", lua.LBool(n.Boss))
	L.SetField(t, "health", lua.LNumber(n.Health))
	L.SetField(t, "max_health", lua.LNumber(n.MaxHealth))
	L.SetField(t, "attack", lua.LNumber(n.TotalAttack()))
	L.SetField(t, "defense", lua.LNumber(n.Defense))
	L.SetField(t, "agility", lua.LNumber(n.Agility))
	return t
}

func outcomeTable(L *lua.LState, o battle.Outcome) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "result", lua.LString(o.Result.String()))
	L.SetField(t, "hostile", lua.LString(o.HostileName))
	L.SetField(t, "boss", lua.LBool(o.Boss))
	L.SetField(t, "rounds", lua.LNumber(o.Rounds))
	L.SetField(t, "damage_dealt", lua.LNumber(o.DamageDealt))
	L.SetField(t, "damage_taken", lua.LNumber(o.DamageTaken))
	L.SetField(t, "credits_gained", lua.LNumber(o.CreditsGained))
	L.SetField(t, "credits_lost", lua.LNumber(o.CreditsLost))
	L.SetField(t, "experience_gained", lua.LNumber(o.ExperienceGained))
	L.SetField(t, "revivals_used", lua.LNumber(o.RevivalsUsed))
	return t
}
