package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running creature behaviour scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: top-level files first, then the ai and death subdirectories.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "ai"), filepath.Join(scriptsDir, "death")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source. Used by tests and the debug console.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// CreatureContext is the read-only view of a creature handed to scripts.
type CreatureContext struct {
	Type          string
	Name          string
	Faction       string
	X, Y, Z       int
	HP, MaxHP     int
	Friendly      int
	Hallucination bool
	Turn          uint64

	// Same-faction creatures within the search radius, excluding itself.
	Allies int
	// Distance in cells to the nearest cell holding a hostile creature,
	// or -1 if none was found.
	HostileRing int
}

func (e *Engine) creatureTable(ctx CreatureContext) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("type", lua.LString(ctx.Type))
	t.RawSetString("name", lua.LString(ctx.Name))
	t.RawSetString("faction", lua.LString(ctx.Faction))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("hp", lua.LNumber(ctx.HP))
	t.RawSetString("max_hp", lua.LNumber(ctx.MaxHP))
	t.RawSetString("friendly", lua.LNumber(ctx.Friendly))
	t.RawSetString("hallucination", lua.LBool(ctx.Hallucination))
	t.RawSetString("turn", lua.LNumber(ctx.Turn))
	t.RawSetString("allies", lua.LNumber(ctx.Allies))
	t.RawSetString("hostile_ring", lua.LNumber(ctx.HostileRing))
	return t
}

// TurnCommand is what a creature does this turn.
type TurnCommand struct {
	Type   string // "move", "idle", "die"
	DX, DY int
}

// CreatureTurn calls Lua creature_turn(ctx). A missing function or a
// script error means the creature idles.
func (e *Engine) CreatureTurn(ctx CreatureContext) TurnCommand {
	idle := TurnCommand{Type: "idle"}
	fn := e.vm.GetGlobal("creature_turn")
	if fn == lua.LNil {
		return idle
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.creatureTable(ctx)); err != nil {
		e.log.Error("lua creature_turn error", zap.Error(err), zap.String("type", ctx.Type))
		return idle
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return idle
	}
	cmd := TurnCommand{
		Type: lStr(rt, "type"),
		DX:   lInt(rt, "dx"),
		DY:   lInt(rt, "dy"),
	}
	if cmd.Type == "" {
		cmd.Type = "idle"
	}
	return cmd
}

// SpawnCommand asks for a new creature next to a dying one.
type SpawnCommand struct {
	Type   string
	DX, DY int
	HP     int // 0 = template HP
}

// OnDeath calls the Lua death hook for a creature and returns the creatures
// it wants spawned. hook names the function; empty means on_death.
func (e *Engine) OnDeath(hook string, ctx CreatureContext) []SpawnCommand {
	if hook == "" {
		hook = "on_death"
	}
	fn := e.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return nil
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.creatureTable(ctx)); err != nil {
		e.log.Error("lua death hook error", zap.String("func", hook), zap.Error(err))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var spawns []SpawnCommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			spawns = append(spawns, SpawnCommand{
				Type: lStr(row, "type"),
				DX:   lInt(row, "dx"),
				DY:   lInt(row, "dy"),
				HP:   lInt(row, "hp"),
			})
		}
	})
	return spawns
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
