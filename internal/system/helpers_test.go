package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/critter/internal/core/event"
	"github.com/l1jgo/critter/internal/data"
	"github.com/l1jgo/critter/internal/scripting"
	"github.com/l1jgo/critter/internal/world"
)

const testCreatures = `
creatures:
  - id: mon_zombie
    name: zombie
    faction: zombie
    hp: 10
  - id: mon_dog
    name: dog
    faction: dog
    hp: 8
  - id: mon_blob
    name: blob
    faction: blob
    hp: 40
    death_script: blob_split
  - id: mon_hallu
    name: zombie
    faction: zombie
    hp: 1
    flags: [HALLUCINATION]
  - id: mon_fly
    name: fly
    faction: insect
    flags: [VERMIN]
blacklist: [mon_dragon]
`

const testDeathScript = `
function blob_split(c)
  local half = math.floor(c.max_hp / 2)
  if half < 10 then return {} end
  return {
    { dx = -1, dy = 0, hp = half },
    { dx = 1, dy = 0, hp = half },
  }
end
`

type testWorld struct {
	tracker   *world.Tracker
	bus       *event.Bus
	creatures *data.CreatureTable
	lua       *scripting.Engine
	spawner   *Spawner
}

func writeTestFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// newTestWorld wires a tracker, spawner and Lua engine. turnScript is the
// creature_turn source; empty leaves creatures idle.
func newTestWorld(t *testing.T, turnScript string) *testWorld {
	t.Helper()
	dir := t.TempDir()
	creatures, err := data.LoadCreatureTable(writeTestFile(t, dir, "creature_list.yaml", testCreatures))
	require.NoError(t, err)

	scripts := filepath.Join(dir, "scripts")
	writeTestFile(t, scripts, "death/split.lua", testDeathScript)
	if turnScript != "" {
		writeTestFile(t, scripts, "ai/turn.lua", turnScript)
	}
	lua, err := scripting.NewEngine(scripts, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lua.Close)

	bus := event.NewBus()
	tracker := world.NewTracker(world.WithTypeRules(creatures), world.WithEvents(bus))
	return &testWorld{
		tracker:   tracker,
		bus:       bus,
		creatures: creatures,
		lua:       lua,
		spawner:   NewSpawner(tracker, creatures, lua, bus, 1, zap.NewNop()),
	}
}

func (w *testWorld) spawn(t *testing.T, typ world.TypeID, x, y int32) *world.Monster {
	t.Helper()
	m, ok := w.spawner.Spawn(typ, world.Tripoint{X: x, Y: y}, 0)
	require.True(t, ok, "spawn %s at %d,%d", typ, x, y)
	return m
}

// deliver flushes emitted events to subscribers.
func (w *testWorld) deliver() {
	w.bus.SwapBuffers()
	w.bus.DispatchAll()
}
