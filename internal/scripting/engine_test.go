package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_CreatureTurn(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"ai/turn.lua": `
function creature_turn(c)
  if c.hp <= 0 then return { type = "die" } end
  if c.hallucination then return { type = "idle" } end
  return { type = "move", dx = c.x % 2 == 0 and 1 or -1, dy = c.allies }
end
`,
	})
	require.True(t, e.HasFunc("creature_turn"))

	cmd := e.CreatureTurn(CreatureContext{Type: "mon_zombie", X: 4, HP: 5, Allies: 2})
	assert.Equal(t, TurnCommand{Type: "move", DX: 1, DY: 2}, cmd)

	cmd = e.CreatureTurn(CreatureContext{X: 3, HP: 0})
	assert.Equal(t, "die", cmd.Type)

	cmd = e.CreatureTurn(CreatureContext{HP: 1, Hallucination: true})
	assert.Equal(t, TurnCommand{Type: "idle"}, cmd)
}

func TestEngine_CreatureTurnFallsBackToIdle(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.False(t, e.HasFunc("creature_turn"))
	assert.Equal(t, TurnCommand{Type: "idle"}, e.CreatureTurn(CreatureContext{}))

	require.NoError(t, e.DoString(`function creature_turn(c) error("boom") end`))
	assert.Equal(t, TurnCommand{Type: "idle"}, e.CreatureTurn(CreatureContext{}))

	require.NoError(t, e.DoString(`function creature_turn(c) return 7 end`))
	assert.Equal(t, TurnCommand{Type: "idle"}, e.CreatureTurn(CreatureContext{}))
}

func TestEngine_OnDeath(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"death/split.lua": `
function blob_split(c)
  local half = math.floor(c.max_hp / 2)
  if half < 1 then return {} end
  return {
    { type = c.type, dx = -1, dy = 0, hp = half },
    { type = c.type, dx = 1, dy = 0, hp = half },
  }
end
`,
	})

	spawns := e.OnDeath("blob_split", CreatureContext{Type: "mon_blob", MaxHP: 40})
	require.Len(t, spawns, 2)
	assert.Equal(t, SpawnCommand{Type: "mon_blob", DX: -1, HP: 20}, spawns[0])
	assert.Equal(t, SpawnCommand{Type: "mon_blob", DX: 1, HP: 20}, spawns[1])

	assert.Empty(t, e.OnDeath("blob_split", CreatureContext{Type: "mon_blob", MaxHP: 1}))
	assert.Nil(t, e.OnDeath("", CreatureContext{}), "no default hook defined")
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.ErrorContains(t, err, "load scripts")
}
