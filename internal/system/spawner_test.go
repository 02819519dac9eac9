package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/critter/internal/core/event"
	"github.com/l1jgo/critter/internal/data"
	"github.com/l1jgo/critter/internal/world"
)

func TestSpawner_Spawn(t *testing.T) {
	w := newTestWorld(t, "")
	var spawned []event.CreatureSpawned
	event.Subscribe(w.bus, func(e event.CreatureSpawned) { spawned = append(spawned, e) })

	m := w.spawn(t, "mon_zombie", 5, 5)
	assert.Same(t, m, w.tracker.Find(world.Tripoint{X: 5, Y: 5}))
	assert.Equal(t, int32(10), m.MaxHP())

	_, ok := w.spawner.Spawn("mon_zombie", world.Tripoint{X: 5, Y: 5}, 0)
	assert.False(t, ok, "tile taken")
	_, ok = w.spawner.Spawn("mon_unknown", world.Tripoint{X: 1, Y: 1}, 0)
	assert.False(t, ok)
	_, ok = w.spawner.Spawn("mon_fly", world.Tripoint{X: 1, Y: 1}, 0)
	assert.False(t, ok, "vermin rejected")
	_, ok = w.spawner.Spawn("mon_zombie", world.Tripoint{X: world.MapSize, Y: 1}, 0)
	assert.False(t, ok, "outside the map")

	w.deliver()
	require.Len(t, spawned, 1)
	assert.Equal(t, event.CreatureSpawned{Type: "mon_zombie", Faction: "zombie", X: 5, Y: 5}, spawned[0])
}

func TestSpawner_Friendly(t *testing.T) {
	w := newTestWorld(t, "")
	pet, ok := w.spawner.Spawn("mon_dog", world.Tripoint{X: 2, Y: 2}, -1)
	require.True(t, ok)
	assert.True(t, pet.IsPet())
	assert.Equal(t, []world.FactionID{world.DefaultPlayerFaction}, w.tracker.Factions())
}

func TestSpawner_SpawnList(t *testing.T) {
	w := newTestWorld(t, "")
	placed := w.spawner.SpawnList([]data.SpawnEntry{
		{Type: "mon_zombie", X: 20, Y: 20, Count: 5, RandomX: 3, RandomY: 3},
		{Type: "mon_dog", X: 60, Y: 60, Count: 1},
		{Type: "mon_dog", X: 60, Y: 60, Count: 1}, // same fixed tile
	})
	assert.Equal(t, 6, placed)
	assert.Equal(t, 6, w.tracker.Size())
	assert.NoError(t, w.tracker.CheckConsistency())

	for _, c := range w.tracker.FactionMembers("zombie") {
		assert.InDelta(t, 20, c.Pos().X, 3)
		assert.InDelta(t, 20, c.Pos().Y, 3)
	}
}

func TestSpawner_DeathSplitsThroughTracker(t *testing.T) {
	w := newTestWorld(t, "")
	kills := NewKillCounter(w.bus)
	blob := w.spawn(t, "mon_blob", 30, 30)

	blob.MarkForDeath()
	require.True(t, w.tracker.KillMarkedForDeath())

	children := w.tracker.FactionMembers("blob")
	require.Len(t, children, 3, "parent stays until purged")
	assert.Same(t, blob, children[0])
	assert.Equal(t, world.Tripoint{X: 29, Y: 30}, children[1].Pos())
	assert.Equal(t, world.Tripoint{X: 31, Y: 30}, children[2].Pos())
	assert.Equal(t, int32(20), children[1].(*world.Monster).MaxHP())

	// Each child splits once more. The left child's right half lands on the
	// dead parent's tile; the right child's left half then finds it taken.
	for _, c := range children[1:] {
		c.(*world.Monster).MarkForDeath()
	}
	w.tracker.KillMarkedForDeath()
	assert.Equal(t, 6, w.tracker.Size())
	assert.NotNil(t, w.tracker.Find(world.Tripoint{X: 30, Y: 30}))

	assert.Equal(t, 3, w.tracker.RemoveDead())
	assert.Equal(t, 3, w.tracker.Size())
	assert.NoError(t, w.tracker.CheckConsistency())

	w.deliver()
	assert.Equal(t, 3, kills.Kills("mon_blob"))
}

func TestSpawner_HallucinationDeathNotCounted(t *testing.T) {
	w := newTestWorld(t, "")
	kills := NewKillCounter(w.bus)
	h := w.spawn(t, "mon_hallu", 3, 3)

	// A real arrival kills the hallucination on the spot.
	w.spawn(t, "mon_zombie", 3, 3)
	assert.True(t, h.Died())

	w.deliver()
	assert.Equal(t, 0, kills.Total())
}
