package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/critter/internal/core/arena"
)

func TestRegistry_HandlesShiftOnErase(t *testing.T) {
	var r registry
	for i := 1; i <= 4; i++ {
		assert.Equal(t, Handle(i-1), r.append(arena.ID(i)))
	}

	assert.True(t, r.erase(2))
	assert.False(t, r.erase(2))
	assert.Equal(t, 3, r.len())
	assert.Equal(t, Handle(1), r.handleOf(3), "later handles move down")
	assert.Equal(t, NoHandle, r.handleOf(2))

	id, ok := r.byHandle(2)
	assert.True(t, ok)
	assert.Equal(t, arena.ID(4), id)

	_, ok = r.byHandle(3)
	assert.False(t, ok)
	_, ok = r.byHandle(NoHandle)
	assert.False(t, ok)
}

func TestRegistry_RetainKeepsOrder(t *testing.T) {
	var r registry
	for i := 1; i <= 6; i++ {
		r.append(arena.ID(i))
	}
	snap := r.snapshot()

	r.retain(func(id arena.ID) bool { return id%2 == 0 })
	assert.Equal(t, []arena.ID{2, 4, 6}, r.ids)
	assert.Equal(t, []arena.ID{1, 2, 3, 4, 5, 6}, snap, "snapshot is a copy")
}
