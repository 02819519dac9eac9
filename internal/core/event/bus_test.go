package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []CreatureDied
	Subscribe(b, func(ev CreatureDied) { got = append(got, ev) })

	Emit(b, CreatureDied{Type: "mon_zombie"})
	b.DispatchAll()
	assert.Empty(t, got, "events are not visible before the swap")
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []CreatureDied{{Type: "mon_zombie"}}, got)
	assert.Equal(t, 0, b.Pending())

	// The next swap clears the delivered batch.
	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1)
}

func TestBus_TypedRouting(t *testing.T) {
	b := NewBus()
	var rebuilt, died int
	Subscribe(b, func(CacheRebuilt) { rebuilt++ })
	Subscribe(b, func(CreatureDied) { died++ })

	Emit(b, CacheRebuilt{Reason: "manual"})
	Emit(b, CacheRebuilt{Reason: "restore"})
	Emit(b, CreatureDied{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 2, rebuilt)
	assert.Equal(t, 1, died)
}

func TestBus_NilIsSilent(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { Emit(b, CreaturesPurged{Count: 1}) })
}
