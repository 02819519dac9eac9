package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonster_DeathRunsHookOnce(t *testing.T) {
	m := zombie(0, 0)
	calls := 0
	m.SetDeathHook(func(got *Monster, killer Creature) {
		assert.Same(t, m, got)
		assert.Nil(t, killer)
		calls++
	})

	m.MarkForDeath()
	assert.True(t, m.IsDead())
	assert.False(t, m.Died())

	m.Die(nil)
	m.Die(nil)
	assert.Equal(t, 1, calls)
	assert.True(t, m.Died())
}

func TestMonster_Hurt(t *testing.T) {
	m := zombie(0, 0)
	assert.False(t, m.Hurt(4))
	assert.Equal(t, int32(6), m.HP())
	assert.False(t, m.Hurt(-3))
	assert.True(t, m.Hurt(100))
	assert.Equal(t, int32(0), m.HP())
	assert.False(t, m.Hurt(1), "already down")
}

func TestMonster_Friendliness(t *testing.T) {
	m := zombie(0, 0)
	m.MakeFriendly(2)
	assert.Equal(t, 2, m.Friendly())
	assert.False(t, m.TickFriendly())
	assert.True(t, m.TickFriendly())
	assert.Equal(t, 0, m.Friendly())

	m.MakePet()
	assert.True(t, m.IsPet())
	assert.False(t, m.TickFriendly(), "pets stay friendly")
	assert.Equal(t, -1, m.Friendly())
}

func TestMonster_StateRoundTrip(t *testing.T) {
	m := NewMonster(MonsterSpec{Type: "mon_blob", Faction: "blob", MaxHP: 30}, Tripoint{X: 7, Y: 8, Z: -2})
	m.Hurt(5)
	m.MakeFriendly(3)

	back := MonsterFromState(m.State())
	require.NotSame(t, m, back)
	assert.Equal(t, m.State(), back.State())
	assert.Equal(t, "mon_blob", back.Name(), "name defaults to type")
	assert.Greater(t, NextMonsterSerial(), m.Serial())
}
