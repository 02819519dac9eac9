package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/critter/internal/persist"
)

func TestConvert(t *testing.T) {
	snap := &persist.Snapshot{
		Turn:    9,
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Creatures: []persist.CreatureRecord{
			{Type: "mon_zombie", Name: "zombie", Faction: "zombie", X: 1, Y: 2, HP: 5, MaxHP: 10},
			{Type: "mon_dog", Name: "dog", Faction: "dog", X: 3, Y: 4, HP: 8, MaxHP: 8, Friendly: -1, Pet: true},
			{Type: "mon_zombie", Name: "zombie", Faction: "zombie", X: 5, Y: 6, MaxHP: 10, Died: true},
		},
	}

	d := convert(snap)
	assert.Equal(t, "2026-01-02T03:04:05Z", d.SavedAt)
	assert.Equal(t, []factionCount{
		{Faction: "dog", Live: 1},
		{Faction: "zombie", Live: 1, Dead: 1},
	}, d.Factions)
	require.Len(t, d.Creatures, 3)
	assert.Equal(t, 2, d.Creatures[2].Handle)
	assert.Equal(t, "dead", d.Creatures[2].Flags)
	assert.Equal(t, "pet", d.Creatures[1].Flags)
	assert.Equal(t, "1,2,0", d.Creatures[0].Pos)

	var buf bytes.Buffer
	require.NoError(t, write(&buf, d))
	assert.Contains(t, buf.String(), "# critterd snapshot, turn 9 (3 creatures)")

	var back dumpFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, d, back)
}
