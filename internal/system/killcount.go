package system

import (
	"maps"

	"github.com/l1jgo/critter/internal/core/event"
)

// KillCounter tallies deaths per creature type from CreatureDied events.
// Hallucinations are not counted.
type KillCounter struct {
	byType map[string]int
	total  int
}

func NewKillCounter(bus *event.Bus) *KillCounter {
	k := &KillCounter{byType: make(map[string]int)}
	event.Subscribe(bus, k.onDied)
	return k
}

func (k *KillCounter) onDied(e event.CreatureDied) {
	if e.Hallucination {
		return
	}
	k.byType[e.Type]++
	k.total++
}

// Kills returns the count for one type.
func (k *KillCounter) Kills(typ string) int { return k.byType[typ] }

func (k *KillCounter) Total() int { return k.total }

// Snapshot returns a copy of the per-type counts.
func (k *KillCounter) Snapshot() map[string]int { return maps.Clone(k.byType) }
