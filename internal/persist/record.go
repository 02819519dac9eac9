package persist

import (
	"context"
	"errors"
	"time"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// CreatureRecord is one registry entry. Records are stored and loaded in
// slot order, which is the tracker's registry order.
type CreatureRecord struct {
	Slot          int    `msgpack:"slot"`
	Serial        int64  `msgpack:"serial"`
	Type          string `msgpack:"type"`
	Name          string `msgpack:"name"`
	Faction       string `msgpack:"faction"`
	X             int32  `msgpack:"x"`
	Y             int32  `msgpack:"y"`
	Z             int32  `msgpack:"z"`
	HP            int32  `msgpack:"hp"`
	MaxHP         int32  `msgpack:"max_hp"`
	Friendly      int    `msgpack:"friendly"`
	Pet           bool   `msgpack:"pet"`
	Hallucination bool   `msgpack:"hallucination"`
	Died          bool   `msgpack:"died"`
}

// Snapshot is the full registry at one turn. Derived indexes are never
// saved; they are rebuilt on load.
type Snapshot struct {
	Turn      uint64           `msgpack:"turn"`
	SavedAt   time.Time        `msgpack:"saved_at"`
	Creatures []CreatureRecord `msgpack:"creatures"`
}

// Store saves and loads snapshots.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns the latest snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) (*Snapshot, error)
}

// normalize renumbers slots to match slice order.
func (s *Snapshot) normalize() {
	for i := range s.Creatures {
		s.Creatures[i].Slot = i
	}
}
