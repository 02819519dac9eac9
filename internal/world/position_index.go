package world

import "github.com/l1jgo/critter/internal/core/arena"

// positionIndex maps an exact tile to the single creature recorded there.
// It does not enforce uniqueness itself; the Tracker does.
type positionIndex struct {
	tiles map[Tripoint]arena.ID
}

func newPositionIndex() *positionIndex {
	return &positionIndex{tiles: make(map[Tripoint]arena.ID, 256)}
}

func (x *positionIndex) at(p Tripoint) (arena.ID, bool) {
	id, ok := x.tiles[p]
	return id, ok
}

func (x *positionIndex) set(p Tripoint, id arena.ID) {
	x.tiles[p] = id
}

func (x *positionIndex) erase(p Tripoint) {
	delete(x.tiles, p)
}

// holds reports whether p is recorded as holding id.
func (x *positionIndex) holds(p Tripoint, id arena.ID) bool {
	got, ok := x.tiles[p]
	return ok && got == id
}

// eraseID removes id's entry. The entry is expected at p, but a creature
// whose position field drifted may still be recorded elsewhere, so fall back
// to a full scan.
func (x *positionIndex) eraseID(p Tripoint, id arena.ID) bool {
	if x.holds(p, id) {
		delete(x.tiles, p)
		return true
	}
	for tile, got := range x.tiles {
		if got == id {
			delete(x.tiles, tile)
			return true
		}
	}
	return false
}

func (x *positionIndex) len() int { return len(x.tiles) }

func (x *positionIndex) clear() { clear(x.tiles) }
