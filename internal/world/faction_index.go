package world

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/l1jgo/critter/internal/core/arena"
)

// factionIndex buckets creatures by effective faction and grid cell.
// Cells are coarse: queries return whole cell sets and callers do the
// fine-grained distance filtering.
type factionIndex struct {
	cells map[FactionID]map[int]mapset.Set[arena.ID] // faction → cell index → members
}

func newFactionIndex() *factionIndex {
	return &factionIndex{
		cells: make(map[FactionID]map[int]mapset.Set[arena.ID]),
	}
}

func (f *factionIndex) insert(fac FactionID, p Point, id arena.ID) {
	fmap := f.cells[fac]
	if fmap == nil {
		fmap = make(map[int]mapset.Set[arena.ID])
		f.cells[fac] = fmap
	}
	idx := CellIndex(p)
	set, ok := fmap[idx]
	if !ok {
		set = mapset.New[arena.ID]()
		fmap[idx] = set
	}
	set.Put(id)
}

// remove takes id out of fac's cell at p. Empty cells are dropped.
func (f *factionIndex) remove(fac FactionID, p Point, id arena.ID) bool {
	fmap := f.cells[fac]
	if fmap == nil {
		return false
	}
	idx := CellIndex(p)
	set, ok := fmap[idx]
	if !ok || !set.Has(id) {
		return false
	}
	set.Remove(id)
	if set.Size() == 0 {
		delete(fmap, idx)
	}
	return true
}

// removeAnywhere drops id from the cell at p under whichever faction holds
// it. Used when the creature's effective faction may have changed since it
// was indexed.
func (f *factionIndex) removeAnywhere(p Point, id arena.ID) bool {
	for fac := range f.cells {
		if f.remove(fac, p, id) {
			return true
		}
	}
	return false
}

// move re-buckets id from the cell at from to the cell at to. Same-cell
// moves are skipped.
func (f *factionIndex) move(fac FactionID, from, to Point, id arena.ID) {
	if CellIndex(from) == CellIndex(to) {
		return
	}
	if !f.remove(fac, from, id) {
		f.removeAnywhere(from, id)
	}
	f.insert(fac, to, id)
}

func (f *factionIndex) contains(fac FactionID, p Point, id arena.ID) bool {
	set, ok := f.cells[fac][CellIndex(p)]
	return ok && set.Has(id)
}

// nonEmpty returns fac's set at cell idx, if it has members.
func (f *factionIndex) nonEmpty(fac FactionID, idx int) (mapset.Set[arena.ID], bool) {
	set, ok := f.cells[fac][idx]
	if !ok || set.Size() == 0 {
		return set, false
	}
	return set, true
}

// inArea returns every non-empty cell of fac that a square of the given
// radius around center could touch.
func (f *factionIndex) inArea(fac FactionID, center Point, radius int) []mapset.Set[arena.ID] {
	var result []mapset.Set[arena.ID]
	if f.cells[fac] == nil {
		return result
	}
	rng := int32((radius-1)/CellSize + 1)
	for dx := -rng; dx <= rng; dx++ {
		x := center.X + dx*CellSize
		if !inGrid(x) {
			continue
		}
		for dy := -rng; dy <= rng; dy++ {
			y := center.Y + dy*CellSize
			if !inGrid(y) {
				continue
			}
			if set, ok := f.nonEmpty(fac, CellIndex(Point{X: x, Y: y})); ok {
				result = append(result, set)
			}
		}
	}
	return result
}

// atRange returns the non-empty cells of fac forming the ring exactly rng
// cells away from center's cell. rng == 0 yields only the center cell.
func (f *factionIndex) atRange(fac FactionID, center Point, rng int) []mapset.Set[arena.ID] {
	var result []mapset.Set[arena.ID]
	if f.cells[fac] == nil || rng < 0 {
		return result
	}
	r := int32(rng)
	add := func(x, y int32) {
		if set, ok := f.nonEmpty(fac, CellIndex(Point{X: x, Y: y})); ok {
			result = append(result, set)
		}
	}

	// Top and bottom rows, corners included.
	for dx := -r; dx <= r; dx++ {
		x := center.X + dx*CellSize
		if !inGrid(x) {
			continue
		}
		if y := center.Y + r*CellSize; inGrid(y) {
			add(x, y)
		}
		if r == 0 {
			return result
		}
		if y := center.Y - r*CellSize; inGrid(y) {
			add(x, y)
		}
	}

	// Left and right columns, corners excluded.
	for dy := -r + 1; dy <= r-1; dy++ {
		y := center.Y + dy*CellSize
		if !inGrid(y) {
			continue
		}
		if x := center.X + r*CellSize; inGrid(x) {
			add(x, y)
		}
		if x := center.X - r*CellSize; inGrid(x) {
			add(x, y)
		}
	}
	return result
}

// factions lists the factions that currently have at least one member,
// sorted for stable iteration.
func (f *factionIndex) factions() []FactionID {
	out := make([]FactionID, 0, len(f.cells))
	for fac, fmap := range f.cells {
		if len(fmap) > 0 {
			out = append(out, fac)
		}
	}
	slices.Sort(out)
	return out
}

// members returns every id indexed under fac, in no particular order.
func (f *factionIndex) members(fac FactionID) []arena.ID {
	var out []arena.ID
	for _, set := range f.cells[fac] {
		set.Each(func(id arena.ID) { out = append(out, id) })
	}
	return out
}

func (f *factionIndex) clear() {
	clear(f.cells)
}
