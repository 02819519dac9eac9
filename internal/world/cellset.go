package world

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/l1jgo/critter/internal/core/arena"
)

// CellSet is a read-only view of one faction's members in one grid cell, as
// returned by area and ring queries. The view tracks later mutations of the
// cell; copy out with Creatures before mutating the tracker.
type CellSet struct {
	members mapset.Set[arena.ID]
	t       *Tracker
}

// Len returns the number of indexed members, including dead ones that have
// not been purged yet.
func (s CellSet) Len() int { return s.members.Size() }

// Has reports whether c is indexed in this cell.
func (s CellSet) Has(c Creature) bool {
	id, ok := s.t.ids[c]
	return ok && s.members.Has(id)
}

// Creatures resolves the members in ascending id order. Members whose slot
// has been released are skipped.
func (s CellSet) Creatures() []Creature {
	ids := make([]arena.ID, 0, s.members.Size())
	s.members.Each(func(id arena.ID) { ids = append(ids, id) })
	slices.Sort(ids)

	out := make([]Creature, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.t.creatures.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *Tracker) wrap(sets []mapset.Set[arena.ID]) []CellSet {
	out := make([]CellSet, len(sets))
	for i, set := range sets {
		out[i] = CellSet{members: set, t: t}
	}
	return out
}
