package world

import "github.com/l1jgo/critter/internal/core/arena"

// Handle is a temporary index into the ordered registry. It is valid until
// the next add or remove; NoHandle marks an untracked creature.
type Handle int

const NoHandle Handle = -1

// registry is the insertion-ordered list of every tracked creature, dead or
// alive, until purged. Handles are plain positions in the list, so erasing
// shifts every later handle down by one.
type registry struct {
	ids []arena.ID
}

func (r *registry) append(id arena.ID) Handle {
	h := Handle(len(r.ids))
	r.ids = append(r.ids, id)
	return h
}

// handleOf is a linear scan; it only backs temporary-id lookups.
func (r *registry) handleOf(id arena.ID) Handle {
	for i, got := range r.ids {
		if got == id {
			return Handle(i)
		}
	}
	return NoHandle
}

func (r *registry) byHandle(h Handle) (arena.ID, bool) {
	if h < 0 || int(h) >= len(r.ids) {
		return 0, false
	}
	return r.ids[h], true
}

func (r *registry) erase(id arena.ID) bool {
	h := r.handleOf(id)
	if h == NoHandle {
		return false
	}
	r.ids = append(r.ids[:h], r.ids[h+1:]...)
	return true
}

// retain keeps only the ids for which keep returns true, preserving order.
func (r *registry) retain(keep func(arena.ID) bool) {
	kept := r.ids[:0]
	for _, id := range r.ids {
		if keep(id) {
			kept = append(kept, id)
		}
	}
	clear(r.ids[len(kept):])
	r.ids = kept
}

// snapshot returns a copy safe to iterate while the registry mutates.
func (r *registry) snapshot() []arena.ID {
	out := make([]arena.ID, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *registry) len() int { return len(r.ids) }

func (r *registry) reset() { r.ids = r.ids[:0] }
