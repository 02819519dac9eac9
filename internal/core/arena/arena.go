package arena

// ID encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1, so the zero ID never resolves.
type ID uint64

func newID(slot uint32, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(slot))
}

func (id ID) Slot() uint32       { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }
func (id ID) IsZero() bool       { return id == 0 }

// Arena owns values of type T behind generational IDs. Released slots go to a
// free list and are reused with a bumped generation, so a stale ID held by an
// index resolves to nothing instead of to the slot's next occupant.
// Single-goroutine access only.
type Arena[T any] struct {
	generations []uint32
	items       []T
	used        []bool
	freeList    []uint32
	live        int
}

func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		generations: make([]uint32, 0, capacity),
		items:       make([]T, 0, capacity),
		used:        make([]bool, 0, capacity),
		freeList:    make([]uint32, 0, capacity/4),
	}
}

// Insert stores v and returns its ID.
func (a *Arena[T]) Insert(v T) ID {
	a.live++
	if n := len(a.freeList); n > 0 {
		slot := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.items[slot] = v
		a.used[slot] = true
		return newID(slot, a.generations[slot])
	}
	slot := uint32(len(a.items))
	a.generations = append(a.generations, 1)
	a.items = append(a.items, v)
	a.used = append(a.used, true)
	return newID(slot, 1)
}

// Alive reports whether id still refers to a stored value.
func (a *Arena[T]) Alive(id ID) bool {
	slot := id.Slot()
	if int(slot) >= len(a.items) {
		return false
	}
	return a.used[slot] && a.generations[slot] == id.Generation()
}

// Get resolves id. The second result is false for released or unknown IDs.
func (a *Arena[T]) Get(id ID) (T, bool) {
	if !a.Alive(id) {
		var zero T
		return zero, false
	}
	return a.items[id.Slot()], true
}

// Release frees the slot behind id. Releasing a stale ID is a no-op.
func (a *Arena[T]) Release(id ID) bool {
	if !a.Alive(id) {
		return false
	}
	slot := id.Slot()
	var zero T
	a.items[slot] = zero
	a.used[slot] = false
	a.generations[slot]++
	if a.generations[slot] == 0 {
		a.generations[slot] = 1
	}
	a.freeList = append(a.freeList, slot)
	a.live--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.live }

// Reset drops every value. Generations are kept so IDs issued before the
// reset stay invalid afterwards.
func (a *Arena[T]) Reset() {
	var zero T
	a.freeList = a.freeList[:0]
	for slot := range a.items {
		if a.used[slot] {
			a.items[slot] = zero
			a.used[slot] = false
			a.generations[slot]++
			if a.generations[slot] == 0 {
				a.generations[slot] = 1
			}
		}
		a.freeList = append(a.freeList, uint32(slot))
	}
	a.live = 0
}
