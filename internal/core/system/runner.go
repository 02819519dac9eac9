package system

import (
	"slices"
	"time"
)

// Runner executes systems in phase order each turn. Systems sharing a phase
// keep their registration order.
type Runner struct {
	systems []System
	sorted  bool
	turns   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs one full turn.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.turns++
}

// Turns returns the number of completed turns.
func (r *Runner) Turns() uint64 { return r.turns }

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(a.Phase()) - int(b.Phase())
	})
	r.sorted = true
}
