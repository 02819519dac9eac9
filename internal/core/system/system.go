package system

import "time"

// Phase defines execution ordering within a single simulation turn.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last turn's events
	PhaseUpdate                  // 1: creature turns (moves, spawns)
	PhasePostUpdate              // 2: process creatures marked for death
	PhasePersist                 // 3: periodic snapshot
	PhaseCleanup                 // 4: purge dead, drain removed-buffer
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
