package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/critter/internal/core/system"
	"github.com/l1jgo/critter/internal/world"
)

// DeathSystem runs the death effects of every creature that dropped this
// turn. Phase 2 (PostUpdate).
type DeathSystem struct {
	tracker *world.Tracker
	log     *zap.Logger
}

func NewDeathSystem(tracker *world.Tracker, log *zap.Logger) *DeathSystem {
	return &DeathSystem{tracker: tracker, log: log}
}

func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeathSystem) Update(_ time.Duration) {
	before := s.tracker.Size()
	if s.tracker.KillMarkedForDeath() {
		s.log.Debug("death pass",
			zap.Int("tracked_before", before),
			zap.Int("tracked_after", s.tracker.Size()))
	}
}
