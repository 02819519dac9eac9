package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/critter/internal/core/system"
	"github.com/l1jgo/critter/internal/world"
)

// CleanupSystem purges dead creatures and drains the tracker's removed
// buffer at turn end. With debug checks on it also verifies the indexes and
// rebuilds them on drift. Phase 4 (Cleanup).
type CleanupSystem struct {
	tracker     *world.Tracker
	debugChecks bool
	log         *zap.Logger
}

func NewCleanupSystem(tracker *world.Tracker, debugChecks bool, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{tracker: tracker, debugChecks: debugChecks, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.tracker.RemoveDead(); n > 0 {
		s.log.Debug("dead creatures purged", zap.Int("count", n), zap.Int("tracked", s.tracker.Size()))
	}
	if !s.debugChecks {
		return
	}
	if err := s.tracker.CheckConsistency(); err != nil {
		s.log.Warn("creature tracker drifted", zap.Error(err))
		s.tracker.RebuildCache()
	}
}
