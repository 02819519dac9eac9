package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/critter/internal/core/system"
	"github.com/l1jgo/critter/internal/persist"
	"github.com/l1jgo/critter/internal/world"
)

// saveTimeout bounds a single snapshot write.
const saveTimeout = 5 * time.Second

// PersistenceSystem periodically snapshots the tracker's registry in order.
// Phase 3 (Persist).
type PersistenceSystem struct {
	tracker   *world.Tracker
	store     persist.Store
	spawner   *Spawner
	turns     func() uint64
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks; 0 disables periodic saves
}

func NewPersistenceSystem(tracker *world.Tracker, store persist.Store, spawner *Spawner, turns func() uint64, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		tracker:  tracker,
		store:    store,
		spawner:  spawner,
		turns:    turns,
		interval: intervalTicks,
		log:      log,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.Save(ctx); err != nil {
		s.log.Error("auto-save failed", zap.Error(err))
	}
}

// Save writes the whole registry, dead entries included.
func (s *PersistenceSystem) Save(ctx context.Context) error {
	snap := &persist.Snapshot{
		Turn:    s.turns(),
		SavedAt: time.Now(),
	}
	for _, c := range s.tracker.Creatures() {
		m, ok := c.(*world.Monster)
		if !ok {
			continue
		}
		snap.Creatures = append(snap.Creatures, recordFromMonster(m))
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.log.Info("snapshot saved",
		zap.Uint64("turn", snap.Turn),
		zap.Int("creatures", len(snap.Creatures)))
	return nil
}

// Restore loads the latest snapshot into the tracker. Returns false with a
// nil error when there is nothing to restore.
func (s *PersistenceSystem) Restore(ctx context.Context) (bool, error) {
	snap, err := s.store.Load(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	creatures := make([]world.Creature, 0, len(snap.Creatures))
	for _, rec := range snap.Creatures {
		m := monsterFromRecord(rec)
		if s.spawner != nil {
			s.spawner.Attach(m)
		}
		creatures = append(creatures, m)
	}
	s.tracker.Restore(creatures)
	s.log.Info("snapshot restored",
		zap.Uint64("turn", snap.Turn),
		zap.Time("saved_at", snap.SavedAt),
		zap.Int("creatures", len(creatures)))
	return true, nil
}

func recordFromMonster(m *world.Monster) persist.CreatureRecord {
	st := m.State()
	return persist.CreatureRecord{
		Serial:        st.Serial,
		Type:          string(st.Type),
		Name:          st.Name,
		Faction:       string(st.Faction),
		X:             st.Pos.X,
		Y:             st.Pos.Y,
		Z:             st.Pos.Z,
		HP:            st.HP,
		MaxHP:         st.MaxHP,
		Friendly:      st.Friendly,
		Pet:           st.Pet,
		Hallucination: st.Hallucination,
		Died:          st.Died,
	}
}

func monsterFromRecord(r persist.CreatureRecord) *world.Monster {
	return world.MonsterFromState(world.MonsterState{
		Serial:        r.Serial,
		Type:          world.TypeID(r.Type),
		Name:          r.Name,
		Faction:       world.FactionID(r.Faction),
		Pos:           world.Tripoint{X: r.X, Y: r.Y, Z: r.Z},
		HP:            r.HP,
		MaxHP:         r.MaxHP,
		Friendly:      r.Friendly,
		Pet:           r.Pet,
		Hallucination: r.Hallucination,
		Died:          r.Died,
	})
}
