package system

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/l1jgo/critter/internal/core/event"
	"github.com/l1jgo/critter/internal/data"
	"github.com/l1jgo/critter/internal/scripting"
	"github.com/l1jgo/critter/internal/world"
)

// spawnAttempts bounds the retries for a jittered spawn position.
const spawnAttempts = 8

// Spawner creates monsters from templates and puts them in the tracker. It
// also owns the death hook, which reports deaths and runs the Lua split
// hook. Game loop only.
type Spawner struct {
	tracker   *world.Tracker
	creatures *data.CreatureTable
	lua       *scripting.Engine // nil = no death scripts
	bus       *event.Bus
	rng       *rand.Rand
	log       *zap.Logger
}

func NewSpawner(tracker *world.Tracker, creatures *data.CreatureTable, lua *scripting.Engine, bus *event.Bus, seed uint64, log *zap.Logger) *Spawner {
	return &Spawner{
		tracker:   tracker,
		creatures: creatures,
		lua:       lua,
		bus:       bus,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:       log,
	}
}

// Spawn creates a monster of type typ at pos and tracks it. friendly > 0
// makes it friendly for that many turns; -1 makes it a pet.
func (s *Spawner) Spawn(typ world.TypeID, pos world.Tripoint, friendly int) (*world.Monster, bool) {
	spec, ok := s.creatures.Spec(typ)
	if !ok {
		s.log.Warn("spawn of unknown creature type", zap.String("type", string(typ)))
		return nil, false
	}
	return s.spawnSpec(spec, pos, friendly)
}

func (s *Spawner) spawnSpec(spec world.MonsterSpec, pos world.Tripoint, friendly int) (*world.Monster, bool) {
	if !world.InMap(pos) {
		return nil, false
	}
	m := world.NewMonster(spec, pos)
	switch {
	case friendly < 0:
		m.MakePet()
	case friendly > 0:
		m.MakeFriendly(friendly)
	}
	s.Attach(m)
	if !s.tracker.Add(m) {
		return nil, false
	}
	event.Emit(s.bus, event.CreatureSpawned{
		Type:    string(m.TypeID()),
		Faction: string(s.tracker.EffectiveFaction(m)),
		X:       pos.X, Y: pos.Y, Z: pos.Z,
	})
	return m, true
}

// Attach installs the death hook. Restored monsters need it again since
// hooks are not persisted.
func (s *Spawner) Attach(m *world.Monster) {
	m.SetDeathHook(s.onDeath)
}

// SpawnList spawns every entry, jittering positions within the entry's
// random box. Returns the number of monsters placed.
func (s *Spawner) SpawnList(entries []data.SpawnEntry) int {
	placed := 0
	for _, e := range entries {
		for range e.Count {
			if s.spawnEntry(e) {
				placed++
			}
		}
	}
	s.log.Info("spawn list processed",
		zap.Int("entries", len(entries)),
		zap.Int("placed", placed),
		zap.Int("tracked", s.tracker.Size()))
	return placed
}

func (s *Spawner) spawnEntry(e data.SpawnEntry) bool {
	for range spawnAttempts {
		pos := world.Tripoint{X: e.X + s.jitter(e.RandomX), Y: e.Y + s.jitter(e.RandomY), Z: e.Z}
		if s.tracker.Find(pos) != nil {
			continue
		}
		if _, ok := s.Spawn(world.TypeID(e.Type), pos, e.Friendly); ok {
			return true
		}
		if e.RandomX == 0 && e.RandomY == 0 {
			break
		}
	}
	s.log.Debug("spawn entry not placed",
		zap.String("type", e.Type), zap.Int32("x", e.X), zap.Int32("y", e.Y))
	return false
}

// jitter returns a uniform offset in [-r, r].
func (s *Spawner) jitter(r int32) int32 {
	if r <= 0 {
		return 0
	}
	return s.rng.Int32N(2*r+1) - r
}

func (s *Spawner) onDeath(m *world.Monster, _ world.Creature) {
	pos := m.Pos()
	event.Emit(s.bus, event.CreatureDied{
		Type: string(m.TypeID()),
		Name: m.Name(),
		X:    pos.X, Y: pos.Y, Z: pos.Z,
		Hallucination: m.IsHallucination(),
	})
	if s.lua == nil || m.IsHallucination() {
		return
	}

	var hook string
	if tmpl := s.creatures.Get(m.TypeID()); tmpl != nil {
		hook = tmpl.DeathScript
	}
	for _, cmd := range s.lua.OnDeath(hook, creatureContext(m, s.tracker)) {
		typ := world.TypeID(cmd.Type)
		if typ == "" {
			typ = m.TypeID()
		}
		spec, ok := s.creatures.Spec(typ)
		if !ok {
			s.log.Warn("death hook spawned unknown type",
				zap.String("parent", string(m.TypeID())), zap.String("type", cmd.Type))
			continue
		}
		if cmd.HP > 0 {
			spec.MaxHP = int32(cmd.HP)
		}
		// Re-enters the tracker while KillMarkedForDeath is iterating.
		if child, ok := s.spawnSpec(spec, pos.Add(int32(cmd.DX), int32(cmd.DY)), m.Friendly()); ok {
			s.log.Debug("creature split",
				zap.String("parent", m.Name()),
				zap.Stringer("child_pos", child.Pos()))
		}
	}
}
