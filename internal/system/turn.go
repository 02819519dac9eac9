package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/critter/internal/core/system"
	"github.com/l1jgo/critter/internal/scripting"
	"github.com/l1jgo/critter/internal/world"
)

// TurnSystem asks the Lua creature_turn hook what every live monster does
// and applies the answer through the tracker. Phase 1 (Update).
type TurnSystem struct {
	tracker *world.Tracker
	lua     *scripting.Engine
	radius  int // tiles searched for allies and hostiles
	turn    uint64
	log     *zap.Logger
}

func NewTurnSystem(tracker *world.Tracker, lua *scripting.Engine, radius int, log *zap.Logger) *TurnSystem {
	return &TurnSystem{tracker: tracker, lua: lua, radius: radius, log: log}
}

func (s *TurnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TurnSystem) Update(_ time.Duration) {
	s.turn++
	for _, c := range s.tracker.Creatures() {
		m, ok := c.(*world.Monster)
		if !ok || m.IsDead() {
			continue
		}
		if m.TickFriendly() {
			s.tracker.UpdateFaction(m)
		}
		s.act(m)
	}
}

func (s *TurnSystem) act(m *world.Monster) {
	ctx := creatureContext(m, s.tracker)
	ctx.Turn = s.turn
	ctx.Allies = countAllies(s.tracker, m, s.radius)
	ctx.HostileRing = nearestHostileRing(s.tracker, m, s.radius/world.CellSize+1)

	cmd := s.lua.CreatureTurn(ctx)
	switch cmd.Type {
	case "move":
		s.move(m, int32(clampStep(cmd.DX)), int32(clampStep(cmd.DY)))
	case "die":
		m.MarkForDeath()
	case "idle":
	default:
		s.log.Debug("unknown turn command", zap.String("type", cmd.Type), zap.String("name", m.Name()))
	}
}

// move steps m by one tile. Blocked by a real creature, it swaps places with
// a live creature of its own faction and otherwise stays put.
func (s *TurnSystem) move(m *world.Monster, dx, dy int32) {
	if dx == 0 && dy == 0 {
		return
	}
	dest := m.Pos().Add(dx, dy)
	if !world.InMap(dest) {
		return
	}
	if occupant := s.tracker.Find(dest); occupant != nil && !occupant.IsHallucination() {
		if s.tracker.EffectiveFaction(occupant) == s.tracker.EffectiveFaction(m) {
			s.tracker.SwapPositions(m, occupant)
		}
		return
	}
	s.tracker.Relocate(m, dest)
}

func clampStep(v int) int {
	return max(-1, min(1, v))
}
