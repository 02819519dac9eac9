package system

import (
	"github.com/l1jgo/critter/internal/scripting"
	"github.com/l1jgo/critter/internal/world"
)

// creatureContext packs a monster for Lua without neighbourhood data.
func creatureContext(m *world.Monster, t *world.Tracker) scripting.CreatureContext {
	pos := m.Pos()
	return scripting.CreatureContext{
		Type:          string(m.TypeID()),
		Name:          m.Name(),
		Faction:       string(t.EffectiveFaction(m)),
		X:             int(pos.X),
		Y:             int(pos.Y),
		Z:             int(pos.Z),
		HP:            int(m.HP()),
		MaxHP:         int(m.MaxHP()),
		Friendly:      m.Friendly(),
		Hallucination: m.IsHallucination(),
		HostileRing:   -1,
	}
}

// countAllies counts live same-faction creatures within radius tiles
// (Chebyshev), excluding m.
func countAllies(t *world.Tracker, m *world.Monster, radius int) int {
	pos := m.Pos()
	n := 0
	for _, cell := range t.FindInArea(t.EffectiveFaction(m), pos, radius) {
		for _, c := range cell.Creatures() {
			if c == world.Creature(m) || c.IsDead() {
				continue
			}
			if chebyshev(pos, c.Pos()) <= radius {
				n++
			}
		}
	}
	return n
}

// nearestHostileRing searches outward ring by ring for a live creature of
// another faction. Returns the ring distance in cells, or -1.
func nearestHostileRing(t *world.Tracker, m *world.Monster, maxRing int) int {
	own := t.EffectiveFaction(m)
	pos := m.Pos()
	for rng := 0; rng <= maxRing; rng++ {
		for _, fac := range t.Factions() {
			if fac == own {
				continue
			}
			for _, cell := range t.FindAtRange(fac, pos, rng) {
				for _, c := range cell.Creatures() {
					if !c.IsDead() {
						return rng
					}
				}
			}
		}
	}
	return -1
}

func chebyshev(a, b world.Tripoint) int {
	return max(abs(int(a.X-b.X)), abs(int(a.Y-b.Y)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
