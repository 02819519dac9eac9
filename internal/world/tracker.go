package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/critter/internal/core/arena"
	"github.com/l1jgo/critter/internal/core/event"
)

// Tracker keeps the registry, position index and faction index of all
// tracked creatures in agreement. Every mutation MUST go through its methods.
// Accessed only from the game loop goroutine; no locks.
type Tracker struct {
	creatures *arena.Arena[Creature]
	ids       map[Creature]arena.ID // registry members only
	list      registry
	byPos     *positionIndex
	factions  *factionIndex

	// Creatures taken out of the registry during the current step. Their
	// arena slots stay valid until EndStep or RemoveDead drains this list.
	removed []arena.ID

	rules     TypeRules
	factionOf func(Creature) FactionID
	player    FactionID
	events    *event.Bus
	log       *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

func WithLogger(log *zap.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

func WithTypeRules(rules TypeRules) Option {
	return func(t *Tracker) { t.rules = rules }
}

// WithPlayerFaction sets the faction friendly creatures are indexed under.
func WithPlayerFaction(f FactionID) Option {
	return func(t *Tracker) { t.player = f }
}

// WithFactionPolicy replaces the effective-faction rule entirely.
func WithFactionPolicy(fn func(Creature) FactionID) Option {
	return func(t *Tracker) { t.factionOf = fn }
}

func WithEvents(bus *event.Bus) Option {
	return func(t *Tracker) { t.events = bus }
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		creatures: arena.New[Creature](256),
		ids:       make(map[Creature]arena.ID, 256),
		byPos:     newPositionIndex(),
		factions:  newFactionIndex(),
		removed:   make([]arena.ID, 0, 16),
		rules:     defaultRules{},
		player:    DefaultPlayerFaction,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EffectiveFaction is the faction c is indexed under: its own, or the
// player's while it is friendly.
func (t *Tracker) EffectiveFaction(c Creature) FactionID {
	if t.factionOf != nil {
		return t.factionOf(c)
	}
	if c.Friendly() != 0 {
		return t.player
	}
	return c.Faction()
}

func (t *Tracker) resolve(id arena.ID) (Creature, bool) {
	return t.creatures.Get(id)
}

// --- queries ---

// Find returns the live creature at pos, or nil. Dead occupants are ignored.
func (t *Tracker) Find(pos Tripoint) Creature {
	id, ok := t.byPos.at(pos)
	if !ok {
		return nil
	}
	c, ok := t.resolve(id)
	if !ok || c.IsDead() {
		return nil
	}
	return c
}

// FindInArea returns the non-empty cells of faction that a square of the
// given radius around center could intersect. Cell granular, not exact.
func (t *Tracker) FindInArea(faction FactionID, center Tripoint, radius int) []CellSet {
	return t.wrap(t.factions.inArea(faction, center.XY(), radius))
}

// FindAtRange returns the non-empty cells of faction on the ring exactly rng
// cells from center, for searching outward ring by ring.
func (t *Tracker) FindAtRange(faction FactionID, center Tripoint, rng int) []CellSet {
	return t.wrap(t.factions.atRange(faction, center.XY(), rng))
}

// TemporaryID returns c's registry handle, or NoHandle. The handle is valid
// until the next Add or Remove and survives a save/load round trip.
func (t *Tracker) TemporaryID(c Creature) Handle {
	id, ok := t.ids[c]
	if !ok {
		return NoHandle
	}
	return t.list.handleOf(id)
}

// FromTemporaryID resolves a handle, or returns nil if it is out of range.
func (t *Tracker) FromTemporaryID(h Handle) Creature {
	id, ok := t.list.byHandle(h)
	if !ok {
		return nil
	}
	c, _ := t.resolve(id)
	return c
}

// Tracked reports whether c is in the registry.
func (t *Tracker) Tracked(c Creature) bool {
	_, ok := t.ids[c]
	return ok
}

// Size returns the number of registry entries, dead ones included.
func (t *Tracker) Size() int { return t.list.len() }

// Creatures returns the registry in order. The slice is a copy.
func (t *Tracker) Creatures() []Creature {
	out := make([]Creature, 0, t.list.len())
	for _, id := range t.list.ids {
		if c, ok := t.resolve(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// Factions lists the effective factions that have indexed members.
func (t *Tracker) Factions() []FactionID { return t.factions.factions() }

// FactionMembers returns every creature indexed under faction, in registry
// order.
func (t *Tracker) FactionMembers(faction FactionID) []Creature {
	members := make(map[arena.ID]struct{})
	for _, id := range t.factions.members(faction) {
		members[id] = struct{}{}
	}
	out := make([]Creature, 0, len(members))
	for _, id := range t.list.ids {
		if _, ok := members[id]; !ok {
			continue
		}
		if c, ok := t.resolve(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// Each calls fn for every registry entry in order until fn returns false.
// fn must not add or remove creatures.
func (t *Tracker) Each(fn func(h Handle, c Creature) bool) {
	for i, id := range t.list.ids {
		c, ok := t.resolve(id)
		if !ok {
			continue
		}
		if !fn(Handle(i), c) {
			return
		}
	}
}

// Removed returns how many removed creatures are kept resolvable until the
// end of the step.
func (t *Tracker) Removed() int { return len(t.removed) }

// --- mutations ---

// Add starts tracking c. It fails for null, vermin and blacklisted types and
// when a live creature already stands on c's tile, except that a
// hallucination occupant is killed to make room for a real arrival. A
// hallucination never displaces anything. c must not be nil.
func (t *Tracker) Add(c Creature) bool {
	if c == nil {
		panic("world: Tracker.Add called with nil creature")
	}
	typ := c.TypeID()
	if t.rules.IsNull(typ) || t.rules.IsVermin(typ) || t.rules.IsBlacklisted(typ) {
		return false
	}
	if _, dup := t.ids[c]; dup {
		t.log.Warn("creature already tracked",
			zap.String("name", c.Name()), zap.Stringer("pos", c.Pos()))
		return false
	}

	pos := c.Pos()
	if occupant := t.Find(pos); occupant != nil {
		switch {
		case c.IsHallucination():
			return false
		case occupant.IsHallucination():
			// Killed but left in the registry: removing it here would
			// reorder handles under an in-flight iteration.
			occupant.Die(nil)
		default:
			t.log.Warn("tile already occupied",
				zap.Stringer("pos", pos),
				zap.String("occupant", occupant.Name()),
				zap.String("arrival", c.Name()))
			return false
		}
	}

	id := t.creatures.Insert(c)
	t.ids[c] = id
	t.list.append(id)
	t.byPos.set(pos, id)
	t.factions.insert(t.EffectiveFaction(c), pos.XY(), id)
	return true
}

// UpdatePosition records that c is moving to newPos. Call it before
// changing the creature's own position; Relocate does both.
func (t *Tracker) UpdatePosition(c Creature, newPos Tripoint) bool {
	if c.IsDead() {
		// Find ignores dead creatures, so only the tile entry matters.
		if id, ok := t.ids[c]; ok {
			t.byPos.eraseID(c.Pos(), id)
		}
		return true
	}

	id, ok := t.ids[c]
	if !ok {
		t.log.Warn("moving untracked creature",
			zap.String("name", c.Name()),
			zap.Stringer("from", c.Pos()),
			zap.Stringer("to", newPos))
		// It may actually be in the game with the indexes out of step.
		t.rebuild("untracked move")
		return false
	}

	if occupant := t.Find(newPos); occupant != nil && occupant != c {
		if !occupant.IsHallucination() {
			t.log.Warn("move target occupied",
				zap.String("name", c.Name()),
				zap.Stringer("to", newPos),
				zap.String("occupant", occupant.Name()))
			return false
		}
		occupant.Die(nil)
	}

	oldPos := c.Pos()
	t.byPos.eraseID(oldPos, id)
	t.byPos.set(newPos, id)
	t.factions.move(t.EffectiveFaction(c), oldPos.XY(), newPos.XY(), id)
	return true
}

// Relocate moves c to newPos in the indexes and, on success, in its own
// position field.
func (t *Tracker) Relocate(c Creature, newPos Tripoint) bool {
	if !t.UpdatePosition(c, newPos) {
		return false
	}
	c.SpawnAt(newPos)
	return true
}

// UpdateFaction re-indexes c after its faction or friendliness changed.
func (t *Tracker) UpdateFaction(c Creature) bool {
	id, ok := t.ids[c]
	if !ok {
		t.log.Warn("faction update for untracked creature", zap.String("name", c.Name()))
		return false
	}
	p := c.Pos().XY()
	t.factions.removeAnywhere(p, id)
	t.factions.insert(t.EffectiveFaction(c), p, id)
	return true
}

// Remove takes c out of the tracker. With skipCache only the registry entry
// goes; the caller vouches that the other indexes are being rebuilt or do
// not matter. Either way c stays resolvable until the end of the step.
func (t *Tracker) Remove(c Creature, skipCache bool) {
	id, ok := t.ids[c]
	if !ok {
		t.log.Warn("tried to remove untracked creature", zap.String("name", c.Name()))
		return
	}
	t.list.erase(id)
	delete(t.ids, c)
	t.removed = append(t.removed, id)
	if skipCache {
		return
	}
	pos := c.Pos()
	t.factions.removeAnywhere(pos.XY(), id)
	t.byPos.eraseID(pos, id)
}

// SwapPositions exchanges the tiles of a and b. Either may be missing from
// the position index (a displaced hallucination, a dead creature); only the
// entries actually present are carried over.
func (t *Tracker) SwapPositions(a, b Creature) {
	pa, pb := a.Pos(), b.Pos()
	if pa == pb {
		return
	}

	ida, trackedA := t.ids[a]
	idb, trackedB := t.ids[b]
	atA := trackedA && t.byPos.holds(pa, ida)
	atB := trackedB && t.byPos.holds(pb, idb)
	if atA {
		t.byPos.erase(pa)
	}
	if atB {
		t.byPos.erase(pb)
	}

	b.SpawnAt(pa)
	a.SpawnAt(pb)

	if atA {
		t.byPos.set(pb, ida)
	}
	if atB {
		t.byPos.set(pa, idb)
	}

	if trackedA {
		t.factions.move(t.EffectiveFaction(a), pa.XY(), pb.XY(), ida)
	}
	if trackedB {
		t.factions.move(t.EffectiveFaction(b), pb.XY(), pa.XY(), idb)
	}
}

// KillMarkedForDeath runs the death effects of every tracked creature whose
// liveness flag is already down. It walks a copy of the registry because a
// death callback may add creatures (splitting) or remove them. Reports
// whether any creature was processed.
func (t *Tracker) KillMarkedForDeath() bool {
	killed := false
	for _, id := range t.list.snapshot() {
		c, ok := t.resolve(id)
		if !ok || !c.IsDead() {
			continue
		}
		// A callback earlier in this pass may have removed it.
		if cur, tracked := t.ids[c]; !tracked || cur != id {
			continue
		}
		t.log.Debug("cleanup dead creature",
			zap.String("name", c.Name()), zap.Stringer("pos", c.Pos()))
		c.Die(nil)
		killed = true
	}
	return killed
}

// RemoveDead purges every dead creature from all indexes in one pass, then
// drains the removed-buffer. Slots of purged creatures are released.
func (t *Tracker) RemoveDead() int {
	purged := 0
	t.list.retain(func(id arena.ID) bool {
		c, ok := t.resolve(id)
		if !ok {
			return false
		}
		if !c.IsDead() {
			return true
		}
		pos := c.Pos()
		t.byPos.eraseID(pos, id)
		t.factions.removeAnywhere(pos.XY(), id)
		delete(t.ids, c)
		t.removed = append(t.removed, id)
		purged++
		return false
	})
	t.EndStep()
	if purged > 0 {
		event.Emit(t.events, event.CreaturesPurged{Count: purged})
	}
	return purged
}

// EndStep drains the removed-buffer, releasing the arena slots of creatures
// removed during this step.
func (t *Tracker) EndStep() {
	for _, id := range t.removed {
		t.creatures.Release(id)
	}
	clear(t.removed)
	t.removed = t.removed[:0]
}

// RebuildCache clears the position and faction indexes and replays the
// registry into them. Safe at any time; recovers from desynchronization.
func (t *Tracker) RebuildCache() {
	t.rebuild("manual")
}

func (t *Tracker) rebuild(reason string) {
	t.byPos.clear()
	t.factions.clear()
	for _, id := range t.list.ids {
		c, ok := t.resolve(id)
		if !ok {
			continue
		}
		pos := c.Pos()
		// A dead creature must not shadow a live one recorded on its tile.
		if !c.IsDead() {
			t.byPos.set(pos, id)
		} else if _, taken := t.byPos.at(pos); !taken {
			t.byPos.set(pos, id)
		}
		t.factions.insert(t.EffectiveFaction(c), pos.XY(), id)
	}
	t.log.Info("creature cache rebuilt",
		zap.String("reason", reason), zap.Int("size", t.list.len()))
	event.Emit(t.events, event.CacheRebuilt{Reason: reason, Size: t.list.len()})
}

// Restore replaces the registry with cs, in order, and rebuilds every index
// from it. This is the load path: handles taken just before a save match
// the ones valid just after.
func (t *Tracker) Restore(cs []Creature) {
	t.Clear()
	for _, c := range cs {
		if c == nil {
			continue
		}
		if _, dup := t.ids[c]; dup {
			continue
		}
		id := t.creatures.Insert(c)
		t.ids[c] = id
		t.list.append(id)
	}
	t.rebuild("restore")
}

// Clear empties every index and the removed-buffer.
func (t *Tracker) Clear() {
	t.list.reset()
	clear(t.ids)
	t.byPos.clear()
	t.factions.clear()
	t.removed = t.removed[:0]
	t.creatures.Reset()
}

// ErrInconsistent wraps every violation reported by CheckConsistency.
var ErrInconsistent = errors.New("creature tracker inconsistent")

// CheckConsistency verifies that the indexes agree with the registry: every
// live creature is found at its position and indexed under its effective
// faction at its cell, and no two live real creatures share a tile.
func (t *Tracker) CheckConsistency() error {
	var errs []error
	occupied := make(map[Tripoint]Creature, t.list.len())
	for h, id := range t.list.ids {
		c, ok := t.resolve(id)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: handle %d does not resolve", ErrInconsistent, h))
			continue
		}
		if c.IsDead() {
			continue
		}
		pos := c.Pos()
		if !c.IsHallucination() {
			if other, clash := occupied[pos]; clash {
				errs = append(errs, fmt.Errorf("%w: %s and %s share %s",
					ErrInconsistent, other.Name(), c.Name(), pos))
			}
			occupied[pos] = c
		}
		if !t.byPos.holds(pos, id) {
			errs = append(errs, fmt.Errorf("%w: %s not indexed at %s", ErrInconsistent, c.Name(), pos))
		}
		if fac := t.EffectiveFaction(c); !t.factions.contains(fac, pos.XY(), id) {
			errs = append(errs, fmt.Errorf("%w: %s missing from faction %s cell %d",
				ErrInconsistent, c.Name(), fac, CellIndex(pos.XY())))
		}
	}
	return errors.Join(errs...)
}
