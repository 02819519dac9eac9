package world

import "sync/atomic"

// monsterSerial generates unique monster serials for diagnostics and
// snapshots. Not reused within a process.
var monsterSerial atomic.Int64

// NextMonsterSerial returns a unique serial for a new Monster.
func NextMonsterSerial() int64 {
	return monsterSerial.Add(1)
}

// DeathHook runs once when a monster dies. killer may be nil.
type DeathHook func(m *Monster, killer Creature)

// Monster is the in-memory creature driven by the daemon.
// Accessed only from the game loop goroutine; no locks.
type Monster struct {
	serial  int64
	typ     TypeID
	name    string
	faction FactionID
	pos     Tripoint

	hp    int32
	maxHP int32

	friendly      int // 0 = hostile/neutral, >0 friendly for that many turns, -1 permanent
	pet           bool
	hallucination bool

	died    bool // death effects already ran
	onDeath DeathHook
}

// MonsterSpec carries the template values a Monster is built from.
type MonsterSpec struct {
	Type          TypeID
	Name          string
	Faction       FactionID
	MaxHP         int32
	Hallucination bool
}

func NewMonster(spec MonsterSpec, pos Tripoint) *Monster {
	maxHP := spec.MaxHP
	if maxHP <= 0 {
		maxHP = 1
	}
	name := spec.Name
	if name == "" {
		name = string(spec.Type)
	}
	return &Monster{
		serial:        NextMonsterSerial(),
		typ:           spec.Type,
		name:          name,
		faction:       spec.Faction,
		pos:           pos,
		hp:            maxHP,
		maxHP:         maxHP,
		hallucination: spec.Hallucination,
	}
}

func (m *Monster) Serial() int64         { return m.serial }
func (m *Monster) Name() string          { return m.name }
func (m *Monster) TypeID() TypeID        { return m.typ }
func (m *Monster) Pos() Tripoint         { return m.pos }
func (m *Monster) Faction() FactionID    { return m.faction }
func (m *Monster) Friendly() int         { return m.friendly }
func (m *Monster) IsPet() bool           { return m.pet }
func (m *Monster) IsHallucination() bool { return m.hallucination }
func (m *Monster) HP() int32             { return m.hp }
func (m *Monster) MaxHP() int32          { return m.maxHP }

// IsDead is the liveness flag. It drops as soon as HP reaches zero, before
// death effects have run.
func (m *Monster) IsDead() bool { return m.hp <= 0 || m.died }

// Died reports whether the death effects have already run.
func (m *Monster) Died() bool { return m.died }

func (m *Monster) SpawnAt(p Tripoint) { m.pos = p }

// SetDeathHook installs the effect run on death, replacing any previous one.
func (m *Monster) SetDeathHook(h DeathHook) { m.onDeath = h }

// Hurt subtracts dmg from HP, clamping at zero. Returns true if this blow
// dropped the monster. Death effects run later, from the death pass.
func (m *Monster) Hurt(dmg int32) bool {
	if m.IsDead() || dmg <= 0 {
		return false
	}
	m.hp -= dmg
	if m.hp <= 0 {
		m.hp = 0
		return true
	}
	return false
}

// MarkForDeath drops the liveness flag without running death effects.
func (m *Monster) MarkForDeath() { m.hp = 0 }

// Die marks the monster dead and runs its death hook. Repeated calls are
// no-ops.
func (m *Monster) Die(killer Creature) {
	if m.died {
		return
	}
	m.hp = 0
	m.died = true
	if m.onDeath != nil {
		m.onDeath(m, killer)
	}
}

// SetFaction changes the monster's own faction. Follow with
// Tracker.UpdateFaction.
func (m *Monster) SetFaction(f FactionID) { m.faction = f }

// MakeFriendly makes the monster friendly for turns turns (-1 = permanent).
// Follow with Tracker.UpdateFaction.
func (m *Monster) MakeFriendly(turns int) { m.friendly = turns }

// MakePet makes the monster a permanent friendly pet. Follow with
// Tracker.UpdateFaction.
func (m *Monster) MakePet() {
	m.friendly = -1
	m.pet = true
}

// TickFriendly counts down temporary friendliness. Returns true when the
// monster just turned hostile again and needs re-indexing.
func (m *Monster) TickFriendly() bool {
	if m.friendly <= 0 {
		return false
	}
	m.friendly--
	return m.friendly == 0
}

// MonsterState is the persisted form of a Monster.
type MonsterState struct {
	Serial        int64
	Type          TypeID
	Name          string
	Faction       FactionID
	Pos           Tripoint
	HP            int32
	MaxHP         int32
	Friendly      int
	Pet           bool
	Hallucination bool
	Died          bool
}

func (m *Monster) State() MonsterState {
	return MonsterState{
		Serial:        m.serial,
		Type:          m.typ,
		Name:          m.name,
		Faction:       m.faction,
		Pos:           m.pos,
		HP:            m.hp,
		MaxHP:         m.maxHP,
		Friendly:      m.friendly,
		Pet:           m.pet,
		Hallucination: m.hallucination,
		Died:          m.died,
	}
}

// MonsterFromState rebuilds a Monster from a snapshot. The death hook is not
// persisted; the caller installs it again.
func MonsterFromState(s MonsterState) *Monster {
	for {
		cur := monsterSerial.Load()
		if cur >= s.Serial || monsterSerial.CompareAndSwap(cur, s.Serial) {
			break
		}
	}
	return &Monster{
		serial:        s.Serial,
		typ:           s.Type,
		name:          s.Name,
		faction:       s.Faction,
		pos:           s.Pos,
		hp:            s.HP,
		maxHP:         s.MaxHP,
		friendly:      s.Friendly,
		pet:           s.Pet,
		hallucination: s.Hallucination,
		died:          s.Died,
	}
}
