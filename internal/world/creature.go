package world

// FactionID names a creature faction.
type FactionID string

// TypeID names a creature type (template).
type TypeID string

// DefaultPlayerFaction is the faction friendly creatures are indexed under.
const DefaultPlayerFaction FactionID = "player"

// Creature is what the tracker consumes from a creature entity. Implementations
// must be pointer types: the tracker keys creatures by identity.
type Creature interface {
	Name() string
	TypeID() TypeID
	Pos() Tripoint
	Faction() FactionID
	// Friendly is non-zero while the creature is friendly to the player.
	Friendly() int
	IsDead() bool
	IsHallucination() bool
	// Die runs the creature's death effects. killer may be nil.
	Die(killer Creature)
	// SpawnAt overwrites the creature's own position field.
	SpawnAt(p Tripoint)
}

// TypeRules decides which creature types may be tracked at all.
type TypeRules interface {
	IsNull(id TypeID) bool
	IsVermin(id TypeID) bool
	IsBlacklisted(id TypeID) bool
}

// NullType is the placeholder type id rejected by the default rules.
const NullType TypeID = "mon_null"

type defaultRules struct{}

func (defaultRules) IsNull(id TypeID) bool     { return id == "" || id == NullType }
func (defaultRules) IsVermin(TypeID) bool      { return false }
func (defaultRules) IsBlacklisted(TypeID) bool { return false }
