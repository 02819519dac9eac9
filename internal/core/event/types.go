package event

// Tracker and simulation events. Payloads carry plain values so this package
// stays free of world types.

// CreatureSpawned is emitted when the spawner successfully tracks a creature.
type CreatureSpawned struct {
	Type    string
	Faction string
	X, Y, Z int32
}

// CreatureDied is emitted once per creature when its death is processed.
type CreatureDied struct {
	Type          string
	Name          string
	X, Y, Z       int32
	Hallucination bool
}

// CacheRebuilt is emitted whenever the tracker replays its registry into the
// position and faction indexes.
type CacheRebuilt struct {
	Reason string
	Size   int
}

// CreaturesPurged is emitted by the end-of-turn dead sweep.
type CreaturesPurged struct {
	Count int
}
