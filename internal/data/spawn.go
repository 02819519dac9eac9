package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry defines where and how many creatures to spawn.
type SpawnEntry struct {
	Type    string `yaml:"type"`
	X       int32  `yaml:"x"`
	Y       int32  `yaml:"y"`
	Z       int32  `yaml:"z"`
	Count   int    `yaml:"count"`
	RandomX int32  `yaml:"randomx"`
	RandomY int32  `yaml:"randomy"`
	// Friendly turns on spawn; -1 spawns a pet.
	Friendly int `yaml:"friendly"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList loads spawn entries from a YAML file. Entries with a
// non-positive count spawn one creature.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	for i := range f.Spawns {
		if f.Spawns[i].Count <= 0 {
			f.Spawns[i].Count = 1
		}
	}
	return f.Spawns, nil
}
