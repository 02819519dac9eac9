package data

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/critter/internal/world"
)

// Creature template flags.
const (
	FlagVermin        = "VERMIN"
	FlagHallucination = "HALLUCINATION"
)

// CreatureTemplate holds static data for a creature type loaded from YAML.
type CreatureTemplate struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Faction string   `yaml:"faction"`
	HP      int32    `yaml:"hp"`
	Flags   []string `yaml:"flags"`
	// Lua function run on death instead of the default on_death hook.
	DeathScript string `yaml:"death_script"`
}

func (t *CreatureTemplate) HasFlag(flag string) bool {
	return slices.Contains(t.Flags, flag)
}

type creatureListFile struct {
	NullType  string             `yaml:"null_type"`
	Creatures []CreatureTemplate `yaml:"creatures"`
	Blacklist []string           `yaml:"blacklist"`
}

// CreatureTable holds all creature templates indexed by type id, plus the
// blacklist. It decides which types the tracker accepts.
type CreatureTable struct {
	templates map[world.TypeID]*CreatureTemplate
	blacklist map[world.TypeID]struct{}
	nullType  world.TypeID
}

// LoadCreatureTable loads creature templates from a YAML file.
func LoadCreatureTable(path string) (*CreatureTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read creature_list: %w", err)
	}
	var f creatureListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse creature_list: %w", err)
	}
	t := &CreatureTable{
		templates: make(map[world.TypeID]*CreatureTemplate, len(f.Creatures)),
		blacklist: make(map[world.TypeID]struct{}, len(f.Blacklist)),
		nullType:  world.NullType,
	}
	if f.NullType != "" {
		t.nullType = world.TypeID(f.NullType)
	}
	for i := range f.Creatures {
		c := &f.Creatures[i]
		if c.ID == "" {
			return nil, fmt.Errorf("parse creature_list: entry %d has no id", i)
		}
		if _, dup := t.templates[world.TypeID(c.ID)]; dup {
			return nil, fmt.Errorf("parse creature_list: duplicate id %q", c.ID)
		}
		t.templates[world.TypeID(c.ID)] = c
	}
	for _, id := range f.Blacklist {
		t.blacklist[world.TypeID(id)] = struct{}{}
	}
	return t, nil
}

// SetNullType overrides the null type id, e.g. from config.
func (t *CreatureTable) SetNullType(id world.TypeID) {
	if id != "" {
		t.nullType = id
	}
}

// Get returns a template by type id, or nil if not found.
func (t *CreatureTable) Get(id world.TypeID) *CreatureTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *CreatureTable) Count() int {
	return len(t.templates)
}

func (t *CreatureTable) IsNull(id world.TypeID) bool {
	return id == "" || id == t.nullType
}

func (t *CreatureTable) IsVermin(id world.TypeID) bool {
	tmpl := t.templates[id]
	return tmpl != nil && tmpl.HasFlag(FlagVermin)
}

func (t *CreatureTable) IsBlacklisted(id world.TypeID) bool {
	_, ok := t.blacklist[id]
	return ok
}

// Spec returns the monster spec for a template, or false for unknown types.
func (t *CreatureTable) Spec(id world.TypeID) (world.MonsterSpec, bool) {
	tmpl := t.templates[id]
	if tmpl == nil {
		return world.MonsterSpec{}, false
	}
	return world.MonsterSpec{
		Type:          id,
		Name:          tmpl.Name,
		Faction:       world.FactionID(tmpl.Faction),
		MaxHP:         tmpl.HP,
		Hallucination: tmpl.HasFlag(FlagHallucination),
	}, true
}

var _ world.TypeRules = (*CreatureTable)(nil)
