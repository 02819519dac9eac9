// snapdump converts a critterd msgpack snapshot into YAML for inspection.
//
// Creatures are written in registry order, so the position of an entry in
// the output is its temporary id after the snapshot is loaded.
//
// Usage:
//
//	go run ./cmd/snapdump data/snapshot.msgpack [output.yaml]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/critter/internal/persist"
)

type dumpFile struct {
	Turn      uint64         `yaml:"turn"`
	SavedAt   string         `yaml:"saved_at"`
	Factions  []factionCount `yaml:"factions"`
	Creatures []dumpCreature `yaml:"creatures"`
}

type factionCount struct {
	Faction string `yaml:"faction"`
	Live    int    `yaml:"live"`
	Dead    int    `yaml:"dead"`
}

type dumpCreature struct {
	Handle   int    `yaml:"handle"`
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Faction  string `yaml:"faction"`
	Pos      string `yaml:"pos"`
	HP       string `yaml:"hp"`
	Friendly int    `yaml:"friendly,omitempty"`
	Flags    string `yaml:"flags,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: snapdump <snapshot.msgpack> [output.yaml]")
		os.Exit(1)
	}

	snap, err := persist.NewFileStore(os.Args[1], zap.NewNop()).Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if len(os.Args) > 2 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := write(out, convert(snap)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 2 {
		fmt.Printf("Wrote %d creatures to %s\n", len(snap.Creatures), os.Args[2])
	}
}

func convert(snap *persist.Snapshot) dumpFile {
	d := dumpFile{
		Turn:    snap.Turn,
		SavedAt: snap.SavedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	counts := make(map[string]*factionCount)
	for i, c := range snap.Creatures {
		fc := counts[c.Faction]
		if fc == nil {
			fc = &factionCount{Faction: c.Faction}
			counts[c.Faction] = fc
		}
		dead := c.Died || c.HP <= 0
		if dead {
			fc.Dead++
		} else {
			fc.Live++
		}

		var flags string
		switch {
		case c.Pet:
			flags = "pet"
		case c.Hallucination:
			flags = "hallucination"
		}
		if dead {
			if flags != "" {
				flags += ","
			}
			flags += "dead"
		}
		d.Creatures = append(d.Creatures, dumpCreature{
			Handle:   i,
			Type:     c.Type,
			Name:     c.Name,
			Faction:  c.Faction,
			Pos:      fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z),
			HP:       fmt.Sprintf("%d/%d", c.HP, c.MaxHP),
			Friendly: c.Friendly,
			Flags:    flags,
		})
	}

	for _, fc := range counts {
		d.Factions = append(d.Factions, *fc)
	}
	sort.Slice(d.Factions, func(i, j int) bool {
		return d.Factions[i].Faction < d.Factions[j].Faction
	})
	return d
}

func write(w io.Writer, d dumpFile) error {
	fmt.Fprintf(w, "# critterd snapshot, turn %d (%d creatures)\n", d.Turn, len(d.Creatures))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
