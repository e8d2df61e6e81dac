package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r-type/server/internal/rng"
)

// WaveEntry is one enemy archetype the wave spawner can produce: its
// combat stats plus an optional Lua script path. An empty ScriptPath
// means the entry spawns a native AIController enemy; otherwise the
// wave spawner attaches a Script component instead, per SPEC_FULL.md §3.
type WaveEntry struct {
	Name         string  `yaml:"name"`
	Health       int     `yaml:"health"`
	Damage       int     `yaml:"damage"`
	FireCooldown float64 `yaml:"fire_cooldown"`
	ScriptPath   string  `yaml:"script_path"`
	Weight       float64 `yaml:"weight"`
}

// WaveTable is the loaded enemy wave table: which archetypes the wave
// spawner may introduce and how often, relative to one another.
type WaveTable struct {
	Entries []WaveEntry
}

type waveFile struct {
	Enemies []WaveEntry `yaml:"enemies"`
}

// LoadWaveTable loads the enemy wave table from YAML, grounded on
// internal/data/mapdata.go's read-then-yaml.Unmarshal-into-a-wrapper-struct
// pattern. An entry with Weight <= 0 is rejected — every entry must be
// reachable by Pick.
func LoadWaveTable(path string) (*WaveTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wave table %s: %w", path, err)
	}
	var file waveFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse wave table %s: %w", path, err)
	}
	for _, e := range file.Enemies {
		if e.Weight <= 0 {
			return nil, fmt.Errorf("wave table %s: entry %q has non-positive weight", path, e.Name)
		}
	}
	return &WaveTable{Entries: file.Enemies}, nil
}

// DefaultWaveTable is used when no wave table file is configured: a
// single entry matching the Simulation Kernel's original hardcoded
// archetype, so omitting the config key preserves prior behavior.
func DefaultWaveTable() *WaveTable {
	return &WaveTable{Entries: []WaveEntry{
		{Name: "drone", Health: 30, Damage: 15, FireCooldown: 2.0, Weight: 1},
	}}
}

// Pick selects one entry at random, weighted by Weight, using source for
// the draw. Panics if the table has no entries — callers must not wire
// an empty table in.
func (t *WaveTable) Pick(source rng.Source) WaveEntry {
	total := 0.0
	for _, e := range t.Entries {
		total += e.Weight
	}
	r := source.Float64() * total
	for _, e := range t.Entries {
		r -= e.Weight
		if r <= 0 {
			return e
		}
	}
	return t.Entries[len(t.Entries)-1]
}
