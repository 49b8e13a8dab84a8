package gazetteer

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// SaveGob serializes the canonical name set to a gob snapshot so later runs
// skip re-canonicalizing the source JSON. Names are written sorted for a
// stable file.
func (g *Gazetteer) SaveGob(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	names := make([]string, 0, len(g.names))
	for n := range g.names {
		names = append(names, n)
	}
	sort.Strings(names)

	if err := gob.NewEncoder(f).Encode(names); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}

// LoadGob deserializes a snapshot written by SaveGob. Names in the snapshot
// are already canonical and are not re-normalized.
func LoadGob(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var names []string
	if err := gob.NewDecoder(f).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	g := &Gazetteer{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		g.names[n] = struct{}{}
	}
	return g, nil
}
