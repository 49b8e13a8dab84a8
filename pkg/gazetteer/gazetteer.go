// Package gazetteer holds the known-commune lookup table. It is built once
// at batch start and passed explicitly to whoever needs it; there is no
// global lazily-initialized state.
package gazetteer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// Gazetteer is a set of canonical commune names.
type Gazetteer struct {
	names map[string]struct{}
}

// New builds a gazetteer from raw names. Each name is stored in canonical
// form, plus a variant with underscores and dashes read as spaces, since
// shapefile-derived identifiers spell "Sinthiou Malème" as SINTHIOU_MALEME.
func New(names []string) *Gazetteer {
	g := &Gazetteer{names: make(map[string]struct{}, len(names)*2)}
	for _, n := range names {
		g.add(n)
		g.add(strings.NewReplacer("_", " ", "-", " ").Replace(n))
	}
	return g
}

func (g *Gazetteer) add(name string) {
	if canon, ok := normalize.Canonical(name); ok {
		g.names[canon] = struct{}{}
	}
}

// communesFile is the shape of communes_data.json.
type communesFile struct {
	Communes []struct {
		Name string `json:"name"`
	} `json:"communes"`
}

// Load reads a communes_data.json file into a gazetteer.
func Load(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer %s: %w", path, err)
	}
	var cf communesFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse gazetteer %s: %w", path, err)
	}
	names := make([]string, 0, len(cf.Communes))
	for _, c := range cf.Communes {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return New(names), nil
}

// Len returns the number of stored canonical names.
func (g *Gazetteer) Len() int {
	return len(g.names)
}

// Contains reports whether a canonical name is a known commune.
func (g *Gazetteer) Contains(canonical string) bool {
	_, ok := g.names[canonical]
	return ok
}

// BestMatch returns the longest known commune name contained in the
// canonical candidate. "TOMBORONKOTO LINESTRINGZ" matches TOMBORONKOTO;
// "SINTHIOU MALEME X" prefers SINTHIOU MALEME over a hypothetical MALEME.
func (g *Gazetteer) BestMatch(canonical string) (string, bool) {
	var best string
	for name := range g.names {
		if len(name) > len(best) && strings.Contains(canonical, name) {
			best = name
		}
	}
	return best, best != ""
}
