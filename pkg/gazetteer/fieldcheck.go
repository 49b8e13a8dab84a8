package gazetteer

import (
	"sort"

	"github.com/teranga-geo/commune-normalizer/pkg/geojson"
	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// FieldStat describes how well one candidate field of a FeatureCollection
// lines up with the gazetteer.
type FieldStat struct {
	Field    string       `json:"field"`
	Distinct int          `json:"distinct"`
	Matches  int          `json:"matches"`
	Coverage float64      `json:"coverage"` // share of gazetteer names covered, in percent
	Examples []string     `json:"examples,omitempty"`
	Top      []ValueCount `json:"top,omitempty"` // most frequent raw values when nothing matches
}

// ValueCount is one raw field value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

const (
	maxExamples  = 10
	maxTopValues = 5
)

// Check tallies every candidate field across a raw FeatureCollection and
// scores its overlap with the gazetteer. The second return is the
// recommended primary field (highest coverage). The document is walked with
// the streaming scanner, one feature at a time.
func Check(g *Gazetteer, doc []byte, candidates []string) ([]FieldStat, string, error) {
	counts := make(map[string]map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c] = make(map[string]int)
	}

	d, err := geojson.Split(doc)
	if err != nil {
		return nil, "", err
	}
	sc := d.Features()
	for sc.Scan() {
		feat, err := geojson.Members(sc.Feature())
		if err != nil {
			return nil, "", err
		}
		for _, m := range feat {
			if m.Key != "properties" {
				continue
			}
			props, err := geojson.Members(m.Value)
			if err != nil {
				return nil, "", err
			}
			for _, p := range props {
				tally, tracked := counts[p.Key]
				if !tracked {
					continue
				}
				v, err := geojson.DecodeScalar(p.Value)
				if err != nil {
					continue
				}
				if canon, ok := normalize.Canonical(v); ok {
					tally[canon]++
				}
			}
			break
		}
	}

	stats := make([]FieldStat, 0, len(candidates))
	for _, field := range candidates {
		stats = append(stats, scoreField(g, field, counts[field]))
	}

	best := ""
	bestCoverage := -1.0
	for _, s := range stats {
		if s.Coverage > bestCoverage {
			bestCoverage = s.Coverage
			best = s.Field
		}
	}
	return stats, best, nil
}

func scoreField(g *Gazetteer, field string, tally map[string]int) FieldStat {
	s := FieldStat{Field: field, Distinct: len(tally)}

	values := make([]string, 0, len(tally))
	for v := range tally {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, v := range values {
		if !g.Contains(v) {
			continue
		}
		s.Matches++
		if len(s.Examples) < maxExamples {
			s.Examples = append(s.Examples, v)
		}
	}
	if g.Len() > 0 {
		s.Coverage = float64(s.Matches) / float64(g.Len()) * 100
	}

	if s.Matches == 0 && len(tally) > 0 {
		top := make([]ValueCount, 0, len(tally))
		for _, v := range values {
			top = append(top, ValueCount{Value: v, Count: tally[v]})
		}
		sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
		if len(top) > maxTopValues {
			top = top[:maxTopValues]
		}
		s.Top = top
	}
	return s
}
