package rewrite

// maxSamples bounds the example mappings kept per file.
const maxSamples = 5

// Sample is one literal example mapping recorded for the report.
type Sample struct {
	Source  string `json:"source"`
	Commune string `json:"commune"`
}

// FileStats aggregates one file's rewrite outcomes.
type FileStats struct {
	Total   int            `json:"total_features"`
	Found   map[string]int `json:"found_keys,omitempty"`
	Updated int            `json:"updated,omitempty"`
	Samples []Sample       `json:"samples,omitempty"`
}

func newFileStats() *FileStats {
	return &FileStats{Found: make(map[string]int)}
}

func (s *FileStats) record(res Resolution) {
	s.Total++
	if res.Outcome != Set {
		return
	}
	s.Found[res.Field]++
	s.Updated++
	if len(s.Samples) >= maxSamples {
		return
	}
	for _, sample := range s.Samples {
		if sample.Source == res.Source {
			return
		}
	}
	s.Samples = append(s.Samples, Sample{Source: res.Source, Commune: res.Commune})
}
