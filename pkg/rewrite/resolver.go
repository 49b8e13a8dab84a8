// Package rewrite streams features through a commune resolver into an output
// document, splicing only the commune member so every byte it does not touch
// survives verbatim.
package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// Outcome says what a resolver decided for one record.
type Outcome int

const (
	// Keep leaves the record byte-identical.
	Keep Outcome = iota
	// SetNull records an explicit "commune": null so downstream consumers
	// can see that no commune could be determined.
	SetNull
	// Set records the resolved canonical commune.
	Set
)

// Resolution is one resolver decision. Field keys the per-file match
// counters; Source labels the example recorded in the report (the field name
// for candidate matches, the raw source_file value for extractions).
type Resolution struct {
	Outcome Outcome
	Field   string
	Source  string
	Commune string
}

// Resolver derives a canonical commune from a record's properties, given in
// document order. Implementations are the two rewriting strategies: candidate
// field selection and source-filename extraction.
type Resolver interface {
	Resolve(props []normalize.Property) Resolution
}

// CandidateResolver picks the highest-priority candidate field and
// canonicalizes its value.
type CandidateResolver struct {
	Candidates []string
	Cache      *normalize.Cache
}

// NewCandidateResolver uses the given candidate priority, or
// normalize.DefaultCandidates when empty.
func NewCandidateResolver(candidates []string) *CandidateResolver {
	if len(candidates) == 0 {
		candidates = normalize.DefaultCandidates
	}
	return &CandidateResolver{Candidates: candidates, Cache: normalize.NewCache(0)}
}

func (r *CandidateResolver) Resolve(props []normalize.Property) Resolution {
	field, raw, ok := normalize.SelectField(props, r.Candidates)
	if !ok {
		return Resolution{Outcome: SetNull}
	}
	canon, present := r.Cache.Canonical(raw)
	if !present {
		// A candidate was found but its value canonicalizes to nothing
		// (e.g. all whitespace): leave the record as it stands.
		return Resolution{Outcome: Keep}
	}
	return Resolution{Outcome: Set, Field: field, Source: field, Commune: canon}
}

// SourceResolver fills in missing communes from the source_file property,
// matching against a known-commune gazetteer first and falling back to the
// filename's first token.
type SourceResolver struct {
	Gazetteer *gazetteer.Gazetteer
	Cache     *normalize.Cache
}

// NewSourceResolver builds a resolver around an already-loaded gazetteer.
func NewSourceResolver(g *gazetteer.Gazetteer) *SourceResolver {
	return &SourceResolver{Gazetteer: g, Cache: normalize.NewCache(0)}
}

var tokenSep = regexp.MustCompile(`[_\-\s]+`)

func (r *SourceResolver) Resolve(props []normalize.Property) Resolution {
	// Only records without a usable commune are touched.
	for _, p := range props {
		if p.Name != "commune" {
			continue
		}
		if s, ok := p.Value.(string); p.Value != nil && (!ok || s != "") {
			return Resolution{Outcome: Keep}
		}
		break
	}

	var sourceFile string
	for _, p := range props {
		if p.Name == "source_file" {
			sourceFile, _ = p.Value.(string)
			break
		}
	}
	if sourceFile == "" {
		return Resolution{Outcome: Keep}
	}

	commune, ok := r.extract(sourceFile)
	if !ok {
		return Resolution{Outcome: Keep}
	}
	return Resolution{Outcome: Set, Field: "source_file", Source: sourceFile, Commune: commune}
}

// extract guesses a commune from values like "TOMBORONKOTO_LINESTRINGZ" or
// "SINTHIOU_MALEME_LINESTRINGZ": prefer the longest gazetteer name contained
// in the filename, else canonicalize the first token.
func (r *SourceResolver) extract(sourceFile string) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	candidate := strings.NewReplacer("_", " ", "-", " ").Replace(base)

	if canon, ok := r.Cache.Canonical(candidate); ok && r.Gazetteer != nil {
		if best, found := r.Gazetteer.BestMatch(canon); found {
			return best, true
		}
	}

	tokens := tokenSep.Split(base, 2)
	if len(tokens) == 0 {
		return "", false
	}
	return normalize.Canonical(tokens[0])
}
