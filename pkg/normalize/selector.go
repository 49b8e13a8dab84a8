package normalize

import (
	"regexp"
	"unicode/utf8"
)

// Property is one decoded feature property, in document order.
type Property struct {
	Name  string
	Value any
}

// DefaultCandidates is the commune field priority used when none is
// configured, most trustworthy first.
var DefaultCandidates = []string{
	"commune", "CCRCA", "CCRCA_1", "CAV", "COMMUNE",
	"COMM_NAME", "name", "Nom", "commune_name", "SUSCOL",
}

// nameLike accepts Latin letters (accented included), spaces, hyphens and
// underscores, which is what place-name fields in the source shapefile
// exports look like.
var nameLike = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ \-_]+$`)

// SelectField returns the first candidate field carrying a usable value, in
// candidate priority order. When no candidate hits, it falls back to a scan
// over all properties in document order for a string that looks like a place
// name — rescuing unanticipated field names at the accepted risk of false
// positives. A miss is a valid outcome, not an error.
func SelectField(props []Property, candidates []string) (string, any, bool) {
	for _, want := range candidates {
		for _, p := range props {
			if p.Name != want {
				continue
			}
			if usable(p.Value) {
				return p.Name, p.Value, true
			}
			break
		}
	}
	for _, p := range props {
		if s, ok := p.Value.(string); ok && utf8.RuneCountInString(s) < 100 && nameLike.MatchString(s) {
			return p.Name, s, true
		}
	}
	return "", nil, false
}

func usable(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}
