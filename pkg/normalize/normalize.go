// Package normalize produces the canonical form of commune names: uppercase,
// accent-stripped, whitespace-collapsed. Two raw values that canonicalize
// identically are the same commune.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical maps an arbitrary scalar to its canonical commune form
// (e.g. "  Thiès " -> "THIES"). The second return is false when the value
// is absent: nil, or blank once coerced to text. Absence is never an empty
// string.
func Canonical(v any) (string, bool) {
	s, ok := coerce(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	s, _, _ = transform.String(stripAccents, s)
	return strings.ToUpper(collapseSpace(s)), true
}

// coerce renders non-string scalars as text. json.Number keeps its literal
// representation from the document.
func coerce(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

// collapseSpace rewrites every run of whitespace as a single ASCII space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
