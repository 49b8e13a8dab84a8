// Package geojson implements an incremental scanner over FeatureCollection
// documents. The document is read once as raw bytes and features are handed
// out as balanced object spans, so a large collection is never materialized
// as parsed structures all at once.
package geojson

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformed reports a document that cannot be scanned: no features key,
// or a features array that never closes.
var ErrMalformed = errors.New("malformed feature collection")

var featuresKey = regexp.MustCompile(`"features"\s*:\s*\[`)

// Document is one FeatureCollection partitioned for rewriting. Prefix ends at
// the features array's opening bracket inclusive; Suffix begins at its
// closing bracket and keeps any trailing document content (crs, bbox)
// verbatim. Prefix + Body + Suffix reassembles the input byte for byte.
type Document struct {
	Prefix []byte
	Body   []byte
	Suffix []byte
}

// Split partitions a raw document around its features array. Only the first
// "features" key is considered; documents with several are out of scope.
func Split(data []byte) (*Document, error) {
	loc := featuresKey.FindIndex(data)
	if loc == nil {
		return nil, fmt.Errorf("%w: no features array found", ErrMalformed)
	}
	start := loc[1]
	end, ok := matchDelim(data, start, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: features array never closes", ErrMalformed)
	}
	return &Document{
		Prefix: data[:start],
		Body:   data[start:end],
		Suffix: data[end:],
	}, nil
}

// SplitArray partitions a raw top-level JSON array the way Split partitions
// a FeatureCollection: Prefix runs through the opening bracket, Suffix from
// the closing one.
func SplitArray(data []byte) (*Document, error) {
	i := skipSpace(data, 0)
	if i >= len(data) || data[i] != '[' {
		return nil, fmt.Errorf("%w: not an array", ErrMalformed)
	}
	end, ok := matchDelim(data, i+1, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: array never closes", ErrMalformed)
	}
	return &Document{
		Prefix: data[:i+1],
		Body:   data[i+1:end],
		Suffix: data[end:],
	}, nil
}

// Features returns a scanner over the feature object spans of d, in document
// order. The scan is lazy, single-pass and non-restartable.
func (d *Document) Features() *FeatureScanner {
	return &FeatureScanner{body: d.Body}
}

// ObjectScanner scans an arbitrary array body for balanced object spans.
func ObjectScanner(body []byte) *FeatureScanner {
	return &FeatureScanner{body: body}
}

// FeatureScanner yields one balanced feature object span per Scan call, in
// the style of bufio.Scanner.
type FeatureScanner struct {
	body       []byte
	pos        int
	feat       []byte
	start, end int
}

// Scan advances to the next feature object and reports whether one was
// found. Bytes between objects (whitespace, separators, minor formatting
// damage) are skipped rather than rejected.
func (s *FeatureScanner) Scan() bool {
	for s.pos < len(s.body) && s.body[s.pos] != '{' {
		s.pos++
	}
	if s.pos >= len(s.body) {
		return false
	}
	start := s.pos
	end, ok := matchDelim(s.body, start+1, '{', '}')
	if !ok {
		// Truncated trailing object: hand out the remainder so the
		// single-feature parse reports it.
		s.feat = s.body[start:]
		s.start, s.end = start, len(s.body)
		s.pos = len(s.body)
		return true
	}
	s.feat = s.body[start : end+1]
	s.start, s.end = start, end+1
	s.pos = end + 1
	return true
}

// Feature returns the span found by the last call to Scan, valid until the
// next call.
func (s *FeatureScanner) Feature() []byte {
	return s.feat
}

// Span returns the byte range of the last scanned feature within the array
// body, so a rewriter can copy the bytes between features untouched.
func (s *FeatureScanner) Span() (start, end int) {
	return s.start, s.end
}

// matchDelim scans from just inside an open delimiter to its matching close,
// tracking string literals with escape awareness so quoted delimiters do not
// count. Returns the index of the closing delimiter.
func matchDelim(data []byte, from int, open, close byte) (int, bool) {
	depth := 1
	inStr, esc := false, false
	for i := from; i < len(data); i++ {
		ch := data[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// stringEnd returns the index of the closing quote of a string literal whose
// opening quote sits just before from.
func stringEnd(data []byte, from int) (int, bool) {
	esc := false
	for i := from; i < len(data); i++ {
		switch {
		case esc:
			esc = false
		case data[i] == '\\':
			esc = true
		case data[i] == '"':
			return i, true
		}
	}
	return 0, false
}
