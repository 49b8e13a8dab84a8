package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one top-level member of a JSON object span. ValStart and ValEnd
// delimit the raw value within the span handed to Members, so callers can
// splice a replacement value without disturbing any other byte.
type Member struct {
	Key      string
	Value    []byte
	ValStart int
	ValEnd   int // exclusive
}

// Members lists the top-level members of a JSON object span in document
// order. Nested objects and arrays stay raw.
func Members(obj []byte) ([]Member, error) {
	i := skipSpace(obj, 0)
	if i >= len(obj) || obj[i] != '{' {
		return nil, fmt.Errorf("not an object")
	}
	i++

	var members []Member
	for {
		i = skipSpace(obj, i)
		if i >= len(obj) {
			return nil, fmt.Errorf("unterminated object")
		}
		if obj[i] == '}' {
			return members, nil
		}
		if obj[i] != '"' {
			return nil, fmt.Errorf("expected key at offset %d", i)
		}
		keyEnd, ok := stringEnd(obj, i+1)
		if !ok {
			return nil, fmt.Errorf("unterminated key at offset %d", i)
		}
		var key string
		if err := json.Unmarshal(obj[i:keyEnd+1], &key); err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
		i = skipSpace(obj, keyEnd+1)
		if i >= len(obj) || obj[i] != ':' {
			return nil, fmt.Errorf("expected ':' after key %q", key)
		}
		i = skipSpace(obj, i+1)
		end, err := valueEnd(obj, i)
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		members = append(members, Member{
			Key:      key,
			Value:    obj[i:end],
			ValStart: i,
			ValEnd:   end,
		})
		i = skipSpace(obj, end)
		if i >= len(obj) {
			return nil, fmt.Errorf("unterminated object after %q", key)
		}
		switch obj[i] {
		case ',':
			i++
		case '}':
			return members, nil
		default:
			return nil, fmt.Errorf("unexpected byte %q after value of %q", obj[i], key)
		}
	}
}

// valueEnd returns the exclusive end offset of the JSON value starting at i.
func valueEnd(obj []byte, i int) (int, error) {
	if i >= len(obj) {
		return 0, fmt.Errorf("missing value")
	}
	switch obj[i] {
	case '{':
		end, ok := matchDelim(obj, i+1, '{', '}')
		if !ok {
			return 0, fmt.Errorf("unterminated object")
		}
		return end + 1, nil
	case '[':
		end, ok := matchDelim(obj, i+1, '[', ']')
		if !ok {
			return 0, fmt.Errorf("unterminated array")
		}
		return end + 1, nil
	case '"':
		end, ok := stringEnd(obj, i+1)
		if !ok {
			return 0, fmt.Errorf("unterminated string")
		}
		return end + 1, nil
	default:
		// Primitive: runs to the next separator at this level.
		j := i
		for j < len(obj) && obj[j] != ',' && obj[j] != '}' && obj[j] != ']' && !isSpace(obj[j]) {
			j++
		}
		if j == i {
			return 0, fmt.Errorf("empty value")
		}
		return j, nil
	}
}

// DecodeScalar decodes a raw member value, keeping numbers as json.Number so
// their literal text survives coercion.
func DecodeScalar(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
