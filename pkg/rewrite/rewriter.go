package rewrite

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/teranga-geo/commune-normalizer/pkg/geojson"
	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// ErrFeatureParse reports a single feature span that is not valid JSON. It
// aborts the file being rewritten; output already streamed stays on disk.
var ErrFeatureParse = errors.New("feature parse")

// Rewriter streams one document's records through a Resolver into an output
// writer.
type Rewriter struct {
	Resolver Resolver
}

// New returns a Rewriter around the given strategy.
func New(r Resolver) *Rewriter {
	return &Rewriter{Resolver: r}
}

// Rewrite streams a split FeatureCollection to w: prefix once, one rewritten
// feature per input feature in input order, then the closing bracket and the
// original document tail. The commune lives under each feature's properties
// object, which is created when missing.
func (rw *Rewriter) Rewrite(doc *geojson.Document, w io.Writer) (*FileStats, error) {
	stats := newFileStats()
	bw := bufio.NewWriter(w)

	bw.Write(doc.Prefix)
	first := true
	sc := doc.Features()
	for sc.Scan() {
		out, res, err := rw.rewriteFeature(sc.Feature())
		if err != nil {
			bw.Flush()
			return stats, fmt.Errorf("feature %d: %w", stats.Total, err)
		}
		if first {
			bw.WriteByte('\n')
			first = false
		} else {
			bw.WriteString(",\n")
		}
		bw.Write(out)
		stats.record(res)
	}
	bw.WriteString("\n]")
	if len(doc.Suffix) > 0 {
		bw.Write(doc.Suffix[1:])
	}
	return stats, bw.Flush()
}

// rewriteFeature splices the commune member into one feature span. Every
// byte outside the commune value, including property order and whitespace,
// is preserved.
func (rw *Rewriter) rewriteFeature(feat []byte) ([]byte, Resolution, error) {
	if !json.Valid(feat) {
		return nil, Resolution{}, fmt.Errorf("%w: invalid feature object", ErrFeatureParse)
	}
	members, err := geojson.Members(feat)
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("%w: %v", ErrFeatureParse, err)
	}

	var propsMember *geojson.Member
	for i := range members {
		if members[i].Key == "properties" {
			propsMember = &members[i]
			break
		}
	}

	if propsMember == nil || string(propsMember.Value) == "null" {
		// No properties object at all: resolve against nothing and, when
		// a commune is recorded, grow one.
		res := rw.Resolver.Resolve(nil)
		if res.Outcome == Keep {
			return feat, res, nil
		}
		obj := []byte(`{"commune":` + string(communeValue(res)) + `}`)
		if propsMember != nil {
			return splice(feat, propsMember.ValStart, propsMember.ValEnd, obj), res, nil
		}
		return insertMember(feat, len(members) > 0, "properties", obj), res, nil
	}

	props, propMembers, err := decodeProperties(propsMember.Value)
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("%w: properties: %v", ErrFeatureParse, err)
	}

	res := rw.Resolver.Resolve(props)
	if res.Outcome == Keep {
		return feat, res, nil
	}
	newProps := spliceCommune(propsMember.Value, propMembers, communeValue(res))
	return splice(feat, propsMember.ValStart, propsMember.ValEnd, newProps), res, nil
}

// decodeProperties lists the properties object's members in document order
// alongside their decoded values.
func decodeProperties(obj []byte) ([]normalize.Property, []geojson.Member, error) {
	members, err := geojson.Members(obj)
	if err != nil {
		return nil, nil, err
	}
	props := make([]normalize.Property, len(members))
	for i, m := range members {
		v, err := geojson.DecodeScalar(m.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("member %q: %w", m.Key, err)
		}
		props[i] = normalize.Property{Name: m.Key, Value: v}
	}
	return props, members, nil
}

func communeValue(res Resolution) []byte {
	if res.Outcome == SetNull {
		return []byte("null")
	}
	v, _ := json.Marshal(res.Commune) // canonical strings always marshal
	return v
}

// spliceCommune replaces the value of an existing commune member or appends
// one before the object's closing brace.
func spliceCommune(obj []byte, members []geojson.Member, value []byte) []byte {
	for _, m := range members {
		if m.Key == "commune" {
			return splice(obj, m.ValStart, m.ValEnd, value)
		}
	}
	return insertMember(obj, len(members) > 0, "commune", value)
}

// splice replaces obj[start:end] with value.
func splice(obj []byte, start, end int, value []byte) []byte {
	out := make([]byte, 0, len(obj)-(end-start)+len(value))
	out = append(out, obj[:start]...)
	out = append(out, value...)
	return append(out, obj[end:]...)
}

// insertMember adds key:value just before the closing brace of an object
// span, with a separating comma when the object already has members.
func insertMember(obj []byte, needComma bool, key string, value []byte) []byte {
	at := len(obj) - 1 // balanced spans end at '}'
	var ins []byte
	if needComma {
		ins = append(ins, ',')
	}
	ins = append(ins, '"')
	ins = append(ins, key...)
	ins = append(ins, '"', ':')
	ins = append(ins, value...)
	return splice(obj, at, at, ins)
}
