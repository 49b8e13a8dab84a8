package rewrite

import (
	"bufio"
	"fmt"
	"io"

	"github.com/teranga-geo/commune-normalizer/pkg/geojson"
)

// RewriteFlat handles plain JSON documents without a features array: either
// a top-level array of records, or a top-level object whose member values
// include arrays of records. The commune is spliced directly onto each
// record; records where nothing resolves are left untouched, commune key
// included. All bytes between records are copied verbatim.
func (rw *Rewriter) RewriteFlat(data []byte, w io.Writer) (*FileStats, error) {
	stats := newFileStats()
	bw := bufio.NewWriter(w)

	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	if i >= len(data) {
		return stats, fmt.Errorf("empty document")
	}

	switch data[i] {
	case '[':
		doc, err := geojson.SplitArray(data)
		if err != nil {
			return stats, err
		}
		bw.Write(doc.Prefix)
		if err := rw.rewriteArrayBody(doc.Body, bw, stats); err != nil {
			bw.Flush()
			return stats, err
		}
		bw.Write(doc.Suffix)

	case '{':
		members, err := geojson.Members(data)
		if err != nil {
			return stats, fmt.Errorf("%w: %v", ErrFeatureParse, err)
		}
		last := 0
		for _, m := range members {
			if len(m.Value) == 0 || m.Value[0] != '[' {
				continue
			}
			sub, err := geojson.SplitArray(m.Value)
			if err != nil {
				continue
			}
			bw.Write(data[last:m.ValStart])
			bw.Write(sub.Prefix)
			if err := rw.rewriteArrayBody(sub.Body, bw, stats); err != nil {
				bw.Flush()
				return stats, fmt.Errorf("member %q: %w", m.Key, err)
			}
			bw.Write(sub.Suffix)
			last = m.ValEnd
		}
		bw.Write(data[last:])

	default:
		return stats, fmt.Errorf("unsupported top-level value")
	}

	return stats, bw.Flush()
}

// rewriteArrayBody splices records in place, copying the bytes between them
// unchanged so non-record elements and separators survive.
func (rw *Rewriter) rewriteArrayBody(body []byte, bw *bufio.Writer, stats *FileStats) error {
	sc := geojson.ObjectScanner(body)
	last := 0
	for sc.Scan() {
		start, end := sc.Span()
		bw.Write(body[last:start])
		out, res, err := rw.rewriteRecord(sc.Feature())
		if err != nil {
			return fmt.Errorf("record %d: %w", stats.Total, err)
		}
		bw.Write(out)
		stats.record(res)
		last = end
	}
	bw.Write(body[last:])
	return nil
}

// rewriteRecord splices the commune member onto a flat record. Unlike the
// feature path, a resolver miss leaves the record alone rather than writing
// an explicit null.
func (rw *Rewriter) rewriteRecord(obj []byte) ([]byte, Resolution, error) {
	props, members, err := decodeProperties(obj)
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("%w: %v", ErrFeatureParse, err)
	}
	res := rw.Resolver.Resolve(props)
	if res.Outcome != Set {
		res.Outcome = Keep
		return obj, res, nil
	}
	return spliceCommune(obj, members, communeValue(res)), res, nil
}
