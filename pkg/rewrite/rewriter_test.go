package rewrite

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
	"github.com/teranga-geo/commune-normalizer/pkg/geojson"
)

func rewriteDoc(t *testing.T, r Resolver, doc string) (string, *FileStats, error) {
	t.Helper()
	d, err := geojson.Split([]byte(doc))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	var out bytes.Buffer
	stats, err := New(r).Rewrite(d, &out)
	return out.String(), stats, err
}

func TestRewrite_EndToEnd(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"CAV":"  kébémer "},"geometry":null}]}`
	out, stats, err := rewriteDoc(t, NewCandidateResolver([]string{"commune", "CAV"}), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !json.Valid([]byte(out)) {
		t.Fatalf("output is not valid JSON:\n%s", out)
	}
	if !strings.Contains(out, `"commune":"KEBEMER"`) {
		t.Errorf("output missing normalized commune:\n%s", out)
	}
	if !strings.Contains(out, `"CAV":"  kébémer "`) {
		t.Errorf("source field was altered:\n%s", out)
	}
	if stats.Total != 1 || stats.Found["CAV"] != 1 {
		t.Errorf("stats = %+v, want total 1 and CAV match", stats)
	}
	if len(stats.Samples) != 1 || stats.Samples[0].Commune != "KEBEMER" {
		t.Errorf("samples = %+v", stats.Samples)
	}
}

func TestRewrite_RoundTripCount(t *testing.T) {
	var features []string
	for i := 0; i < 7; i++ {
		features = append(features, `{"type":"Feature","properties":{"CCRCA":"Thiès","idx":`+string(rune('0'+i))+`},"geometry":{"type":"Point","coordinates":[1,2]}}`)
	}
	in := `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `],"bbox":[0,0,9,9]}`

	out, stats, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if stats.Total != 7 {
		t.Fatalf("total = %d, want 7", stats.Total)
	}
	var parsed struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
		BBox []float64 `json:"bbox"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, out)
	}
	if len(parsed.Features) != 7 {
		t.Fatalf("output features = %d, want 7", len(parsed.Features))
	}
	for i, f := range parsed.Features {
		if f.Properties["commune"] != "THIES" {
			t.Errorf("feature %d: commune = %v", i, f.Properties["commune"])
		}
		if _, ok := f.Properties["idx"]; !ok {
			t.Errorf("feature %d: original property lost", i)
		}
	}
	if len(parsed.BBox) != 4 {
		t.Errorf("trailing bbox member lost: %v", parsed.BBox)
	}
	// Input order preserved.
	for i, f := range parsed.Features {
		if got := f.Properties["idx"]; got != json.Number(string(rune('0'+i))) && got != float64(i) {
			t.Errorf("feature %d out of order: idx = %v", i, got)
		}
	}
}

func TestRewrite_NoMatchYieldsNull(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"foo":123},"geometry":null}]}`
	out, stats, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, `"commune":null`) {
		t.Errorf("output missing explicit null commune:\n%s", out)
	}
	if len(stats.Found) != 0 {
		t.Errorf("found = %v, want empty", stats.Found)
	}
}

func TestRewrite_ExistingCommuneOverwritten(t *testing.T) {
	in := `{"features":[{"properties":{"commune":"thiès","rest":1}}]}`
	out, _, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, `"commune":"THIES"`) {
		t.Errorf("commune not overwritten in place:\n%s", out)
	}
	if strings.Contains(out, `"commune":"thiès"`) {
		t.Errorf("raw commune value left behind:\n%s", out)
	}
	if !strings.Contains(out, `"rest":1`) {
		t.Errorf("sibling member lost:\n%s", out)
	}
}

func TestRewrite_MissingProperties(t *testing.T) {
	for _, in := range []string{
		`{"features":[{"type":"Feature","geometry":null}]}`,
		`{"features":[{"type":"Feature","properties":null}]}`,
	} {
		out, _, err := rewriteDoc(t, NewCandidateResolver(nil), in)
		if err != nil {
			t.Fatalf("Rewrite(%s): %v", in, err)
		}
		if !strings.Contains(out, `"properties":{"commune":null}`) {
			t.Errorf("properties object not grown:\n%s", out)
		}
		if !json.Valid([]byte(out)) {
			t.Errorf("output invalid:\n%s", out)
		}
	}
}

func TestRewrite_EmptyArray(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[],"crs":{"type":"name"}}`
	out, stats, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
	if !json.Valid([]byte(out)) {
		t.Fatalf("output invalid:\n%s", out)
	}
	if !strings.Contains(out, `"crs"`) {
		t.Errorf("document tail lost:\n%s", out)
	}
}

func TestRewrite_AdversarialStrings(t *testing.T) {
	in := `{"features":[{"properties":{"note":"}, {","CAV":"Thiès"}},{"properties":{"CAV":"Kébémer"}}]}`
	out, stats, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2 (scanner split on quoted brace?)", stats.Total)
	}
	if !strings.Contains(out, `"}, {"`) {
		t.Errorf("adversarial string not preserved:\n%s", out)
	}
}

func TestRewrite_FeatureParseError(t *testing.T) {
	// The span balances but is not valid JSON.
	in := `{"features":[{"properties":{"CAV" "Thiès"}}]}`
	_, _, err := rewriteDoc(t, NewCandidateResolver(nil), in)
	if !errors.Is(err, ErrFeatureParse) {
		t.Errorf("err = %v, want ErrFeatureParse", err)
	}
}

func TestRewrite_SourceResolver(t *testing.T) {
	g := gazetteer.New([]string{"Tomboronkoto", "Sinthiou Malème"})
	in := `{"features":[` +
		`{"properties":{"commune":null,"source_file":"TOMBORONKOTO_LINESTRINGZ"}},` +
		`{"properties":{"commune":"","source_file":"SINTHIOU_MALEME_LINESTRINGZ.shp"}},` +
		`{"properties":{"commune":"DAKAR","source_file":"THIES_POINT"}},` +
		`{"properties":{"source_file":"bandafassi_parcels"}}` +
		`]}`
	out, stats, err := rewriteDoc(t, NewSourceResolver(g), in)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.Contains(out, `"commune":"TOMBORONKOTO"`) {
		t.Errorf("gazetteer match missing:\n%s", out)
	}
	if !strings.Contains(out, `"commune":"SINTHIOU MALEME"`) {
		t.Errorf("multi-token gazetteer match missing:\n%s", out)
	}
	// Existing commune untouched.
	if !strings.Contains(out, `"commune":"DAKAR"`) {
		t.Errorf("existing commune was overwritten:\n%s", out)
	}
	// Unknown name falls back to the first filename token.
	if !strings.Contains(out, `"commune":"BANDAFASSI"`) {
		t.Errorf("first-token fallback missing:\n%s", out)
	}
	if stats.Updated != 3 {
		t.Errorf("updated = %d, want 3", stats.Updated)
	}
	if len(stats.Samples) != 3 {
		t.Errorf("samples = %+v, want 3", stats.Samples)
	}
}

func TestRewriteFlat_TopLevelArray(t *testing.T) {
	in := `[ {"CCRCA":"Thiès","id":1}, 42, {"name":"Kédougou"} ]`
	var out bytes.Buffer
	stats, err := New(NewCandidateResolver(nil)).RewriteFlat([]byte(in), &out)
	if err != nil {
		t.Fatalf("RewriteFlat: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, `"commune":"THIES"`) || !strings.Contains(s, `"commune":"KEDOUGOU"`) {
		t.Errorf("communes missing:\n%s", s)
	}
	// Non-record elements survive untouched.
	if !strings.Contains(s, " 42,") {
		t.Errorf("scalar element lost:\n%s", s)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
}

func TestRewriteFlat_ObjectOfArrays(t *testing.T) {
	in := `{"meta":{"v":1},"communes":[{"Nom":"Thiès"}],"count":1}`
	var out bytes.Buffer
	_, err := New(NewCandidateResolver(nil)).RewriteFlat([]byte(in), &out)
	if err != nil {
		t.Fatalf("RewriteFlat: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, `"commune":"THIES"`) {
		t.Errorf("commune missing:\n%s", s)
	}
	if !strings.Contains(s, `"meta":{"v":1}`) || !strings.Contains(s, `"count":1`) {
		t.Errorf("non-array members damaged:\n%s", s)
	}
	if !json.Valid([]byte(s)) {
		t.Errorf("output invalid:\n%s", s)
	}
}

func TestRewriteFlat_MissLeavesRecordAlone(t *testing.T) {
	in := `[{"foo":123}]`
	var out bytes.Buffer
	stats, err := New(NewCandidateResolver(nil)).RewriteFlat([]byte(in), &out)
	if err != nil {
		t.Fatalf("RewriteFlat: %v", err)
	}
	if out.String() != in {
		t.Errorf("record changed on miss: %s", out.String())
	}
	if stats.Total != 1 {
		t.Errorf("total = %d, want 1", stats.Total)
	}
}
