package gazetteer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_CanonicalAndVariants(t *testing.T) {
	g := New([]string{"Thiès", "Sinthiou_Malème", ""})
	if !g.Contains("THIES") {
		t.Error("THIES missing")
	}
	if !g.Contains("SINTHIOU MALEME") {
		t.Error("underscore variant missing")
	}
	if g.Contains("DAKAR") {
		t.Error("unexpected name present")
	}
}

func TestBestMatch(t *testing.T) {
	g := New([]string{"Malème", "Sinthiou Malème", "Tomboronkoto"})
	tests := []struct {
		candidate string
		want      string
		ok        bool
	}{
		{"SINTHIOU MALEME LINESTRINGZ", "SINTHIOU MALEME", true}, // longest wins
		{"TOMBORONKOTO POLYGON", "TOMBORONKOTO", true},
		{"MALEME X", "MALEME", true},
		{"DAKAR PLATEAU", "", false},
	}
	for _, tt := range tests {
		got, ok := g.BestMatch(tt.candidate)
		if ok != tt.ok || got != tt.want {
			t.Errorf("BestMatch(%q) = (%q, %v), want (%q, %v)", tt.candidate, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communes_data.json")
	os.WriteFile(path, []byte(`{"communes":[{"name":"Thiès"},{"name":"Kébémer"},{"name":""}]}`), 0o644)

	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !g.Contains("THIES") || !g.Contains("KEBEMER") {
		t.Errorf("loaded names missing, len = %d", g.Len())
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("want error for missing file")
	}
}

func TestGobRoundTrip(t *testing.T) {
	g := New([]string{"Thiès", "Tomboronkoto"})
	path := filepath.Join(t.TempDir(), "gazetteer.gob")
	if err := g.SaveGob(path); err != nil {
		t.Fatalf("SaveGob: %v", err)
	}
	loaded, err := LoadGob(path)
	if err != nil {
		t.Fatalf("LoadGob: %v", err)
	}
	if loaded.Len() != g.Len() {
		t.Errorf("Len = %d, want %d", loaded.Len(), g.Len())
	}
	if !loaded.Contains("TOMBORONKOTO") {
		t.Error("TOMBORONKOTO missing after round trip")
	}
}

func TestFieldCheck(t *testing.T) {
	g := New([]string{"Thiès", "Kébémer"})
	doc := []byte(`{"type":"FeatureCollection","features":[` +
		`{"properties":{"CAV":"Thiès","REG":"Ouest","SUSCOL":12}},` +
		`{"properties":{"CAV":"Kébémer","REG":"Ouest"}},` +
		`{"properties":{"CAV":"thiès","REG":"Nord"}}` +
		`]}`)

	stats, best, err := Check(g, doc, []string{"CAV", "REG", "SUSCOL"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if best != "CAV" {
		t.Errorf("best = %q, want CAV", best)
	}
	byField := make(map[string]FieldStat)
	for _, s := range stats {
		byField[s.Field] = s
	}
	// "Thiès" and "thiès" canonicalize identically.
	if s := byField["CAV"]; s.Distinct != 2 || s.Matches != 2 {
		t.Errorf("CAV stat = %+v", s)
	}
	if s := byField["REG"]; s.Matches != 0 || len(s.Top) == 0 {
		t.Errorf("REG stat = %+v, want zero matches with top values", s)
	}
	if s := byField["SUSCOL"]; s.Distinct != 1 {
		t.Errorf("SUSCOL stat = %+v, numbers should still tally", s)
	}
}
