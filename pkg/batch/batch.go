package batch

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
	"github.com/teranga-geo/commune-normalizer/pkg/geojson"
	"github.com/teranga-geo/commune-normalizer/pkg/rewrite"
)

// Suffixes marking derived outputs. Files already bearing one are never
// treated as fresh inputs, so reruns do not normalize their own output.
const (
	suffixNormalizedGeo  = ".normalized.geojson"
	suffixNormalizedJSON = ".normalized.json"
	suffixSourceCommune  = ".source_commune.geojson"
)

// Runner executes batch passes under one configuration.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner builds a Runner. logger must not be nil.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Standardize runs the candidate-field pass: data/*.json as flat documents,
// geojson/**/*.geojson as streamed FeatureCollections. One file's failure is
// recorded and the batch continues. The report is written once at the end;
// only that final write can fail the run.
func (r *Runner) Standardize() (*Report, error) {
	report := NewReport()
	rw := rewrite.New(rewrite.NewCandidateResolver(r.cfg.Candidates))

	for _, in := range r.standardizeInputs() {
		var out string
		var process func(in, out string) (*rewrite.FileStats, error)
		if strings.EqualFold(filepath.Ext(in), ".geojson") {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + suffixNormalizedGeo
			process = func(in, out string) (*rewrite.FileStats, error) {
				return r.processGeoJSON(rw, in, out)
			}
		} else {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + suffixNormalizedJSON
			process = func(in, out string) (*rewrite.FileStats, error) {
				return r.processFlat(rw, in, out)
			}
		}

		r.logger.Info("processing", "input", in, "output", out)
		stats, err := process(in, out)
		if err != nil {
			r.logger.Warn("file abandoned", "input", in, "error", err)
			report.addError(in, err)
			continue
		}
		report.addFile(in, out, stats)
	}

	if err := report.Write(r.cfg.ReportPath); err != nil {
		return report, err
	}
	return report, nil
}

// Extract runs the source-filename pass over parcel FeatureCollections,
// filling communes from source_file where they are missing. The gazetteer is
// built once here and threaded through.
func (r *Runner) Extract() (*Report, error) {
	report := NewReport()
	rw := rewrite.New(rewrite.NewSourceResolver(r.loadGazetteer()))

	for _, in := range r.extractInputs() {
		out := strings.TrimSuffix(in, filepath.Ext(in)) + suffixSourceCommune
		r.logger.Info("processing", "input", in, "output", out)
		stats, err := r.processGeoJSON(rw, in, out)
		if err != nil {
			r.logger.Warn("file abandoned", "input", in, "error", err)
			report.addError(in, err)
			continue
		}
		report.addFile(in, out, stats)
	}

	if err := report.Write(r.cfg.ExtractReportPath); err != nil {
		return report, err
	}
	return report, nil
}

// loadGazetteer prefers the gob snapshot next to the source JSON and writes
// one after a cold load. A missing or broken gazetteer degrades to an empty
// table; extraction then relies on the first-token fallback alone.
func (r *Runner) loadGazetteer() *gazetteer.Gazetteer {
	snapshot := r.cfg.GazetteerPath + ".gob"
	if g, err := gazetteer.LoadGob(snapshot); err == nil {
		r.logger.Info("gazetteer snapshot loaded", "path", snapshot, "names", g.Len())
		return g
	}

	g, err := gazetteer.Load(r.cfg.GazetteerPath)
	if err != nil {
		r.logger.Warn("gazetteer unavailable, extraction falls back to filename tokens", "error", err)
		return gazetteer.New(nil)
	}
	r.logger.Info("gazetteer loaded", "path", r.cfg.GazetteerPath, "names", g.Len())
	if err := g.SaveGob(snapshot); err != nil {
		r.logger.Warn("gazetteer snapshot not written", "error", err)
	}
	return g
}

// processGeoJSON streams one FeatureCollection through the rewriter. The
// document is split before the output file is created, so a malformed input
// leaves no output behind.
func (r *Runner) processGeoJSON(rw *rewrite.Rewriter, in, out string) (*rewrite.FileStats, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	doc, err := geojson.Split(data)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stats, err := rw.Rewrite(doc, f)
	if err != nil {
		// Partial output stays on disk; a known limitation, not rolled back.
		return nil, err
	}
	return stats, f.Close()
}

// processFlat rewrites a plain JSON document. The whole document is
// validated up front so a parse failure leaves no output behind.
func (r *Runner) processFlat(rw *rewrite.Rewriter, in, out string) (*rewrite.FileStats, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}

	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stats, err := rw.RewriteFlat(data, f)
	if err != nil {
		return nil, err
	}
	return stats, f.Close()
}

// standardizeInputs lists data/*.json plus geojson/**/*.geojson, skipping
// derived outputs and this tool's own report files.
func (r *Runner) standardizeInputs() []string {
	var inputs []string

	dataFiles, _ := filepath.Glob(filepath.Join(r.cfg.DataDir, "*.json"))
	for _, f := range dataFiles {
		if r.isDerived(f) {
			continue
		}
		inputs = append(inputs, f)
	}

	filepath.WalkDir(r.cfg.GeoJSONDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".geojson") || r.isDerived(path) {
			return nil
		}
		inputs = append(inputs, path)
		return nil
	})
	return inputs
}

// extractInputs prefers normalized parcel files and falls back to raw ones,
// deduplicating so each parcel file is visited once.
func (r *Runner) extractInputs() []string {
	var inputs []string
	seen := make(map[string]bool)
	patterns := []string{
		filepath.Join(r.cfg.ParcelsDir, "*"+suffixNormalizedGeo),
		filepath.Join(r.cfg.ParcelsDir, "*.geojson"),
	}
	for _, pat := range patterns {
		files, _ := filepath.Glob(pat)
		for _, f := range files {
			if seen[f] || strings.HasSuffix(f, suffixSourceCommune) {
				continue
			}
			seen[f] = true
			inputs = append(inputs, f)
		}
	}
	return inputs
}

func (r *Runner) isDerived(path string) bool {
	return strings.HasSuffix(path, suffixNormalizedGeo) ||
		strings.HasSuffix(path, suffixNormalizedJSON) ||
		strings.HasSuffix(path, suffixSourceCommune) ||
		path == r.cfg.ReportPath ||
		path == r.cfg.ExtractReportPath
}
