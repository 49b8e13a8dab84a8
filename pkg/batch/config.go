// Package batch orchestrates commune normalization over a directory tree:
// it enumerates input files, isolates per-file failures, and persists the
// aggregated report. One file is processed at a time; the only state shared
// across files is the report it appends to.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// Config is the batch configuration, read from a YAML file with defaults
// matching the project layout, so invoking the tool with no arguments works.
type Config struct {
	DataDir           string   `yaml:"data_dir"`
	GeoJSONDir        string   `yaml:"geojson_dir"`
	ParcelsDir        string   `yaml:"parcels_dir"`
	ReportPath        string   `yaml:"report_path"`
	ExtractReportPath string   `yaml:"extract_report_path"`
	GazetteerPath     string   `yaml:"gazetteer_path"`
	RunDBPath         string   `yaml:"run_db_path"`
	Candidates        []string `yaml:"candidates"`
}

// DefaultConfig returns the fixed project paths and candidate field order.
func DefaultConfig() Config {
	return Config{
		DataDir:           "data",
		GeoJSONDir:        "geojson",
		ParcelsDir:        "geojson/parcels",
		ReportPath:        "data/commune_standardization_report.json",
		ExtractReportPath: "data/commune_extraction_report.json",
		GazetteerPath:     "data/communes_data.json",
		RunDBPath:         "data/runs.db",
		Candidates:        normalize.DefaultCandidates,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = normalize.DefaultCandidates
	}
	return cfg, nil
}
