package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/teranga-geo/commune-normalizer/pkg/rewrite"
)

// Report is the durable outcome of one batch run: per-file results plus
// per-file errors. It is append-only and serialized exactly once.
type Report struct {
	Files  []FileResult `json:"files"`
	Errors []FileError  `json:"errors"`
}

// FileResult records one successfully rewritten file.
type FileResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	rewrite.FileStats
}

// FileError records one abandoned file.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// NewReport returns an empty report that marshals with empty arrays rather
// than nulls.
func NewReport() *Report {
	return &Report{Files: []FileResult{}, Errors: []FileError{}}
}

func (r *Report) addFile(input, output string, stats *rewrite.FileStats) {
	r.Files = append(r.Files, FileResult{Input: input, Output: output, FileStats: *stats})
}

func (r *Report) addError(file string, err error) {
	r.Errors = append(r.Errors, FileError{File: file, Error: err.Error()})
}

// TotalRecords sums the record counts across all successful files.
func (r *Report) TotalRecords() int {
	total := 0
	for _, f := range r.Files {
		total += f.Total
	}
	return total
}

// Write persists the report as indented JSON.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
