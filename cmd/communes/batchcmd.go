package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/teranga-geo/commune-normalizer/pkg/batch"
)

func cmdNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	runBatch("normalize", *cfgPath, func(r *batch.Runner) (*batch.Report, error) {
		return r.Standardize()
	}, func(cfg batch.Config) string { return cfg.ReportPath })
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	runBatch("extract", *cfgPath, func(r *batch.Runner) (*batch.Report, error) {
		return r.Extract()
	}, func(cfg batch.Config) string { return cfg.ExtractReportPath })
}

// runBatch drives one batch pass. Per-file failures are already inside the
// report; only a failed report write fails the process.
func runBatch(command, cfgPath string, pass func(*batch.Runner) (*batch.Report, error), reportPath func(batch.Config) string) {
	logger := newLogger()
	cfg, err := batch.LoadConfig(cfgPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	started := time.Now()
	report, err := pass(batch.NewRunner(cfg, logger))
	if err != nil {
		logger.Error("report not written", "error", err)
		os.Exit(1)
	}
	recordRun(cfg, command, started, report, reportPath(cfg), logger)
	printSummary(command, report, reportPath(cfg))
}

// recordRun appends the run to the history database. Run history is
// best-effort; a failure here does not fail the batch.
func recordRun(cfg batch.Config, command string, started time.Time, report *batch.Report, reportPath string, logger *slog.Logger) {
	db, err := batch.OpenRunDB(cfg.RunDBPath)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	defer db.Close()

	if _, err := db.RecordReport(command, started, time.Now(), report, reportPath); err != nil {
		logger.Warn("run not recorded", "error", err)
	}
}

func printSummary(command string, report *batch.Report, reportPath string) {
	color.New(color.Bold).Printf("\n%s complete\n", command)
	fmt.Printf("  files:   %s, %s\n",
		color.GreenString("%d ok", len(report.Files)),
		color.RedString("%d failed", len(report.Errors)))
	fmt.Printf("  records: %d\n", report.TotalRecords())
	fmt.Printf("  report:  %s\n", reportPath)
}

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	limit := fs.Int("limit", 20, "maximum runs to show")
	fs.Parse(args)

	logger := newLogger()
	cfg, err := batch.LoadConfig(*cfgPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	db, err := batch.OpenRunDB(cfg.RunDBPath)
	if err != nil {
		logger.Error("open run db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.ListRuns(*limit)
	if err != nil {
		logger.Error("list runs", "error", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return
	}
	for _, r := range runs {
		fmt.Printf("#%-4d %-10s %s  %s, %s, %d records  -> %s\n",
			r.ID, r.Command,
			time.Unix(r.StartedAt, 0).Format(time.RFC3339),
			color.GreenString("%d ok", r.FilesOK),
			color.RedString("%d failed", r.FilesFailed),
			r.Records, r.ReportPath)
	}
}
