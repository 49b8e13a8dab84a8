package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/teranga-geo/commune-normalizer/pkg/batch"
	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
)

// Fields historically worth auditing in the communes layer, joins included.
const defaultCheckFields = "CAV,CCRCA,CCRCA_1,SUSCOL,REG,DEPT,CodeJoin"

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	file := fs.String("file", "", "FeatureCollection to audit (default geojson/communes/communes.geojson)")
	fields := fs.String("fields", defaultCheckFields, "comma-separated candidate fields")
	fs.Parse(args)

	logger := newLogger()
	cfg, err := batch.LoadConfig(*cfgPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if *file == "" {
		*file = filepath.Join(cfg.GeoJSONDir, "communes", "communes.geojson")
	}

	g, err := gazetteer.Load(cfg.GazetteerPath)
	if err != nil {
		logger.Error("gazetteer", "error", err)
		os.Exit(1)
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	stats, best, err := gazetteer.Check(g, data, strings.Split(*fields, ","))
	if err != nil {
		logger.Error("check", "error", err)
		os.Exit(1)
	}

	fmt.Printf("gazetteer: %d known communes\n", g.Len())
	for _, s := range stats {
		fmt.Printf("\nField: %s\n", color.New(color.Bold).Sprint(s.Field))
		fmt.Printf("  distinct values: %d\n", s.Distinct)
		fmt.Printf("  gazetteer matches: %s (%.1f%% coverage)\n",
			color.GreenString("%d", s.Matches), s.Coverage)
		if len(s.Examples) > 0 {
			fmt.Printf("  matched examples: %s\n", strings.Join(s.Examples, ", "))
		}
		for _, top := range s.Top {
			fmt.Printf("  top value: %s (%d)\n", top.Value, top.Count)
		}
	}
	fmt.Printf("\nRecommended primary commune field: %s\n", color.New(color.Bold, color.FgGreen).Sprint(best))
}
