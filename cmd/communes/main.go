package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "normalize":
		cmdNormalize(os.Args[2:])
	case "extract":
		cmdExtract(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: communes <command>

Commands:
  normalize   Standardize commune fields across data/*.json and geojson/**/*.geojson
  extract     Fill missing communes from source_file in parcel FeatureCollections
  check       Score candidate fields against the known-commune gazetteer
  runs        Show recorded batch runs
  serve       Serve the normalizer tools over MCP on stdio
`)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
