package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/teranga-geo/commune-normalizer/pkg/api"
	"github.com/teranga-geo/commune-normalizer/pkg/batch"
	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
)

const version = "1.0.0"

// cmdServe exposes the normalizer over MCP on stdio. No network listener.
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger()
	cfg, err := batch.LoadConfig(*cfgPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	g, err := gazetteer.Load(cfg.GazetteerPath)
	if err != nil {
		logger.Warn("gazetteer unavailable, lookups will miss", "error", err)
		g = gazetteer.New(nil)
	}

	var db *batch.RunDB
	if d, err := batch.OpenRunDB(cfg.RunDBPath); err != nil {
		logger.Warn("run history unavailable", "error", err)
	} else {
		db = d
		defer db.Close()
	}

	srv := server.NewMCPServer("commune-normalizer", version)
	api.RegisterMCPTools(srv, g, db, logger)

	logger.Info("serving MCP on stdio", "gazetteer_names", g.Len())
	if err := server.ServeStdio(srv); err != nil {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
