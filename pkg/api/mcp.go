package api

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/teranga-geo/commune-normalizer/pkg/batch"
	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
	"github.com/teranga-geo/commune-normalizer/pkg/kit"
)

// RegisterMCPTools registers the three commune tools on the server. db may
// be nil when no run history database is configured; the list_runs tool is
// then omitted.
func RegisterMCPTools(srv *server.MCPServer, g *gazetteer.Gazetteer, db *batch.RunDB, logger *slog.Logger) {
	registerNormalizeName(srv, logger)
	registerLookupCommune(srv, g, logger)
	if db != nil {
		registerListRuns(srv, db, logger)
	}
}

func registerNormalizeName(srv *server.MCPServer, logger *slog.Logger) {
	tool := mcp.NewTool("normalize_name",
		mcp.WithDescription("Canonicalize a commune name: uppercase, accents stripped, whitespace collapsed."),
		mcp.WithString("value", mcp.Required(), mcp.Description("The raw name to canonicalize")),
	)

	endpoint := kit.Chain(kit.Logging(logger, "normalize_name"))(normalizeEndpoint())
	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (any, error) {
		value, _ := req.GetArguments()["value"].(string)
		return &normalizeReq{Value: value}, nil
	})
}

func registerLookupCommune(srv *server.MCPServer, g *gazetteer.Gazetteer, logger *slog.Logger) {
	tool := mcp.NewTool("lookup_commune",
		mcp.WithDescription("Look a name up in the known-commune gazetteer, including the longest contained match."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name to look up")),
	)

	endpoint := kit.Chain(kit.Logging(logger, "lookup_commune"))(lookupEndpoint(g))
	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (any, error) {
		name, _ := req.GetArguments()["name"].(string)
		return &lookupReq{Name: name}, nil
	})
}

func registerListRuns(srv *server.MCPServer, db *batch.RunDB, logger *slog.Logger) {
	tool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded batch runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (default 20)")),
	)

	endpoint := kit.Chain(kit.Logging(logger, "list_runs"))(listRunsEndpoint(db))
	kit.RegisterMCPTool(srv, tool, endpoint, func(req mcp.CallToolRequest) (any, error) {
		limit := 20
		if v, ok := req.GetArguments()["limit"].(float64); ok && v > 0 {
			limit = int(v)
		}
		return &listRunsReq{Limit: limit}, nil
	})
}
