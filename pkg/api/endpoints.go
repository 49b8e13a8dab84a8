// Package api exposes the normalizer over MCP so agents can query the same
// canonicalization and gazetteer the batch passes use.
package api

import (
	"context"

	"github.com/teranga-geo/commune-normalizer/pkg/batch"
	"github.com/teranga-geo/commune-normalizer/pkg/gazetteer"
	"github.com/teranga-geo/commune-normalizer/pkg/kit"
	"github.com/teranga-geo/commune-normalizer/pkg/normalize"
)

// Shared request/response types for the MCP tools.

type normalizeReq struct {
	Value string
}

type normalizeResp struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical,omitempty"`
	Absent    bool   `json:"absent"`
}

type lookupReq struct {
	Name string
}

type lookupResp struct {
	Query     string `json:"query"`
	Canonical string `json:"canonical,omitempty"`
	Known     bool   `json:"known"`
	BestMatch string `json:"best_match,omitempty"`
}

type listRunsReq struct {
	Limit int
}

type listRunsResp struct {
	Runs []batch.Run `json:"runs"`
}

func normalizeEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		canonical, ok := normalize.Canonical(req.Value)
		return normalizeResp{Raw: req.Value, Canonical: canonical, Absent: !ok}, nil
	}
}

func lookupEndpoint(g *gazetteer.Gazetteer) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lookupReq)
		resp := lookupResp{Query: req.Name}
		canonical, ok := normalize.Canonical(req.Name)
		if !ok {
			return resp, nil
		}
		resp.Canonical = canonical
		resp.Known = g.Contains(canonical)
		if best, found := g.BestMatch(canonical); found {
			resp.BestMatch = best
		}
		return resp, nil
	}
}

func listRunsEndpoint(db *batch.RunDB) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*listRunsReq)
		runs, err := db.ListRuns(req.Limit)
		if err != nil {
			return nil, err
		}
		if runs == nil {
			runs = []batch.Run{}
		}
		return listRunsResp{Runs: runs}, nil
	}
}
