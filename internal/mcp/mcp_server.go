// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Redundant MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.AnalysisStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Redundant Catalog Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: scan_catalog ---
	s.AddTool(mcp.NewTool("scan_catalog",
		mcp.WithDescription("Find near-duplicate datasets in a catalog and group them into clusters."),
		mcp.WithString("path", mcp.Description("Path to a CSV, JSON, YAML or Parquet catalog file. Ignored when records is given.")),
		mcp.WithString("records", mcp.Description("Inline catalog as a JSON array of records with id, indicator, geographic_coverage, time_start, time_end, units and source.")),
		mcp.WithNumber("threshold", mcp.Description("Minimum score in [0,1] for a pair to be flagged. Defaults to the server setting.")),
		mcp.WithString("weights", mcp.Description("Weight override such as 'indicator=0.5,time=0.5'. Must sum to 1.")),
		mcp.WithString("missing_policy", mcp.Description("How empty categorical values score."), mcp.Enum("zero", "renormalize")),
		mcp.WithString("block_on", mcp.Description("Only compare records sharing this value when exact."), mcp.Enum("none", "geo", "unit", "source")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of pairs returned.")),
	), h.handleScanCatalog)

	// --- 2. Tool: compare_records ---
	s.AddTool(mcp.NewTool("compare_records",
		mcp.WithDescription("Score how redundant two catalog records are, with a per-dimension breakdown."),
		mcp.WithString("record_a", mcp.Description("First record as a JSON object."), mcp.Required()),
		mcp.WithString("record_b", mcp.Description("Second record as a JSON object."), mcp.Required()),
		mcp.WithString("weights", mcp.Description("Weight override such as 'indicator=0.5,time=0.5'.")),
		mcp.WithString("missing_policy", mcp.Description("How empty categorical values score."), mcp.Enum("zero", "renormalize")),
	), h.handleCompareRecords)

	// --- 3. Tool: get_weights ---
	s.AddTool(mcp.NewTool("get_weights",
		mcp.WithDescription("Show the active weight vector and threshold."),
	), h.handleGetWeights)

	return s
}

// StartMCPServer starts the Redundant MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.AnalysisStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
