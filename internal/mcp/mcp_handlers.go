package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/huangsam/redundant/core"
	"github.com/huangsam/redundant/core/algo"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/loader"
	"github.com/huangsam/redundant/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.AnalysisStore
}

// scanResponse is the JSON payload of scan_catalog.
type scanResponse struct {
	TotalRecords int                   `json:"total_records"`
	TotalPairs   int                   `json:"total_pairs"`
	Threshold    float64               `json:"threshold"`
	Pairs        []schema.EnrichedPair `json:"pairs"`
	Clusters     []schema.Cluster      `json:"clusters"`
	Unclustered  []string              `json:"unclustered"`
}

// compareResponse is the JSON payload of compare_records.
type compareResponse struct {
	A         string           `json:"a"`
	B         string           `json:"b"`
	Score     float64          `json:"score"`
	Label     string           `json:"label"`
	Breakdown schema.Breakdown `json:"breakdown"`
}

func (h *toolHandler) handleScanCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if t := request.GetFloat("threshold", -1); t >= 0 {
		cfg.Threshold = t
	}
	if err := contract.RevalidateScoring(cfg,
		request.GetString("weights", ""),
		request.GetString("missing_policy", ""),
		request.GetString("block_on", ""),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scan parameters: %v", err)), nil
	}
	limit := request.GetInt("limit", 0)

	var result *schema.ScanResult
	var err error
	if inline := request.GetString("records", ""); inline != "" {
		result, err = scanInline(ctx, cfg, inline)
	} else {
		path := request.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("either path or records is required"), nil
		}
		cfg.InputPath = path
		cfg.InputFormat = contract.InferInputFormat(path, "")
		result, err = core.GetScanResult(core.WithSuppressHeader(ctx), cfg, h.store)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	pairs := algo.RankPairs(result.Pairs, limit)
	resp := scanResponse{
		TotalRecords: result.TotalRecords,
		TotalPairs:   result.TotalPairs,
		Threshold:    result.Threshold,
		Pairs:        schema.EnrichPairs(pairs),
		Clusters:     result.Clusters,
		Unclustered:  result.Unclustered,
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// scanInline runs the pipeline over records passed in the request.
func scanInline(ctx context.Context, cfg *contract.Config, inline string) (*schema.ScanResult, error) {
	records, err := loader.DecodeJSON([]byte(inline))
	if err != nil {
		return nil, err
	}
	pipeline, err := core.NewPipeline(core.PipelineOptions{
		Weights:       cfg.Weights,
		Threshold:     cfg.Threshold,
		MissingPolicy: cfg.MissingPolicy,
		BlockOn:       cfg.BlockOn,
		Workers:       cfg.Workers,
		Explain:       true,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, records)
}

func (h *toolHandler) handleCompareRecords(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateScoring(cfg,
		request.GetString("weights", ""),
		request.GetString("missing_policy", ""),
		"",
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid compare parameters: %v", err)), nil
	}

	a, err := decodeRecord(request.GetString("record_a", ""), "record_a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := decodeRecord(request.GetString("record_b", ""), "record_b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := schema.ValidateRecords([]schema.DatasetRecord{a, b}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid records: %v", err)), nil
	}

	scorer, err := algo.NewScorer(cfg.Weights, algo.WithMissingPolicy(cfg.MissingPolicy))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid compare parameters: %v", err)), nil
	}
	pa, pb := algo.Prepare(&a), algo.Prepare(&b)
	score, breakdown := scorer.Explain(&pa, &pb)
	resp := compareResponse{
		A:         a.ID,
		B:         b.ID,
		Score:     score,
		Label:     schema.GetPlainLabel(score),
		Breakdown: breakdown,
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// decodeRecord reads one JSON object into a record.
func decodeRecord(raw, field string) (schema.DatasetRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return schema.DatasetRecord{}, fmt.Errorf("%s is required", field)
	}
	records, err := loader.DecodeJSON([]byte("[" + raw + "]"))
	if err != nil {
		return schema.DatasetRecord{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	if len(records) != 1 {
		return schema.DatasetRecord{}, fmt.Errorf("%s must be a single JSON object", field)
	}
	return records[0], nil
}

func (h *toolHandler) handleGetWeights(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := map[string]any{
		"weights":        h.baseCfg.Weights.AsMap(),
		"threshold":      h.baseCfg.Threshold,
		"missing_policy": h.baseCfg.MissingPolicy,
		"custom":         h.baseCfg.CustomWeights,
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
