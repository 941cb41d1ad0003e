// Package core has the pipeline that scores, filters and clusters catalog records.
package core

import (
	"context"
	"time"

	"github.com/huangsam/redundant/core/algo"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/outwriter"
	"github.com/huangsam/redundant/schema"
)

// ExecutorFunc defines the function signature for executing the commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) error

// ExecuteScan runs the full pipeline and prints flagged pairs and clusters.
// Pairs keep their scan order. It serves as the main entry point for the 'scan' command.
// The result limit only trims the text table; machine-readable output carries every pair.
func ExecuteScan(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) error {
	start := time.Now()
	result, err := runPipeline(ctx, cfg, store)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteScan(result, cfg, time.Since(start))
}

// ExecutePairs runs the pipeline and prints the flagged pairs, best first.
func ExecutePairs(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) error {
	start := time.Now()
	result, err := runPipeline(ctx, cfg, store)
	if err != nil {
		return err
	}
	ranked := algo.RankPairs(result.Pairs, cfg.ResultLimit)
	return outwriter.NewOutWriter().WritePairs(ranked, cfg, time.Since(start))
}

// ExecuteClusters runs the pipeline and prints the duplicate clusters.
func ExecuteClusters(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) error {
	start := time.Now()
	result, err := runPipeline(ctx, cfg, store)
	if err != nil {
		return err
	}
	ranked := algo.RankClusters(result.Clusters, cfg.ResultLimit)
	return outwriter.NewOutWriter().WriteClusters(ranked, result.Unclustered, cfg, time.Since(start))
}

// ExecuteWeights displays the active weight vector and the scoring formula.
// This is a static display that does not load any records.
func ExecuteWeights(_ context.Context, cfg *contract.Config, _ contract.AnalysisStore) error {
	return outwriter.NewOutWriter().WriteWeights(cfg.Weights, cfg)
}

// GetScanResult runs the pipeline and returns the raw result without printing it.
// Callers that embed the engine, such as the MCP server, use this entry point.
func GetScanResult(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) (*schema.ScanResult, error) {
	return runPipeline(ctx, cfg, store)
}
