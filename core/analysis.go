package core

import (
	"context"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/loader"
	"github.com/huangsam/redundant/internal/outwriter"
	"github.com/huangsam/redundant/schema"
	"go.uber.org/zap"
)

// runPipeline performs the common Load, Score, Filter and Cluster steps
// shared by every scanning command.
func runPipeline(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) (*schema.ScanResult, error) {
	// --- 0. Configuration fails before any I/O ---
	pipeline, err := NewPipeline(pipelineOptions(cfg))
	if err != nil {
		return nil, err
	}

	// --- 1. Load ---
	src, err := loader.New(cfg)
	if err != nil {
		return nil, err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateRecords(records); err != nil {
		return nil, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogScanHeader(cfg, len(records))
	}

	// --- 2. Begin Run Tracking (if configured) ---
	ctx = beginRun(ctx, cfg, store)

	// --- 3. Score, Filter, Cluster ---
	result, err := pipeline.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	// --- 4. End Run Tracking ---
	endRun(ctx, store, result)
	return result, nil
}

// pipelineOptions maps validated config onto pipeline options.
func pipelineOptions(cfg *contract.Config) PipelineOptions {
	return PipelineOptions{
		Weights:       cfg.Weights,
		Threshold:     cfg.Threshold,
		MissingPolicy: cfg.MissingPolicy,
		BlockOn:       cfg.BlockOn,
		Workers:       cfg.Workers,
		Explain:       cfg.Explain || cfg.Detail,
		Progress:      logProgress(),
	}
}

// logProgress logs scan progress at debug level in steps of ten percent.
func logProgress() ProgressFunc {
	last := -1
	return func(done, total int) {
		if total == 0 {
			return
		}
		step := done * 10 / total
		if step == last {
			return
		}
		last = step
		contract.Logger().Debug("scan progress", zap.Int("rows", done), zap.Int("total", total))
	}
}

// beginRun records the start of a run. Tracking failures never fail the run.
func beginRun(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) context.Context {
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"input":          cfg.InputPath,
		"format":         string(cfg.InputFormat),
		"threshold":      cfg.Threshold,
		"weights":        cfg.Weights,
		"missing_policy": string(cfg.MissingPolicy),
		"block_on":       string(cfg.BlockOn),
		"workers":        cfg.Workers,
	}
	id, err := store.BeginAnalysis(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx
	}
	if id <= 0 {
		return ctx
	}
	return withAnalysisID(ctx, id)
}

// endRun stores the flagged pairs and closes the run record.
func endRun(ctx context.Context, store contract.AnalysisStore, result *schema.ScanResult) {
	id := analysisIDFrom(ctx)
	if store == nil || id == 0 {
		return
	}
	if err := store.RecordPairs(id, result.Pairs, clusterIndex(result.Clusters)); err != nil {
		contract.LogWarn("Failed to record flagged pairs", err)
	}
	summary := contract.RunSummary{
		TotalRecords: result.TotalRecords,
		FlaggedPairs: len(result.Pairs),
		Clusters:     len(result.Clusters),
	}
	if err := store.EndAnalysis(id, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}
