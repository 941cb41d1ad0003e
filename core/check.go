package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// ExecuteCheck runs the check command for CI/CD gating.
// It scans the catalog and fails when more duplicate clusters are found than
// the configured budget allows.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) error {
	start := time.Now()
	result, err := runPipeline(WithSuppressHeader(ctx), cfg, store)
	if err != nil {
		return err
	}

	check := buildCheckResult(cfg, result)
	printCheckResult(check, time.Since(start))
	if !check.Passed {
		return fmt.Errorf("%d duplicate cluster(s) found, budget is %d", len(check.Clusters), check.MaxClusters)
	}
	return nil
}

// buildCheckResult compares the cluster count against the budget.
func buildCheckResult(cfg *contract.Config, result *schema.ScanResult) *schema.CheckResult {
	return &schema.CheckResult{
		Passed:       len(result.Clusters) <= cfg.MaxClusters,
		MaxClusters:  cfg.MaxClusters,
		Clusters:     result.Clusters,
		TotalRecords: result.TotalRecords,
		FlaggedPairs: len(result.Pairs),
		Threshold:    result.Threshold,
	}
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Redundancy Check Results:")

	labels := []string{"Records:", "Threshold:", "Budget:"}
	values := []any{
		result.TotalRecords,
		fmt.Sprintf("%.2f", result.Threshold),
		fmt.Sprintf("%d cluster(s)", result.MaxClusters),
	}
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()
	fmt.Printf("Checked %d records in %v\n\n", result.TotalRecords, duration)

	if result.Passed {
		fmt.Printf("✅ Catalog within budget: %d cluster(s), %d flagged pair(s)\n", len(result.Clusters), result.FlaggedPairs)
		return
	}

	fmt.Printf("❌ Redundancy check failed: %d cluster(s) over a budget of %d\n\n", len(result.Clusters), result.MaxClusters)
	maxToShow := 5
	for i, c := range result.Clusters {
		if i >= maxToShow {
			fmt.Printf("  ... and %d more\n", len(result.Clusters)-maxToShow)
			break
		}
		fmt.Printf("  - cluster %d: %v (mean score: %.3f)\n", c.ID, c.Members, c.MeanScore)
	}
	fmt.Println()
}
