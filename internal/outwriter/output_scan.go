package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/parquet"
	"github.com/huangsam/redundant/schema"
)

// scanOutput is the JSON shape of a full scan.
type scanOutput struct {
	TotalRecords int                   `json:"total_records"`
	TotalPairs   int                   `json:"total_pairs"`
	FlaggedPairs int                   `json:"flagged_pairs"`
	Threshold    float64               `json:"threshold"`
	Weights      map[string]float64    `json:"weights"`
	Pairs        []schema.EnrichedPair `json:"pairs"`
	Clusters     []schema.Cluster      `json:"clusters"`
	Unclustered  []string              `json:"unclustered"`
}

// PrintScanResult outputs a full scan, dispatching based on the output format configured.
// CSV carries the pairs with their cluster id; Parquet writes the pairs to the
// output file and the cluster members next to it.
func PrintScanResult(result *schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, buildScanOutput(result))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForPairs(w, result.Pairs, clusterOf(result.Clusters), fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		clusterFile := ClustersSidecarPath(cfg.OutputFile)
		if err := parquet.WritePairsParquet(pairRows(result.Pairs), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		if err := parquet.WriteClustersParquet(clusterRows(result.Clusters), clusterFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s and %s\n", cfg.OutputFile, clusterFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScanText(w, result, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeScanText prints the pairs table, then the clusters table.
func writeScanText(w io.Writer, result *schema.ScanResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if len(result.Pairs) == 0 {
		if _, err := fmt.Fprintf(w, "No redundant pairs at threshold %.2f among %d records\n", result.Threshold, result.TotalRecords); err != nil {
			return err
		}
		return writeFooter(w, cfg, duration)
	}
	shown := result.Pairs
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}
	if err := writePairsTable(w, shown, cfg, fmtFloat); err != nil {
		return err
	}
	if len(shown) < len(result.Pairs) {
		if _, err := fmt.Fprintf(w, "%d more flagged pairs not shown (raise --limit or use --output json)\n", len(result.Pairs)-len(shown)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeClustersTable(w, result.Clusters, result.Unclustered, cfg, fmtFloat, intFmt); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Compared %d pairs across %d records\n", result.TotalPairs, result.TotalRecords); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

func buildScanOutput(result *schema.ScanResult) scanOutput {
	weights := make(map[string]float64, len(schema.AllDimensions))
	for d, v := range result.Weights.AsMap() {
		weights[string(d)] = v
	}
	return scanOutput{
		TotalRecords: result.TotalRecords,
		TotalPairs:   result.TotalPairs,
		FlaggedPairs: len(result.Pairs),
		Threshold:    result.Threshold,
		Weights:      weights,
		Pairs:        schema.EnrichPairs(result.Pairs),
		Clusters:     nonNil(result.Clusters),
		Unclustered:  nonNil(result.Unclustered),
	}
}

// ClustersSidecarPath names the cluster file written next to a Parquet pairs file.
func ClustersSidecarPath(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + "_clusters" + ext
}
