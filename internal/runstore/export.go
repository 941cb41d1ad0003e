package runstore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/parquet"
	"github.com/huangsam/redundant/schema"
)

// ExecuteAnalysisExport writes the run history of the global store to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis tracking is disabled. Set --analysis-backend to export run history")
	}
	return ExportAnalysis(os.Stdout, store, outputFile)
}

// ExportAnalysis writes runs and pairs from store next to outputFile:
// <outputFile>.analysis_runs.parquet and <outputFile>.pairs.parquet.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total stored pairs: %d\n", status.TableSizes[pairsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	pairs, err := store.GetAllPairs()
	if err != nil {
		return fmt.Errorf("failed to retrieve pairs: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(convertRuns(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	pairsFile := outputFile + ".pairs.parquet"
	if err := parquet.WriteStoredPairsParquet(convertPairs(pairs), pairsFile); err != nil {
		return fmt.Errorf("failed to write pairs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d pairs to: %s\n", len(pairs), pairsFile)
	return nil
}

func convertRuns(records []schema.AnalysisRunRecord) []parquet.AnalysisRun {
	out := make([]parquet.AnalysisRun, len(records))
	for i, r := range records {
		out[i] = parquet.AnalysisRun{
			AnalysisID:    r.AnalysisID,
			RunUUID:       r.RunUUID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalRecords:  r.TotalRecords,
			FlaggedPairs:  r.FlaggedPairs,
			Clusters:      r.Clusters,
			ConfigParams:  r.ConfigParams,
		}
	}
	return out
}

func convertPairs(records []schema.PairRecord) []parquet.StoredPair {
	out := make([]parquet.StoredPair, len(records))
	for i, r := range records {
		out[i] = parquet.StoredPair{
			AnalysisID: r.AnalysisID,
			RecordA:    r.RecordA,
			RecordB:    r.RecordB,
			Score:      r.Score,
			ClusterID:  r.ClusterID,
		}
	}
	return out
}
