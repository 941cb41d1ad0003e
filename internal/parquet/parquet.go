// Package parquet provides the row types and helpers for reading catalog
// records from, and exporting results to, Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// DatasetRow is one catalog record as stored in a Parquet input file.
// Optional columns may be null; time bounds are checked by the loader.
type DatasetRow struct {
	ID                 string   `parquet:"id"`
	Indicator          string   `parquet:"indicator"`
	GeographicCoverage *string  `parquet:"geographic_coverage,optional"`
	TimeStart          *float64 `parquet:"time_start,optional"`
	TimeEnd            *float64 `parquet:"time_end,optional"`
	Units              *string  `parquet:"units,optional"`
	Source             *string  `parquet:"source,optional"`
}

// PairRow is one flagged pair.
type PairRow struct {
	// Rank orders pairs by descending score
	Rank int32 `parquet:"rank,snappy"`

	RecordA string  `parquet:"record_a,snappy"`
	RecordB string  `parquet:"record_b,snappy"`
	Score   float64 `parquet:"score,snappy"`
	Label   string  `parquet:"label,snappy"`

	// Per-dimension similarities, null when the run did not explain pairs
	// or the dimension was skipped under the renormalize policy
	SimIndicator *float64 `parquet:"sim_indicator,optional,snappy"`
	SimGeo       *float64 `parquet:"sim_geo,optional,snappy"`
	SimTime      *float64 `parquet:"sim_time,optional,snappy"`
	SimUnit      *float64 `parquet:"sim_unit,optional,snappy"`
	SimSource    *float64 `parquet:"sim_source,optional,snappy"`
}

// ClusterMemberRow is one member of a duplicate cluster. Cluster level
// statistics repeat on every member row.
type ClusterMemberRow struct {
	ClusterID int32   `parquet:"cluster_id,snappy"`
	RecordID  string  `parquet:"record_id,snappy"`
	Size      int32   `parquet:"size,snappy"`
	Edges     int32   `parquet:"edges,snappy"`
	MinScore  float64 `parquet:"min_score,snappy"`
	MaxScore  float64 `parquet:"max_score,snappy"`
	MeanScore float64 `parquet:"mean_score,snappy"`
	Density   float64 `parquet:"density,snappy"`
}

// AnalysisRun represents a single tracked run with metadata.
// This struct maps to the redundant_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRecords int32 `parquet:"total_records,snappy"`
	FlaggedPairs int32 `parquet:"flagged_pairs,snappy"`
	Clusters     int32 `parquet:"clusters,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// StoredPair is a flagged pair as kept by the run store.
// This struct maps to the redundant_pairs database table.
type StoredPair struct {
	AnalysisID int64   `parquet:"analysis_id,snappy"`
	RecordA    string  `parquet:"record_a,snappy"`
	RecordB    string  `parquet:"record_b,snappy"`
	Score      float64 `parquet:"score,snappy"`
	ClusterID  *int32  `parquet:"cluster_id,optional,snappy"`
}

// ReadDatasetRows reads every catalog row of a Parquet file.
func ReadDatasetRows(path string) ([]DatasetRow, error) {
	rows, err := parquet.ReadFile[DatasetRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// WriteDatasetRows writes catalog rows, mainly to build fixtures.
func WriteDatasetRows(data []DatasetRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WritePairsParquet writes flagged pairs to a Parquet file.
func WritePairsParquet(data []PairRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteClustersParquet writes cluster members to a Parquet file.
func WriteClustersParquet(data []ClusterMemberRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteStoredPairsParquet writes a slice of StoredPair structs to a Parquet file.
func WriteStoredPairsParquet(data []StoredPair, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows writes rows with a schema inferred from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
