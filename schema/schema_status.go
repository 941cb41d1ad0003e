package schema

import "time"

// AnalysisStatus represents the status of the run store.
type AnalysisStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRuns         int              `json:"total_runs"`
	LastRunID         int64            `json:"last_run_id"`
	LastRunTime       time.Time        `json:"last_run_time"`
	OldestRunTime     time.Time        `json:"oldest_run_time"`
	TotalRecordsSeen  int              `json:"total_records_seen"`
	TotalPairsFlagged int              `json:"total_pairs_flagged"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// AnalysisRunRecord represents a row from the redundant_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRecords  int32
	FlaggedPairs  int32
	Clusters      int32
	ConfigParams  *string
}

// PairRecord represents a row from the redundant_pairs table.
type PairRecord struct {
	AnalysisID int64
	RecordA    string
	RecordB    string
	Score      float64
	ClusterID  *int32
}

// CheckResult holds the results of a cluster budget check.
type CheckResult struct {
	Passed       bool
	MaxClusters  int
	Clusters     []Cluster
	TotalRecords int
	FlaggedPairs int
	Threshold    float64
}
