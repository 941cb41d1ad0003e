// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/redundant/schema"
)

// RecordLoader supplies the ordered sequence of catalog records from a backing store.
// Implementations coerce numeric time fields and report malformed rows as
// *schema.ValidationError values joined into a single error.
type RecordLoader interface {
	Load(ctx context.Context) ([]schema.DatasetRecord, error)
}

// AnalysisStore defines the interface for tracking runs and storing flagged pairs.
type AnalysisStore interface {
	// BeginAnalysis creates a new run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary RunSummary) error

	// RecordPairs stores the flagged pairs of a run, tagged with their cluster id
	RecordPairs(analysisID int64, pairs []schema.RedundancyPair, clusterOf map[string]int) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every stored run, oldest first
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllPairs returns every stored pair, ordered by run
	GetAllPairs() ([]schema.PairRecord, error)

	// Close closes the underlying connection
	Close() error
}

// RunSummary holds the totals written when a run finishes.
type RunSummary struct {
	TotalRecords int
	FlaggedPairs int
	Clusters     int
}
