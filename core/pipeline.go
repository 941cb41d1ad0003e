package core

import (
	"context"
	"fmt"

	"github.com/huangsam/redundant/core/algo"
	"github.com/huangsam/redundant/core/graph"
	"github.com/huangsam/redundant/schema"
)

// Compare returns the redundancy score of one pair of records.
// Malformed weights fail with a *schema.ConfigurationError.
func Compare(a, b *schema.DatasetRecord, weights schema.WeightVector, opts ...algo.Option) (float64, error) {
	scorer, err := algo.NewScorer(weights, opts...)
	if err != nil {
		return 0, err
	}
	return scorer.Compare(a, b), nil
}

// Scan returns every pair of records scoring at or above threshold, ordered
// by input position. Configuration is checked before any record, and all
// records are validated before the first comparison.
func Scan(ctx context.Context, records []schema.DatasetRecord, weights schema.WeightVector, threshold float64, opts ...ScanOption) ([]schema.RedundancyPair, error) {
	scorer, err := algo.NewScorer(weights)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := schema.ValidateRecords(records); err != nil {
		return nil, err
	}
	return NewExhaustiveScanner(scorer, opts...).Scan(ctx, algo.PrepareAll(records), threshold)
}

// Cluster returns the connected components over ids and the flagged pairs,
// singletons included. Callers keep the components with more than one member.
func Cluster(ids []string, pairs []schema.RedundancyPair) []schema.Component {
	return graph.Components(ids, pairs)
}

// Pipeline runs Score, Filter and Cluster over one batch of records.
type Pipeline struct {
	scorer    *algo.Scorer
	scanner   Scanner
	threshold float64
}

// PipelineOptions configures NewPipeline.
type PipelineOptions struct {
	Weights       schema.WeightVector
	Threshold     float64
	MissingPolicy schema.MissingPolicy
	BlockOn       schema.Dimension
	Workers       int
	Explain       bool
	Progress      ProgressFunc
}

// NewPipeline validates the options and builds the scorer and scanner.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	policy := opts.MissingPolicy
	if policy == "" {
		policy = schema.MissingZero
	}
	scorer, err := algo.NewScorer(opts.Weights, algo.WithMissingPolicy(policy))
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	if opts.BlockOn != "" && !opts.BlockOn.IsCategorical() {
		return nil, &schema.ConfigurationError{Field: "block-on", Reason: fmt.Sprintf("%q is not a categorical dimension", opts.BlockOn)}
	}
	scanner := NewScanner(scorer, opts.BlockOn,
		WithWorkers(opts.Workers),
		WithExplain(opts.Explain),
		WithProgress(opts.Progress))
	return &Pipeline{scorer: scorer, scanner: scanner, threshold: opts.Threshold}, nil
}

// Scorer returns the validated scorer.
func (p *Pipeline) Scorer() *algo.Scorer {
	return p.scorer
}

// Run validates the records, scans them and groups the flagged pairs.
func (p *Pipeline) Run(ctx context.Context, records []schema.DatasetRecord) (*schema.ScanResult, error) {
	if err := schema.ValidateRecords(records); err != nil {
		return nil, err
	}
	pairs, err := p.scanner.Scan(ctx, algo.PrepareAll(records), p.threshold)
	if err != nil {
		return nil, err
	}

	builder := graph.NewClusterBuilder(schema.IDs(records))
	builder.AddPairs(pairs)
	n := len(records)
	return &schema.ScanResult{
		TotalRecords: n,
		TotalPairs:   n * (n - 1) / 2,
		Threshold:    p.threshold,
		Weights:      p.scorer.Weights(),
		Pairs:        pairs,
		Clusters:     builder.Clusters(),
		Unclustered:  builder.Unclustered(),
	}, nil
}

// clusterIndex maps each clustered id to its cluster ID.
func clusterIndex(clusters []schema.Cluster) map[string]int {
	idx := make(map[string]int)
	for _, c := range clusters {
		for _, m := range c.Members {
			idx[m] = c.ID
		}
	}
	return idx
}
