package core

import (
	"context"
	"sync"

	"github.com/huangsam/redundant/core/algo"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives the number of finished rows and the row total.
// Calls are serialized, so the callback needs no locking of its own.
type ProgressFunc func(done, total int)

// Scanner enumerates unordered record pairs and returns those whose score
// meets the threshold.
//
// Implementations must return pairs ordered by (i, j), the input positions
// of the two records with i < j, so that the output is reproducible.
type Scanner interface {
	Scan(ctx context.Context, records []algo.PreparedRecord, threshold float64) ([]schema.RedundancyPair, error)
}

// ScanOption customizes a scanner.
type ScanOption func(*scanSettings)

type scanSettings struct {
	workers  int
	explain  bool
	progress ProgressFunc
}

// WithWorkers sets how many goroutines score rows in parallel.
func WithWorkers(n int) ScanOption {
	return func(s *scanSettings) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithExplain attaches a per-dimension breakdown to every flagged pair.
func WithExplain(explain bool) ScanOption {
	return func(s *scanSettings) {
		s.explain = explain
	}
}

// WithProgress registers a callback that fires after each finished row.
func WithProgress(fn ProgressFunc) ScanOption {
	return func(s *scanSettings) {
		s.progress = fn
	}
}

func newScanSettings(opts []ScanOption) scanSettings {
	s := scanSettings{workers: 1}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ExhaustiveScanner compares every pair of records.
type ExhaustiveScanner struct {
	scorer   *algo.Scorer
	settings scanSettings
}

// NewExhaustiveScanner returns a scanner that visits all n(n-1)/2 pairs.
func NewExhaustiveScanner(scorer *algo.Scorer, opts ...ScanOption) *ExhaustiveScanner {
	return &ExhaustiveScanner{scorer: scorer, settings: newScanSettings(opts)}
}

// Scan implements Scanner.
func (s *ExhaustiveScanner) Scan(ctx context.Context, records []algo.PreparedRecord, threshold float64) ([]schema.RedundancyPair, error) {
	if err := schema.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return scanRows(ctx, s.settings, len(records), func(i int) []schema.RedundancyPair {
		var out []schema.RedundancyPair
		for j := i + 1; j < len(records); j++ {
			if p, ok := scorePair(s.scorer, &records[i], &records[j], threshold, s.settings.explain); ok {
				out = append(out, p)
			}
		}
		return out
	})
}

// BlockingScanner only compares records that share a value on one
// categorical dimension.
//
// Skipping cross-block pairs is exact only when those pairs cannot reach the
// threshold: missing values must score zero and the blocking weight must be
// larger than 1 - threshold. Otherwise the scan falls back to exhaustive.
type BlockingScanner struct {
	scorer   *algo.Scorer
	dim      schema.Dimension
	settings scanSettings
}

// NewBlockingScanner returns a scanner that blocks on dim.
func NewBlockingScanner(scorer *algo.Scorer, dim schema.Dimension, opts ...ScanOption) *BlockingScanner {
	return &BlockingScanner{scorer: scorer, dim: dim, settings: newScanSettings(opts)}
}

// Exact reports whether blocking gives the same pairs as an exhaustive scan
// at the given threshold.
func (s *BlockingScanner) Exact(threshold float64) bool {
	if !s.dim.IsCategorical() || s.scorer.Policy() != schema.MissingZero {
		return false
	}
	best := 1 - s.scorer.Weights().Get(s.dim) + schema.WeightSumTolerance
	return best < threshold
}

// Scan implements Scanner.
func (s *BlockingScanner) Scan(ctx context.Context, records []algo.PreparedRecord, threshold float64) ([]schema.RedundancyPair, error) {
	if err := schema.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if !s.Exact(threshold) {
		contract.Logger().Warn("blocking cannot guarantee complete results, scanning every pair instead",
			zap.String("block_on", string(s.dim)),
			zap.Float64("weight", s.scorer.Weights().Get(s.dim)),
			zap.Float64("threshold", threshold),
			zap.String("missing_policy", string(s.scorer.Policy())))
		exhaustive := &ExhaustiveScanner{scorer: s.scorer, settings: s.settings}
		return exhaustive.Scan(ctx, records, threshold)
	}

	// Members of each block in input order. Records without a value never
	// match on this dimension, so they are left out.
	blocks := make(map[string][]int)
	for i := range records {
		if v := records[i].Categorical(s.dim); v != "" {
			blocks[v] = append(blocks[v], i)
		}
	}
	// position of each record inside its block
	offset := make([]int, len(records))
	for _, members := range blocks {
		for k, i := range members {
			offset[i] = k
		}
	}
	contract.Logger().Debug("blocking scan", zap.String("block_on", string(s.dim)), zap.Int("blocks", len(blocks)))

	return scanRows(ctx, s.settings, len(records), func(i int) []schema.RedundancyPair {
		v := records[i].Categorical(s.dim)
		if v == "" {
			return nil
		}
		members := blocks[v]
		var out []schema.RedundancyPair
		for _, j := range members[offset[i]+1:] {
			if p, ok := scorePair(s.scorer, &records[i], &records[j], threshold, s.settings.explain); ok {
				out = append(out, p)
			}
		}
		return out
	})
}

// NewScanner picks the scanner for a run: blocking when blockOn is set,
// exhaustive otherwise.
func NewScanner(scorer *algo.Scorer, blockOn schema.Dimension, opts ...ScanOption) Scanner {
	if blockOn != "" {
		return NewBlockingScanner(scorer, blockOn, opts...)
	}
	return NewExhaustiveScanner(scorer, opts...)
}

func scorePair(scorer *algo.Scorer, a, b *algo.PreparedRecord, threshold float64, explain bool) (schema.RedundancyPair, bool) {
	score := scorer.Score(a, b)
	if score < threshold {
		return schema.RedundancyPair{}, false
	}
	p := schema.RedundancyPair{A: a.ID, B: b.ID, Score: score}
	if explain {
		_, p.Breakdown = scorer.Explain(a, b)
	}
	return p, true
}

// scanRows runs rowFn for every row index on a pool of workers. Each row's
// pairs land in their own slot, and the slots are joined in row order, so
// the result does not depend on scheduling. Cancellation is checked
// between rows.
func scanRows(ctx context.Context, settings scanSettings, n int, rowFn func(i int) []schema.RedundancyPair) ([]schema.RedundancyPair, error) {
	rows := make([][]schema.RedundancyPair, n)
	workers := min(max(settings.workers, 1), max(n, 1))

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if settings.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		settings.progress(done, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range n {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				rows[i] = rowFn(i)
				report()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range rows {
		total += len(r)
	}
	pairs := make([]schema.RedundancyPair, 0, total)
	for _, r := range rows {
		pairs = append(pairs, r...)
	}
	return pairs, nil
}
