package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/redundant/core/algo"
	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func catalogExample() []schema.DatasetRecord {
	return []schema.DatasetRecord{
		{ID: "ID1", Indicator: "GDP growth rate", GeographicCoverage: "US", TimeStart: 2000, TimeEnd: 2010, Units: "%", Source: "WorldBank"},
		{ID: "ID2", Indicator: "GDP Growth Rate (annual)", GeographicCoverage: "US", TimeStart: 2001, TimeEnd: 2011, Units: "%", Source: "WorldBank"},
		{ID: "ID3", Indicator: "Population", GeographicCoverage: "US", TimeStart: 2000, TimeEnd: 2010, Units: "count", Source: "UN"},
	}
}

// syntheticCatalog builds a catalog with families of near-duplicate indicators.
func syntheticCatalog(n int, seed uint64) []schema.DatasetRecord {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	indicators := []string{
		"GDP growth rate", "GDP growth rate (annual %)", "Gross domestic product growth",
		"Population", "Population total", "Inflation consumer prices",
		"Inflation, consumer prices (annual %)", "Unemployment rate", "CO2 emissions per capita",
	}
	geos := []string{"US", "UK", "FR", ""}
	units := []string{"%", "count", "tonnes"}
	sources := []string{"WorldBank", "IMF", "UN", ""}

	records := make([]schema.DatasetRecord, n)
	for i := range records {
		start := float64(1990 + rng.IntN(20))
		records[i] = schema.DatasetRecord{
			ID:                 fmt.Sprintf("R%03d", i),
			Indicator:          indicators[rng.IntN(len(indicators))],
			GeographicCoverage: geos[rng.IntN(len(geos))],
			TimeStart:          start,
			TimeEnd:            start + float64(1+rng.IntN(15)),
			Units:              units[rng.IntN(len(units))],
			Source:             sources[rng.IntN(len(sources))],
		}
	}
	return records
}

func mustScorer(t *testing.T, weights schema.WeightVector, opts ...algo.Option) *algo.Scorer {
	t.Helper()
	s, err := algo.NewScorer(weights, opts...)
	require.NoError(t, err)
	return s
}

func TestExhaustiveScannerCatalogExample(t *testing.T) {
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()))
	pairs, err := scanner.Scan(context.Background(), algo.PrepareAll(catalogExample()), 0.8)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, "ID1", pairs[0].A)
	assert.Equal(t, "ID2", pairs[0].B)
	assert.InDelta(t, 0.975, pairs[0].Score, 1e-9)
	assert.Nil(t, pairs[0].Breakdown)
}

func TestExhaustiveScannerExplain(t *testing.T) {
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()), WithExplain(true))
	pairs, err := scanner.Scan(context.Background(), algo.PrepareAll(catalogExample()), 0.8)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Len(t, pairs[0].Breakdown, 5)
	assert.InDelta(t, 0.9, pairs[0].Breakdown[schema.DimTime], 1e-9)
}

func TestExhaustiveScannerRejectsThreshold(t *testing.T) {
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()))
	_, err := scanner.Scan(context.Background(), algo.PrepareAll(catalogExample()), 1.2)
	require.Error(t, err)
	assert.True(t, schema.IsConfigurationError(err))
}

func TestExhaustiveScannerEdgeSizes(t *testing.T) {
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()), WithWorkers(4))

	pairs, err := scanner.Scan(context.Background(), nil, 0.8)
	require.NoError(t, err)
	assert.Empty(t, pairs)

	one := algo.PrepareAll(catalogExample()[:1])
	pairs, err = scanner.Scan(context.Background(), one, 0)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestExhaustiveScannerOrderAndCoverage(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(40, 3))
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()), WithWorkers(3))

	// Threshold zero flags every pair exactly once, in (i, j) order.
	pairs, err := scanner.Scan(context.Background(), records, 0)
	require.NoError(t, err)
	require.Len(t, pairs, 40*39/2)
	k := 0
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			assert.Equal(t, records[i].ID, pairs[k].A)
			assert.Equal(t, records[j].ID, pairs[k].B)
			k++
		}
	}
}

func TestExhaustiveScannerDeterministic(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(80, 42))
	scorer := mustScorer(t, schema.DefaultWeights())

	sequential, err := NewExhaustiveScanner(scorer, WithWorkers(1)).Scan(context.Background(), records, 0.7)
	require.NoError(t, err)
	require.NotEmpty(t, sequential)

	for _, workers := range []int{2, 4, 16} {
		parallel, err := NewExhaustiveScanner(scorer, WithWorkers(workers)).Scan(context.Background(), records, 0.7)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(sequential, parallel), "workers=%d", workers)
	}
}

func TestExhaustiveScannerThresholdMonotonic(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(60, 9))
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()), WithWorkers(4))

	flagged := func(threshold float64) map[[2]string]bool {
		pairs, err := scanner.Scan(context.Background(), records, threshold)
		require.NoError(t, err)
		set := make(map[[2]string]bool, len(pairs))
		for _, p := range pairs {
			assert.GreaterOrEqual(t, p.Score, threshold)
			set[[2]string{p.A, p.B}] = true
		}
		return set
	}

	low, high := flagged(0.6), flagged(0.85)
	assert.GreaterOrEqual(t, len(low), len(high))
	for key := range high {
		assert.True(t, low[key], "pair %v flagged at 0.85 but not at 0.6", key)
	}
}

func TestExhaustiveScannerCancellation(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(200, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()), WithWorkers(4))
	pairs, err := scanner.Scan(ctx, records, 0.8)
	assert.Nil(t, pairs)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExhaustiveScannerCancelMidScan(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(200, 5))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()),
		WithWorkers(2),
		WithProgress(func(done, _ int) {
			if done == 10 {
				cancel()
			}
		}))
	_, err := scanner.Scan(ctx, records, 0.8)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExhaustiveScannerProgress(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(25, 2))
	var calls []int
	scanner := NewExhaustiveScanner(mustScorer(t, schema.DefaultWeights()),
		WithWorkers(4),
		WithProgress(func(done, total int) {
			assert.Equal(t, 25, total)
			calls = append(calls, done)
		}))
	_, err := scanner.Scan(context.Background(), records, 0.8)
	require.NoError(t, err)
	require.Len(t, calls, 25)
	for i, done := range calls {
		assert.Equal(t, i+1, done)
	}
}

func TestBlockingScannerMatchesExhaustive(t *testing.T) {
	records := algo.PrepareAll(syntheticCatalog(120, 17))
	// geo carries enough weight that cross-geo pairs cannot reach 0.85
	weights := schema.WeightVector{Indicator: 0.3, Geo: 0.3, Time: 0.2, Unit: 0.1, Source: 0.1}
	scorer := mustScorer(t, weights)

	blocking := NewBlockingScanner(scorer, schema.DimGeo, WithWorkers(4))
	require.True(t, blocking.Exact(0.85))

	want, err := NewExhaustiveScanner(scorer).Scan(context.Background(), records, 0.85)
	require.NoError(t, err)
	got, err := blocking.Scan(context.Background(), records, 0.85)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestBlockingScannerExact(t *testing.T) {
	tests := []struct {
		name      string
		dim       schema.Dimension
		policy    schema.MissingPolicy
		threshold float64
		expected  bool
	}{
		{"geo at default threshold", schema.DimGeo, schema.MissingZero, 0.8, false},
		{"geo at high threshold", schema.DimGeo, schema.MissingZero, 0.85, true},
		{"unit is too light", schema.DimUnit, schema.MissingZero, 0.85, false},
		{"renormalize is never exact", schema.DimGeo, schema.MissingRenormalize, 0.99, false},
		{"indicator cannot block", schema.DimIndicator, schema.MissingZero, 0.99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := mustScorer(t, schema.DefaultWeights(), algo.WithMissingPolicy(tt.policy))
			assert.Equal(t, tt.expected, NewBlockingScanner(scorer, tt.dim).Exact(tt.threshold))
		})
	}
}

func TestBlockingScannerFallsBack(t *testing.T) {
	records := algo.PrepareAll(catalogExample())
	scorer := mustScorer(t, schema.DefaultWeights())

	// source weighs 0.1, so blocking on it at 0.8 would be lossy.
	pairs, err := NewBlockingScanner(scorer, schema.DimSource).Scan(context.Background(), records, 0.5)
	require.NoError(t, err)
	want, err := NewExhaustiveScanner(scorer).Scan(context.Background(), records, 0.5)
	require.NoError(t, err)
	assert.Equal(t, want, pairs)
}

func TestNewScanner(t *testing.T) {
	scorer := mustScorer(t, schema.DefaultWeights())
	assert.IsType(t, &ExhaustiveScanner{}, NewScanner(scorer, ""))
	assert.IsType(t, &BlockingScanner{}, NewScanner(scorer, schema.DimGeo))
}

func BenchmarkExhaustiveScanner(b *testing.B) {
	records := algo.PrepareAll(syntheticCatalog(300, 8))
	scorer, err := algo.NewScorer(schema.DefaultWeights())
	if err != nil {
		b.Fatal(err)
	}
	scanner := NewExhaustiveScanner(scorer, WithWorkers(4))
	for b.Loop() {
		_, _ = scanner.Scan(context.Background(), records, 0.8)
	}
}
