package algo

import (
	"math"
	"testing"

	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gdp = schema.DatasetRecord{
		ID: "ID1", Indicator: "GDP growth rate", GeographicCoverage: "US",
		TimeStart: 2000, TimeEnd: 2010, Units: "%", Source: "WorldBank",
	}
	gdpAnnual = schema.DatasetRecord{
		ID: "ID2", Indicator: "GDP Growth Rate (annual)", GeographicCoverage: "US",
		TimeStart: 2001, TimeEnd: 2011, Units: "%", Source: "WorldBank",
	}
	population = schema.DatasetRecord{
		ID: "ID3", Indicator: "Population", GeographicCoverage: "US",
		TimeStart: 2000, TimeEnd: 2010, Units: "count", Source: "UN",
	}
)

func newDefaultScorer(t *testing.T, opts ...Option) *Scorer {
	t.Helper()
	s, err := NewScorer(schema.DefaultWeights(), opts...)
	require.NoError(t, err)
	return s
}

func TestScorerCatalogExample(t *testing.T) {
	s := newDefaultScorer(t)

	near := s.Compare(&gdp, &gdpAnnual)
	assert.InDelta(t, 0.35+0.2+0.25*0.9+0.1+0.1, near, 1e-9)
	assert.GreaterOrEqual(t, near, schema.DefaultThreshold)

	assert.Less(t, s.Compare(&gdp, &population), 0.7)
	assert.Less(t, s.Compare(&gdpAnnual, &population), 0.7)
}

func TestScorerSymmetricAndBounded(t *testing.T) {
	s := newDefaultScorer(t)
	records := []schema.DatasetRecord{gdp, gdpAnnual, population, {ID: "X", Indicator: "x"}}
	for i := range records {
		for j := range records {
			ab := s.Compare(&records[i], &records[j])
			ba := s.Compare(&records[j], &records[i])
			assert.Equal(t, ab, ba)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestScorerSelfComparison(t *testing.T) {
	s := newDefaultScorer(t)
	assert.InDelta(t, 1.0, s.Compare(&gdp, &gdp), 1e-9)

	// Missing categoricals never match, even against themselves.
	bare := schema.DatasetRecord{ID: "B", Indicator: "GDP", TimeStart: 2000, TimeEnd: 2010}
	assert.InDelta(t, 0.35+0.25, s.Compare(&bare, &bare), 1e-9)
}

func TestScorerMonotonicInSimilarity(t *testing.T) {
	s := newDefaultScorer(t)
	base := s.Compare(&gdp, &population)

	sameUnits := population
	sameUnits.Units = "%"
	improved := s.Compare(&gdp, &sameUnits)
	assert.Greater(t, improved, base)

	sameSource := sameUnits
	sameSource.Source = "WorldBank"
	assert.Greater(t, s.Compare(&gdp, &sameSource), improved)
}

func TestScorerWeightsAreApplied(t *testing.T) {
	indicatorOnly := schema.WeightVector{Indicator: 1}
	s, err := NewScorer(indicatorOnly)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, s.Compare(&gdp, &gdpAnnual), 1e-9)
	assert.InDelta(t, TokenSetRatio(gdp.Indicator, population.Indicator), s.Compare(&gdp, &population), 1e-9)
}

func TestNewScorerRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		weights schema.WeightVector
		opts    []Option
	}{
		{"Sum below one", schema.WeightVector{Indicator: 0.5}, nil},
		{"Negative", schema.WeightVector{Indicator: 1.5, Geo: -0.5}, nil},
		{"Unknown policy", schema.DefaultWeights(), []Option{WithMissingPolicy("ignore")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScorer(tt.weights, tt.opts...)
			assert.Nil(t, s)
			require.Error(t, err)
			assert.True(t, schema.IsConfigurationError(err))
		})
	}
}

func TestScorerRenormalize(t *testing.T) {
	s := newDefaultScorer(t, WithMissingPolicy(schema.MissingRenormalize))
	assert.Equal(t, schema.MissingRenormalize, s.Policy())

	a := schema.DatasetRecord{ID: "A", Indicator: "GDP growth rate", TimeStart: 2000, TimeEnd: 2010, Units: "%"}
	b := schema.DatasetRecord{ID: "B", Indicator: "gdp growth rate", TimeStart: 2000, TimeEnd: 2010, Units: "%", Source: "IMF"}

	// geo and source are dropped, the remaining weights rescale to 1.
	assert.InDelta(t, 1.0, s.Compare(&a, &b), 1e-9)

	zero := newDefaultScorer(t)
	assert.InDelta(t, 0.35+0.25+0.1, zero.Compare(&a, &b), 1e-9)

	pa, pb := Prepare(&a), Prepare(&b)
	score, breakdown := s.Explain(&pa, &pb)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.NotContains(t, breakdown, schema.DimGeo)
	assert.NotContains(t, breakdown, schema.DimSource)
	assert.Contains(t, breakdown, schema.DimUnit)
}

func TestScorerRenormalizeAllWeightOnMissing(t *testing.T) {
	s, err := NewScorer(schema.WeightVector{Geo: 1}, WithMissingPolicy(schema.MissingRenormalize))
	require.NoError(t, err)
	a := schema.DatasetRecord{ID: "A", Indicator: "x"}
	assert.Equal(t, 0.0, s.Compare(&a, &a))
}

func TestScorerExplain(t *testing.T) {
	s := newDefaultScorer(t)
	pa, pb := Prepare(&gdp), Prepare(&gdpAnnual)

	score, breakdown := s.Explain(&pa, &pb)
	assert.Equal(t, s.Score(&pa, &pb), score)
	require.Len(t, breakdown, 5)
	assert.InDelta(t, 1.0, breakdown[schema.DimIndicator], 1e-9)
	assert.InDelta(t, 0.9, breakdown[schema.DimTime], 1e-9)
	assert.Equal(t, 1.0, breakdown[schema.DimGeo])

	var weighted float64
	for d, sim := range breakdown {
		weighted += schema.DefaultWeights().Get(d) * sim
	}
	assert.InDelta(t, score, weighted, 1e-9)
}

func TestRankPairs(t *testing.T) {
	pairs := []schema.RedundancyPair{
		{A: "a", B: "b", Score: 0.81},
		{A: "a", B: "c", Score: 0.99},
		{A: "b", B: "c", Score: 0.81},
		{A: "c", B: "d", Score: 0.9},
	}

	ranked := RankPairs(pairs, 0)
	require.Len(t, ranked, 4)
	assert.Equal(t, "c", ranked[0].B)
	assert.Equal(t, "d", ranked[1].B)
	assert.Equal(t, "a", ranked[2].A) // ties keep scan order
	assert.Equal(t, "b", ranked[3].A)
	assert.Equal(t, 0.81, pairs[0].Score, "input must not be reordered")

	assert.Len(t, RankPairs(pairs, 2), 2)
	assert.Len(t, RankPairs(pairs, 10), 4)
}

func TestRankClusters(t *testing.T) {
	clusters := []schema.Cluster{
		{ID: 1, Members: []string{"a", "b"}, MeanScore: 0.95},
		{ID: 2, Members: []string{"c", "d", "e"}, MeanScore: 0.85},
		{ID: 3, Members: []string{"f", "g"}, MeanScore: 0.99},
	}
	ranked := RankClusters(clusters, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].ID)
	assert.Equal(t, 3, ranked[1].ID)
}

func FuzzScorer(f *testing.F) {
	f.Add("GDP growth rate", "US", 2000.0, 2010.0, "GDP", "", 1990.0, 2030.0)
	f.Add("", "", 0.0, 0.0, "", "", 0.0, 0.0)
	f.Add("x", "UK", 2010.0, 2000.0, "x y", "UK", -5.0, 5.0)

	s, err := NewScorer(schema.DefaultWeights())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, ind1, geo1 string, s1, e1 float64, ind2, geo2 string, s2, e2 float64) {
		for _, v := range []float64{s1, e1, s2, e2} {
			if math.IsNaN(v) || math.Abs(v) > 1e12 {
				t.Skip("times outside the validated range")
			}
		}
		a := schema.DatasetRecord{ID: "a", Indicator: ind1, GeographicCoverage: geo1, TimeStart: s1, TimeEnd: e1}
		b := schema.DatasetRecord{ID: "b", Indicator: ind2, GeographicCoverage: geo2, TimeStart: s2, TimeEnd: e2}
		ab := s.Compare(&a, &b)
		if ab != s.Compare(&b, &a) {
			t.Fatalf("score not symmetric")
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("score out of range: %v", ab)
		}
	})
}

func BenchmarkScorerScore(b *testing.B) {
	s, err := NewScorer(schema.DefaultWeights())
	if err != nil {
		b.Fatal(err)
	}
	pa, pb := Prepare(&gdp), Prepare(&gdpAnnual)
	for b.Loop() {
		s.Score(&pa, &pb)
	}
}
