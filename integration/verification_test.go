//go:build basic

// Package integration contains integration tests for redundant.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or, with Docker available: go test -tags database ./integration
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/huangsam/redundant/core"
	"github.com/huangsam/redundant/internal/loader"
	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanMatchesLibrary runs the binary and checks its JSON against the
// pipeline run in-process on the same catalog.
func TestScanMatchesLibrary(t *testing.T) {
	path := catalogPath(t)
	out, err := runRedundant(t, nil, "scan", path, "--output", "json", "--limit", "0", "--workers", "3")
	require.NoError(t, err)
	got := decodeScan(t, out)

	records, err := (&loader.CSVLoader{Path: path}).Load(context.Background())
	require.NoError(t, err)
	pipeline, err := core.NewPipeline(core.PipelineOptions{
		Weights:   schema.DefaultWeights(),
		Threshold: schema.DefaultThreshold,
		Workers:   1,
	})
	require.NoError(t, err)
	want, err := pipeline.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, want.TotalRecords, got.TotalRecords)
	assert.Equal(t, 21, got.TotalPairs)

	gotPairs := make([]schema.RedundancyPair, len(got.Pairs))
	for i, p := range got.Pairs {
		gotPairs[i] = p.RedundancyPair
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(want.Pairs, gotPairs, approx, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("pairs mismatch (-library +binary):\n%s", diff)
	}
	if diff := cmp.Diff(want.Clusters, got.Clusters, approx, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("clusters mismatch (-library +binary):\n%s", diff)
	}
	assert.Equal(t, want.Unclustered, got.Unclustered)
}

// TestScanFormatsAgree converts the catalog to JSON and YAML and expects the
// same pairs from every input format.
func TestScanFormatsAgree(t *testing.T) {
	path := catalogPath(t)
	base, err := runRedundant(t, nil, "scan", path, "--output", "json")
	require.NoError(t, err)
	want := decodeScan(t, base)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(catalogJSON), 0o644))
	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(catalogYAML), 0o644))

	for _, p := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(p), func(t *testing.T) {
			out, err := runRedundant(t, nil, "scan", p, "--output", "json")
			require.NoError(t, err)
			got := decodeScan(t, out)
			if diff := cmp.Diff(want.Clusters, got.Clusters, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("clusters mismatch:\n%s", diff)
			}
		})
	}
}

// TestCheckGate verifies the exit status of the check command.
func TestCheckGate(t *testing.T) {
	path := catalogPath(t)

	_, err := runRedundant(t, nil, "check", path)
	assert.Error(t, err, "clusters exceed the default budget of zero")

	_, err = runRedundant(t, nil, "check", path, "--max-clusters", "5")
	assert.NoError(t, err)

	// Only the two exact restatements remain at a strict threshold
	_, err = runRedundant(t, nil, "check", path, "--threshold", "0.99", "--max-clusters", "2")
	assert.NoError(t, err)
	_, err = runRedundant(t, nil, "check", path, "--threshold", "0.99", "--max-clusters", "1")
	assert.Error(t, err)
}

// TestInvalidConfiguration verifies that bad options fail before any output.
func TestInvalidConfiguration(t *testing.T) {
	path := catalogPath(t)
	tests := []struct {
		name string
		args []string
	}{
		{"threshold out of range", []string{"scan", path, "--threshold", "1.5"}},
		{"weights do not sum to one", []string{"scan", path, "--weights-override", "indicator=0.5,geo=0.4"}},
		{"unknown missing policy", []string{"scan", path, "--missing-policy", "skip"}},
		{"time is not a blocking key", []string{"scan", path, "--block-on", "time"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRedundant(t, nil, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

// TestWeightsFromEnv verifies REDUNDANT_* variables reach the config.
func TestWeightsFromEnv(t *testing.T) {
	out, err := runRedundant(t, []string{"REDUNDANT_WEIGHTS_OVERRIDE=indicator=1", "REDUNDANT_OUTPUT=json"}, "weights")
	require.NoError(t, err)
	assert.Contains(t, out, `"indicator"`)
	assert.Contains(t, out, "1")
}

const catalogJSON = `{"records": [
  {"id": "ID1", "indicator": "GDP growth rate", "geographic_coverage": "USA", "time_start": 2000, "time_end": 2010, "units": "percent", "source": "World Bank"},
  {"id": "ID2", "indicator": "GDP growth rate (annual %)", "geographic_coverage": "USA", "time_start": 2000, "time_end": 2010, "units": "percent", "source": "World Bank"},
  {"id": "ID3", "indicator": "Unemployment rate", "geographic_coverage": "USA", "time_start": 2005, "time_end": 2015, "units": "percent", "source": "BLS"},
  {"id": "ID4", "indicator": "Annual GDP growth rate", "geographic_coverage": "USA", "time_start": 2001, "time_end": 2010, "units": "percent", "source": "IMF"},
  {"id": "ID5", "indicator": "Population total", "geographic_coverage": "FRA", "time_start": 1990, "time_end": 2020, "units": "persons", "source": "INSEE"},
  {"id": "ID6", "indicator": "Total population", "geographic_coverage": "FRA", "time_start": 1990, "time_end": 2020, "units": "persons", "source": "INSEE"},
  {"id": "ID7", "indicator": "CO2 emissions per capita", "geographic_coverage": "DEU", "time_start": 1995, "time_end": 2018, "units": "tonnes", "source": "UBA"}
]}`

const catalogYAML = `records:
  - {id: ID1, indicator: GDP growth rate, geo: USA, time_start: 2000, time_end: 2010, unit: percent, source: World Bank}
  - {id: ID2, indicator: "GDP growth rate (annual %)", geo: USA, time_start: 2000, time_end: 2010, unit: percent, source: World Bank}
  - {id: ID3, indicator: Unemployment rate, geo: USA, time_start: 2005, time_end: 2015, unit: percent, source: BLS}
  - {id: ID4, indicator: Annual GDP growth rate, geo: USA, time_start: 2001, time_end: 2010, unit: percent, source: IMF}
  - {id: ID5, indicator: Population total, geo: FRA, time_start: 1990, time_end: 2020, unit: persons, source: INSEE}
  - {id: ID6, indicator: Total population, geo: FRA, time_start: 1990, time_end: 2020, unit: persons, source: INSEE}
  - {id: ID7, indicator: CO2 emissions per capita, geo: DEU, time_start: 1995, time_end: 2018, unit: tonnes, source: UBA}
`
