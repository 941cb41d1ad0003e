package contract

import (
	"testing"

	"github.com/huangsam/redundant/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() *ConfigRawInput {
	return &ConfigRawInput{
		InputPathStr: "catalog.csv",
		Threshold:    schema.DefaultThreshold,
		Workers:      4,
		Limit:        10,
		Precision:    3,
		Output:       "text",
		Emoji:        "no",
		Color:        "yes",
	}
}

func ptr(f float64) *float64 { return &f }

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		configError bool
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.CSVIn, cfg.InputFormat)
				assert.Equal(t, schema.DefaultWeights(), cfg.Weights)
				assert.False(t, cfg.CustomWeights)
				assert.Equal(t, schema.MissingZero, cfg.MissingPolicy)
				assert.Equal(t, schema.NoneBackend, cfg.AnalysisBackend)
				assert.True(t, cfg.UseColors)
				assert.False(t, cfg.UseEmojis)
			},
		},
		{
			name:        "threshold out of range",
			mutate:      func(in *ConfigRawInput) { in.Threshold = 1.5 },
			expectError: true,
			configError: true,
		},
		{
			name: "config file weights",
			mutate: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Indicator: ptr(0.6), Time: ptr(0.4)}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.CustomWeights)
				assert.InDelta(t, 0.6, cfg.Weights.Indicator, 1e-9)
				assert.Zero(t, cfg.Weights.Geo)
			},
		},
		{
			name: "config file weights not summing to one",
			mutate: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Indicator: ptr(0.6)}
			},
			expectError: true,
			configError: true,
		},
		{
			name: "weights flag overrides file",
			mutate: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Indicator: ptr(1)}
				in.WeightsStr = "indicator=0.5, geo=0.5"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, 0.5, cfg.Weights.Geo, 1e-9)
			},
		},
		{
			name:        "unknown missing policy",
			mutate:      func(in *ConfigRawInput) { in.MissingPolicy = "skip" },
			expectError: true,
			configError: true,
		},
		{
			name:   "block on unit",
			mutate: func(in *ConfigRawInput) { in.BlockOn = "Unit" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.DimUnit, cfg.BlockOn)
			},
		},
		{
			name:        "block on indicator is rejected",
			mutate:      func(in *ConfigRawInput) { in.BlockOn = "indicator" },
			expectError: true,
			configError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "parquet output needs a file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name:        "invalid precision",
			mutate:      func(in *ConfigRawInput) { in.Precision = 9 },
			expectError: true,
		},
		{
			name:        "invalid workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "invalid limit",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: true,
		},
		{
			name:        "missing input file",
			mutate:      func(in *ConfigRawInput) { in.InputPathStr = "" },
			expectError: true,
		},
		{
			name:   "json inferred from extension",
			mutate: func(in *ConfigRawInput) { in.InputPathStr = "catalog.JSON" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.JSONIn, cfg.InputFormat)
			},
		},
		{
			name:   "sqlite source uses input path",
			mutate: func(in *ConfigRawInput) { in.InputPathStr = "catalog.db" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLIn, cfg.InputFormat)
				assert.Equal(t, schema.SQLiteBackend, cfg.SourceBackend)
				assert.Equal(t, "catalog.db", cfg.SourceDBConnect)
				assert.Equal(t, DefaultSourceTable, cfg.SourceTable)
			},
		},
		{
			name: "postgres source",
			mutate: func(in *ConfigRawInput) {
				in.InputPathStr = ""
				in.SourceBackend = "postgresql"
				in.SourceDBConnect = "host=localhost dbname=catalog user=u password=p"
				in.SourceTable = "public.datasets"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLIn, cfg.InputFormat)
				assert.Equal(t, "public.datasets", cfg.SourceTable)
			},
		},
		{
			name: "bad source table",
			mutate: func(in *ConfigRawInput) {
				in.InputPathStr = "catalog.db"
				in.SourceTable = "datasets; drop table x"
			},
			expectError: true,
		},
		{
			name: "mysql analysis without dsn",
			mutate: func(in *ConfigRawInput) {
				in.AnalysisBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "sqlite analysis",
			mutate: func(in *ConfigRawInput) {
				in.AnalysisBackend = "SQLite"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.AnalysisBackend)
			},
		},
		{
			name:        "negative max clusters",
			mutate:      func(in *ConfigRawInput) { in.MaxClusters = -1 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.configError, schema.IsConfigurationError(err), err.Error())
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestParseWeightsString(t *testing.T) {
	w, err := ParseWeightsString("indicator=0.35,geo=0.2,time=0.25,unit=0.1,source=0.1")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultWeights(), w)

	for _, bad := range []string{"", "indicator", "indicator=abc", "color=1", "indicator=0.5"} {
		_, err := ParseWeightsString(bad)
		require.Error(t, err, bad)
		assert.True(t, schema.IsConfigurationError(err), bad)
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite anything", schema.SQLiteBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/catalog", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/catalog", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=catalog", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn, "source-db-connect")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("datasets"))
	assert.True(t, ValidIdentifier("public.datasets_v2"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("2datasets"))
	assert.False(t, ValidIdentifier("a..b"))
	assert.False(t, ValidIdentifier(`x"y`))
}

func TestProcessProfilingConfig(t *testing.T) {
	var p ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&p, ""))
	assert.False(t, p.Enabled)
	require.NoError(t, ProcessProfilingConfig(&p, "prof"))
	assert.True(t, p.Enabled)
	assert.Equal(t, "prof", p.Prefix)
}

func TestDriverName(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := DriverName(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := DriverName(schema.NoneBackend)
	assert.Error(t, err)
}

func TestOpenDatabaseSQLiteMemory(t *testing.T) {
	db, err := OpenDatabase(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", Placeholder(schema.SQLiteBackend, 3))
	assert.Equal(t, "$3", Placeholder(schema.PostgreSQLBackend, 3))
}
