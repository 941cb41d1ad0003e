package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/huangsam/redundant/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 10000
	DefaultPrecision   = 3
	DefaultSourceTable = "datasets"
	DefaultMaxClusters = 0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom weights from the YAML config file.
// Any dimension left out is weighted zero once at least one is given.
type WeightsRawInput struct {
	Indicator *float64 `mapstructure:"indicator"`
	Geo       *float64 `mapstructure:"geo"`
	Time      *float64 `mapstructure:"time"`
	Unit      *float64 `mapstructure:"unit"`
	Source    *float64 `mapstructure:"source"`
}

// Config holds the runtime configuration for a run.
// This struct is the "final, validated" config.
type Config struct {
	InputPath       string
	InputFormat     schema.InputFormat
	SourceBackend   schema.DatabaseBackend
	SourceDBConnect string // Please use env var as this is plaintext
	SourceTable     string

	Threshold     float64
	Weights       schema.WeightVector
	CustomWeights bool
	MissingPolicy schema.MissingPolicy
	BlockOn       schema.Dimension // empty means exhaustive
	Workers       int
	ResultLimit   int // 0 means no limit

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Explain    bool
	Detail     bool
	Width      int // Terminal width override (0 = auto-detect)

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	MaxClusters int

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Format            string  `mapstructure:"format"`
	SourceBackend     string  `mapstructure:"source-backend"`
	SourceDBConnect   string  `mapstructure:"source-db-connect"`
	SourceTable       string  `mapstructure:"source-table"`
	Threshold         float64 `mapstructure:"threshold"`
	MissingPolicy     string  `mapstructure:"missing-policy"`
	BlockOn           string  `mapstructure:"block-on"`
	Workers           int     `mapstructure:"workers"`
	Limit             int     `mapstructure:"limit"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Precision         int     `mapstructure:"precision"`
	Detail            bool    `mapstructure:"detail"`
	Width             int     `mapstructure:"width"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`
	Emoji             string  `mapstructure:"emoji"`
	Color             string  `mapstructure:"color"`

	// --- Fields from pairsCmd.Flags() ---
	Explain bool `mapstructure:"explain"`

	// --- Fields from checkCmd.Flags() ---
	MaxClusters int `mapstructure:"max-clusters"`

	// --- Fields from any command accepting --weights ---
	WeightsStr string `mapstructure:"weights-override"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processScoring(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	return validateAnalysisBackend(cfg, input)
}

// validateSimpleInputs processes and validates presentation and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 (no limit) and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.MaxClusters < 0 {
		return fmt.Errorf("max-clusters cannot be negative (received %d)", input.MaxClusters)
	}
	cfg.MaxClusters = input.MaxClusters
	return nil
}

// processScoring validates threshold, weights, missing policy and blocking.
// Problems here are reported as *schema.ConfigurationError.
func processScoring(cfg *Config, input *ConfigRawInput) error {
	if err := schema.ValidateThreshold(input.Threshold); err != nil {
		return err
	}
	cfg.Threshold = input.Threshold

	weights, custom, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	if input.WeightsStr != "" {
		weights, err = ParseWeightsString(input.WeightsStr)
		if err != nil {
			return err
		}
		custom = true
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	cfg.Weights = weights
	cfg.CustomWeights = custom

	cfg.MissingPolicy = schema.MissingPolicy(strings.ToLower(input.MissingPolicy))
	if cfg.MissingPolicy == "" {
		cfg.MissingPolicy = schema.MissingZero
	}
	if _, ok := schema.ValidMissingPolicies[cfg.MissingPolicy]; !ok {
		return &schema.ConfigurationError{Field: "missing-policy", Reason: fmt.Sprintf("must be zero or renormalize (received %q)", input.MissingPolicy)}
	}

	blockOn := strings.ToLower(strings.TrimSpace(input.BlockOn))
	switch blockOn {
	case "", "none":
		cfg.BlockOn = ""
	default:
		d := schema.Dimension(blockOn)
		if !d.IsCategorical() {
			return &schema.ConfigurationError{Field: "block-on", Reason: fmt.Sprintf("must be one of geo, unit, source, none (received %q)", input.BlockOn)}
		}
		cfg.BlockOn = d
	}
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a weight vector.
// It returns the defaults, and false, when no weight was provided.
func ProcessWeightsRawInput(raw WeightsRawInput) (schema.WeightVector, bool, error) {
	fields := []*float64{raw.Indicator, raw.Geo, raw.Time, raw.Unit, raw.Source}
	provided := false
	for _, f := range fields {
		if f != nil {
			provided = true
			break
		}
	}
	if !provided {
		return schema.DefaultWeights(), false, nil
	}

	value := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	w := schema.WeightVector{
		Indicator: value(raw.Indicator),
		Geo:       value(raw.Geo),
		Time:      value(raw.Time),
		Unit:      value(raw.Unit),
		Source:    value(raw.Source),
	}
	if err := w.Validate(); err != nil {
		return schema.WeightVector{}, false, err
	}
	return w, true, nil
}

// ParseWeightsString parses "indicator=0.5,geo=0.2,..." into a weight vector.
// Dimensions left out are weighted zero.
func ParseWeightsString(s string) (schema.WeightVector, error) {
	var raw WeightsRawInput
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return schema.WeightVector{}, &schema.ConfigurationError{Field: "weights", Reason: fmt.Sprintf("expected dimension=value, got %q", part)}
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return schema.WeightVector{}, &schema.ConfigurationError{Field: "weights." + strings.TrimSpace(key), Reason: fmt.Sprintf("is not a number (%q)", val)}
		}
		switch schema.Dimension(strings.ToLower(strings.TrimSpace(key))) {
		case schema.DimIndicator:
			raw.Indicator = &f
		case schema.DimGeo:
			raw.Geo = &f
		case schema.DimTime:
			raw.Time = &f
		case schema.DimUnit:
			raw.Unit = &f
		case schema.DimSource:
			raw.Source = &f
		default:
			return schema.WeightVector{}, &schema.ConfigurationError{Field: "weights", Reason: fmt.Sprintf("unknown dimension %q", key)}
		}
	}
	w, provided, err := ProcessWeightsRawInput(raw)
	if err != nil {
		return schema.WeightVector{}, err
	}
	if !provided {
		return schema.WeightVector{}, &schema.ConfigurationError{Field: "weights", Reason: "no weights given"}
	}
	return w, nil
}

// processSource resolves where records come from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.SourceDBConnect = input.SourceDBConnect
	cfg.SourceTable = strings.TrimSpace(input.SourceTable)
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}

	cfg.SourceBackend = schema.DatabaseBackend(strings.ToLower(input.SourceBackend))
	if cfg.SourceBackend == "" {
		cfg.SourceBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be sqlite, mysql, postgresql, none", input.SourceBackend)
	}

	format := schema.InputFormat(strings.ToLower(input.Format))
	if format == "" {
		format = InferInputFormat(cfg.InputPath, cfg.SourceBackend)
	}
	if _, ok := schema.ValidInputFormats[format]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be csv, json, yaml, parquet, sql", input.Format)
	}
	cfg.InputFormat = format

	if format != schema.SQLIn {
		if cfg.InputPath == "" {
			return fmt.Errorf("an input file is required for %s input", format)
		}
		return nil
	}

	if cfg.SourceBackend == schema.NoneBackend {
		cfg.SourceBackend = schema.SQLiteBackend
	}
	if cfg.SourceBackend == schema.SQLiteBackend && cfg.SourceDBConnect == "" {
		cfg.SourceDBConnect = cfg.InputPath
	}
	if cfg.SourceBackend == schema.SQLiteBackend && cfg.SourceDBConnect == "" {
		return fmt.Errorf("sql input on sqlite needs a database file or --source-db-connect")
	}
	if !ValidIdentifier(cfg.SourceTable) {
		return fmt.Errorf("invalid source table name %q", cfg.SourceTable)
	}
	return ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect, "source-db-connect")
}

// InferInputFormat picks a format from the file extension. A configured
// database backend wins over the file name.
func InferInputFormat(path string, backend schema.DatabaseBackend) schema.InputFormat {
	if backend != "" && backend != schema.NoneBackend {
		return schema.SQLIn
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.JSONIn
	case ".yaml", ".yml":
		return schema.YAMLIn
	case ".parquet":
		return schema.ParquetIn
	case ".db", ".sqlite", ".sqlite3":
		return schema.SQLIn
	default:
		return schema.CSVIn
	}
}

// validateAnalysisBackend validates the run-history backend configuration.
func validateAnalysisBackend(cfg *Config, input *ConfigRawInput) error {
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		cfg.AnalysisBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect, "analysis-db-connect")
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends. flag names the option in error messages.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr, flag string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", flag, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", flag, backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidIdentifier accepts plain SQL identifiers, optionally schema qualified.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for part := range strings.SplitSeq(name, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}

// RevalidateScoring applies per-request scoring overrides on top of an
// already validated config. Empty arguments keep the current values.
func RevalidateScoring(cfg *Config, weightsStr, missingPolicy, blockOn string) error {
	if missingPolicy == "" {
		missingPolicy = string(cfg.MissingPolicy)
	}
	if blockOn == "" {
		blockOn = string(cfg.BlockOn)
	}
	weights, custom := cfg.Weights, cfg.CustomWeights
	input := &ConfigRawInput{
		Threshold:     cfg.Threshold,
		WeightsStr:    weightsStr,
		MissingPolicy: missingPolicy,
		BlockOn:       blockOn,
	}
	if err := processScoring(cfg, input); err != nil {
		return err
	}
	if weightsStr == "" {
		cfg.Weights, cfg.CustomWeights = weights, custom
	}
	return nil
}
