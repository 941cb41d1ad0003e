// Package loader reads catalog records from files and databases.
//
// Every loader coerces raw values into schema.DatasetRecord, collects every
// row it cannot coerce, and fails with the joined *schema.ValidationError
// values rather than skipping rows.
package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// New returns the loader for the configured input.
func New(cfg *contract.Config) (contract.RecordLoader, error) {
	switch cfg.InputFormat {
	case schema.CSVIn:
		return &CSVLoader{Path: cfg.InputPath}, nil
	case schema.JSONIn:
		return &JSONLoader{Path: cfg.InputPath}, nil
	case schema.YAMLIn:
		return &YAMLLoader{Path: cfg.InputPath}, nil
	case schema.ParquetIn:
		return &ParquetLoader{Path: cfg.InputPath}, nil
	case schema.SQLIn:
		return &SQLLoader{Backend: cfg.SourceBackend, ConnStr: cfg.SourceDBConnect, Table: cfg.SourceTable}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", cfg.InputFormat)
	}
}

// NewFromPath returns a file loader, inferring the format from the extension
// when format is empty.
func NewFromPath(path string, format schema.InputFormat) (contract.RecordLoader, error) {
	if format == "" {
		format = contract.InferInputFormat(path, "")
	}
	cfg := &contract.Config{InputPath: path, InputFormat: format}
	if format == schema.SQLIn {
		cfg.SourceBackend = schema.SQLiteBackend
		cfg.SourceDBConnect = path
		cfg.SourceTable = contract.DefaultSourceTable
	}
	return New(cfg)
}

// rawRecord holds loosely typed values decoded from JSON or YAML.
type rawRecord struct {
	ID                 any `json:"id" yaml:"id"`
	Indicator          any `json:"indicator" yaml:"indicator"`
	GeographicCoverage any `json:"geographic_coverage" yaml:"geographic_coverage"`
	Geo                any `json:"geo" yaml:"geo"`
	TimeStart          any `json:"time_start" yaml:"time_start"`
	TimeEnd            any `json:"time_end" yaml:"time_end"`
	Units              any `json:"units" yaml:"units"`
	Unit               any `json:"unit" yaml:"unit"`
	Source             any `json:"source" yaml:"source"`
}

// convertRaw coerces decoded records, collecting every failure.
func convertRaw(raws []rawRecord) ([]schema.DatasetRecord, error) {
	records := make([]schema.DatasetRecord, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		rec := schema.DatasetRecord{
			ID:                 coerceString(raw.ID),
			Indicator:          coerceString(raw.Indicator),
			GeographicCoverage: firstNonEmpty(coerceString(raw.GeographicCoverage), coerceString(raw.Geo)),
			Units:              firstNonEmpty(coerceString(raw.Units), coerceString(raw.Unit)),
			Source:             coerceString(raw.Source),
		}
		rowErrs := setTimes(&rec, i+1, raw.TimeStart, raw.TimeEnd)
		errs = append(errs, rowErrs...)
		records = append(records, rec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}

// setTimes coerces both time bounds of rec and returns any failures.
func setTimes(rec *schema.DatasetRecord, row int, start, end any) []error {
	var errs []error
	var err error
	if rec.TimeStart, err = coerceFloat(start); err != nil {
		errs = append(errs, &schema.ValidationError{RecordID: rec.ID, Row: row, Reason: "time_start " + err.Error()})
	}
	if rec.TimeEnd, err = coerceFloat(end); err != nil {
		errs = append(errs, &schema.ValidationError{RecordID: rec.ID, Row: row, Reason: "time_end " + err.Error()})
	}
	return errs
}

var (
	errMissing    = errors.New("is missing")
	errNotNumeric = errors.New("is not numeric")
)

// coerceFloat turns a decoded value into a finite float64.
func coerceFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, errMissing
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case fmt.Stringer: // json.Number
		return parseFloat(x.String())
	case string:
		return parseFloat(x)
	default:
		return 0, errNotNumeric
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errMissing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}

// coerceString renders scalars as trimmed text; nil becomes "".
func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
