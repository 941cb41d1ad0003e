package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/redundant/schema"
)

// CSVLoader reads records from a CSV file with a header row.
// Columns are matched by name, case-insensitively; geo and unit are
// accepted as short names for geographic_coverage and units.
type CSVLoader struct {
	Path string
}

// Load implements contract.RecordLoader.
func (l *CSVLoader) Load(ctx context.Context) ([]schema.DatasetRecord, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", l.Path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(ctx, f)
}

var csvAliases = map[string]string{
	"geo":  "geographic_coverage",
	"unit": "units",
}

// ReadCSV decodes CSV records from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]schema.DatasetRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := csvAliases[name]; ok {
			name = alias
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"id", "indicator", "time_start", "time_end"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []schema.DatasetRecord
	var errs []error
	for line := 1; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", line, err)
		}
		rec := schema.DatasetRecord{
			ID:                 field(row, "id"),
			Indicator:          field(row, "indicator"),
			GeographicCoverage: field(row, "geographic_coverage"),
			Units:              field(row, "units"),
			Source:             field(row, "source"),
		}
		errs = append(errs, setTimes(&rec, line, field(row, "time_start"), field(row, "time_end"))...)
		records = append(records, rec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}
