package loader

import (
	"context"
	"errors"

	"github.com/huangsam/redundant/internal/parquet"
	"github.com/huangsam/redundant/schema"
)

// ParquetLoader reads records from a Parquet file.
type ParquetLoader struct {
	Path string
}

// Load implements contract.RecordLoader.
func (l *ParquetLoader) Load(_ context.Context) ([]schema.DatasetRecord, error) {
	rows, err := parquet.ReadDatasetRows(l.Path)
	if err != nil {
		return nil, err
	}

	records := make([]schema.DatasetRecord, 0, len(rows))
	var errs []error
	for i, row := range rows {
		rec := schema.DatasetRecord{
			ID:                 coerceString(row.ID),
			Indicator:          coerceString(row.Indicator),
			GeographicCoverage: deref(row.GeographicCoverage),
			Units:              deref(row.Units),
			Source:             deref(row.Source),
		}
		errs = append(errs, setTimes(&rec, i+1, floatOrNil(row.TimeStart), floatOrNil(row.TimeEnd))...)
		records = append(records, rec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return coerceString(*s)
}

// floatOrNil keeps a null column distinguishable from zero.
func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
