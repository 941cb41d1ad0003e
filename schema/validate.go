package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ValidateRecords checks every record before comparison starts.
// It collects all problems instead of stopping at the first, so a caller can
// report every offending record at once. The run must not proceed on error.
func ValidateRecords(records []DatasetRecord) error {
	var errs []error
	seen := make(map[string]int, len(records))
	for i := range records {
		r := &records[i]
		row := i + 1
		if strings.TrimSpace(r.ID) == "" {
			errs = append(errs, &ValidationError{Row: row, Reason: "missing id"})
			continue
		}
		if first, ok := seen[r.ID]; ok {
			errs = append(errs, &ValidationError{RecordID: r.ID, Row: row, Reason: fmt.Sprintf("duplicate id (first seen at row %d)", first)})
			continue
		}
		seen[r.ID] = row
		if strings.TrimSpace(r.Indicator) == "" {
			errs = append(errs, &ValidationError{RecordID: r.ID, Row: row, Reason: "missing indicator"})
		}
		if !isFinite(r.TimeStart) {
			errs = append(errs, &ValidationError{RecordID: r.ID, Row: row, Reason: "time_start is not numeric"})
		}
		if !isFinite(r.TimeEnd) {
			errs = append(errs, &ValidationError{RecordID: r.ID, Row: row, Reason: "time_end is not numeric"})
		}
	}
	return errors.Join(errs...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
