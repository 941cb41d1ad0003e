package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// SQLLoader reads records from a table with the catalog columns
// id, indicator, geographic_coverage, time_start, time_end, units and source.
// Rows are read in primary key order.
type SQLLoader struct {
	Backend schema.DatabaseBackend
	ConnStr string
	Table   string
}

// Load implements contract.RecordLoader.
func (l *SQLLoader) Load(ctx context.Context) ([]schema.DatasetRecord, error) {
	if !contract.ValidIdentifier(l.Table) {
		return nil, fmt.Errorf("invalid source table name %q", l.Table)
	}
	db, err := contract.OpenDatabase(l.Backend, l.ConnStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return QueryRecords(ctx, db, l.Table)
}

// QueryRecords reads every catalog row of table through db.
// The table name must already be a validated identifier.
func QueryRecords(ctx context.Context, db *sql.DB, table string) ([]schema.DatasetRecord, error) {
	query := fmt.Sprintf(`SELECT id, indicator, geographic_coverage, time_start, time_end, units, source FROM %s ORDER BY id`, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.DatasetRecord
	var errs []error
	row := 0
	for rows.Next() {
		row++
		var id, indicator, geo, start, end, units, source sql.NullString
		if err := rows.Scan(&id, &indicator, &geo, &start, &end, &units, &source); err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", row, table, err)
		}
		rec := schema.DatasetRecord{
			ID:                 coerceString(nullable(id)),
			Indicator:          coerceString(nullable(indicator)),
			GeographicCoverage: coerceString(nullable(geo)),
			Units:              coerceString(nullable(units)),
			Source:             coerceString(nullable(source)),
		}
		errs = append(errs, setTimes(&rec, row, nullable(start), nullable(end))...)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}

func nullable(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
