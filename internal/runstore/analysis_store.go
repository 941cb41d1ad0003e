package runstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// Table names for run tracking.
const (
	analysisRunsTable = "redundant_analysis_runs"
	pairsTable        = "redundant_pairs"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// An empty SQLite connection string means the default file in the home directory.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	db, err := contract.OpenDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the run tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{pairsTable, getCreatePairsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for redundant_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				flagged_pairs INT NOT NULL DEFAULT 0,
				clusters INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				flagged_pairs INT NOT NULL DEFAULT 0,
				clusters INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_records INTEGER NOT NULL DEFAULT 0,
				flagged_pairs INTEGER NOT NULL DEFAULT 0,
				clusters INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreatePairsQuery returns the CREATE TABLE query for redundant_pairs.
func getCreatePairsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(pairsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				record_a VARCHAR(255) NOT NULL,
				record_b VARCHAR(255) NOT NULL,
				score DOUBLE NOT NULL,
				cluster_id INT,
				PRIMARY KEY (analysis_id, record_a, record_b)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				record_a TEXT NOT NULL,
				record_b TEXT NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				cluster_id INT,
				PRIMARY KEY (analysis_id, record_a, record_b)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				record_a TEXT NOT NULL,
				record_b TEXT NOT NULL,
				score REAL NOT NULL,
				cluster_id INTEGER,
				PRIMARY KEY (analysis_id, record_a, record_b)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	runUUID := uuid.NewString()

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, runUUID, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, runUUID, formatTime(startTime, as.backend), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert analysis run: %w", err)
		}
		analysisID, err = result.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary contract.RunSummary) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, contract.Placeholder(as.backend, 1))
	startTime, err := as.scanTime(as.db.QueryRow(query, analysisID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(
		`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_records = %s, flagged_pairs = %s, clusters = %s WHERE analysis_id = %s`,
		quotedTableName, as.placeholders(1, 1), as.placeholders(2, 1), as.placeholders(3, 1),
		as.placeholders(4, 1), as.placeholders(5, 1), as.placeholders(6, 1),
	)
	args := []any{formatTime(endTime, as.backend), durationMs, summary.TotalRecords, summary.FlaggedPairs, summary.Clusters, analysisID}
	if _, err := as.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordPairs stores the flagged pairs of a run in a single transaction.
// Pairs outside any cluster get a NULL cluster_id.
func (as *AnalysisStoreImpl) RecordPairs(analysisID int64, pairs []schema.RedundancyPair, clusterOf map[string]int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(pairs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, record_a, record_b, score, cluster_id) VALUES (%s)`,
		quoteTableName(pairsTable, as.backend), as.placeholders(1, 5))

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare pair insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range pairs {
		var clusterID any
		if id, ok := clusterOf[p.A]; ok && id > 0 {
			clusterID = id
		}
		if _, err := stmt.Exec(analysisID, p.A, p.B, p.Score, clusterID); err != nil {
			return fmt.Errorf("failed to insert pair (%s, %s): %w", p.A, p.B, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pairs: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		var err error
		status.LastRunTime, err = as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.OldestRunTime, err = as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		totals := fmt.Sprintf("SELECT COALESCE(SUM(total_records), 0), COALESCE(SUM(flagged_pairs), 0) FROM %s", runs)
		if err := as.db.QueryRow(totals).Scan(&status.TotalRecordsSeen, &status.TotalPairsFlagged); err != nil {
			return status, fmt.Errorf("failed to get run totals: %w", err)
		}
	}

	for _, table := range []string{analysisRunsTable, pairsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns retrieves all runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, start_time, end_time, run_duration_ms,
		total_records, flagged_pairs, clusters, config_params FROM %s ORDER BY analysis_id`,
		quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.TotalRecords, &record.FlaggedPairs, &record.Clusters, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalRecords, &record.FlaggedPairs, &record.Clusters, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllPairs retrieves every stored pair, ordered by run then pair.
func (as *AnalysisStoreImpl) GetAllPairs() ([]schema.PairRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, record_a, record_b, score, cluster_id FROM %s ORDER BY analysis_id, record_a, record_b`,
		quoteTableName(pairsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PairRecord
	for rows.Next() {
		var record schema.PairRecord
		if err := rows.Scan(&record.AnalysisID, &record.RecordA, &record.RecordB, &record.Score, &record.ClusterID); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairs: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, parsing the text form SQLite stores.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if as.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}

// placeholders returns n comma separated bind parameters starting at position from.
func (as *AnalysisStoreImpl) placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = contract.Placeholder(as.backend, from+i)
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// quoteTableName quotes a table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}
