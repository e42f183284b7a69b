package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable   = "maintinsight_analysis_runs"
	scoredRecordsTable  = "maintinsight_scored_records"
	monthlyBucketsTable = "maintinsight_monthly_buckets"
)

// analysisTables lists the tracking tables in creation order.
var analysisTables = []string{analysisRunsTable, scoredRecordsTable, monthlyBucketsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("analysis store: %w", err)
	}

	// Create the table schemas
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range analysisTables {
		if _, err := db.Exec(getCreateAnalysisTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes holds the per-backend SQL types used by the tracking tables.
type columnTypes struct {
	autoID, bigint, integer, real, text, key, timestamp string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{
			autoID: "BIGINT AUTO_INCREMENT PRIMARY KEY", bigint: "BIGINT", integer: "INT",
			real: "DOUBLE", text: "TEXT", key: "VARCHAR(255)", timestamp: "DATETIME(6)",
		}
	case schema.PostgreSQLBackend:
		return columnTypes{
			autoID: "BIGSERIAL PRIMARY KEY", bigint: "BIGINT", integer: "INT",
			real: "DOUBLE PRECISION", text: "TEXT", key: "TEXT", timestamp: "TIMESTAMPTZ",
		}
	default: // SQLite
		return columnTypes{
			autoID: "INTEGER PRIMARY KEY AUTOINCREMENT", bigint: "INTEGER", integer: "INTEGER",
			real: "REAL", text: "TEXT", key: "TEXT", timestamp: "TEXT",
		}
	}
}

// getCreateAnalysisTableQuery returns the CREATE TABLE query for one tracking table.
func getCreateAnalysisTableQuery(table string, backend schema.DatabaseBackend) string {
	t := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case analysisRunsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s,
				batch_id %s NOT NULL,
				source %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_records %s NOT NULL DEFAULT 0,
				total_units %s NOT NULL DEFAULT 0,
				high_risk_units %s NOT NULL DEFAULT 0,
				total_cost %s NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, t.autoID, t.key, t.text, t.timestamp, t.timestamp, t.integer,
			t.integer, t.integer, t.integer, t.real, t.text)

	case scoredRecordsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				row_num %s NOT NULL,
				unit_id %s NOT NULL,
				record_date %s NOT NULL,
				weekly_score %s NOT NULL,
				predicted_risk %s NOT NULL,
				risk_confidence %s NOT NULL,
				risk_level %s NOT NULL,
				estimated_repair_cost %s NOT NULL,
				PRIMARY KEY (analysis_id, row_num)
			);
		`, quoted, t.bigint, t.integer, t.key, t.key, t.real, t.integer, t.real, t.key, t.real)

	default: // monthlyBucketsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				bucket_month %s NOT NULL,
				avg_failure_probability %s NOT NULL,
				total_estimated_cost %s NOT NULL,
				avg_weekly_score %s NOT NULL,
				record_count %s NOT NULL,
				PRIMARY KEY (analysis_id, bucket_month)
			);
		`, quoted, t.bigint, t.key, t.real, t.real, t.real, t.integer)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(batchID, source string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	ph := strings.Join(placeholders(as.backend, 4), ", ")
	args := []any{batchID, source, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (batch_id, source, start_time, config_params) VALUES (%s) RETURNING analysis_id`, quotedTableName, ph)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (batch_id, source, start_time, config_params) VALUES (%s)`, quotedTableName, ph)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholders(as.backend, 1)[0])

	start := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(query, analysisID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("analysis %d has no start_time", analysisID)
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(*startTime).Milliseconds()

	ph := placeholders(as.backend, 7)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_records = %s, total_units = %s,
		high_risk_units = %s, total_cost = %s WHERE analysis_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4], ph[5], ph[6])
	args := []any{
		formatTime(endTime, as.backend), durationMs, summary.TotalRecords, summary.TotalUnits,
		summary.HighRiskUnits, summary.TotalCost, analysisID,
	}

	if _, err := as.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordScoredRecords stores every scored record of a run in one transaction.
func (as *AnalysisStoreImpl) RecordScoredRecords(analysisID int64, records []schema.ScoredRecord) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, row_num, unit_id, record_date, weekly_score,
		                predicted_risk, risk_confidence, risk_level, estimated_repair_cost)
		VALUES (%s)
	`, quoteTableName(scoredRecordsTable, as.backend), strings.Join(placeholders(as.backend, 9), ", "))

	return as.insertAll(query, len(records), func(i int) []any {
		r := records[i]
		return []any{
			analysisID, r.Row, r.UnitID, r.RecordDate, r.WeeklyScore,
			int(r.PredictedRisk), r.RiskConfidence, r.RiskLevel, r.EstimatedRepairCost,
		}
	})
}

// RecordMonthlyBuckets stores the monthly aggregates of a run in one transaction.
func (as *AnalysisStoreImpl) RecordMonthlyBuckets(analysisID int64, buckets []schema.MonthlyBucket) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(buckets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, bucket_month, avg_failure_probability,
		                total_estimated_cost, avg_weekly_score, record_count)
		VALUES (%s)
	`, quoteTableName(monthlyBucketsTable, as.backend), strings.Join(placeholders(as.backend, 6), ", "))

	return as.insertAll(query, len(buckets), func(i int) []any {
		b := buckets[i]
		return []any{
			analysisID, b.YearMonth, b.AvgFailureProbability,
			b.TotalEstimatedCost, b.AvgWeeklyScore, b.RecordCount,
		}
	})
}

// insertAll runs a prepared insert for n rows inside a transaction.
func (as *AnalysisStoreImpl) insertAll(query string, n int, args func(int) []any) error {
	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range n {
		if _, err := stmt.Exec(args(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
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

	runsTable := quoteTableName(analysisRunsTable, as.backend)

	runsQuery := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_records), 0) FROM %s", runsTable)
	if err := as.db.QueryRow(runsQuery).Scan(&status.TotalRuns, &status.TotalRecordsAnalyzed); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runsTable)
		last := timeScanner{backend: as.backend}
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		// Get oldest run time
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runsTable)
		oldest := timeScanner{backend: as.backend}
		if err := as.db.QueryRow(oldestRunQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	// Get table sizes
	for _, table := range analysisTables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		var count int64
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, batch_id, source, start_time, end_time, run_duration_ms,
		total_records, total_units, high_risk_units, total_cost, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start := timeScanner{backend: as.backend}
		end := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.AnalysisID, &record.BatchID, &record.Source, start.dest(), end.dest(),
			&record.RunDurationMs, &record.TotalRecords, &record.TotalUnits, &record.HighRiskUnits,
			&record.TotalCost, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllScoredRecords retrieves all stored scored records.
func (as *AnalysisStoreImpl) GetAllScoredRecords() ([]schema.ScoredRecordRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, row_num, unit_id, record_date, weekly_score,
		predicted_risk, risk_confidence, risk_level, estimated_repair_cost
		FROM %s ORDER BY analysis_id, row_num`, quoteTableName(scoredRecordsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScoredRecordRecord
	for rows.Next() {
		var r schema.ScoredRecordRecord
		if err := rows.Scan(&r.AnalysisID, &r.RowNumber, &r.UnitID, &r.RecordDate, &r.WeeklyScore,
			&r.PredictedRisk, &r.RiskConfidence, &r.RiskLevel, &r.EstimatedRepairCost); err != nil {
			return nil, fmt.Errorf("failed to scan scored record: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scored records: %w", err)
	}
	return results, nil
}

// GetAllMonthlyBuckets retrieves all stored monthly buckets.
func (as *AnalysisStoreImpl) GetAllMonthlyBuckets() ([]schema.MonthlyBucketRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, bucket_month, avg_failure_probability,
		total_estimated_cost, avg_weekly_score, record_count
		FROM %s ORDER BY analysis_id, bucket_month`, quoteTableName(monthlyBucketsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly buckets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MonthlyBucketRecord
	for rows.Next() {
		var b schema.MonthlyBucketRecord
		if err := rows.Scan(&b.AnalysisID, &b.YearMonth, &b.AvgFailureProbability,
			&b.TotalEstimatedCost, &b.AvgWeeklyScore, &b.RecordCount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bucket: %w", err)
		}
		results = append(results, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly buckets: %w", err)
	}
	return results, nil
}
