package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
)

// Table names for run history.
const (
	analysisRunsTable       = "sedwarp_analysis_runs"
	alignmentsTable         = "sedwarp_alignments"
	candidateDistancesTable = "sedwarp_candidate_distances"
)

// analysisTables lists the run history tables in dependency order.
var analysisTables = []string{analysisRunsTable, alignmentsTable, candidateDistancesTable}

// AnalysisStoreImpl implements the AnalysisStore interface on a SQL database.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore opens the run history store and applies pending migrations.
// The none backend yields a store that records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	switch backend {
	case schema.NoneBackend:
		return &AnalysisStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported analysis backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// table returns the quoted name of a run history table.
func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginAnalysis creates a new run and returns its ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, as.table(analysisRunsTable))
	args := []any{runUUID, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		err = as.db.QueryRow(rebind(query, as.backend)+" RETURNING analysis_id", args...).Scan(&analysisID)
	} else {
		var result sql.Result
		if result, err = as.db.Exec(query, args...); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis stores the end time, duration and item count of a run.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalItems int) error {
	if as.disabled() {
		return nil
	}

	var start nullTime
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = ?`, as.table(analysisRunsTable)), as.backend)
	if err := as.db.QueryRow(query, analysisID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_items_aligned = ? WHERE analysis_id = ?`,
		as.table(analysisRunsTable)), as.backend)
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalItems, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordAlignment stores the outcome of one aligned data file.
func (as *AnalysisStoreImpl) RecordAlignment(analysisID int64, r schema.AlignmentRecord) error {
	if as.disabled() {
		return nil
	}

	query := rebind(fmt.Sprintf(`INSERT INTO %s (analysis_id, data_file, core, variable, reference, analysis_time,
		simple_distance, best_distance, target_time, tie_count, data_points, target_points, path_length, fit_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, as.table(alignmentsTable)), as.backend)

	_, err := as.db.Exec(query,
		analysisID, r.DataFile, r.Core, r.Variable, r.Reference, formatTime(r.AnalysisTime, as.backend),
		r.SimpleDistance, r.BestDistance, r.TargetTime, r.TieCount, r.DataPoints, r.TargetPoints, r.PathLength, r.FitLabel)
	if err != nil {
		return fmt.Errorf("failed to insert alignment for %s: %w", r.DataFile, err)
	}
	return nil
}

// RecordCandidates stores the swept distance table of one data file in a single transaction.
func (as *AnalysisStoreImpl) RecordCandidates(analysisID int64, dataFile string, entries []schema.DistanceEntry) error {
	if as.disabled() || len(entries) == 0 {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(rebind(fmt.Sprintf(`INSERT INTO %s (analysis_id, data_file, candidate_time, distance) VALUES (?, ?, ?, ?)`,
		as.table(candidateDistancesTable)), as.backend))
	if err != nil {
		return fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.Exec(analysisID, dataFile, e.Time, e.Distance); err != nil {
			return fmt.Errorf("failed to insert candidate %g for %s: %w", e.Time, dataFile, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns run counts, run times and per-table row counts.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := as.table(analysisRunsTable)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest nullTime
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime, status.OldestRunTime = last.Time, oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_items_aligned), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalItemsAligned); err != nil {
			return status, fmt.Errorf("failed to get total items aligned: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns returns every run ordered by ID.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, start_time, end_time, run_duration_ms, total_items_aligned, config_params
		FROM %s ORDER BY analysis_id`, as.table(analysisRunsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var (
			record     schema.AnalysisRunRecord
			start, end nullTime
		)
		if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &start, &end,
			&record.RunDurationMs, &record.TotalItemsAligned, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.Ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllAlignments returns every recorded alignment ordered by run and file.
func (as *AnalysisStoreImpl) GetAllAlignments() ([]schema.AlignmentRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, data_file, core, variable, reference, analysis_time,
		simple_distance, best_distance, target_time, tie_count, data_points, target_points, path_length, fit_label
		FROM %s ORDER BY analysis_id, data_file`, as.table(alignmentsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AlignmentRecord
	for rows.Next() {
		var (
			r  schema.AlignmentRecord
			at nullTime
		)
		if err := rows.Scan(&r.AnalysisID, &r.DataFile, &r.Core, &r.Variable, &r.Reference, &at,
			&r.SimpleDistance, &r.BestDistance, &r.TargetTime, &r.TieCount,
			&r.DataPoints, &r.TargetPoints, &r.PathLength, &r.FitLabel); err != nil {
			return nil, fmt.Errorf("failed to scan alignment: %w", err)
		}
		r.AnalysisTime = at.Time
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alignments: %w", err)
	}
	return results, nil
}

// GetAllCandidateDistances returns every swept distance ordered by run, file and time.
func (as *AnalysisStoreImpl) GetAllCandidateDistances() ([]schema.CandidateDistanceRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, data_file, candidate_time, distance
		FROM %s ORDER BY analysis_id, data_file, candidate_time`, as.table(candidateDistancesTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate distances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CandidateDistanceRecord
	for rows.Next() {
		var r schema.CandidateDistanceRecord
		if err := rows.Scan(&r.AnalysisID, &r.DataFile, &r.CandidateTime, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan candidate distance: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate distances: %w", err)
	}
	return results, nil
}
