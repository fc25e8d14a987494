package models

import (
	"database/sql"
	"fmt"
	"time"
)

// MySQLRunLogRepository implements RunLogRepository on the analytics
// database.
type MySQLRunLogRepository struct {
	db *sql.DB
}

// NewMySQLRunLogRepository creates a run journal over the analytics
// database connection.
func NewMySQLRunLogRepository(db *sql.DB) *MySQLRunLogRepository {
	return &MySQLRunLogRepository{db: db}
}

// CreateRunLogTable creates the rfm_runs table if it does not exist yet.
func (r *MySQLRunLogRepository) CreateRunLogTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS rfm_runs (
			id CHAR(36) NOT NULL PRIMARY KEY,
			start_time DATETIME NOT NULL,
			end_time DATETIME NULL,
			status VARCHAR(16) NOT NULL,
			records_processed INT NOT NULL DEFAULT 0,
			entities_scored INT NOT NULL DEFAULT 0,
			error_message TEXT,
			execution_time_seconds DOUBLE NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("creating rfm_runs table: %w", err)
	}
	return nil
}

// CreateEntry records a newly started run.
func (r *MySQLRunLogRepository) CreateEntry(id string, startTime time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO rfm_runs (id, start_time, status)
		VALUES (?, ?, ?)
	`, id, startTime, RunStatusInProgress)
	if err != nil {
		return fmt.Errorf("creating run journal entry: %w", err)
	}
	return nil
}

// MarkSuccess finalizes a run that completed.
func (r *MySQLRunLogRepository) MarkSuccess(id string, endTime time.Time, recordsProcessed, entitiesScored int) error {
	result, err := r.db.Exec(`
		UPDATE rfm_runs
		SET end_time = ?,
			status = ?,
			records_processed = ?,
			entities_scored = ?,
			execution_time_seconds = TIMESTAMPDIFF(MICROSECOND, start_time, ?) / 1000000
		WHERE id = ?
	`, endTime, RunStatusSuccess, recordsProcessed, entitiesScored, endTime, id)
	if err != nil {
		return fmt.Errorf("updating run journal entry: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found in journal", id)
	}
	return nil
}

// MarkFailure finalizes a run that failed.
func (r *MySQLRunLogRepository) MarkFailure(id string, endTime time.Time, errorMessage string) error {
	_, err := r.db.Exec(`
		UPDATE rfm_runs
		SET end_time = ?,
			status = ?,
			error_message = ?,
			execution_time_seconds = TIMESTAMPDIFF(MICROSECOND, start_time, ?) / 1000000
		WHERE id = ?
	`, endTime, RunStatusFailed, errorMessage, endTime, id)
	if err != nil {
		return fmt.Errorf("updating run journal entry: %w", err)
	}
	return nil
}

// GetLastSuccessfulRun returns the most recent successful run, or nil if
// there is none.
func (r *MySQLRunLogRepository) GetLastSuccessfulRun() (*RunLog, error) {
	row := r.db.QueryRow(`
		SELECT id, start_time, end_time, status, records_processed, entities_scored,
			IFNULL(error_message, ''), execution_time_seconds
		FROM rfm_runs
		WHERE status = ?
		ORDER BY end_time DESC
		LIMIT 1
	`, RunStatusSuccess)

	var run RunLog
	err := row.Scan(
		&run.ID,
		&run.StartTime,
		&run.EndTime,
		&run.Status,
		&run.RecordsProcessed,
		&run.EntitiesScored,
		&run.ErrorMessage,
		&run.ExecutionTimeSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last successful run: %w", err)
	}
	return &run, nil
}

// GetRecentRuns returns up to limit runs, newest first.
func (r *MySQLRunLogRepository) GetRecentRuns(limit int) ([]RunLog, error) {
	rows, err := r.db.Query(`
		SELECT id, start_time, IFNULL(end_time, start_time), status, records_processed,
			entities_scored, IFNULL(error_message, ''), execution_time_seconds
		FROM rfm_runs
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	var runs []RunLog
	for rows.Next() {
		var run RunLog
		err := rows.Scan(
			&run.ID,
			&run.StartTime,
			&run.EndTime,
			&run.Status,
			&run.RecordsProcessed,
			&run.EntitiesScored,
			&run.ErrorMessage,
			&run.ExecutionTimeSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run journal row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run journal rows: %w", err)
	}

	return runs, nil
}
