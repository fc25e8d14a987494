package models

import (
	"time"
)

// Run statuses recorded in the journal.
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// RunLog is one entry of the pipeline run journal.
type RunLog struct {
	ID                   string    `json:"id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"` // in_progress, success, failed
	RecordsProcessed     int       `json:"records_processed"`
	EntitiesScored       int       `json:"entities_scored"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// RunLogRepository records pipeline runs and their outcomes.
type RunLogRepository interface {
	// CreateRunLogTable creates the journal table if missing.
	CreateRunLogTable() error

	// CreateEntry records a newly started run.
	CreateEntry(id string, startTime time.Time) error

	// MarkSuccess finalizes a run that completed.
	MarkSuccess(id string, endTime time.Time, recordsProcessed, entitiesScored int) error

	// MarkFailure finalizes a run that failed.
	MarkFailure(id string, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun returns the most recent successful run, or nil
	// if there is none.
	GetLastSuccessfulRun() (*RunLog, error)

	// GetRecentRuns returns up to limit runs, newest first.
	GetRecentRuns(limit int) ([]RunLog, error)
}
