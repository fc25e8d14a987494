package rfm

import (
	"fmt"
	"time"

	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

// RecordSource supplies the raw performance records for one pipeline run.
type RecordSource interface {
	// FetchRecords returns every raw record in a deterministic order.
	FetchRecords() ([]PerformanceRecord, error)
}

// ScoreRepository persists the scored table.
type ScoreRepository interface {
	// SaveScores stores the full scored table for the run.
	SaveScores(rows []RFMRow) error
}

// TableSink receives the final scored table (CSV export, etc).
type TableSink interface {
	// WriteTable emits the full scored table.
	WriteTable(rows []RFMRow) error
}

// RunWithCustomConfig executes the full RFM pipeline: fetch raw records,
// aggregate per-entity metrics, attach quintile scores, classify segments,
// then persist through the repository and every sink. Any failure aborts
// the run before anything is written; the output is either the complete
// scored table or nothing.
func RunWithCustomConfig(
	source RecordSource,
	repository ScoreRepository,
	sinks []TableSink,
	logger *utils.Logger,
	config RFMConfig) (*Result, error) {

	startTime := time.Now()

	// 1. Fetch the raw performance records
	logger.Info("Fetching performance records (grouping by %s)", config.EntityField)
	records, err := source.FetchRecords()
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	logger.Info("Fetched %d performance records", len(records))

	// 2. Aggregate per-entity RFM metrics
	aggregateStart := time.Now()
	metrics, snapshot, err := ComputeRFM(records)
	if err != nil {
		return nil, fmt.Errorf("aggregating metrics: %w", err)
	}
	logger.Info("Aggregated %d entities in %v (snapshot date %s)",
		len(metrics), time.Since(aggregateStart), snapshot.Format("2006-01-02"))

	// 3. Attach quintile scores
	rows, err := AttachScores(metrics)
	if err != nil {
		return nil, fmt.Errorf("attaching scores: %w", err)
	}

	// 4. Classify segments and stamp the calculation date
	calculationDate := time.Now()
	for i := range rows {
		rows[i].Segment = Classify(rows[i].RScore, rows[i].FScore, rows[i].MScore)
		rows[i].CalculationDate = calculationDate
	}
	logger.Debug("Segments assigned for %d entities", len(rows))

	// 5. Persist the scored table
	saveStart := time.Now()
	if err := repository.SaveScores(rows); err != nil {
		return nil, fmt.Errorf("saving scores: %w", err)
	}
	for _, sink := range sinks {
		if err := sink.WriteTable(rows); err != nil {
			return nil, fmt.Errorf("writing scored table: %w", err)
		}
	}
	logger.Info("Scored table persisted in %v", time.Since(saveStart))

	logger.Info("RFM computation finished. Total time: %v", time.Since(startTime))
	return &Result{
		Rows:            rows,
		RecordCount:     len(records),
		SnapshotDate:    snapshot,
		CalculationDate: calculationDate,
	}, nil
}

// Run executes the RFM pipeline with the default configuration.
func Run(source RecordSource, repository ScoreRepository, sinks []TableSink, logger *utils.Logger) (*Result, error) {
	return RunWithCustomConfig(source, repository, sinks, logger, DefaultConfig())
}
