package rfm

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

// MySQLRecordSource reads raw performance records from the source MySQL
// database.
type MySQLRecordSource struct {
	db     *sql.DB
	config RFMConfig
	logger *utils.Logger
}

// NewMySQLRecordSource creates a record source over the given source
// database connection.
func NewMySQLRecordSource(db *sql.DB, config RFMConfig, logger *utils.Logger) *MySQLRecordSource {
	return &MySQLRecordSource{
		db:     db,
		config: config,
		logger: logger,
	}
}

// FetchRecords reads the whole performance table. The result set columns
// are checked against the required schema before any row is scanned, so a
// renamed or missing column fails with SchemaError instead of producing
// half-filled records. Rows are returned ordered by record id to keep the
// input order stable across runs.
func (s *MySQLRecordSource) FetchRecords() ([]PerformanceRecord, error) {
	s.logger.Debug("Querying table %s", s.config.SourceTable)

	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %s", s.config.SourceTable))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.config.SourceTable, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}

	colIndex := make(map[string]int, len(cols))
	for i, name := range cols {
		colIndex[name] = i
	}

	required := []string{"performance_id", s.config.EntityField, "date", "revenue_generated"}
	for _, name := range required {
		if _, ok := colIndex[name]; !ok {
			return nil, &SchemaError{Column: name}
		}
	}

	var records []PerformanceRecord
	for rows.Next() {
		values := make([]sql.RawBytes, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning performance row: %w", err)
		}

		revenueRaw := string(values[colIndex["revenue_generated"]])
		revenue, err := strconv.ParseFloat(revenueRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("record %s: invalid revenue_generated %q: %w",
				string(values[colIndex["performance_id"]]), revenueRaw, err)
		}

		records = append(records, PerformanceRecord{
			RecordID: string(values[colIndex["performance_id"]]),
			EntityID: string(values[colIndex[s.config.EntityField]]),
			Date:     string(values[colIndex["date"]]),
			Revenue:  revenue,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating performance rows: %w", err)
	}

	sortRecordsByID(records)

	s.logger.Info("Read %d rows from %s", len(records), s.config.SourceTable)
	return records, nil
}

// sortRecordsByID orders records by record id, numerically when both ids
// are numeric so that "10" sorts after "2".
func sortRecordsByID(records []PerformanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := strconv.ParseInt(records[i].RecordID, 10, 64)
		b, errB := strconv.ParseInt(records[j].RecordID, 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return records[i].RecordID < records[j].RecordID
	})
}
