package rfm

import (
	"database/sql"
	"fmt"

	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

// MySQLScoreRepository persists scored RFM rows in the analytics MySQL
// database.
type MySQLScoreRepository struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewMySQLScoreRepository creates a score repository over the analytics
// database connection.
func NewMySQLScoreRepository(db *sql.DB, logger *utils.Logger) *MySQLScoreRepository {
	return &MySQLScoreRepository{
		db:     db,
		logger: logger,
	}
}

// CreateScoresTable creates the rfm_scores table if it does not exist yet.
func (r *MySQLScoreRepository) CreateScoresTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS rfm_scores (
			entity_id VARCHAR(64) NOT NULL PRIMARY KEY,
			recency INT NOT NULL,
			frequency INT NOT NULL,
			monetary DOUBLE NOT NULL,
			r_score TINYINT NOT NULL,
			f_score TINYINT NOT NULL,
			m_score TINYINT NOT NULL,
			rfm_score CHAR(3) NOT NULL,
			segment VARCHAR(32) NOT NULL,
			calculation_date DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating rfm_scores table: %w", err)
	}
	return nil
}

// SaveScores stores the scored table transactionally. Each run overwrites
// the previous scores per entity; a failed transaction leaves the previous
// run's table intact.
func (r *MySQLScoreRepository) SaveScores(rows []RFMRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO rfm_scores
		(entity_id, recency, frequency, monetary, r_score, f_score, m_score, rfm_score, segment, calculation_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		recency = VALUES(recency),
		frequency = VALUES(frequency),
		monetary = VALUES(monetary),
		r_score = VALUES(r_score),
		f_score = VALUES(f_score),
		m_score = VALUES(m_score),
		rfm_score = VALUES(rfm_score),
		segment = VALUES(segment),
		calculation_date = VALUES(calculation_date)
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.Exec(
			row.EntityID,
			row.Recency,
			row.Frequency,
			row.Monetary,
			row.RScore,
			row.FScore,
			row.MScore,
			row.RFMScore,
			string(row.Segment),
			row.CalculationDate,
		)
		if err != nil {
			return fmt.Errorf("upserting scores for entity %s: %w", row.EntityID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing scores: %w", err)
	}

	r.logger.Info("Saved %d scored entities", len(rows))
	return nil
}

// GetLatestScores returns the scored table from the most recent run,
// ordered by entity id.
func (r *MySQLScoreRepository) GetLatestScores() ([]RFMRow, error) {
	rows, err := r.db.Query(`
		SELECT entity_id, recency, frequency, monetary, r_score, f_score, m_score, rfm_score, segment, calculation_date
		FROM rfm_scores
		ORDER BY entity_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying rfm_scores: %w", err)
	}
	defer rows.Close()

	var result []RFMRow
	for rows.Next() {
		var row RFMRow
		var segment string
		err := rows.Scan(
			&row.EntityID,
			&row.Recency,
			&row.Frequency,
			&row.Monetary,
			&row.RScore,
			&row.FScore,
			&row.MScore,
			&row.RFMScore,
			&segment,
			&row.CalculationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning rfm_scores row: %w", err)
		}
		row.Segment = Segment(segment)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rfm_scores rows: %w", err)
	}

	return result, nil
}

// GetSegmentDistribution returns entity counts per segment from the latest
// scored table.
func (r *MySQLScoreRepository) GetSegmentDistribution() (map[Segment]int, error) {
	rows, err := r.db.Query(`
		SELECT segment, COUNT(*)
		FROM rfm_scores
		GROUP BY segment
	`)
	if err != nil {
		return nil, fmt.Errorf("querying segment distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[Segment]int)
	for rows.Next() {
		var segment string
		var count int
		if err := rows.Scan(&segment, &count); err != nil {
			return nil, fmt.Errorf("scanning segment distribution: %w", err)
		}
		distribution[Segment(segment)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segment distribution: %w", err)
	}

	return distribution, nil
}
