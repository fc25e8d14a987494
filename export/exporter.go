package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"

	"github.com/rachita-nanda/social-media-performance-analytics/rfm"
	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

// CSVExporter writes the scored table to a CSV file under the export
// directory, overwriting the previous export. When archiving is enabled a
// snappy-compressed copy is written next to it.
type CSVExporter struct {
	dir         string
	entityField string
	archive     bool
	logger      *utils.Logger
}

// NewCSVExporter creates a CSV sink. entityField names the first column of
// the header (the grouping key of the table).
func NewCSVExporter(dir, entityField string, archive bool, logger *utils.Logger) *CSVExporter {
	return &CSVExporter{
		dir:         dir,
		entityField: entityField,
		archive:     archive,
		logger:      logger,
	}
}

// FileName returns the export path, e.g. reports/rfm_campaigns.csv for
// entity field campaign_id.
func (e *CSVExporter) FileName() string {
	name := strings.TrimSuffix(e.entityField, "_id")
	return filepath.Join(e.dir, fmt.Sprintf("rfm_%ss.csv", name))
}

// WriteTable writes the full scored table. Output bytes are deterministic
// for identical input, so re-running the pipeline on the same data
// overwrites the file with identical content.
func (e *CSVExporter) WriteTable(rows []rfm.RFMRow) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, e.entityField, rows); err != nil {
		return err
	}

	path := e.FileName()
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.logger.Info("Exported %d rows to %s", len(rows), path)

	if e.archive {
		archivePath := path + ".snappy"
		if err := os.WriteFile(archivePath, snappy.Encode(nil, buf.Bytes()), 0644); err != nil {
			return fmt.Errorf("writing archive %s: %w", archivePath, err)
		}
		e.logger.Debug("Archived export to %s", archivePath)
	}

	return nil
}

// WriteCSV encodes the scored table as UTF-8 CSV with a header row and no
// index column.
func WriteCSV(w io.Writer, entityField string, rows []rfm.RFMRow) error {
	writer := csv.NewWriter(w)

	header := []string{
		entityField,
		"Recency",
		"Frequency",
		"Monetary",
		"R_Score",
		"F_Score",
		"M_Score",
		"RFM_Score",
		"Segment",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.EntityID,
			strconv.Itoa(row.Recency),
			strconv.Itoa(row.Frequency),
			strconv.FormatFloat(row.Monetary, 'f', -1, 64),
			strconv.Itoa(row.RScore),
			strconv.Itoa(row.FScore),
			strconv.Itoa(row.MScore),
			row.RFMScore,
			string(row.Segment),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for entity %s: %w", row.EntityID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// ReadArchive decompresses a snappy archive written by the exporter.
func ReadArchive(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompressing archive %s: %w", path, err)
	}
	return decoded, nil
}
