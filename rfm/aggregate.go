package rfm

import (
	"fmt"
	"sort"
	"time"
)

// dateLayouts are the accepted formats for the raw date column, tried in
// order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ComputeRFM groups records by entity and computes the raw Recency,
// Frequency and Monetary metrics against a snapshot date of
// max(date over all records) + 1 day. The snapshot offset guarantees
// Recency >= 1 even for the most recently active entity.
//
// The returned metrics are ordered by ascending entity id so that rank
// tie-breaks downstream are reproducible regardless of map iteration order.
// Duplicate records are not deduplicated; every row counts toward Frequency
// and Monetary.
func ComputeRFM(records []PerformanceRecord) ([]EntityMetrics, time.Time, error) {
	if len(records) == 0 {
		return nil, time.Time{}, ErrEmptyInput
	}

	type entityGroup struct {
		lastDate time.Time
		count    int
		revenue  float64
	}

	groups := make(map[string]*entityGroup)
	var maxDate time.Time

	for _, rec := range records {
		ts, ok := parseDate(rec.Date)
		if !ok {
			return nil, time.Time{}, &MalformedDateError{RecordID: rec.RecordID, Value: rec.Date}
		}

		g := groups[rec.EntityID]
		if g == nil {
			g = &entityGroup{}
			groups[rec.EntityID] = g
		}

		if ts.After(g.lastDate) {
			g.lastDate = ts
		}
		g.count++
		g.revenue += rec.Revenue

		if ts.After(maxDate) {
			maxDate = ts
		}
	}

	snapshot := maxDate.AddDate(0, 0, 1)

	entityIDs := make([]string, 0, len(groups))
	for id := range groups {
		entityIDs = append(entityIDs, id)
	}
	sort.Strings(entityIDs)

	metrics := make([]EntityMetrics, 0, len(entityIDs))
	for _, id := range entityIDs {
		g := groups[id]
		metrics = append(metrics, EntityMetrics{
			EntityID:  id,
			Recency:   int(snapshot.Sub(g.lastDate) / (24 * time.Hour)),
			Frequency: g.count,
			Monetary:  g.revenue,
		})
	}

	return metrics, snapshot, nil
}

// AttachScores ranks the full set of entities on each metric and attaches
// the quintile scores and the composite score string. Recency is scored
// inverted (fewer days is better); Frequency and Monetary score higher for
// larger values.
func AttachScores(metrics []EntityMetrics) ([]RFMRow, error) {
	recency := make([]float64, len(metrics))
	frequency := make([]float64, len(metrics))
	monetary := make([]float64, len(metrics))
	for i, m := range metrics {
		recency[i] = float64(m.Recency)
		frequency[i] = float64(m.Frequency)
		monetary[i] = m.Monetary
	}

	rScores, err := QuintileScores(recency, true)
	if err != nil {
		return nil, fmt.Errorf("scoring Recency: %w", err)
	}
	fScores, err := QuintileScores(frequency, false)
	if err != nil {
		return nil, fmt.Errorf("scoring Frequency: %w", err)
	}
	mScores, err := QuintileScores(monetary, false)
	if err != nil {
		return nil, fmt.Errorf("scoring Monetary: %w", err)
	}

	rows := make([]RFMRow, len(metrics))
	for i, m := range metrics {
		rows[i] = RFMRow{
			EntityMetrics: m,
			RScore:        rScores[i],
			FScore:        fScores[i],
			MScore:        mScores[i],
			RFMScore:      fmt.Sprintf("%d%d%d", rScores[i], fScores[i], mScores[i]),
		}
	}
	return rows, nil
}
