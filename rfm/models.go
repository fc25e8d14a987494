package rfm

import (
	"time"
)

// PerformanceRecord is one raw performance event as yielded by the record
// source. Date keeps the raw string from the source; it is parsed during
// aggregation so that unparseable values surface as MalformedDateError.
type PerformanceRecord struct {
	RecordID string  // unique per-row identifier (performance_id)
	EntityID string  // grouping key (campaign_id by default)
	Date     string  // event date as stored in the source table
	Revenue  float64 // revenue_generated, non-negative
}

// EntityMetrics holds the raw RFM metrics for one entity.
type EntityMetrics struct {
	EntityID  string
	Recency   int     // days between the snapshot date and the entity's last record
	Frequency int     // number of records for the entity
	Monetary  float64 // total revenue across the entity's records
}

// RFMRow is one fully scored row of the output table.
type RFMRow struct {
	EntityMetrics
	RScore          int
	FScore          int
	MScore          int
	RFMScore        string // R, F and M score digits concatenated, e.g. "532"
	Segment         Segment
	CalculationDate time.Time
}

// Segment is a categorical label summarizing an entity's RFM profile.
type Segment string

// The closed set of segments produced by Classify.
const (
	SegmentChampions       Segment = "Champions"
	SegmentLoyalCustomers  Segment = "Loyal Customers"
	SegmentRecentCustomers Segment = "Recent Customers"
	SegmentAtRisk          Segment = "At Risk"
	SegmentOthers          Segment = "Others"
)

// RFMConfig contains the parameters of the RFM computation.
type RFMConfig struct {
	EntityField string // source column used as the grouping key
	SourceTable string // table holding the raw performance records
}

// DefaultConfig returns the RFM configuration matching the marketing
// analytics dataset this pipeline was built for.
func DefaultConfig() RFMConfig {
	return RFMConfig{
		EntityField: "campaign_id",
		SourceTable: "performance",
	}
}

// Result holds the outcome of one pipeline run.
type Result struct {
	Rows            []RFMRow
	RecordCount     int
	SnapshotDate    time.Time
	CalculationDate time.Time
}
