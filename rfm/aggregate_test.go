package rfm_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rachita-nanda/social-media-performance-analytics/rfm"
)

// campaignRecords builds two records per campaign for ten campaigns, with
// later campaigns more recent, more frequent and higher-spending.
func campaignRecords() []rfm.PerformanceRecord {
	var records []rfm.PerformanceRecord
	id := 0
	for c := 1; c <= 10; c++ {
		for n := 0; n < c; n++ {
			id++
			records = append(records, rfm.PerformanceRecord{
				RecordID: fmt.Sprintf("%d", id),
				EntityID: fmt.Sprintf("c%02d", c),
				Date:     fmt.Sprintf("2024-06-%02d", c+n),
				Revenue:  float64(100 * c),
			})
		}
	}
	return records
}

func TestComputeRFM(t *testing.T) {
	Convey("Given records for three campaigns", t, func() {
		records := []rfm.PerformanceRecord{
			{RecordID: "1", EntityID: "beta", Date: "2024-06-01", Revenue: 100},
			{RecordID: "2", EntityID: "alpha", Date: "2024-06-10", Revenue: 250},
			{RecordID: "3", EntityID: "beta", Date: "2024-06-05", Revenue: 50},
			{RecordID: "4", EntityID: "gamma", Date: "2024-05-20", Revenue: 0},
		}

		Convey("When aggregated", func() {
			metrics, snapshot, err := rfm.ComputeRFM(records)

			Convey("Then the snapshot date is one day past the latest record", func() {
				So(err, ShouldBeNil)
				So(snapshot.Format("2006-01-02"), ShouldEqual, "2024-06-11")
			})

			Convey("Then entities come back sorted by id", func() {
				So(err, ShouldBeNil)
				So(len(metrics), ShouldEqual, 3)
				So(metrics[0].EntityID, ShouldEqual, "alpha")
				So(metrics[1].EntityID, ShouldEqual, "beta")
				So(metrics[2].EntityID, ShouldEqual, "gamma")
			})

			Convey("Then Recency counts days from the entity's last record", func() {
				So(err, ShouldBeNil)
				So(metrics[0].Recency, ShouldEqual, 1)  // alpha: 2024-06-10
				So(metrics[1].Recency, ShouldEqual, 6)  // beta: 2024-06-05
				So(metrics[2].Recency, ShouldEqual, 22) // gamma: 2024-05-20
			})

			Convey("Then Frequency and Monetary aggregate per entity", func() {
				So(err, ShouldBeNil)
				So(metrics[1].Frequency, ShouldEqual, 2)
				So(metrics[1].Monetary, ShouldEqual, 150)
				So(metrics[2].Frequency, ShouldEqual, 1)
				So(metrics[2].Monetary, ShouldEqual, 0)
			})

			Convey("Then the metric invariants hold for every entity", func() {
				So(err, ShouldBeNil)
				for _, m := range metrics {
					So(m.Recency, ShouldBeGreaterThanOrEqualTo, 0)
					So(m.Frequency, ShouldBeGreaterThanOrEqualTo, 1)
					So(m.Monetary, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})
		})

		Convey("When aggregated twice", func() {
			first, _, err1 := rfm.ComputeRFM(records)
			second, _, err2 := rfm.ComputeRFM(records)

			Convey("Then the output is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldResemble, second)
			})
		})
	})

	Convey("Given duplicate records with the same record id", t, func() {
		records := []rfm.PerformanceRecord{
			{RecordID: "1", EntityID: "alpha", Date: "2024-06-01", Revenue: 100},
			{RecordID: "1", EntityID: "alpha", Date: "2024-06-01", Revenue: 100},
		}

		Convey("When aggregated", func() {
			metrics, _, err := rfm.ComputeRFM(records)

			Convey("Then both rows count; no deduplication happens", func() {
				So(err, ShouldBeNil)
				So(metrics[0].Frequency, ShouldEqual, 2)
				So(metrics[0].Monetary, ShouldEqual, 200)
			})
		})
	})

	Convey("Given datetime-formatted dates", t, func() {
		records := []rfm.PerformanceRecord{
			{RecordID: "1", EntityID: "alpha", Date: "2024-06-10 15:30:00", Revenue: 10},
			{RecordID: "2", EntityID: "beta", Date: "2024-06-09", Revenue: 10},
		}

		Convey("When aggregated", func() {
			metrics, _, err := rfm.ComputeRFM(records)

			Convey("Then Recency truncates to whole days", func() {
				So(err, ShouldBeNil)
				So(metrics[0].Recency, ShouldEqual, 1) // alpha: snapshot is exactly one day later
				So(metrics[1].Recency, ShouldEqual, 2) // beta: 2 days 15.5 hours, truncated
			})
		})
	})

	Convey("Given a record with an unparseable date", t, func() {
		records := []rfm.PerformanceRecord{
			{RecordID: "1", EntityID: "alpha", Date: "2024-06-01", Revenue: 100},
			{RecordID: "2", EntityID: "beta", Date: "June 2nd", Revenue: 100},
		}

		Convey("When aggregated", func() {
			_, _, err := rfm.ComputeRFM(records)

			Convey("Then it fails with MalformedDateError naming the record", func() {
				var malformed *rfm.MalformedDateError
				So(errors.As(err, &malformed), ShouldBeTrue)
				So(malformed.RecordID, ShouldEqual, "2")
				So(malformed.Value, ShouldEqual, "June 2nd")
			})
		})
	})

	Convey("Given no records", t, func() {
		Convey("When aggregated", func() {
			_, _, err := rfm.ComputeRFM(nil)

			Convey("Then it fails with ErrEmptyInput", func() {
				So(errors.Is(err, rfm.ErrEmptyInput), ShouldBeTrue)
			})
		})
	})
}

func TestAttachScores(t *testing.T) {
	Convey("Given aggregated metrics for ten campaigns", t, func() {
		metrics, _, err := rfm.ComputeRFM(campaignRecords())
		So(err, ShouldBeNil)
		So(len(metrics), ShouldEqual, 10)

		Convey("When scores are attached", func() {
			rows, err := rfm.AttachScores(metrics)

			Convey("Then every score is in 1..5", func() {
				So(err, ShouldBeNil)
				for _, row := range rows {
					So(row.RScore, ShouldBeBetweenOrEqual, 1, 5)
					So(row.FScore, ShouldBeBetweenOrEqual, 1, 5)
					So(row.MScore, ShouldBeBetweenOrEqual, 1, 5)
				}
			})

			Convey("Then Frequency values 1..10 score as paired quintiles", func() {
				So(err, ShouldBeNil)
				fScores := make([]int, len(rows))
				for i, row := range rows {
					fScores[i] = row.FScore
				}
				So(fScores, ShouldResemble, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5})
			})

			Convey("Then Recency scores invert: freshest entity scores highest", func() {
				So(err, ShouldBeNil)
				// campaign c10 has the most recent record
				So(rows[9].RScore, ShouldEqual, 5)
				So(rows[0].RScore, ShouldEqual, 1)
			})

			Convey("Then the composite concatenates R, F, M digits", func() {
				So(err, ShouldBeNil)
				for _, row := range rows {
					So(row.RFMScore, ShouldEqual,
						fmt.Sprintf("%d%d%d", row.RScore, row.FScore, row.MScore))
					So(len(row.RFMScore), ShouldEqual, 3)
				}
			})
		})
	})

	Convey("Given a single entity", t, func() {
		metrics := []rfm.EntityMetrics{
			{EntityID: "only", Recency: 0, Frequency: 100, Monetary: 5000},
		}

		Convey("When scores are attached", func() {
			_, err := rfm.AttachScores(metrics)

			Convey("Then it fails with InsufficientDataError", func() {
				var insufficient *rfm.InsufficientDataError
				So(errors.As(err, &insufficient), ShouldBeTrue)
			})
		})
	})
}
