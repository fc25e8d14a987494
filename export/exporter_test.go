package export_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rachita-nanda/social-media-performance-analytics/export"
	"github.com/rachita-nanda/social-media-performance-analytics/rfm"
	"github.com/rachita-nanda/social-media-performance-analytics/utils"
)

func sampleRows() []rfm.RFMRow {
	return []rfm.RFMRow{
		{
			EntityMetrics: rfm.EntityMetrics{EntityID: "c01", Recency: 19, Frequency: 1, Monetary: 100},
			RScore:        1, FScore: 1, MScore: 1,
			RFMScore: "111",
			Segment:  rfm.SegmentOthers,
		},
		{
			EntityMetrics: rfm.EntityMetrics{EntityID: "c10", Recency: 1, Frequency: 10, Monetary: 10000},
			RScore:        5, FScore: 5, MScore: 5,
			RFMScore: "555",
			Segment:  rfm.SegmentChampions,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a scored table", t, func() {
		rows := sampleRows()

		Convey("When encoded as CSV", func() {
			var buf bytes.Buffer
			err := export.WriteCSV(&buf, "campaign_id", rows)

			Convey("Then the header names the grouping field and metric columns", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
				So(lines[0], ShouldEqual,
					"campaign_id,Recency,Frequency,Monetary,R_Score,F_Score,M_Score,RFM_Score,Segment")
			})

			Convey("Then each entity is one row with no index column", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
				So(lines, ShouldHaveLength, 3)
				So(lines[1], ShouldEqual, "c01,19,1,100,1,1,1,111,Others")
				So(lines[2], ShouldEqual, "c10,1,10,10000,5,5,5,555,Champions")
			})
		})

		Convey("When encoded twice", func() {
			var first, second bytes.Buffer
			err1 := export.WriteCSV(&first, "campaign_id", rows)
			err2 := export.WriteCSV(&second, "campaign_id", rows)

			Convey("Then the output bytes are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Bytes(), ShouldResemble, second.Bytes())
			})
		})
	})
}

func TestCSVExporter(t *testing.T) {
	logger := utils.NewLoggerWithWriter(io.Discard, false)

	Convey("Given an exporter with archiving enabled", t, func() {
		dir := t.TempDir()
		exporter := export.NewCSVExporter(dir, "campaign_id", true, logger)

		Convey("When the table is written", func() {
			err := exporter.WriteTable(sampleRows())

			Convey("Then the CSV lands under the export directory", func() {
				So(err, ShouldBeNil)
				So(exporter.FileName(), ShouldEqual, filepath.Join(dir, "rfm_campaigns.csv"))
				data, readErr := os.ReadFile(exporter.FileName())
				So(readErr, ShouldBeNil)
				So(strings.HasPrefix(string(data), "campaign_id,"), ShouldBeTrue)
			})

			Convey("Then the snappy archive decompresses to the same bytes", func() {
				So(err, ShouldBeNil)
				csvData, readErr := os.ReadFile(exporter.FileName())
				So(readErr, ShouldBeNil)
				decoded, archiveErr := export.ReadArchive(exporter.FileName() + ".snappy")
				So(archiveErr, ShouldBeNil)
				So(decoded, ShouldResemble, csvData)
			})
		})

		Convey("When the table is written twice", func() {
			So(exporter.WriteTable(sampleRows()), ShouldBeNil)
			first, err := os.ReadFile(exporter.FileName())
			So(err, ShouldBeNil)

			So(exporter.WriteTable(sampleRows()), ShouldBeNil)
			second, err := os.ReadFile(exporter.FileName())
			So(err, ShouldBeNil)

			Convey("Then the export is overwritten with identical bytes", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given an exporter without archiving", t, func() {
		dir := t.TempDir()
		exporter := export.NewCSVExporter(dir, "customer_id", false, logger)

		Convey("When the table is written", func() {
			err := exporter.WriteTable(sampleRows())

			Convey("Then no archive is produced and the name follows the field", func() {
				So(err, ShouldBeNil)
				So(exporter.FileName(), ShouldEqual, filepath.Join(dir, "rfm_customers.csv"))
				_, statErr := os.Stat(exporter.FileName() + ".snappy")
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
