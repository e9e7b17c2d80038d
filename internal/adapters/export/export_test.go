package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/carelog/internal/adapters/export"
	"github.com/okian/carelog/internal/domain/pipeline"
	"github.com/okian/carelog/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() types.Tables {
	return types.Tables{
		Events: []types.EventRow{},
		Labs: []types.LabRow{
			{Timestamp: "2025-08-19T09:12:00Z", Date: "2025-08-19", Marker: "LDL", Value: 165},
		},
		Sleep: []types.SleepRow{
			{Date: "2025-08-20", Timestamp: "2025-08-20T22:00:00Z", Bedtime: "23:45", Waketime: "06:30", SleepMinutes: 405, SleepHours: 6.75, Source: "Advik"},
		},
		Activity:   []types.ActivityRow{},
		Biomarkers: []types.BiomarkerRow{},
		Decisions: []types.DecisionRow{
			{Timestamp: "", Date: "", DecisionText: "Start statin", By: "Warren", Role: "Physician",
				RationaleSnippets: []string{"09:12 Ruby: LDL 165", "14:30 Warren: because LDL"}},
		},
		Effort: []types.EffortRow{
			{Role: "Physician", Interactions: 2, EstMinutes: 24, EstHours: 0.4, PctShare: 100},
		},
		Summary: pipeline.Summary{Messages: 3},
	}
}

func TestRows(t *testing.T) {
	Convey("Given flattened tables", t, func() {
		tables := sample()

		Convey("Then sleep rows follow the column order", func() {
			header, rows, err := export.Rows(tables, types.TableSleep)
			So(err, ShouldBeNil)
			So(header, ShouldResemble, []string{"date", "timestamp", "bedtime", "waketime", "sleep_minutes", "sleep_hours", "source"})
			So(rows, ShouldResemble, [][]string{{"2025-08-20", "2025-08-20T22:00:00Z", "23:45", "06:30", "405", "6.75", "Advik"}})
		})

		Convey("Then decision snippets share one cell", func() {
			_, rows, err := export.Rows(tables, types.TableDecisions)
			So(err, ShouldBeNil)
			So(rows[0][5], ShouldEqual, "09:12 Ruby: LDL 165 | 14:30 Warren: because LDL")
			So(rows[0][0], ShouldEqual, "")
		})

		Convey("Then effort numbers are rendered without padding", func() {
			_, rows, err := export.Rows(tables, types.TableEffort)
			So(err, ShouldBeNil)
			So(rows[0], ShouldResemble, []string{"Physician", "2", "24", "0.4", "100"})
		})

		Convey("Then every known table is accepted", func() {
			for _, name := range types.TableNames() {
				_, _, err := export.Rows(tables, name)
				So(err, ShouldBeNil)
				_, err = export.Table(tables, name)
				So(err, ShouldBeNil)
			}
		})

		Convey("Then unknown tables are rejected", func() {
			_, _, err := export.Rows(tables, "personas")
			So(errors.Is(err, export.ErrUnknownTable), ShouldBeTrue)
			_, err = export.Table(tables, "personas")
			So(errors.Is(err, export.ErrUnknownTable), ShouldBeTrue)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given the labs table", t, func() {
		var buf bytes.Buffer
		err := export.WriteCSV(&buf, sample(), types.TableLabs)

		Convey("Then it is valid CSV with a header", func() {
			So(err, ShouldBeNil)
			records, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
			So(records[0][2], ShouldEqual, "marker")
			So(records[1][3], ShouldEqual, "165")
		})
	})
}

func TestWriteAll(t *testing.T) {
	Convey("Given an output directory", t, func() {
		dir := filepath.Join(t.TempDir(), "out")

		Convey("When writing CSV", func() {
			paths, err := export.WriteAll(dir, sample(), export.FormatCSV)

			Convey("Then one file per table plus the summary exists", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldHaveLength, len(types.TableNames())+1)
				for _, p := range paths {
					_, statErr := os.Stat(p)
					So(statErr, ShouldBeNil)
				}
			})
		})

		Convey("When writing JSON", func() {
			_, err := export.WriteAll(dir, sample(), export.FormatJSON)
			So(err, ShouldBeNil)

			Convey("Then empty tables are written as empty arrays", func() {
				b, err := os.ReadFile(filepath.Join(dir, "events.json"))
				So(err, ShouldBeNil)
				var rows []types.EventRow
				So(json.Unmarshal(b, &rows), ShouldBeNil)
				So(string(bytes.TrimSpace(b)), ShouldEqual, "[]")
			})
		})

		Convey("When the format is unsupported", func() {
			_, err := export.WriteAll(dir, sample(), "xlsx")

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
