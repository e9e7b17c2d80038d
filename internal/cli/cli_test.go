package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/carelog/internal/adapters/export"
	"github.com/okian/carelog/internal/cli"
	"github.com/okian/carelog/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const chat = `[
 {"timestamp":"2025-08-19 09:12","sender":"Ruby (Concierge)","text":"Your results are in. LDL 165, hs-CRP 3.1"},
 {"timestamp":"2025-08-20 14:30","sender":"Dr. Warren (Physician)","text":"Start Mediterranean diet because LDL is high"},
 {"timestamp":"2025-08-21 07:00","sender":"Rohan (Member)","text":"Morning run 40m"}
]`

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeChat(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "chat.json")
	if err := os.WriteFile(path, []byte(chat), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	Convey("Given the version command", t, func() {
		out, _, err := execute("version")

		Convey("Then it prints the version", func() {
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "carelog "+cli.Version)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a message stream file", t, func() {
		_ = os.Unsetenv("CARELOG_CONFIG")
		input := writeChat(t)

		Convey("When running with default output", func() {
			out, _, err := execute("run", "--input", input)

			Convey("Then all tables are printed as JSON", func() {
				So(err, ShouldBeNil)
				var tables types.Tables
				So(json.Unmarshal([]byte(out), &tables), ShouldBeNil)
				So(tables.Labs, ShouldHaveLength, 2)
				So(tables.Activity, ShouldHaveLength, 1)
				So(tables.Summary.Messages, ShouldEqual, 3)
			})
		})

		Convey("When printing one table as CSV with overrides", func() {
			out, _, err := execute("run", "-i", input, "--table", "effort", "--format", "csv", "--weights", "Physician=30")

			Convey("Then the override shows in the rows", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(lines[0], ShouldEqual, "role,interactions,est_minutes,est_hours,pct_share")
				So(lines[1], ShouldStartWith, "Physician,1,30,0.5,")
			})
		})

		Convey("When writing to a directory", func() {
			dir := filepath.Join(t.TempDir(), "tables")
			out, _, err := execute("run", "-i", input, "--out", dir, "--format", "csv")

			Convey("Then one file per table is listed", func() {
				So(err, ShouldBeNil)
				So(strings.Count(out, "\n"), ShouldEqual, len(types.TableNames())+1)
				_, statErr := os.Stat(filepath.Join(dir, "labs.csv"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When the arguments are wrong", func() {
			Convey("Then a missing input fails", func() {
				_, _, err := execute("run")
				So(err, ShouldNotBeNil)
			})

			Convey("Then an unknown table fails", func() {
				_, _, err := execute("run", "-i", input, "--table", "personas")
				So(errors.Is(err, export.ErrUnknownTable), ShouldBeTrue)
			})

			Convey("Then CSV on stdout without a table fails", func() {
				_, _, err := execute("run", "-i", input, "--format", "csv")
				So(err, ShouldNotBeNil)
			})

			Convey("Then a negative weight fails", func() {
				_, _, err := execute("run", "-i", input, "--weights", "Lab=-1")
				So(err, ShouldNotBeNil)
			})

			Convey("Then an unsupported file type fails", func() {
				_, _, err := execute("run", "-i", filepath.Join(t.TempDir(), "chat.docx"))
				So(err, ShouldNotBeNil)
			})
		})
	})
}
