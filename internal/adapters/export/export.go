// Package export serializes output tables as flat CSV or JSON rows.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/carelog/internal/domain/types"
)

// ErrUnknownTable reports a table name outside types.TableNames.
var ErrUnknownTable = errors.New("unknown table")

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// snippetSep joins rationale snippets into one CSV cell.
const snippetSep = " | "

// Rows returns the header and string cells of one table.
func Rows(t types.Tables, table string) ([]string, [][]string, error) {
	switch table {
	case types.TableEvents:
		rows := make([][]string, 0, len(t.Events))
		for _, r := range t.Events {
			rows = append(rows, []string{r.Timestamp, r.Date, r.Type, r.Title, r.Detail, r.Sender, r.Role})
		}
		return []string{"timestamp", "date", "type", "title", "detail", "sender", "role"}, rows, nil
	case types.TableLabs:
		rows := make([][]string, 0, len(t.Labs))
		for _, r := range t.Labs {
			rows = append(rows, []string{r.Timestamp, r.Date, r.Marker, num(r.Value)})
		}
		return []string{"timestamp", "date", "marker", "value"}, rows, nil
	case types.TableSleep:
		rows := make([][]string, 0, len(t.Sleep))
		for _, r := range t.Sleep {
			rows = append(rows, []string{
				r.Date, r.Timestamp, r.Bedtime, r.Waketime,
				strconv.Itoa(r.SleepMinutes), num(r.SleepHours), r.Source,
			})
		}
		return []string{"date", "timestamp", "bedtime", "waketime", "sleep_minutes", "sleep_hours", "source"}, rows, nil
	case types.TableActivity:
		rows := make([][]string, 0, len(t.Activity))
		for _, r := range t.Activity {
			rows = append(rows, []string{r.Date, r.Timestamp, strconv.Itoa(r.ActivityMinutes), r.ActivityType, r.Source})
		}
		return []string{"date", "timestamp", "activity_minutes", "activity_type", "source"}, rows, nil
	case types.TableBiomarkers:
		rows := make([][]string, 0, len(t.Biomarkers))
		for _, r := range t.Biomarkers {
			rows = append(rows, []string{r.Timestamp, r.Date, r.Marker, num(r.Value)})
		}
		return []string{"timestamp", "date", "marker", "value"}, rows, nil
	case types.TableDecisions:
		rows := make([][]string, 0, len(t.Decisions))
		for _, r := range t.Decisions {
			rows = append(rows, []string{
				r.Timestamp, r.Date, r.DecisionText, r.By, r.Role,
				strings.Join(r.RationaleSnippets, snippetSep),
			})
		}
		return []string{"timestamp", "date", "decision_text", "by", "role", "rationale_snippets"}, rows, nil
	case types.TableEffort:
		rows := make([][]string, 0, len(t.Effort))
		for _, r := range t.Effort {
			rows = append(rows, []string{
				r.Role, strconv.Itoa(r.Interactions), num(r.EstMinutes), num(r.EstHours), num(r.PctShare),
			})
		}
		return []string{"role", "interactions", "est_minutes", "est_hours", "pct_share"}, rows, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// Table returns the typed rows of one table for JSON encoding.
func Table(t types.Tables, table string) (any, error) {
	switch table {
	case types.TableEvents:
		return t.Events, nil
	case types.TableLabs:
		return t.Labs, nil
	case types.TableSleep:
		return t.Sleep, nil
	case types.TableActivity:
		return t.Activity, nil
	case types.TableBiomarkers:
		return t.Biomarkers, nil
	case types.TableDecisions:
		return t.Decisions, nil
	case types.TableEffort:
		return t.Effort, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// WriteCSV writes one table with its header row.
func WriteCSV(w io.Writer, t types.Tables, table string) error {
	header, rows, err := Rows(t, table)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", table, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s rows: %w", table, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteAll writes one file per table into dir, plus summary.json. It
// returns the written paths in table order.
func WriteAll(dir string, t types.Tables, format string) ([]string, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(types.TableNames())+1)
	for _, name := range types.TableNames() {
		path := filepath.Join(dir, name+"."+format)
		err := writeFile(path, func(w io.Writer) error {
			if format == FormatCSV {
				return WriteCSV(w, t, name)
			}
			rows, err := Table(t, name)
			if err != nil {
				return err
			}
			return WriteJSON(w, rows)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	summary := filepath.Join(dir, "summary.json")
	if err := writeFile(summary, func(w io.Writer) error { return WriteJSON(w, t.Summary) }); err != nil {
		return paths, err
	}
	return append(paths, summary), nil
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fill(f)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
