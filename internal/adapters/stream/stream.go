// Package stream decodes canonical message streams handed over by an
// ingestion step into domain messages.
package stream

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/carelog/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// ErrDecodeStream reports a structurally invalid stream.
var ErrDecodeStream = errors.New("decode stream")

// Supported stream formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Record is one canonical row: (timestamp, sender, role hint, text).
type Record struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Sender    string `json:"sender"    yaml:"sender"`
	Role      string `json:"role"      yaml:"role"`
	Text      string `json:"text"      yaml:"text"`
}

// Message converts the record. An unparseable timestamp leaves the message
// untimed.
func (r Record) Message() model.Message {
	return model.Message{
		Timestamp: ParseTimestamp(r.Timestamp),
		SenderRaw: strings.TrimSpace(r.Sender),
		RoleHint:  strings.TrimSpace(r.Role),
		Text:      r.Text,
	}
}

// Messages converts records in input order.
func Messages(records []Record) []model.Message {
	out := make([]model.Message, len(records))
	for i, r := range records {
		out[i] = r.Message()
	}
	return out
}

// FormatFor picks a stream format from a file extension.
func FormatFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".csv":
		return FormatCSV, true
	}
	return "", false
}

// ReadFile decodes the stream stored at path.
func ReadFile(path string) ([]Record, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrDecodeStream, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

// Decode reads a list of records in the given format.
func Decode(r io.Reader, format string) ([]Record, error) {
	var (
		records []Record
		err     error
	)
	switch strings.ToLower(format) {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&records)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&records)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatCSV:
		records, err = decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrDecodeStream, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeStream, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// decodeCSV expects a header row naming at least the text column.
func decodeCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["text"]; !ok {
		return nil, errors.New("csv header has no text column")
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			Timestamp: cell(row, "timestamp"),
			Sender:    cell(row, "sender"),
			Role:      cell(row, "role"),
			Text:      cell(row, "text"),
		})
	}
	return records, nil
}
