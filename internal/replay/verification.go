package replay

import (
	"encoding/json"
	"fmt"

	"github.com/okian/carelog/internal/domain/types"
)

// canonical strips run_id from a pipeline response so that runs over the
// same input compare byte for byte. It also returns the run id.
func canonical(body []byte) (string, string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	var runID string
	if raw, ok := doc["run_id"]; ok {
		if err := json.Unmarshal(raw, &runID); err != nil {
			return "", "", fmt.Errorf("decode run_id: %w", err)
		}
		delete(doc, "run_id")
	}
	// map keys are marshaled sorted
	out, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("encode response: %w", err)
	}
	return string(out), runID, nil
}

// rowCounts decodes a canonical response and counts rows per table. Every
// table must be non-empty for a generated transcript.
func rowCounts(doc string) (map[string]int, error) {
	var tables map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &tables); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	counts := make(map[string]int, len(types.TableNames()))
	for _, name := range types.TableNames() {
		var rows []json.RawMessage
		if err := json.Unmarshal(tables[name], &rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if len(rows) == 0 {
			return counts, fmt.Errorf("%w: %s", ErrEmptyTable, name)
		}
		counts[name] = len(rows)
	}
	return counts, nil
}
