package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/okian/carelog/internal/adapters/export"
	"github.com/okian/carelog/internal/domain/types"
)

// TablesHandler serves a single output table.
type TablesHandler struct {
	deps   Dependencies
	limits *limits
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(deps Dependencies, l *limits) *TablesHandler {
	return &TablesHandler{deps: deps, limits: l}
}

// HandleTable handles POST /v1/tables/{table}?format=json|csv requests.
func (h *TablesHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_table"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	table := r.PathValue("table")
	if !slices.Contains(types.TableNames(), table) {
		writeFailure(w, op, fmt.Errorf("%w: %q", ErrUnknownTable, table))
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}
	if err := validate.Var(format, "oneof=json csv"); err != nil {
		writeFailure(w, op, fmt.Errorf("%w: format %q", ErrBadRequest, format))
		return
	}

	req, err := decodeRequest(w, r, h.limits)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	out, err := h.deps.Run(r.Context(), req.messages(), req.RoleWeights)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	tables := types.FromResult(out.Result)

	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("X-Run-ID", out.RunID)
		w.WriteHeader(http.StatusOK)
		_ = export.WriteCSV(w, tables, table)
		return
	}
	rows, err := export.Table(tables, table)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("X-Run-ID", out.RunID)
	writeJSON(w, http.StatusOK, rows)
}
