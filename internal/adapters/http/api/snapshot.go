package api

import (
	"fmt"
	"net/http"

	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/types"
)

// SnapshotHandler serves the view of one day.
type SnapshotHandler struct {
	deps   Dependencies
	limits *limits
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies, l *limits) *SnapshotHandler {
	return &SnapshotHandler{deps: deps, limits: l}
}

// HandleSnapshot handles POST /v1/snapshot?date=YYYY-MM-DD requests.
func (h *SnapshotHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_snapshot"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	date := r.URL.Query().Get("date")
	if err := validate.Var(date, "required,datetime="+model.DateLayout); err != nil {
		writeFailure(w, op, fmt.Errorf("%w: date %q", ErrBadRequest, date))
		return
	}

	req, err := decodeRequest(w, r, h.limits)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	snap, err := h.deps.Snapshot(r.Context(), req.messages(), req.RoleWeights, date)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromSnapshot(snap))
}
