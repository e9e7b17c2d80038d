package api

import (
	"net/http"

	"github.com/okian/carelog/internal/domain/types"
)

// PipelineHandler handles full pipeline runs.
type PipelineHandler struct {
	deps   Dependencies
	limits *limits
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(deps Dependencies, l *limits) *PipelineHandler {
	return &PipelineHandler{deps: deps, limits: l}
}

type pipelineResponse struct {
	RunID string `json:"run_id"`
	types.Tables
}

// HandleRun handles POST /v1/pipeline requests.
func (h *PipelineHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_pipeline"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
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
	writeJSON(w, http.StatusOK, pipelineResponse{RunID: out.RunID, Tables: types.FromResult(out.Result)})
}
