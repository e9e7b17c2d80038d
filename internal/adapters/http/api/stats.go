package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports runtime statistics of the pipeline service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves provider statistics plus the handler's uptime.
type StatsHandler struct {
	provider StatsProvider
	since    time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, since: time.Now()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := make(map[string]interface{})
	maps.Copy(out, h.provider.GetStats())
	out["uptimeSeconds"] = int64(time.Since(h.since).Seconds())
	writeJSON(w, http.StatusOK, out)
}
