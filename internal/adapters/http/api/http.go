// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/carelog/internal/adapters/stream"
	service "github.com/okian/carelog/internal/app"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/pipeline"
	"golang.org/x/time/rate"
)

// defaultMaxBodyBytes bounds request bodies.
const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Run executes the pipeline once; overrides apply to that run only.
	Run(ctx context.Context, msgs []model.Message, overrides map[string]float64) (service.Outcome, error)

	// Snapshot runs the pipeline and builds the view of one day.
	Snapshot(ctx context.Context, msgs []model.Message, overrides map[string]float64, date string) (pipeline.DaySnapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	pipelineHandler *PipelineHandler
	tablesHandler   *TablesHandler
	snapshotHandler *SnapshotHandler
	limiter         *rate.Limiter
}

// ServerOption configures request limits shared by the handlers.
type ServerOption func(*limits)

type limits struct {
	maxMessages  int
	maxBodyBytes int64
	limiter      *rate.Limiter
}

// WithMaxMessages caps the messages accepted per request; 0 disables the cap.
func WithMaxMessages(n int) ServerOption {
	return func(l *limits) {
		if n >= 0 {
			l.maxMessages = n
		}
	}
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(l *limits) {
		if n > 0 {
			l.maxBodyBytes = n
		}
	}
}

// WithRateLimit admits rps pipeline requests per second with the given
// burst across all clients. A non-positive rps leaves the routes unlimited.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(l *limits) {
		if rps <= 0 {
			l.limiter = nil
			return
		}
		l.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	l := &limits{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(l)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		pipelineHandler: NewPipelineHandler(deps, l),
		tablesHandler:   NewTablesHandler(deps, l),
		snapshotHandler: NewSnapshotHandler(deps, l),
		limiter:         l.limiter,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/pipeline", MetricsMiddleware(RateLimitMiddleware(s.pipelineHandler.HandleRun, s.limiter), "pipeline"))
	mux.HandleFunc("/v1/tables/{table}", MetricsMiddleware(RateLimitMiddleware(s.tablesHandler.HandleTable, s.limiter), "tables"))
	mux.HandleFunc("/v1/snapshot", MetricsMiddleware(RateLimitMiddleware(s.snapshotHandler.HandleSnapshot, s.limiter), "snapshot"))
}

// messageRequest is one canonical stream row. Text must be present but may
// be empty.
type messageRequest struct {
	Timestamp string  `json:"timestamp"`
	Sender    string  `json:"sender"`
	Role      string  `json:"role"`
	Text      *string `json:"text" validate:"required"`
}

// pipelineRequest is the body shared by every pipeline route.
type pipelineRequest struct {
	Messages    []messageRequest   `json:"messages"     validate:"required,dive"`
	RoleWeights map[string]float64 `json:"role_weights" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
}

func (p pipelineRequest) messages() []model.Message {
	records := make([]stream.Record, len(p.Messages))
	for i, m := range p.Messages {
		records[i] = stream.Record{
			Timestamp: m.Timestamp,
			Sender:    m.Sender,
			Role:      m.Role,
			Text:      *m.Text,
		}
	}
	return stream.Messages(records)
}

// decodeRequest reads and validates a pipeline request body.
func decodeRequest(w http.ResponseWriter, r *http.Request, l *limits) (pipelineRequest, error) {
	var req pipelineRequest
	body := http.MaxBytesReader(w, r.Body, l.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if l.maxMessages > 0 && len(req.Messages) > l.maxMessages {
		return req, fmt.Errorf("%w: %d messages exceed the limit of %d", ErrBadRequest, len(req.Messages), l.maxMessages)
	}
	return req, nil
}
