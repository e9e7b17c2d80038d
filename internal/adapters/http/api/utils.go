package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	service "github.com/okian/carelog/internal/app"
	"github.com/okian/carelog/internal/domain/pipeline"
)

// validate is shared by every handler; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps a service error onto an API kind.
func classify(err error) error {
	switch {
	case errors.Is(err, service.ErrBackpressure):
		return ErrBackpressure
	case errors.Is(err, service.ErrNotStarted):
		return ErrUnavailable
	case errors.Is(err, pipeline.ErrInvalidDate), errors.Is(err, ErrUnknownTable):
		return ErrBadRequest
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrBackpressure), errors.Is(err, ErrUnavailable):
		return err
	}
	return ErrInternal
}

// writeFailure renders err with the status of its kind.
func writeFailure(w http.ResponseWriter, op string, err error) {
	kind := classify(err)
	switch {
	case errors.Is(kind, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(kind, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(kind, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, fmt.Errorf("%w: %w", ErrInternal, err)))
	}
}
