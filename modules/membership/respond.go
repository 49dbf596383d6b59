package membership

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	membershipsvc "github.com/firstclub/membership/svc/membership"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (m *Module) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		m.log.Warn("failed to encode response", slog.Any("error", err))
	}
}

// respondError maps domain sentinels to HTTP status codes. Unrecognized
// errors become 500s with a generic message so internals never leak.
func (m *Module) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, membershipsvc.ErrUserNotFound),
		errors.Is(err, membershipsvc.ErrPlanNotFound),
		errors.Is(err, membershipsvc.ErrTierNotFound),
		errors.Is(err, membershipsvc.ErrSubscriptionNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, membershipsvc.ErrIneligible):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, membershipsvc.ErrVersionConflict),
		errors.Is(err, membershipsvc.ErrEmailAlreadyUsed):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, membershipsvc.ErrInvalidUserData),
		errors.Is(err, membershipsvc.ErrInvalidOrder):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		message = "request aborted"
	}

	if status == http.StatusInternalServerError {
		m.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	m.respondJSON(w, status, errorResponse{Error: message})
}

func (m *Module) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		m.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
