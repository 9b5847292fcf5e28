package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/http/middleware"
	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/repository"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Count     *int      `json:"count,omitempty"`
	Cached    *bool     `json:"cached,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	writeJSON(w, status, envelope{
		Success:   false,
		Error:     message,
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// writeRepoError maps repository failures onto status codes.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	logger = loggerFromContext(r, logger)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error(), logger)
	case errors.Is(err, repository.ErrNotAvailable):
		writeError(w, r, http.StatusNotImplemented, err.Error(), logger)
	default:
		logging.Error(logger, "request failed", err)
		writeError(w, r, http.StatusInternalServerError, err.Error(), logger)
	}
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, data any, count int, cached bool) {
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      data,
		Count:     &count,
		Cached:    &cached,
		Timestamp: h.now().UTC(),
	}, loggerFromContext(r, h.logger))
}

func (h *Handler) writeItem(w http.ResponseWriter, r *http.Request, data any, cached bool) {
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      data,
		Cached:    &cached,
		Timestamp: h.now().UTC(),
	}, loggerFromContext(r, h.logger))
}

func (h *Handler) writeSynced(w http.ResponseWriter, r *http.Request, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: h.now().UTC(),
	}, loggerFromContext(r, h.logger))
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
