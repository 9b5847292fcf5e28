package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/football-data-service/internal/logging"
)

// CacheClearer empties one cache tier.
type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	tiers  []CacheClearer
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token rejects every request.
func NewAdminHandler(token string, logger *slog.Logger, tiers ...CacheClearer) *AdminHandler {
	return &AdminHandler{tiers: tiers, token: token, logger: logger}
}

// ClearCache empties every cache tier. The sync log is kept.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	var errs []error
	for _, tier := range h.tiers {
		if tier == nil {
			continue
		}
		if err := tier.ClearCache(r.Context()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logging.Error(logger, "admin cache clear failed", err)
		writeError(w, r, http.StatusInternalServerError, err.Error(), logger)
		return
	}

	logging.Info(logger, "admin cache cleared", logging.FieldCount, len(h.tiers))
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "cache cleared", Timestamp: time.Now().UTC()}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+h.token
}
