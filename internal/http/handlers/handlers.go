package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/football-data-service/internal/orchestrator"
	"github.com/preston-bernstein/football-data-service/internal/repository"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
)

// Syncer runs on-demand refreshes and reports periodic task health.
type Syncer interface {
	SyncStandings(ctx context.Context, leagueID, season int) (repository.StandingsResult, error)
	SyncLeagueMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error)
	SyncUpcomingMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error)
	SyncFinishedMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error)
	SyncTopScorers(ctx context.Context, leagueID, season, limit int) (repository.ScorersResult, error)
	SyncMatch(ctx context.Context, id int) (matches.Match, error)
	Status() map[string]orchestrator.Status
	Ready() bool
}

// SyncLogReader serves the sync health views.
type SyncLogReader interface {
	Recent(ctx context.Context, limit int) ([]store.SyncLogRecord, error)
	Summary(ctx context.Context, since time.Time) (synclog.Summary, error)
}

// Deps wires a Handler.
type Deps struct {
	Repo    repository.FootballRepository
	Cache   *clientcache.Store
	Sync    Syncer
	SyncLog SyncLogReader
	Logger  *slog.Logger
}

// Handler serves the public API. Reads go through the client cache first.
type Handler struct {
	repo    repository.FootballRepository
	cache   *clientcache.Store
	sync    Syncer
	syncLog SyncLogReader
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(d Deps) *Handler {
	cache := d.Cache
	if cache == nil {
		cache = clientcache.New(clientcache.Config{Logger: d.Logger})
	}
	return &Handler{
		repo:    d.Repo,
		cache:   cache,
		sync:    d.Sync,
		syncLog: d.SyncLog,
		logger:  d.Logger,
		now:     time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness once the live sync task is healthy.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil || h.sync.Ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := h.sync.Status()[orchestrator.TaskLiveMatches].LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// pathID parses a positive integer URL parameter, writing 400 on failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := requestutil.ParseID(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid "+name, h.logger)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, writing 400 on failure.
func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	v, err := requestutil.QueryInt(r, key, def)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return 0, false
	}
	return v, true
}
