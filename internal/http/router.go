package http

import (
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/preston-bernstein/football-data-service/internal/http/handlers"
	"github.com/preston-bernstein/football-data-service/internal/http/middleware"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
)

// RouterConfig controls the cross-cutting middleware.
type RouterConfig struct {
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// NewRouter registers every route. The /api group is rate limited per client IP.
func NewRouter(h *handlers.Handler, admin *handlers.AdminHandler, cfg RouterConfig) nethttp.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateWindow))
		}

		r.Get("/leagues", h.Leagues)
		r.Get("/leagues/{id}/matches", h.LeagueMatches)
		r.Post("/leagues/{id}/matches/sync", h.SyncLeagueMatches)
		r.Get("/leagues/{id}/standings", h.Standings)
		r.Get("/leagues/{id}/scorers", h.TopScorers)
		r.Post("/leagues/{id}/scorers/sync", h.SyncTopScorers)
		r.Post("/standings/{leagueId}/sync", h.SyncStandings)

		r.Get("/matches", h.MatchesByDate)
		r.Get("/matches/live", h.LiveMatches)
		r.Get("/matches/{id}", h.Match)
		r.Post("/matches/{id}/sync", h.SyncMatch)
		r.Get("/matches/{id}/head2head", h.HeadToHead)
		r.Get("/matches/{id}/statistics", h.MatchStatistics)
		r.Get("/matches/{id}/events", h.MatchEvents)
		r.Get("/matches/{id}/lineups", h.MatchLineups)

		r.Get("/teams/{id}", h.Team)
		r.Get("/teams/{id}/matches", h.TeamMatches)

		r.Get("/sync/logs", h.SyncLogs)
		r.Get("/sync/status", h.SyncStatus)
	})

	if admin != nil {
		r.Post("/admin/cache/clear", admin.ClearCache)
	}
	return r
}
