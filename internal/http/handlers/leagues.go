package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
)

// Leagues lists competitions.
func (h *Handler) Leagues(w http.ResponseWriter, r *http.Request) {
	data, hit, err := clientcache.Cached(r.Context(), h.cache.Leagues, clientcache.SingleKey, h.repo.Leagues)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}

// LeagueMatches lists a league's matches, optionally filtered by status and season.
func (h *Handler) LeagueMatches(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	season, ok := h.queryInt(w, r, "season", 0)
	if !ok {
		return
	}
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))

	key := clientcache.KeyMatchesByLeague(leagueID, status, season)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.MatchesByLeague, key, func(ctx context.Context) ([]matches.Match, error) {
		return h.repo.MatchesByLeague(ctx, leagueID, matches.Filter{Status: status, Season: season})
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}

// Standings returns a league table. season=0 means the current season.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	season, ok := h.queryInt(w, r, "season", 0)
	if !ok {
		return
	}

	key := clientcache.KeyStandings(leagueID, season)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.StandingsByLeague, key, func(ctx context.Context) ([]standings.Standing, error) {
		return h.repo.StandingsByLeague(ctx, leagueID, season)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}

// TopScorers returns a league's scorer ranking.
func (h *Handler) TopScorers(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	season, ok := h.queryInt(w, r, "season", 0)
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	key := clientcache.KeyTopScorers(leagueID, season, limit)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.TopScorers, key, func(ctx context.Context) ([]standings.TopScorer, error) {
		return h.repo.TopScorers(ctx, leagueID, season, limit)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}
