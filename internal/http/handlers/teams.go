package handlers

import (
	"context"
	"net/http"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

// Team returns one team.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	data, hit, err := clientcache.Cached(r.Context(), h.cache.Team, clientcache.KeyID(id), func(ctx context.Context) (teams.Team, error) {
		return h.repo.TeamByID(ctx, id)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeItem(w, r, data, hit)
}

// TeamMatches lists a team's most recent matches.
func (h *Handler) TeamMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	key := clientcache.KeyTeamMatches(id, limit)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.TeamMatches, key, func(ctx context.Context) ([]matches.Match, error) {
		return h.repo.TeamMatches(ctx, id, limit)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}
