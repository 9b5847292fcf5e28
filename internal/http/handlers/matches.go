package handlers

import (
	"context"
	"net/http"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/football-data-service/internal/timeutil"
)

// LiveMatches lists matches currently in play.
func (h *Handler) LiveMatches(w http.ResponseWriter, r *http.Request) {
	data, hit, err := clientcache.Cached(r.Context(), h.cache.LiveMatches, clientcache.SingleKey, h.repo.LiveMatches)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}

// Match returns one match. refresh=true bypasses both cache tiers.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	key := clientcache.KeyID(id)

	if requestutil.QueryBool(r, "refresh") {
		m, err := h.repo.MatchByID(r.Context(), id, true)
		if err != nil {
			writeRepoError(w, r, err, h.logger)
			return
		}
		h.cache.Match.Set(r.Context(), key, m)
		h.writeItem(w, r, m, false)
		return
	}

	data, hit, err := clientcache.Cached(r.Context(), h.cache.Match, key, func(ctx context.Context) (matches.Match, error) {
		return h.repo.MatchByID(ctx, id, false)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeItem(w, r, data, hit)
}

// MatchesByDate lists cached matches kicking off between from and to,
// inclusive. to defaults to from.
func (h *Handler) MatchesByDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := timeutil.ParseDate(q.Get("from"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid from date (expected YYYY-MM-DD)", h.logger)
		return
	}
	to := from
	if raw := q.Get("to"); raw != "" {
		if to, err = timeutil.ParseDate(raw); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid to date (expected YYYY-MM-DD)", h.logger)
			return
		}
	}
	if to.Before(from) {
		writeError(w, r, http.StatusBadRequest, "to must not be before from", h.logger)
		return
	}
	end := timeutil.EndOfDay(to)

	key := clientcache.KeyMatchesByDate(from, to)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.MatchesByDate, key, func(ctx context.Context) ([]matches.Match, error) {
		return h.repo.MatchesByDate(ctx, from, end)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), hit)
}

// HeadToHead lists previous meetings of a match's teams.
func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	key := clientcache.KeyHeadToHead(id, limit)
	data, hit, err := clientcache.Cached(r.Context(), h.cache.HeadToHead, key, func(ctx context.Context) (matches.HeadToHead, error) {
		return h.repo.HeadToHead(ctx, id, limit)
	})
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeItem(w, r, data, hit)
}

// MatchStatistics, MatchEvents and MatchLineups are served from the durable
// cache only and are not held in the client tier.

func (h *Handler) MatchStatistics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.repo.MatchStatistics(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), true)
}

func (h *Handler) MatchEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.repo.MatchEvents(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), true)
}

func (h *Handler) MatchLineups(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.repo.MatchLineups(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, data, len(data), true)
}
