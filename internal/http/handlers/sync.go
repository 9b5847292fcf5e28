package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/logging"
)

const (
	defaultSyncLogLimit = 50
	maxSyncLogLimit     = 500
	syncSummaryWindow   = 24 * time.Hour
)

// SyncStandings refreshes a league table from upstream.
func (h *Handler) SyncStandings(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w, r) {
		return
	}
	leagueID, ok := h.pathID(w, r, "leagueId")
	if !ok {
		return
	}
	season, ok := h.queryInt(w, r, "season", 0)
	if !ok {
		return
	}

	res, err := h.sync.SyncStandings(r.Context(), leagueID, season)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.cache.StandingsByLeague.Set(r.Context(), clientcache.KeyStandings(leagueID, season), res.Standings)

	logging.Info(loggerFromContext(r, h.logger), "standings synced",
		logging.FieldLeague, leagueID,
		logging.FieldSeason, res.Season,
		logging.FieldCount, len(res.Standings),
	)
	h.writeSynced(w, r, "standings synced", map[string]any{
		"leagueId":   leagueID,
		"season":     res.Season,
		"teamsCount": len(res.Standings),
		"standings":  res.Standings,
	})
}

// SyncLeagueMatches refreshes a league's matches. scope picks all, upcoming
// or finished matches.
func (h *Handler) SyncLeagueMatches(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w, r) {
		return
	}
	leagueID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	season, ok := h.queryInt(w, r, "season", 0)
	if !ok {
		return
	}

	var (
		items  []matches.Match
		status string
		err    error
	)
	switch scope := strings.ToLower(r.URL.Query().Get("scope")); scope {
	case "", "all":
		items, err = h.sync.SyncLeagueMatches(r.Context(), leagueID, season)
	case "upcoming":
		status = matches.FilterScheduled
		items, err = h.sync.SyncUpcomingMatches(r.Context(), leagueID, season)
	case "finished":
		status = matches.FilterFinished
		items, err = h.sync.SyncFinishedMatches(r.Context(), leagueID, season)
	default:
		writeError(w, r, http.StatusBadRequest, "invalid scope (expected all, upcoming or finished)", h.logger)
		return
	}
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.cache.MatchesByLeague.Set(r.Context(), clientcache.KeyMatchesByLeague(leagueID, status, season), items)

	h.writeSynced(w, r, "matches synced", map[string]any{
		"leagueId":     leagueID,
		"matchesCount": len(items),
		"matches":      items,
	})
}

// SyncTopScorers refreshes a league's scorer ranking.
func (h *Handler) SyncTopScorers(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w, r) {
		return
	}
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

	res, err := h.sync.SyncTopScorers(r.Context(), leagueID, season, limit)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.cache.TopScorers.Set(r.Context(), clientcache.KeyTopScorers(leagueID, season, limit), res.Scorers)

	h.writeSynced(w, r, "top scorers synced", map[string]any{
		"leagueId":     leagueID,
		"season":       res.Season,
		"scorersCount": len(res.Scorers),
		"scorers":      res.Scorers,
	})
}

// SyncMatch refreshes one match.
func (h *Handler) SyncMatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireSync(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	m, err := h.sync.SyncMatch(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.cache.Match.Set(r.Context(), clientcache.KeyID(id), m)
	h.writeSynced(w, r, "match synced", m)
}

// SyncLogs lists the most recent upstream attempts.
func (h *Handler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	if h.syncLog == nil {
		writeError(w, r, http.StatusServiceUnavailable, "sync log not configured", h.logger)
		return
	}
	limit, ok := h.queryInt(w, r, "limit", defaultSyncLogLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxSyncLogLimit {
		limit = maxSyncLogLimit
	}

	logs, err := h.syncLog.Recent(r.Context(), limit)
	if err != nil {
		writeRepoError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, logs, len(logs), false)
}

// SyncStatus reports periodic task health and the last day of sync activity.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if h.sync != nil {
		body["tasks"] = h.sync.Status()
		body["ready"] = h.sync.Ready()
	}
	if h.syncLog != nil {
		summary, err := h.syncLog.Summary(r.Context(), h.now().Add(-syncSummaryWindow))
		if err != nil {
			writeRepoError(w, r, err, h.logger)
			return
		}
		body["summary"] = summary
	}
	h.writeItem(w, r, body, false)
}

func (h *Handler) requireSync(w http.ResponseWriter, r *http.Request) bool {
	if h.sync == nil {
		writeError(w, r, http.StatusServiceUnavailable, "sync not configured", h.logger)
		return false
	}
	return true
}
