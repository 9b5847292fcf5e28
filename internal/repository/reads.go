package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers/footballdata"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

func (r *CachedRepository) Leagues(ctx context.Context) ([]leagues.League, error) {
	return cachedList(ctx, r, CategoryLeagues, r.store.Leagues, func(ctx context.Context) error {
		_, err := r.RefreshLeagues(ctx)
		return err
	}), nil
}

// LiveMatches serves fresh live rows. When none are fresh it refreshes; if
// that fails the last known live rows are served even though expired.
func (r *CachedRepository) LiveMatches(ctx context.Context) ([]matches.Match, error) {
	var all []store.Record[matches.Match]
	readFresh := func(ctx context.Context) ([]store.Record[matches.Match], error) {
		rows, err := r.store.LiveMatches(ctx)
		if err != nil {
			return nil, err
		}
		all = rows
		now := r.now()
		fresh := make([]store.Record[matches.Match], 0, len(rows))
		for _, row := range rows {
			if row.Fresh(now) {
				fresh = append(fresh, row)
			}
		}
		return fresh, nil
	}

	rows, err := readFresh(ctx)
	if err != nil {
		r.warn(ctx, "cache read failed", CategoryLiveMatches, err)
	}
	if len(rows) > 0 {
		r.metrics.RecordCacheLookup(metrics.TierServer, CategoryLiveMatches, true)
		return store.Values(rows), nil
	}
	r.metrics.RecordCacheLookup(metrics.TierServer, CategoryLiveMatches, false)

	stale := all
	if _, err := r.RefreshLiveMatches(ctx); err != nil {
		r.warn(ctx, "refresh failed, serving cached rows", CategoryLiveMatches, err)
		markDegraded(ctx)
		return store.Values(stale), nil
	}
	rows, err = readFresh(ctx)
	if err != nil {
		markDegraded(ctx)
		return store.Values(stale), nil
	}
	return store.Values(rows), nil
}

func (r *CachedRepository) MatchesByLeague(ctx context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error) {
	q := store.MatchQuery{Statuses: statusesFor(filter.Status), Season: filter.Season, Limit: filter.Limit}
	return cachedList(ctx, r, CategoryMatches,
		func(ctx context.Context) ([]store.Record[matches.Match], error) {
			return r.store.MatchesByLeague(ctx, leagueID, q)
		},
		func(ctx context.Context) error {
			_, err := r.RefreshLeagueMatches(ctx, leagueID, filter)
			return err
		}), nil
}

// MatchByID serves a cached match. forceRefresh always asks upstream first
// but still falls back to the cached row on failure.
func (r *CachedRepository) MatchByID(ctx context.Context, id int, forceRefresh bool) (matches.Match, error) {
	return cachedOne(ctx, r, CategoryMatch, forceRefresh,
		func(ctx context.Context) (store.Record[matches.Match], bool, error) { return r.store.Match(ctx, id) },
		func(ctx context.Context) error {
			_, err := r.RefreshMatch(ctx, id)
			return err
		})
}

// MatchesByDate reads already-synced matches in [from, to]. It never goes
// upstream; an empty or partly expired range is served as is.
func (r *CachedRepository) MatchesByDate(ctx context.Context, from, to time.Time) ([]matches.Match, error) {
	res, err := r.store.MatchesByDateRange(ctx, from, to, r.now())
	if err != nil {
		return nil, fmt.Errorf("matches by date: %w", err)
	}
	r.metrics.RecordCacheLookup(metrics.TierServer, CategoryMatchesDate, !res.ExpiredOrEmpty)
	return store.Values(res.Matches), nil
}

// StandingsByLeague serves a league table. A zero season resolves to the
// league's cached current season, or to whatever season upstream reports.
func (r *CachedRepository) StandingsByLeague(ctx context.Context, leagueID, season int) ([]standings.Standing, error) {
	scope := r.resolveSeason(ctx, leagueID, season)
	return cachedList(ctx, r, CategoryStandings,
		func(ctx context.Context) ([]store.Record[standings.Standing], error) {
			if scope == 0 {
				return nil, nil
			}
			return r.store.Standings(ctx, leagueID, scope)
		},
		func(ctx context.Context) error {
			res, err := r.RefreshStandings(ctx, leagueID, season)
			if err == nil {
				scope = res.Season
			}
			return err
		}), nil
}

func (r *CachedRepository) TopScorers(ctx context.Context, leagueID, season, limit int) ([]standings.TopScorer, error) {
	limit = clampScorers(limit)
	scope := r.resolveSeason(ctx, leagueID, season)
	read := func(ctx context.Context) ([]store.Record[standings.TopScorer], error) {
		if scope == 0 {
			return nil, nil
		}
		return r.store.TopScorers(ctx, leagueID, scope, limit)
	}
	return cachedList(ctx, r, CategoryTopScorers, read, func(ctx context.Context) error {
		res, err := r.RefreshTopScorers(ctx, leagueID, season, maxScorers)
		if err == nil {
			scope = res.Season
		}
		return err
	}), nil
}

func (r *CachedRepository) TeamByID(ctx context.Context, id int) (teams.Team, error) {
	return cachedOne(ctx, r, CategoryTeam, false,
		func(ctx context.Context) (store.Record[teams.Team], bool, error) { return r.store.Team(ctx, id) },
		func(ctx context.Context) error { return r.refreshTeam(ctx, id) })
}

func (r *CachedRepository) TeamMatches(ctx context.Context, teamID, limit int) ([]matches.Match, error) {
	return cachedList(ctx, r, CategoryTeamMatches,
		func(ctx context.Context) ([]store.Record[matches.Match], error) {
			return r.store.TeamMatches(ctx, teamID, limit)
		},
		func(ctx context.Context) error { return r.refreshTeamMatches(ctx, teamID, limit) }), nil
}

// HeadToHead is served by the direct repository. The meetings it returns are
// cached as matches under the head-to-head TTL.
func (r *CachedRepository) HeadToHead(ctx context.Context, matchID, limit int) (matches.HeadToHead, error) {
	h2h, err := r.direct.HeadToHead(ctx, matchID, limit)
	if err != nil {
		return matches.HeadToHead{}, err
	}
	if err := r.saveMatches(ctx, h2h.Matches, TTLHeadToHead); err != nil {
		r.warn(ctx, "cache head-to-head matches failed", CategoryHeadToHead, err)
	}
	return h2h, nil
}

func (r *CachedRepository) MatchStatistics(ctx context.Context, matchID int) ([]matches.Statistic, error) {
	return cachedDetail(ctx, r, "statistics", func(ctx context.Context) (store.Record[[]matches.Statistic], bool, error) {
		return r.store.Statistics(ctx, matchID)
	})
}

func (r *CachedRepository) MatchEvents(ctx context.Context, matchID int) ([]matches.Event, error) {
	return cachedDetail(ctx, r, "events", func(ctx context.Context) (store.Record[[]matches.Event], bool, error) {
		return r.store.Events(ctx, matchID)
	})
}

func (r *CachedRepository) MatchLineups(ctx context.Context, matchID int) ([]matches.Lineup, error) {
	return cachedDetail(ctx, r, "lineups", func(ctx context.Context) (store.Record[[]matches.Lineup], bool, error) {
		return r.store.Lineups(ctx, matchID)
	})
}

// cachedDetail serves whatever detail rows were cached by CacheMatchDetails.
// Upstream offers no endpoint for these, so a miss is ErrNotAvailable.
func cachedDetail[T any](ctx context.Context, r *CachedRepository, kind string,
	read func(context.Context) (store.Record[[]T], bool, error),
) ([]T, error) {
	rec, ok, err := read(ctx)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", kind, err)
	}
	r.metrics.RecordCacheLookup(metrics.TierServer, CategoryMatchDetails, ok && rec.Fresh(r.now()))
	if !ok {
		return nil, fmt.Errorf("match %s: %w", kind, ErrNotAvailable)
	}
	return rec.Value, nil
}

// resolveSeason returns season, or the cached league's current season when
// season is zero. Zero means unknown.
func (r *CachedRepository) resolveSeason(ctx context.Context, leagueID, season int) int {
	if season > 0 {
		return season
	}
	rows, err := r.store.Leagues(ctx)
	if err != nil {
		return 0
	}
	for _, row := range rows {
		if row.Value.ID == leagueID {
			return row.Value.Season
		}
	}
	return 0
}

// statusesFor maps an upstream status filter onto stored statuses.
func statusesFor(filter string) []matches.Status {
	switch filter {
	case "":
		return nil
	case matches.FilterLive:
		return []matches.Status{matches.StatusLive, matches.StatusInPlay, matches.StatusPaused}
	default:
		return []matches.Status{footballdata.MapStatus(filter)}
	}
}
