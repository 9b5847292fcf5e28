package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/providers/footballdata"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

// The Refresh operations always go upstream, persist what they fetched and
// return it. Concurrent refreshes of one scope share a single upstream call.

// RefreshLiveMatches re-reads live matches. An empty answer is a success and
// unflags every previously live row.
func (r *CachedRepository) RefreshLiveMatches(ctx context.Context) ([]matches.Match, error) {
	return coalesce(&r.group, "live", func() ([]matches.Match, error) {
		var live []matches.Match
		err := r.up.call(ctx, attempt{providers.PathMatches, CategoryLiveMatches, ""},
			func(ctx context.Context) (providers.Payload, error) { return r.up.source.LiveMatches(ctx) },
			func(p providers.Payload) (int, error) {
				items := footballdata.MapMatches(p)
				if err := r.saveMatches(ctx, items, TTLLive); err != nil {
					return 0, err
				}
				keep := make([]int, 0, len(items))
				for _, m := range items {
					if m.Status.IsLive() {
						keep = append(keep, m.ID)
						live = append(live, m)
					}
				}
				if err := r.store.ClearLiveFlags(ctx, keep); err != nil {
					return 0, err
				}
				return len(items), nil
			})
		return live, err
	})
}

// RefreshLeagues re-reads the competition list.
func (r *CachedRepository) RefreshLeagues(ctx context.Context) ([]leagues.League, error) {
	return coalesce(&r.group, "leagues", func() ([]leagues.League, error) {
		var items []leagues.League
		err := r.up.call(ctx, attempt{providers.PathCompetitions, CategoryLeagues, ""},
			func(ctx context.Context) (providers.Payload, error) { return r.up.source.Competitions(ctx) },
			func(p providers.Payload) (int, error) {
				items = footballdata.MapLeagues(p)
				if len(items) == 0 {
					return 0, errEmptyResponse
				}
				return len(items), r.store.UpsertLeagues(ctx, items, store.NewStamp(r.now(), TTLLeagues))
			})
		return items, err
	})
}

// StandingsResult is a refreshed league table and the season it was stored under.
type StandingsResult struct {
	Season    int
	Standings []standings.Standing
}

// RefreshStandings re-reads a league table. Teams are upserted first, then
// the (league, season) scope is replaced wholesale. A zero season asks
// upstream for the current one.
func (r *CachedRepository) RefreshStandings(ctx context.Context, leagueID, season int) (StandingsResult, error) {
	key := "standings:" + strconv.Itoa(leagueID) + ":" + strconv.Itoa(season)
	return coalesce(&r.group, key, func() (StandingsResult, error) {
		var res StandingsResult
		err := r.up.call(ctx, attempt{providers.CompetitionPath(leagueID, "standings"), CategoryStandings, idString(leagueID)},
			func(ctx context.Context) (providers.Payload, error) {
				return r.up.source.CompetitionStandings(ctx, leagueID, season)
			},
			func(p providers.Payload) (int, error) {
				mapped, rows := footballdata.MapStandings(p)
				if len(rows) == 0 {
					return 0, errEmptyResponse
				}
				res = StandingsResult{Season: pickSeason(season, mapped), Standings: rows}
				stamp := store.NewStamp(r.now(), TTLStandings)
				teamRows := make([]teams.Team, 0, len(rows))
				for _, row := range rows {
					teamRows = append(teamRows, row.Team)
				}
				if err := r.store.UpsertTeams(ctx, teamRows, store.NewStamp(r.now(), TTLTeams)); err != nil {
					return 0, err
				}
				return len(rows), r.store.ReplaceStandings(ctx, leagueID, res.Season, rows, stamp)
			})
		return res, err
	})
}

// ScorersResult is a refreshed scoring chart and the season it was stored under.
type ScorersResult struct {
	Season  int
	Scorers []standings.TopScorer
}

// RefreshTopScorers re-reads a scoring chart at full depth. Players and teams
// are upserted before the (league, season) scope is replaced; limit only
// trims the returned rows.
func (r *CachedRepository) RefreshTopScorers(ctx context.Context, leagueID, season, limit int) (ScorersResult, error) {
	limit = clampScorers(limit)
	key := "scorers:" + strconv.Itoa(leagueID) + ":" + strconv.Itoa(season)
	res, err := coalesce(&r.group, key, func() (ScorersResult, error) {
		var res ScorersResult
		err := r.up.call(ctx, attempt{providers.CompetitionPath(leagueID, "scorers"), CategoryTopScorers, idString(leagueID)},
			func(ctx context.Context) (providers.Payload, error) {
				return r.up.source.CompetitionScorers(ctx, leagueID, season, maxScorers)
			},
			func(p providers.Payload) (int, error) {
				rows := footballdata.MapTopScorers(p)
				if len(rows) == 0 {
					return 0, errEmptyResponse
				}
				res = ScorersResult{Season: pickSeason(season, footballdata.MapSeason(p)), Scorers: rows}
				refStamp := store.NewStamp(r.now(), TTLTeams)
				teamRows := make([]teams.Team, 0, len(rows))
				playerRows := make([]players.Player, 0, len(rows))
				for _, row := range rows {
					teamRows = append(teamRows, row.Team)
					playerRows = append(playerRows, row.Player)
				}
				if err := r.store.UpsertTeams(ctx, teamRows, refStamp); err != nil {
					return 0, err
				}
				if err := r.store.UpsertPlayers(ctx, playerRows, refStamp); err != nil {
					return 0, err
				}
				return len(rows), r.store.ReplaceTopScorers(ctx, leagueID, res.Season, rows, store.NewStamp(r.now(), TTLTopScorers))
			})
		return res, err
	})
	if err != nil {
		return res, err
	}
	if len(res.Scorers) > limit {
		res.Scorers = res.Scorers[:limit]
	}
	return res, nil
}

func clampScorers(limit int) int {
	switch {
	case limit <= 0:
		return defaultScorers
	case limit > maxScorers:
		return maxScorers
	default:
		return limit
	}
}

// RefreshLeagueMatches re-reads a league's matches narrowed by filter.
func (r *CachedRepository) RefreshLeagueMatches(ctx context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error) {
	key := fmt.Sprintf("matches:%d:%s:%d:%s:%s:%d", leagueID, filter.Status, filter.Season, filter.DateFrom, filter.DateTo, filter.Limit)
	return coalesce(&r.group, key, func() ([]matches.Match, error) {
		var items []matches.Match
		err := r.up.call(ctx, attempt{providers.CompetitionPath(leagueID, "matches"), CategoryMatches, idString(leagueID)},
			func(ctx context.Context) (providers.Payload, error) {
				return r.up.source.CompetitionMatches(ctx, leagueID, filter)
			},
			func(p providers.Payload) (int, error) {
				items = footballdata.MapMatches(p)
				if len(items) == 0 {
					return 0, errEmptyResponse
				}
				return len(items), r.saveMatches(ctx, items, TTLMatches)
			})
		return items, err
	})
}

// RefreshMatch re-reads one match. Detail sub-resources present in the
// payload are cached alongside it.
func (r *CachedRepository) RefreshMatch(ctx context.Context, id int) (matches.Match, error) {
	return coalesce(&r.group, "match:"+strconv.Itoa(id), func() (matches.Match, error) {
		var m matches.Match
		err := r.up.call(ctx, attempt{providers.MatchPath(id, ""), CategoryMatch, idString(id)},
			func(ctx context.Context) (providers.Payload, error) { return r.up.source.Match(ctx, id) },
			func(p providers.Payload) (int, error) {
				m = footballdata.MapMatch(p, nil)
				if m.ID == 0 {
					return 0, errEmptyResponse
				}
				ttl := TTLMatches
				if m.Status.IsLive() {
					ttl = TTLLive
				}
				if err := r.saveMatches(ctx, []matches.Match{m}, ttl); err != nil {
					return 0, err
				}
				if details := footballdata.MapDetails(p); hasDetails(details) {
					if err := r.CacheMatchDetails(ctx, id, details); err != nil {
						return 1, err
					}
				}
				return 1, nil
			})
		return m, err
	})
}

// refreshTeam re-reads one team.
func (r *CachedRepository) refreshTeam(ctx context.Context, id int) error {
	_, err := coalesce(&r.group, "team:"+strconv.Itoa(id), func() (teams.Team, error) {
		var t teams.Team
		err := r.up.call(ctx, attempt{providers.TeamPath(id, ""), CategoryTeam, idString(id)},
			func(ctx context.Context) (providers.Payload, error) { return r.up.source.Team(ctx, id) },
			func(p providers.Payload) (int, error) {
				t = footballdata.MapTeam(p)
				if t.ID == 0 {
					return 0, errEmptyResponse
				}
				return 1, r.store.UpsertTeams(ctx, []teams.Team{t}, store.NewStamp(r.now(), TTLTeams))
			})
		return t, err
	})
	return err
}

// refreshTeamMatches re-reads a team's recent and upcoming matches.
func (r *CachedRepository) refreshTeamMatches(ctx context.Context, teamID, limit int) error {
	key := "team-matches:" + strconv.Itoa(teamID) + ":" + strconv.Itoa(limit)
	_, err := coalesce(&r.group, key, func() (int, error) {
		var n int
		err := r.up.call(ctx, attempt{providers.TeamPath(teamID, "matches"), CategoryTeamMatches, idString(teamID)},
			func(ctx context.Context) (providers.Payload, error) {
				return r.up.source.TeamMatches(ctx, teamID, limit)
			},
			func(p providers.Payload) (int, error) {
				items := footballdata.MapMatches(p)
				n = len(items)
				if n == 0 {
					return 0, errEmptyResponse
				}
				return n, r.saveMatches(ctx, items, TTLMatches)
			})
		return n, err
	})
	return err
}

// CacheMatchDetails stores each detail sub-resource under its own TTL.
// Empty sub-resources are skipped.
func (r *CachedRepository) CacheMatchDetails(ctx context.Context, matchID int, details matches.Details) error {
	now := r.now()
	var errs []error
	if len(details.Statistics) > 0 {
		errs = append(errs, r.store.SaveStatistics(ctx, matchID, details.Statistics, store.NewStamp(now, TTLStatistics)))
	}
	if len(details.Events) > 0 {
		errs = append(errs, r.store.SaveEvents(ctx, matchID, details.Events, store.NewStamp(now, TTLEvents)))
	}
	if len(details.Lineups) > 0 {
		errs = append(errs, r.store.SaveLineups(ctx, matchID, details.Lineups, store.NewStamp(now, TTLLineups)))
	}
	return errors.Join(errs...)
}

// saveMatches upserts the teams referenced by items, then the matches.
func (r *CachedRepository) saveMatches(ctx context.Context, items []matches.Match, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	now := r.now()
	teamRows := make([]teams.Team, 0, 2*len(items))
	for _, m := range items {
		teamRows = append(teamRows, m.HomeTeam, m.AwayTeam)
	}
	if err := r.store.UpsertTeams(ctx, teamRows, store.NewStamp(now, TTLTeams)); err != nil {
		return err
	}
	return r.store.UpsertMatches(ctx, items, store.NewStamp(now, ttl))
}

func hasDetails(d matches.Details) bool {
	return len(d.Statistics) > 0 || len(d.Events) > 0 || len(d.Lineups) > 0
}

func pickSeason(requested, mapped int) int {
	if requested > 0 {
		return requested
	}
	return mapped
}
