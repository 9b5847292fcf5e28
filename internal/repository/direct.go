package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/providers/footballdata"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
	"github.com/preston-bernstein/football-data-service/internal/timeutil"
)

// DirectRepository maps every call straight from the upstream source.
type DirectRepository struct {
	up *upstream
}

// NewDirect builds an upstream-only repository. syncLog may be nil.
func NewDirect(source providers.Source, syncLog *synclog.Recorder) *DirectRepository {
	return &DirectRepository{up: &upstream{source: source, syncLog: syncLog, now: time.Now}}
}

// direct performs one logged call and maps the payload.
func direct[T any](ctx context.Context, u *upstream, a attempt,
	fetch func(context.Context) (providers.Payload, error),
	mapFn func(providers.Payload) (T, int),
) (T, error) {
	var out T
	err := u.call(ctx, a, fetch, func(p providers.Payload) (int, error) {
		var n int
		out, n = mapFn(p)
		return n, nil
	})
	return out, err
}

func (d *DirectRepository) Leagues(ctx context.Context) ([]leagues.League, error) {
	return direct(ctx, d.up, attempt{providers.PathCompetitions, CategoryLeagues, ""},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.Competitions(ctx) },
		func(p providers.Payload) ([]leagues.League, int) {
			out := footballdata.MapLeagues(p)
			return out, len(out)
		})
}

func (d *DirectRepository) LiveMatches(ctx context.Context) ([]matches.Match, error) {
	return direct(ctx, d.up, attempt{providers.PathMatches, CategoryLiveMatches, ""},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.LiveMatches(ctx) },
		mapMatchList)
}

func (d *DirectRepository) MatchesByLeague(ctx context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error) {
	return direct(ctx, d.up, attempt{providers.CompetitionPath(leagueID, "matches"), CategoryMatches, idString(leagueID)},
		func(ctx context.Context) (providers.Payload, error) {
			return d.up.source.CompetitionMatches(ctx, leagueID, filter)
		},
		mapMatchList)
}

func (d *DirectRepository) MatchByID(ctx context.Context, id int, _ bool) (matches.Match, error) {
	m, err := direct(ctx, d.up, attempt{providers.MatchPath(id, ""), CategoryMatch, idString(id)},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.Match(ctx, id) },
		func(p providers.Payload) (matches.Match, int) {
			m := footballdata.MapMatch(p, nil)
			return m, boolCount(m.ID != 0)
		})
	if err != nil {
		return matches.Match{}, fmt.Errorf("match %d: %w", id, notFound(CategoryMatch, err))
	}
	if m.ID == 0 {
		return matches.Match{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	return m, nil
}

func (d *DirectRepository) MatchesByDate(ctx context.Context, from, to time.Time) ([]matches.Match, error) {
	return direct(ctx, d.up, attempt{providers.PathMatches, CategoryMatchesDate, ""},
		func(ctx context.Context) (providers.Payload, error) {
			return d.up.source.MatchesByDateRange(ctx, timeutil.FormatDate(from), timeutil.FormatDate(to))
		},
		mapMatchList)
}

func (d *DirectRepository) StandingsByLeague(ctx context.Context, leagueID, season int) ([]standings.Standing, error) {
	return direct(ctx, d.up, attempt{providers.CompetitionPath(leagueID, "standings"), CategoryStandings, idString(leagueID)},
		func(ctx context.Context) (providers.Payload, error) {
			return d.up.source.CompetitionStandings(ctx, leagueID, season)
		},
		func(p providers.Payload) ([]standings.Standing, int) {
			_, rows := footballdata.MapStandings(p)
			return rows, len(rows)
		})
}

func (d *DirectRepository) TopScorers(ctx context.Context, leagueID, season, limit int) ([]standings.TopScorer, error) {
	return direct(ctx, d.up, attempt{providers.CompetitionPath(leagueID, "scorers"), CategoryTopScorers, idString(leagueID)},
		func(ctx context.Context) (providers.Payload, error) {
			return d.up.source.CompetitionScorers(ctx, leagueID, season, limit)
		},
		func(p providers.Payload) ([]standings.TopScorer, int) {
			rows := footballdata.MapTopScorers(p)
			return rows, len(rows)
		})
}

func (d *DirectRepository) TeamByID(ctx context.Context, id int) (teams.Team, error) {
	team, err := direct(ctx, d.up, attempt{providers.TeamPath(id, ""), CategoryTeam, idString(id)},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.Team(ctx, id) },
		func(p providers.Payload) (teams.Team, int) {
			t := footballdata.MapTeam(p)
			return t, boolCount(t.ID != 0)
		})
	if err != nil {
		return teams.Team{}, fmt.Errorf("team %d: %w", id, notFound(CategoryTeam, err))
	}
	if team.ID == 0 {
		return teams.Team{}, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	return team, nil
}

func (d *DirectRepository) TeamMatches(ctx context.Context, teamID, limit int) ([]matches.Match, error) {
	return direct(ctx, d.up, attempt{providers.TeamPath(teamID, "matches"), CategoryTeamMatches, idString(teamID)},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.TeamMatches(ctx, teamID, limit) },
		mapMatchList)
}

func (d *DirectRepository) HeadToHead(ctx context.Context, matchID, limit int) (matches.HeadToHead, error) {
	return direct(ctx, d.up, attempt{providers.MatchPath(matchID, "head2head"), CategoryHeadToHead, idString(matchID)},
		func(ctx context.Context) (providers.Payload, error) { return d.up.source.HeadToHead(ctx, matchID, limit) },
		func(p providers.Payload) (matches.HeadToHead, int) {
			h2h := footballdata.MapHeadToHead(p)
			return h2h, len(h2h.Matches)
		})
}

func (d *DirectRepository) MatchStatistics(context.Context, int) ([]matches.Statistic, error) {
	return nil, fmt.Errorf("match statistics: %w", ErrNotAvailable)
}

func (d *DirectRepository) MatchEvents(context.Context, int) ([]matches.Event, error) {
	return nil, fmt.Errorf("match events: %w", ErrNotAvailable)
}

func (d *DirectRepository) MatchLineups(context.Context, int) ([]matches.Lineup, error) {
	return nil, fmt.Errorf("match lineups: %w", ErrNotAvailable)
}

func mapMatchList(p providers.Payload) ([]matches.Match, int) {
	out := footballdata.MapMatches(p)
	return out, len(out)
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
