// Package repository serves football data through a cache-aside policy over
// the durable store, refreshing from the upstream source on miss or expiry.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

var (
	// ErrNotFound is returned by single-entity lookups with nothing cached
	// and no usable upstream answer.
	ErrNotFound = errors.New("not found")
	// ErrNotAvailable marks categories the upstream tier does not offer.
	// Callers should not retry.
	ErrNotAvailable = errors.New("not available")

	errEmptyResponse = errors.New("upstream returned no data")
)

// Cache TTLs per category.
const (
	TTLLive        = 30 * time.Second
	TTLMatches     = 5 * time.Minute
	TTLStandings   = time.Hour
	TTLTopScorers  = time.Hour
	TTLTeams       = 24 * time.Hour
	TTLLeagues     = 24 * time.Hour
	TTLHeadToHead  = 24 * time.Hour
	TTLStatistics  = 5 * time.Minute
	TTLEvents      = 30 * time.Second
	TTLLineups     = 30 * time.Second
	defaultScorers = 10
	// maxScorers is the chart depth fetched and stored per (league, season).
	maxScorers = 100
)

// Categories name a cache scope in sync log rows and metrics.
const (
	CategoryLeagues      = "leagues"
	CategoryLiveMatches  = "live_matches"
	CategoryMatches      = "matches"
	CategoryMatch        = "match"
	CategoryMatchesDate  = "matches_by_date"
	CategoryStandings    = "standings"
	CategoryTopScorers   = "top_scorers"
	CategoryTeam         = "team"
	CategoryTeamMatches  = "team_matches"
	CategoryHeadToHead   = "head_to_head"
	CategoryMatchDetails = "match_details"
)

// FootballRepository is the read surface shared by the cached and direct
// implementations.
type FootballRepository interface {
	Leagues(ctx context.Context) ([]leagues.League, error)
	LiveMatches(ctx context.Context) ([]matches.Match, error)
	MatchesByLeague(ctx context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error)
	MatchByID(ctx context.Context, id int, forceRefresh bool) (matches.Match, error)
	MatchesByDate(ctx context.Context, from, to time.Time) ([]matches.Match, error)
	StandingsByLeague(ctx context.Context, leagueID, season int) ([]standings.Standing, error)
	TopScorers(ctx context.Context, leagueID, season, limit int) ([]standings.TopScorer, error)
	TeamByID(ctx context.Context, id int) (teams.Team, error)
	TeamMatches(ctx context.Context, teamID, limit int) ([]matches.Match, error)
	HeadToHead(ctx context.Context, matchID, limit int) (matches.HeadToHead, error)
	MatchStatistics(ctx context.Context, matchID int) ([]matches.Statistic, error)
	MatchEvents(ctx context.Context, matchID int) ([]matches.Event, error)
	MatchLineups(ctx context.Context, matchID int) ([]matches.Lineup, error)
}

var (
	_ FootballRepository = (*CachedRepository)(nil)
	_ FootballRepository = (*DirectRepository)(nil)
)
