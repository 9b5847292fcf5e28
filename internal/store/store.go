// Package store persists cached football entities together with their cache
// bookkeeping. Rows are never evicted on expiry; only Clear removes them.
package store

import (
	"context"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

// Stamp is the cache bookkeeping carried by every row.
type Stamp struct {
	CachedAt   time.Time
	ExpiresAt  time.Time
	LastSynced time.Time
}

// NewStamp stamps a row synced at now that stays fresh for ttl.
func NewStamp(now time.Time, ttl time.Duration) Stamp {
	return Stamp{CachedAt: now, ExpiresAt: now.Add(ttl), LastSynced: now}
}

// Fresh reports whether the row is still inside its TTL.
func (s Stamp) Fresh(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Record pairs a cached value with its stamp.
type Record[T any] struct {
	Value T
	Stamp
}

// AnyFresh reports whether at least one record is inside its TTL.
func AnyFresh[T any](records []Record[T], now time.Time) bool {
	for _, r := range records {
		if r.Fresh(now) {
			return true
		}
	}
	return false
}

// Values strips the bookkeeping from a record list.
func Values[T any](records []Record[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	return out
}

// MatchQuery narrows a league's stored matches. Zero values mean no constraint.
type MatchQuery struct {
	Statuses []matches.Status
	Season   int
	Limit    int
}

// DateRange is the result of the stored date-range aggregate.
type DateRange struct {
	Matches []Record[matches.Match]
	// ExpiredOrEmpty is set when no row matched or any matched row is past its TTL.
	ExpiredOrEmpty bool
}

// SyncLogRecord is one row of the sync audit log.
type SyncLogRecord struct {
	ID            string    `json:"id"`
	Endpoint      string    `json:"endpoint"`
	ResourceType  string    `json:"resourceType"`
	ResourceID    string    `json:"resourceId,omitempty"`
	Status        string    `json:"status"`
	RecordsSynced int       `json:"recordsSynced"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	DurationMs    int64     `json:"durationMs"`
	SyncedAt      time.Time `json:"syncedAt"`
}

// Store is the durable cache behind the repository.
type Store interface {
	Leagues(ctx context.Context) ([]Record[leagues.League], error)
	UpsertLeagues(ctx context.Context, items []leagues.League, stamp Stamp) error

	Team(ctx context.Context, id int) (Record[teams.Team], bool, error)
	UpsertTeams(ctx context.Context, items []teams.Team, stamp Stamp) error
	UpsertPlayers(ctx context.Context, items []players.Player, stamp Stamp) error

	Match(ctx context.Context, id int) (Record[matches.Match], bool, error)
	// LiveMatches returns every row flagged live, expired or not.
	LiveMatches(ctx context.Context) ([]Record[matches.Match], error)
	MatchesByLeague(ctx context.Context, leagueID int, q MatchQuery) ([]Record[matches.Match], error)
	TeamMatches(ctx context.Context, teamID, limit int) ([]Record[matches.Match], error)
	MatchesByDateRange(ctx context.Context, from, to time.Time, now time.Time) (DateRange, error)
	// UpsertMatches writes matches, flagging each live from its status.
	UpsertMatches(ctx context.Context, items []matches.Match, stamp Stamp) error
	// ClearLiveFlags unflags every live row whose id is not in keep.
	ClearLiveFlags(ctx context.Context, keep []int) error

	Standings(ctx context.Context, leagueID, season int) ([]Record[standings.Standing], error)
	// ReplaceStandings deletes the (league, season) scope and inserts rows.
	ReplaceStandings(ctx context.Context, leagueID, season int, rows []standings.Standing, stamp Stamp) error
	TopScorers(ctx context.Context, leagueID, season, limit int) ([]Record[standings.TopScorer], error)
	ReplaceTopScorers(ctx context.Context, leagueID, season int, rows []standings.TopScorer, stamp Stamp) error

	Statistics(ctx context.Context, matchID int) (Record[[]matches.Statistic], bool, error)
	SaveStatistics(ctx context.Context, matchID int, items []matches.Statistic, stamp Stamp) error
	Events(ctx context.Context, matchID int) (Record[[]matches.Event], bool, error)
	SaveEvents(ctx context.Context, matchID int, items []matches.Event, stamp Stamp) error
	Lineups(ctx context.Context, matchID int) (Record[[]matches.Lineup], bool, error)
	SaveLineups(ctx context.Context, matchID int, items []matches.Lineup, stamp Stamp) error

	AppendSyncLog(ctx context.Context, rec SyncLogRecord) error
	// RecentSyncLogs returns the newest records first.
	RecentSyncLogs(ctx context.Context, limit int) ([]SyncLogRecord, error)
	SyncLogsSince(ctx context.Context, since time.Time) ([]SyncLogRecord, error)

	// Clear drops every cached entity. The sync log is kept.
	Clear(ctx context.Context) error
	Close() error
}
