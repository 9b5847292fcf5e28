package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

const upsertMatchSQL = `INSERT INTO matches
    (id, league_id, season, home_team_id, away_team_id, status, is_live, kickoff, payload, cached_at, expires_at, last_synced)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    league_id = excluded.league_id, season = excluded.season,
    home_team_id = excluded.home_team_id, away_team_id = excluded.away_team_id,
    status = excluded.status, is_live = excluded.is_live, kickoff = excluded.kickoff,
    payload = excluded.payload, ` + stampUpdate

func (s *Store) Match(ctx context.Context, id int) (store.Record[matches.Match], bool, error) {
	return queryRecord[matches.Match](ctx, s, "SELECT "+recordCols+" FROM matches WHERE id = ?", id)
}

func (s *Store) LiveMatches(ctx context.Context) ([]store.Record[matches.Match], error) {
	return queryRecords[matches.Match](ctx, s,
		"SELECT "+recordCols+" FROM matches WHERE is_live = 1 ORDER BY kickoff, id")
}

func (s *Store) MatchesByLeague(ctx context.Context, leagueID int, q store.MatchQuery) ([]store.Record[matches.Match], error) {
	var b strings.Builder
	b.WriteString("SELECT " + recordCols + " FROM matches WHERE league_id = ?")
	args := []any{leagueID}
	if q.Season != 0 {
		b.WriteString(" AND season = ?")
		args = append(args, q.Season)
	}
	if len(q.Statuses) > 0 {
		b.WriteString(" AND status IN (" + placeholders(len(q.Statuses)) + ")")
		for _, st := range q.Statuses {
			args = append(args, string(st))
		}
	}
	b.WriteString(" ORDER BY kickoff, id")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return queryRecords[matches.Match](ctx, s, b.String(), args...)
}

func (s *Store) TeamMatches(ctx context.Context, teamID, limit int) ([]store.Record[matches.Match], error) {
	query := "SELECT " + recordCols + " FROM matches WHERE home_team_id = ? OR away_team_id = ? ORDER BY kickoff DESC, id DESC"
	args := []any{teamID, teamID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryRecords[matches.Match](ctx, s, query, args...)
}

// MatchesByDateRange reads the range together with an aggregate telling the
// caller whether the range is empty or holds any expired row.
func (s *Store) MatchesByDateRange(ctx context.Context, from, to time.Time, now time.Time) (store.DateRange, error) {
	lo, hi := from.Unix()*1000, to.Unix()*1000

	var total, expired int
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0) FROM matches WHERE kickoff BETWEEN ? AND ?"),
		millis(now), lo, hi).Scan(&total, &expired)
	if err != nil {
		return store.DateRange{}, fmt.Errorf("date range aggregate: %w", err)
	}

	rows, err := queryRecords[matches.Match](ctx, s,
		"SELECT "+recordCols+" FROM matches WHERE kickoff BETWEEN ? AND ? ORDER BY kickoff, id", lo, hi)
	if err != nil {
		return store.DateRange{}, err
	}
	return store.DateRange{Matches: rows, ExpiredOrEmpty: total == 0 || expired > 0}, nil
}

func (s *Store) UpsertMatches(ctx context.Context, items []matches.Match, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, m := range items {
			payload, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("encode match %d: %w", m.ID, err)
			}
			live := 0
			if m.Status.IsLive() {
				live = 1
			}
			args := []any{
				m.ID, m.League.ID, m.League.Season, m.HomeTeam.ID, m.AwayTeam.ID,
				string(m.Status), live, m.Timestamp * 1000, string(payload),
			}
			if _, err := tx.ExecContext(ctx, s.rebind(upsertMatchSQL), append(args, stampArgs(stamp)...)...); err != nil {
				return fmt.Errorf("upsert match %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) ClearLiveFlags(ctx context.Context, keep []int) error {
	query := "UPDATE matches SET is_live = 0 WHERE is_live = 1"
	args := make([]any, 0, len(keep))
	if len(keep) > 0 {
		query += " AND id NOT IN (" + placeholders(len(keep)) + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("clear live flags: %w", err)
	}
	return nil
}
