package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

func (s *Store) Standings(ctx context.Context, leagueID, season int) ([]store.Record[standings.Standing], error) {
	return queryRecords[standings.Standing](ctx, s,
		"SELECT "+recordCols+" FROM standings WHERE league_id = ? AND season = ? ORDER BY position, ordinal",
		leagueID, season)
}

// ReplaceStandings swaps the (league, season) table in one transaction.
func (s *Store) ReplaceStandings(ctx context.Context, leagueID, season int, rows []standings.Standing, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM standings WHERE league_id = ? AND season = ?"), leagueID, season); err != nil {
			return fmt.Errorf("delete standings %d/%d: %w", leagueID, season, err)
		}
		insert := s.rebind("INSERT INTO standings (league_id, season, ordinal, team_id, position, " + recordCols +
			") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		for i, row := range rows {
			payload, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode standing: %w", err)
			}
			args := append([]any{leagueID, season, i, row.Team.ID, row.Position, string(payload)}, stampArgs(stamp)...)
			if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
				return fmt.Errorf("insert standing %d/%d: %w", leagueID, season, err)
			}
		}
		return nil
	})
}

func (s *Store) TopScorers(ctx context.Context, leagueID, season, limit int) ([]store.Record[standings.TopScorer], error) {
	query := "SELECT " + recordCols + " FROM top_scorers WHERE league_id = ? AND season = ? ORDER BY ordinal"
	args := []any{leagueID, season}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryRecords[standings.TopScorer](ctx, s, query, args...)
}

// ReplaceTopScorers swaps the (league, season) chart in one transaction.
func (s *Store) ReplaceTopScorers(ctx context.Context, leagueID, season int, rows []standings.TopScorer, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM top_scorers WHERE league_id = ? AND season = ?"), leagueID, season); err != nil {
			return fmt.Errorf("delete top scorers %d/%d: %w", leagueID, season, err)
		}
		insert := s.rebind("INSERT INTO top_scorers (league_id, season, ordinal, player_id, " + recordCols +
			") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
		for i, row := range rows {
			payload, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode top scorer: %w", err)
			}
			args := append([]any{leagueID, season, i, row.Player.ID, string(payload)}, stampArgs(stamp)...)
			if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
				return fmt.Errorf("insert top scorer %d/%d: %w", leagueID, season, err)
			}
		}
		return nil
	})
}
