package sqlstore

import (
	"context"
	"database/sql"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

const recordCols = "payload, cached_at, expires_at, last_synced"

func (s *Store) Leagues(ctx context.Context) ([]store.Record[leagues.League], error) {
	return queryRecords[leagues.League](ctx, s, "SELECT "+recordCols+" FROM leagues ORDER BY id")
}

func (s *Store) UpsertLeagues(ctx context.Context, items []leagues.League, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, l := range items {
			if err := s.upsertPayload(ctx, tx, "leagues", "id", l.ID, l, stamp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Team(ctx context.Context, id int) (store.Record[teams.Team], bool, error) {
	return queryRecord[teams.Team](ctx, s, "SELECT "+recordCols+" FROM teams WHERE id = ?", id)
}

func (s *Store) UpsertTeams(ctx context.Context, items []teams.Team, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range items {
			if t.ID == 0 {
				continue
			}
			if err := s.upsertPayload(ctx, tx, "teams", "id", t.ID, t, stamp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) UpsertPlayers(ctx context.Context, items []players.Player, stamp store.Stamp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range items {
			if p.ID == 0 {
				continue
			}
			if err := s.upsertPayload(ctx, tx, "players", "id", p.ID, p, stamp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Statistics(ctx context.Context, matchID int) (store.Record[[]matches.Statistic], bool, error) {
	return queryRecord[[]matches.Statistic](ctx, s, "SELECT "+recordCols+" FROM match_statistics WHERE match_id = ?", matchID)
}

func (s *Store) SaveStatistics(ctx context.Context, matchID int, items []matches.Statistic, stamp store.Stamp) error {
	return s.upsertPayload(ctx, s.db, "match_statistics", "match_id", matchID, items, stamp)
}

func (s *Store) Events(ctx context.Context, matchID int) (store.Record[[]matches.Event], bool, error) {
	return queryRecord[[]matches.Event](ctx, s, "SELECT "+recordCols+" FROM match_events WHERE match_id = ?", matchID)
}

func (s *Store) SaveEvents(ctx context.Context, matchID int, items []matches.Event, stamp store.Stamp) error {
	return s.upsertPayload(ctx, s.db, "match_events", "match_id", matchID, items, stamp)
}

func (s *Store) Lineups(ctx context.Context, matchID int) (store.Record[[]matches.Lineup], bool, error) {
	return queryRecord[[]matches.Lineup](ctx, s, "SELECT "+recordCols+" FROM lineups WHERE match_id = ?", matchID)
}

func (s *Store) SaveLineups(ctx context.Context, matchID int, items []matches.Lineup, stamp store.Stamp) error {
	return s.upsertPayload(ctx, s.db, "lineups", "match_id", matchID, items, stamp)
}
