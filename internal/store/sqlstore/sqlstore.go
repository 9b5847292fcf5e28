// Package sqlstore implements store.Store on database/sql. Postgres URLs go
// through lib/pq, sqlite paths through modernc.org/sqlite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/preston-bernstein/football-data-service/internal/store"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store persists cache rows in a SQL database.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open connects to dsn with driver and applies pending migrations.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db, driver, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies pending migrations.
func New(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, driver: driver, logger: logger}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := s.applyMigrations(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Clear drops every cached entity. The sync log is kept.
func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{
			"leagues", "teams", "players", "matches", "standings", "top_scorers",
			"match_statistics", "match_events", "lineups",
		} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit()
}

// rebind rewrites '?' placeholders to '$n' for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func stampArgs(stamp store.Stamp) []any {
	return []any{millis(stamp.CachedAt), millis(stamp.ExpiresAt), millis(stamp.LastSynced)}
}

const stampUpdate = "cached_at = excluded.cached_at, expires_at = excluded.expires_at, last_synced = excluded.last_synced"

// upsertPayload writes a row keyed by a single integer column.
func (s *Store) upsertPayload(ctx context.Context, q execer, table, keyCol string, id int, value any, stamp store.Stamp) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s %d: %w", table, id, err)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, payload, cached_at, expires_at, last_synced) VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT (%s) DO UPDATE SET payload = excluded.payload, %s",
		table, keyCol, keyCol, stampUpdate)
	args := append([]any{id, string(payload)}, stampArgs(stamp)...)
	if _, err := q.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("upsert %s %d: %w", table, id, err)
	}
	return nil
}

// queryRecords runs a select whose columns are payload followed by the stamp.
func queryRecords[T any](ctx context.Context, s *Store, query string, args ...any) ([]store.Record[T], error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Record[T]
	for rows.Next() {
		rec, err := scanRecord[T](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func queryRecord[T any](ctx context.Context, s *Store, query string, args ...any) (store.Record[T], bool, error) {
	rows, err := queryRecords[T](ctx, s, query, args...)
	if err != nil || len(rows) == 0 {
		return store.Record[T]{}, false, err
	}
	return rows[0], true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord[T any](row scanner) (store.Record[T], error) {
	var (
		payload                         string
		cachedAt, expiresAt, lastSynced int64
		rec                             store.Record[T]
	)
	if err := row.Scan(&payload, &cachedAt, &expiresAt, &lastSynced); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Value); err != nil {
		return rec, fmt.Errorf("decode payload: %w", err)
	}
	rec.Stamp = store.Stamp{
		CachedAt:   fromMillis(cachedAt),
		ExpiresAt:  fromMillis(expiresAt),
		LastSynced: fromMillis(lastSynced),
	}
	return rec, nil
}
