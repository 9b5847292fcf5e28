package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/football-data-service/internal/store"
)

const syncLogCols = "id, endpoint, resource_type, resource_id, status, records_synced, error_message, duration_ms, synced_at"

func (s *Store) AppendSyncLog(ctx context.Context, rec store.SyncLogRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.rebind("INSERT INTO sync_log ("+syncLogCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		rec.ID, rec.Endpoint, rec.ResourceType, rec.ResourceID, rec.Status,
		rec.RecordsSynced, rec.ErrorMessage, rec.DurationMs, millis(rec.SyncedAt))
	if err != nil {
		return fmt.Errorf("append sync log: %w", err)
	}
	return nil
}

func (s *Store) RecentSyncLogs(ctx context.Context, limit int) ([]store.SyncLogRecord, error) {
	query := "SELECT " + syncLogCols + " FROM sync_log ORDER BY synced_at DESC, id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.querySyncLogs(ctx, query, args...)
}

func (s *Store) SyncLogsSince(ctx context.Context, since time.Time) ([]store.SyncLogRecord, error) {
	return s.querySyncLogs(ctx, "SELECT "+syncLogCols+" FROM sync_log WHERE synced_at >= ? ORDER BY synced_at DESC, id", millis(since))
}

func (s *Store) querySyncLogs(ctx context.Context, query string, args ...any) ([]store.SyncLogRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query sync log: %w", err)
	}
	defer rows.Close()

	var out []store.SyncLogRecord
	for rows.Next() {
		var (
			rec      store.SyncLogRecord
			syncedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Endpoint, &rec.ResourceType, &rec.ResourceID, &rec.Status,
			&rec.RecordsSynced, &rec.ErrorMessage, &rec.DurationMs, &syncedAt); err != nil {
			return nil, err
		}
		rec.SyncedAt = fromMillis(syncedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
