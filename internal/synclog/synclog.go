// Package synclog records every upstream fetch attempt for rate-limit
// diagnosis and sync health reporting.
package synclog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

// Status is the outcome of one upstream attempt.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusRateLimited Status = "rate_limited"
)

// StatusFor classifies an upstream error. A nil error is a success.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case providers.IsRateLimited(err):
		return StatusRateLimited
	default:
		return StatusError
	}
}

// Entry describes one upstream attempt.
type Entry struct {
	Endpoint      string
	ResourceType  string
	ResourceID    string
	Status        Status
	RecordsSynced int
	ErrorMessage  string
	Duration      time.Duration
}

// Backend is the slice of the durable store the log needs.
type Backend interface {
	AppendSyncLog(ctx context.Context, rec store.SyncLogRecord) error
	RecentSyncLogs(ctx context.Context, limit int) ([]store.SyncLogRecord, error)
	SyncLogsSince(ctx context.Context, since time.Time) ([]store.SyncLogRecord, error)
}

// Recorder appends sync log rows. Write failures are logged, never returned.
type Recorder struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a recorder over backend.
func New(backend Backend, logger *slog.Logger) *Recorder {
	return &Recorder{backend: backend, logger: logger, now: time.Now}
}

// Record appends one entry. It outlives cancellation of ctx so an aborted
// request still leaves its audit row.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.backend == nil {
		return
	}
	rec := store.SyncLogRecord{
		ID:            uuid.NewString(),
		Endpoint:      e.Endpoint,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Status:        string(e.Status),
		RecordsSynced: e.RecordsSynced,
		ErrorMessage:  e.ErrorMessage,
		DurationMs:    e.Duration.Milliseconds(),
		SyncedAt:      r.now().UTC(),
	}
	if err := r.backend.AppendSyncLog(context.WithoutCancel(ctx), rec); err != nil {
		logging.Error(r.logger, "sync log write failed", err,
			logging.FieldEndpoint, e.Endpoint,
			logging.FieldResource, e.ResourceType,
		)
	}
}

// Recent returns the newest records first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]store.SyncLogRecord, error) {
	return r.backend.RecentSyncLogs(ctx, limit)
}

// ResourceSummary aggregates attempts for one resource type.
type ResourceSummary struct {
	Attempts     int       `json:"attempts"`
	Failures     int       `json:"failures"`
	RateLimited  int       `json:"rateLimited"`
	LastStatus   Status    `json:"lastStatus"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// Summary is the sync health view over a time window.
type Summary struct {
	Since         time.Time                  `json:"since"`
	Total         int                        `json:"total"`
	Success       int                        `json:"success"`
	Errors        int                        `json:"errors"`
	RateLimited   int                        `json:"rateLimited"`
	RecordsSynced int                        `json:"recordsSynced"`
	AvgDurationMs int64                      `json:"avgDurationMs"`
	Resources     map[string]ResourceSummary `json:"resources"`
}

// Summary aggregates every record at or after since.
func (r *Recorder) Summary(ctx context.Context, since time.Time) (Summary, error) {
	records, err := r.backend.SyncLogsSince(ctx, since)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Since: since.UTC(), Resources: make(map[string]ResourceSummary)}
	var totalMs int64
	// records arrive newest first
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		status := Status(rec.Status)
		sum.Total++
		sum.RecordsSynced += rec.RecordsSynced
		totalMs += rec.DurationMs

		res := sum.Resources[rec.ResourceType]
		res.Attempts++
		switch status {
		case StatusSuccess:
			sum.Success++
		case StatusRateLimited:
			sum.RateLimited++
			res.RateLimited++
			res.Failures++
		default:
			sum.Errors++
			res.Failures++
		}
		res.LastStatus = status
		res.LastSyncedAt = rec.SyncedAt
		sum.Resources[rec.ResourceType] = res
	}
	if sum.Total > 0 {
		sum.AvgDurationMs = totalMs / int64(sum.Total)
	}
	return sum, nil
}
