package repository

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
)

// Config wires a CachedRepository.
type Config struct {
	Source  providers.Source
	Store   store.Store
	SyncLog *synclog.Recorder
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// CachedRepository serves reads from the durable store while rows are fresh
// and refreshes from upstream otherwise. Failed refreshes fall back to
// whatever rows were cached, expired or not.
type CachedRepository struct {
	up      *upstream
	store   store.Store
	direct  *DirectRepository
	metrics *metrics.Recorder
	logger  *slog.Logger
	group   singleflight.Group
}

// NewCached builds the cache-backed repository.
func NewCached(cfg Config) *CachedRepository {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	r := &CachedRepository{
		up:      &upstream{source: cfg.Source, syncLog: cfg.SyncLog, now: time.Now},
		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	r.direct = &DirectRepository{up: r.up}
	return r
}

// Store exposes the durable store behind the repository.
func (r *CachedRepository) Store() store.Store {
	return r.store
}

func (r *CachedRepository) now() time.Time {
	return r.up.now()
}

// ClearCache drops every cached entity.
func (r *CachedRepository) ClearCache(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// coalesce shares one in-flight refresh per key between concurrent callers.
func coalesce[T any](g *singleflight.Group, key string, fn func() (T, error)) (T, error) {
	v, err, _ := g.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// cachedList is the cache-aside read for list categories. Store read errors
// count as a miss. A failed refresh serves the rows read first, possibly
// stale or empty, and marks the read degraded.
func cachedList[T any](
	ctx context.Context,
	r *CachedRepository,
	category string,
	read func(context.Context) ([]store.Record[T], error),
	refresh func(context.Context) error,
) []T {
	rows, err := read(ctx)
	if err != nil {
		r.warn(ctx, "cache read failed", category, err)
		rows = nil
	}
	if store.AnyFresh(rows, r.now()) {
		r.metrics.RecordCacheLookup(metrics.TierServer, category, true)
		return store.Values(rows)
	}
	r.metrics.RecordCacheLookup(metrics.TierServer, category, false)

	if err := refresh(ctx); err != nil {
		r.warn(ctx, "refresh failed, serving cached rows", category, err, logging.FieldCount, len(rows))
		markDegraded(ctx)
		return store.Values(rows)
	}
	fresh, err := read(ctx)
	if err != nil {
		r.warn(ctx, "cache re-read failed", category, err)
		markDegraded(ctx)
		return store.Values(rows)
	}
	return store.Values(fresh)
}

// cachedOne is the cache-aside read for single entities. With nothing cached
// and a failed refresh it returns ErrNotFound.
func cachedOne[T any](
	ctx context.Context,
	r *CachedRepository,
	category string,
	force bool,
	read func(context.Context) (store.Record[T], bool, error),
	refresh func(context.Context) error,
) (T, error) {
	rec, ok, err := read(ctx)
	if err != nil {
		r.warn(ctx, "cache read failed", category, err)
		ok = false
	}
	if ok && !force && rec.Fresh(r.now()) {
		r.metrics.RecordCacheLookup(metrics.TierServer, category, true)
		return rec.Value, nil
	}
	r.metrics.RecordCacheLookup(metrics.TierServer, category, false)

	refreshErr := refresh(ctx)
	if refreshErr == nil {
		if fresh, found, err := read(ctx); err == nil && found {
			return fresh.Value, nil
		}
	}
	if ok {
		if refreshErr != nil {
			r.warn(ctx, "refresh failed, serving cached row", category, refreshErr)
			markDegraded(ctx)
		}
		return rec.Value, nil
	}
	var zero T
	return zero, notFound(category, refreshErr)
}

func notFound(category string, cause error) error {
	return &lookupError{category: category, cause: cause}
}

// lookupError is ErrNotFound carrying the upstream failure that caused it.
type lookupError struct {
	category string
	cause    error
}

func (e *lookupError) Error() string {
	if e.cause == nil {
		return e.category + ": " + ErrNotFound.Error()
	}
	return e.category + ": " + ErrNotFound.Error() + ": " + e.cause.Error()
}

func (e *lookupError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.cause}
}

func (r *CachedRepository) warn(ctx context.Context, msg, category string, err error, args ...any) {
	logger := logging.FromContext(ctx, r.logger)
	args = append(args, logging.FieldResource, category, "error", err)
	logging.Warn(logger, msg, args...)
}
