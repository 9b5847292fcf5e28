package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/config"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/store/sqlstore"
)

// buildStore opens the durable cache named by DATABASE_URL.
func buildStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	driver, dsn, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	switch driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverPostgres, config.DriverSQLite:
		st, err := sqlstore.Open(ctx, driver, dsn, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// buildBlobStore opens the persistence backend for the client cache tier.
func buildBlobStore(ctx context.Context, cfg config.ClientCacheConfig) (clientcache.BlobStore, error) {
	switch cfg.Backend {
	case config.CacheBackendFS:
		return clientcache.NewFSBlobStore(cfg.Path)
	case config.CacheBackendBadger:
		return clientcache.OpenBadger(cfg.Path)
	case config.CacheBackendRedis:
		return clientcache.OpenRedis(ctx, cfg.RedisURL)
	case config.CacheBackendMemory, "":
		return clientcache.NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unsupported client cache backend %q", cfg.Backend)
	}
}
