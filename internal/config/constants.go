package config

// Database drivers resolved from DATABASE_URL.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Client cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendFS     = "fs"
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
)

// Upstream providers.
const (
	ProviderFootballData = "footballdata"
	ProviderFixture      = "fixture"
)
