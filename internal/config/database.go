package config

import (
	"fmt"
	"net/url"
	"strings"
)

// DatabaseConfig points at the durable cache store.
type DatabaseConfig struct {
	URL     string `env:"DATABASE_URL,required,notEmpty" validate:"required"`
	AnonKey string `env:"DATABASE_ANON_KEY"`
}

// Resolve maps the configured URL onto a database/sql driver name and DSN.
// postgres:// URLs use lib/pq, sqlite:// and file: URLs use modernc sqlite,
// memory:// selects the in-process store.
func (c DatabaseConfig) Resolve() (driver, dsn string, err error) {
	raw := strings.TrimSpace(c.URL)
	switch {
	case raw == "":
		return "", "", fmt.Errorf("database url is required")
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, c.withAnonKey(raw), nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url missing path")
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(raw, "file:"):
		return DriverSQLite, raw, nil
	case strings.HasPrefix(raw, "memory://"):
		return DriverMemory, "", nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", schemeOf(raw))
	}
}

// withAnonKey uses the anonymous key as the password when the URL carries none.
func (c DatabaseConfig) withAnonKey(raw string) string {
	if c.AnonKey == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), c.AnonKey)
	return u.String()
}

func schemeOf(raw string) string {
	if idx := strings.Index(raw, ":"); idx > 0 {
		return raw[:idx]
	}
	return raw
}
