package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// Config holds runtime configuration for the server.
type Config struct {
	Port       string `env:"PORT" envDefault:"4000" validate:"required,numeric"`
	Provider   string `env:"PROVIDER" envDefault:"footballdata" validate:"oneof=footballdata fixture"`
	AdminToken string `env:"ADMIN_TOKEN"`

	Football    FootballConfig
	Database    DatabaseConfig
	Sync        SyncConfig
	ClientCache ClientCacheConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// FootballConfig controls how we talk to the upstream football API.
type FootballConfig struct {
	BaseURL    string   `env:"FOOTBALL_API_BASE_URL" envDefault:"https://api.football-data.org/v4" validate:"required,url"`
	APIKey     string   `env:"FOOTBALL_API_KEY"`
	RateLimit  int      `env:"FOOTBALL_API_RATE_LIMIT" envDefault:"10" validate:"gte=1"`
	RateWindow Duration `env:"FOOTBALL_API_RATE_WINDOW" envDefault:"60s" validate:"gt=0"`
	Timeout    Duration `env:"FOOTBALL_API_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// SyncConfig controls the periodic refresh tasks.
type SyncConfig struct {
	Enabled           bool     `env:"SYNC_ENABLED" envDefault:"true"`
	LiveInterval      Duration `env:"SYNC_LIVE_INTERVAL" envDefault:"30s" validate:"gt=0"`
	StandingsInterval Duration `env:"SYNC_STANDINGS_INTERVAL" envDefault:"1h" validate:"gt=0"`
	LeaguesInterval   Duration `env:"SYNC_LEAGUES_INTERVAL" envDefault:"24h" validate:"gt=0"`
	LeagueDelay       Duration `env:"SYNC_LEAGUE_DELAY" envDefault:"6s" validate:"gte=0"`
	TrackedLeagues    []int    `env:"TRACKED_LEAGUES" envDefault:"2021,2014,2002,2019,2015,2001" validate:"dive,gt=0"`
}

// ClientCacheConfig selects where the client cache tier persists its slots.
type ClientCacheConfig struct {
	Backend  string `env:"CLIENT_CACHE_BACKEND" envDefault:"memory" validate:"oneof=memory fs badger redis"`
	Path     string `env:"CLIENT_CACHE_PATH" envDefault:"data/client-cache" validate:"required_if=Backend fs,required_if=Backend badger"`
	RedisURL string `env:"REDIS_URL" validate:"required_if=Backend redis"`
}

// HTTPConfig controls the public HTTP surface.
type HTTPConfig struct {
	RateLimit   int      `env:"API_RATE_LIMIT" envDefault:"120" validate:"gte=1"`
	RateWindow  Duration `env:"API_RATE_WINDOW" envDefault:"1m" validate:"gt=0"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"omitempty,oneof=debug info warn error"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables and validates it.
// A missing DATABASE_URL is reported as an error; callers treat it as fatal.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
