package server

import (
	"log/slog"

	"github.com/preston-bernstein/football-data-service/internal/config"
	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/providers/fixture"
	"github.com/preston-bernstein/football-data-service/internal/providers/footballdata"
)

// providerFactory assembles the upstream source with its shared throttle.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, recorder *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: recorder}
}

func (f providerFactory) build(cfg config.Config) providers.Source {
	switch cfg.Provider {
	case config.ProviderFixture:
		return fixture.New()
	default:
		if cfg.Football.APIKey == "" {
			logging.Warn(f.logger, "FOOTBALL_API_KEY is empty, upstream calls will be rejected")
		}
		return footballdata.NewClient(footballdata.Config{
			BaseURL:  cfg.Football.BaseURL,
			APIKey:   cfg.Football.APIKey,
			Timeout:  cfg.Football.Timeout,
			Limiter:  providers.NewWindowLimiter(cfg.Football.RateLimit, cfg.Football.RateWindow, f.logger),
			Recorder: f.metrics,
			Logger:   f.logger,
		})
	}
}
