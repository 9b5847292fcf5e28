package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/config"
	httpserver "github.com/preston-bernstein/football-data-service/internal/http"
	"github.com/preston-bernstein/football-data-service/internal/http/handlers"
	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/orchestrator"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/repository"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
)

var metricsSetup = metrics.Setup

// cacheSweepInterval is how often stale top-level client cache slots are dropped.
const cacheSweepInterval = time.Minute

// Syncer is the orchestrator lifecycle the server drives.
type Syncer interface {
	StartAllSyncs(ctx context.Context)
	StopAllSyncs()
}

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         store.Store
	cache         *clientcache.Store
	repo          *repository.CachedRepository
	syncer        Syncer
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New opens the stores and wires every component. Store failures are returned.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithSource(ctx, cfg, logger, nil, nil)
}

func newServerWithSource(ctx context.Context, cfg config.Config, logger *slog.Logger, source providers.Source, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	if source == nil {
		source = newProviderFactory(logger, recorder).build(cfg)
	}

	abort := func(err error) (*Server, error) {
		if metricsShutdown != nil {
			_ = metricsShutdown(context.WithoutCancel(ctx))
		}
		return nil, err
	}

	st, err := buildStore(ctx, cfg.Database, logger)
	if err != nil {
		return abort(fmt.Errorf("open store: %w", err))
	}
	blobs, err := buildBlobStore(ctx, cfg.ClientCache)
	if err != nil {
		_ = st.Close()
		return abort(fmt.Errorf("open client cache: %w", err))
	}
	cache := clientcache.New(clientcache.Config{Blobs: blobs, Logger: logger, Metrics: recorder})
	if err := cache.Load(ctx); err != nil {
		logging.Warn(logger, "client cache restore failed, starting empty", "error", err)
	}

	syncLog := synclog.New(st, logger)
	repo := repository.NewCached(repository.Config{
		Source:  source,
		Store:   st,
		SyncLog: syncLog,
		Metrics: recorder,
		Logger:  logger,
	})
	orch := orchestrator.New(orchestrator.Config{
		Repo:              repo,
		Logger:            logger,
		Metrics:           recorder,
		TrackedLeagues:    cfg.Sync.TrackedLeagues,
		LiveInterval:      cfg.Sync.LiveInterval,
		StandingsInterval: cfg.Sync.StandingsInterval,
		LeaguesInterval:   cfg.Sync.LeaguesInterval,
		LeagueDelay:       cfg.Sync.LeagueDelay,
	})

	handler := handlers.NewHandler(handlers.Deps{
		Repo:    repo,
		Cache:   cache,
		Sync:    orch,
		SyncLog: syncLog,
		Logger:  logger,
	})
	admin := handlers.NewAdminHandler(cfg.AdminToken, logger, cache, repo)
	router := httpserver.NewRouter(handler, admin, httpserver.RouterConfig{
		Logger:      logger,
		Metrics:     recorder,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		RateWindow:  cfg.HTTP.RateWindow,
	})

	return &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		store:   st,
		cache:   cache,
		repo:    repo,
		syncer:  orch,
		httpServer: netHTTPServer{srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		}},
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}, nil
}

// Run starts the servers and the sync tasks, then waits for ctx to end and
// shuts everything down.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.cfg.Sync.Enabled && s.syncer != nil {
		s.syncer.StartAllSyncs(ctx)
	}
	go s.sweepClientCache(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) sweepClientCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cache.ClearExpiredCache(ctx)
		}
	}
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.syncer != nil {
		s.syncer.StopAllSyncs()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.closeStores(); err != nil {
		logging.Warn(s.logger, "store close failed", "error", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func (s *Server) closeStores() error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}
	if !cfg.Metrics.Enabled {
		return metrics.NewRecorder(), nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}
	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
