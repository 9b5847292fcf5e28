package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/clientcache"
	"github.com/preston-bernstein/football-data-service/internal/config"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers/fixture"
	"github.com/preston-bernstein/football-data-service/internal/providers/footballdata"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/testutil"
)

func fixtureConfig() config.Config {
	return config.Config{
		Port:        "0",
		Provider:    config.ProviderFixture,
		Database:    config.DatabaseConfig{URL: "memory://"},
		ClientCache: config.ClientCacheConfig{Backend: config.CacheBackendMemory},
	}
}

func TestNewServesFixtureData(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	srv, err := New(context.Background(), fixtureConfig(), logger)
	if err != nil {
		t.Fatalf("expected server, got %v", err)
	}
	defer func() { _ = srv.closeStores() }()

	h := srv.Handler()
	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/health", nil), http.StatusOK)

	rr := testutil.Serve(h, http.MethodGet, "/api/leagues", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	testutil.DecodeJSON(t, rr, &body)
	if !body.Success || body.Count == 0 {
		t.Fatalf("expected fixture leagues, got %+v", body)
	}
}

func TestNewRejectsUnknownDatabase(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Database.URL = "mysql://db/app"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported database url")
	}
}

func TestNewRejectsBrokenClientCache(t *testing.T) {
	cfg := fixtureConfig()
	cfg.ClientCache = config.ClientCacheConfig{Backend: config.CacheBackendRedis, RedisURL: "not a url"}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for bad redis url")
	}
}

func newStubbedServer(cfg config.Config, httpSrv httpServer, syncer Syncer) *Server {
	logger, _ := testutil.NewBufferLogger()
	return &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics.NewRecorder(),
		store:      store.NewMemoryStore(),
		cache:      clientcache.New(clientcache.Config{Logger: logger}),
		syncer:     syncer,
		httpServer: httpSrv,
	}
}

func TestRunStartsSyncsAndShutsDown(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Sync.Enabled = true
	httpSrv := &testutil.StubHTTPServer{AddrVal: ":0"}
	syncer := &testutil.StubSyncer{}
	srv := newStubbedServer(cfg, httpSrv, syncer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, cancel)

	if starts, stops := syncer.Calls(); starts != 1 || stops != 1 {
		t.Fatalf("expected one start and one stop, got %d and %d", starts, stops)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected http shutdown once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestRunSkipsSyncsWhenDisabled(t *testing.T) {
	syncer := &testutil.StubSyncer{}
	srv := newStubbedServer(fixtureConfig(), &testutil.StubHTTPServer{AddrVal: ":0"}, syncer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, cancel)

	if starts, stops := syncer.Calls(); starts != 0 || stops != 1 {
		t.Fatalf("expected no start and one stop, got %d and %d", starts, stops)
	}
}

func TestRunStopsWhenListenFails(t *testing.T) {
	httpSrv := &testutil.ErrHTTPServer{}
	srv := newStubbedServer(fixtureConfig(), httpSrv, &testutil.StubSyncer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected listen failure to stop the server")
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown after listen failure, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	blocking := &testutil.BlockingHTTPServer{AddrVal: ":0", Unblock: make(chan struct{})}
	syncer := &testutil.StubSyncer{}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newStubbedServer(fixtureConfig(), blocking, syncer)
	start := time.Now()
	srv.gracefulShutdown()

	if blocking.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.ShutdownCalls)
	}
	if _, stops := syncer.Calls(); stops != 1 {
		t.Fatalf("expected syncs stopped once, got %d", stops)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownStopsMetrics(t *testing.T) {
	metricsSrv := &testutil.StubHTTPServer{ShutdownErr: errors.New("metrics down")}
	stopped := 0
	srv := newStubbedServer(fixtureConfig(), &testutil.StubHTTPServer{}, nil)
	srv.metricsServer = metricsSrv
	srv.metricsStop = func(context.Context) error {
		stopped++
		return errors.New("flush failed")
	}

	srv.gracefulShutdown()

	if stopped != 1 || metricsSrv.ShutdownCalls != 1 {
		t.Fatalf("expected metrics shutdown, got stop=%d server=%d", stopped, metricsSrv.ShutdownCalls)
	}
}

func TestBuildMetrics(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()

	rec, srv, stop := buildMetrics(config.Config{}, logger, nil)
	if rec == nil || srv != nil || stop != nil {
		t.Fatalf("expected bare recorder when metrics disabled")
	}

	injected := metrics.NewRecorder()
	if rec, _, _ := buildMetrics(config.Config{}, logger, injected); rec != injected {
		t.Fatalf("expected injected recorder to be used")
	}

	original := metricsSetup
	defer func() { metricsSetup = original }()

	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return nil, nil, nil, errors.New("exporter down")
	}
	enabled := config.Config{Metrics: config.MetricsConfig{Enabled: true, Port: "9999"}}
	rec, srv, stop = buildMetrics(enabled, logger, nil)
	if rec == nil || srv != nil || stop != nil {
		t.Fatalf("expected fallback recorder on setup failure")
	}

	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		rec, shutdown := testutil.NewRecorderWithShutdown()
		return rec, http.NewServeMux(), shutdown, nil
	}
	_, srv, stop = buildMetrics(enabled, logger, nil)
	if srv == nil || stop == nil {
		t.Fatalf("expected metrics server and shutdown")
	}
	if srv.Addr() != ":9999" {
		t.Fatalf("expected metrics addr :9999, got %s", srv.Addr())
	}
}

func TestLaunchServerIgnoresServerClosed(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	called := make(chan error, 1)
	launchServer("test", &testutil.CloseableHTTPServer{}, logger, func(err error) { called <- err })

	select {
	case err := <-called:
		t.Fatalf("expected no error callback, got %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBuildStore(t *testing.T) {
	ctx := context.Background()
	logger, _ := testutil.NewBufferLogger()

	mem, err := buildStore(ctx, config.DatabaseConfig{URL: "memory://"}, logger)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := mem.(*store.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}

	path := filepath.Join(t.TempDir(), "cache.db")
	sqlite, err := buildStore(ctx, config.DatabaseConfig{URL: "sqlite://" + path}, logger)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	_ = sqlite.Close()

	if _, err := buildStore(ctx, config.DatabaseConfig{URL: ""}, logger); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestBuildBlobStore(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		cfg     config.ClientCacheConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.ClientCacheConfig{Backend: config.CacheBackendMemory}},
		{name: "default", cfg: config.ClientCacheConfig{}},
		{name: "fs", cfg: config.ClientCacheConfig{Backend: config.CacheBackendFS, Path: t.TempDir()}},
		{name: "fs without path", cfg: config.ClientCacheConfig{Backend: config.CacheBackendFS}, wantErr: true},
		{name: "badger in memory", cfg: config.ClientCacheConfig{Backend: config.CacheBackendBadger}},
		{name: "redis bad url", cfg: config.ClientCacheConfig{Backend: config.CacheBackendRedis, RedisURL: "::"}, wantErr: true},
		{name: "unknown", cfg: config.ClientCacheConfig{Backend: "memcached"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blobs, err := buildBlobStore(ctx, tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := blobs.Set(ctx, "leagues", []byte(`{}`)); err != nil {
				t.Fatalf("expected writable store, got %v", err)
			}
			_ = blobs.Close()
		})
	}
}

func TestProviderFactory(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	f := newProviderFactory(logger, metrics.NewRecorder())

	if _, ok := f.build(config.Config{Provider: config.ProviderFixture}).(*fixture.Provider); !ok {
		t.Fatalf("expected fixture provider")
	}

	src := f.build(config.Config{
		Provider: config.ProviderFootballData,
		Football: config.FootballConfig{BaseURL: "http://example.com/v4", RateLimit: 10, RateWindow: time.Minute},
	})
	if _, ok := src.(*footballdata.Client); !ok {
		t.Fatalf("expected football-data client, got %T", src)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected warning about missing api key")
	}
}
