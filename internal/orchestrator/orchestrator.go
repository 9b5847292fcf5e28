// Package orchestrator keeps the durable cache warm by running periodic
// refreshes and exposes on-demand refreshes for the API.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/repository"
)

// Task names, also used as metric labels.
const (
	TaskLiveMatches = "live_matches"
	TaskStandings   = "standings"
	TaskLeagues     = "leagues"
)

const (
	defaultLiveInterval      = 30 * time.Second
	defaultStandingsInterval = time.Hour
	defaultLeaguesInterval   = 24 * time.Hour
	defaultLeagueDelay       = 6 * time.Second
)

// Refresher is the slice of the cached repository the orchestrator drives.
type Refresher interface {
	RefreshLiveMatches(ctx context.Context) ([]matches.Match, error)
	RefreshLeagues(ctx context.Context) ([]leagues.League, error)
	RefreshStandings(ctx context.Context, leagueID, season int) (repository.StandingsResult, error)
	RefreshTopScorers(ctx context.Context, leagueID, season, limit int) (repository.ScorersResult, error)
	RefreshLeagueMatches(ctx context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error)
	RefreshMatch(ctx context.Context, id int) (matches.Match, error)
}

// Config wires an Orchestrator. Zero intervals fall back to the defaults.
type Config struct {
	Repo              Refresher
	Logger            *slog.Logger
	Metrics           *metrics.Recorder
	TrackedLeagues    []int
	LiveInterval      time.Duration
	StandingsInterval time.Duration
	LeaguesInterval   time.Duration
	LeagueDelay       time.Duration
}

// Orchestrator owns the periodic sync tasks. One instance per process.
type Orchestrator struct {
	repo    Refresher
	logger  *slog.Logger
	tracked []int
	delay   time.Duration
	tasks   []*task

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func New(cfg Config) *Orchestrator {
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = defaultLiveInterval
	}
	if cfg.StandingsInterval <= 0 {
		cfg.StandingsInterval = defaultStandingsInterval
	}
	if cfg.LeaguesInterval <= 0 {
		cfg.LeaguesInterval = defaultLeaguesInterval
	}
	if cfg.LeagueDelay < 0 {
		cfg.LeagueDelay = defaultLeagueDelay
	}

	o := &Orchestrator{
		repo:    cfg.Repo,
		logger:  cfg.Logger,
		tracked: append([]int(nil), cfg.TrackedLeagues...),
		delay:   cfg.LeagueDelay,
	}
	newTask := func(name string, interval time.Duration, run cycleFunc) *task {
		return &task{name: name, interval: interval, run: run, logger: cfg.Logger, metrics: cfg.Metrics}
	}
	o.tasks = []*task{
		newTask(TaskLiveMatches, cfg.LiveInterval, o.liveCycle),
		newTask(TaskStandings, cfg.StandingsInterval, o.standingsCycle),
		newTask(TaskLeagues, cfg.LeaguesInterval, o.leaguesCycle),
	}
	return o
}

// StartAllSyncs launches every periodic task. Each runs once immediately.
// Calling it while running is a no-op.
func (o *Orchestrator) StartAllSyncs(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return
	}
	o.running = true
	o.stop = make(chan struct{})
	for _, t := range o.tasks {
		go t.loop(ctx, o.stop)
	}
	logging.Info(o.logger, "sync orchestrator started", logging.FieldCount, len(o.tracked))
}

// StopAllSyncs stops the periodic triggers. Refreshes already in flight
// finish on their own. Safe to call repeatedly.
func (o *Orchestrator) StopAllSyncs() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	close(o.stop)
	o.running = false
}

// Running reports whether the periodic tasks are active.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Status returns per-task health keyed by task name.
func (o *Orchestrator) Status() map[string]Status {
	out := make(map[string]Status, len(o.tasks))
	for _, t := range o.tasks {
		out[t.name] = t.snapshot()
	}
	return out
}

// Ready reports whether live data is being refreshed successfully.
func (o *Orchestrator) Ready() bool {
	return o.Status()[TaskLiveMatches].IsReady()
}

func (o *Orchestrator) liveCycle(ctx context.Context, _ <-chan struct{}) (int, error) {
	live, err := o.repo.RefreshLiveMatches(ctx)
	return len(live), err
}

func (o *Orchestrator) leaguesCycle(ctx context.Context, _ <-chan struct{}) (int, error) {
	items, err := o.repo.RefreshLeagues(ctx)
	return len(items), err
}

// standingsCycle refreshes tracked leagues one after another with a pause
// between requests. One league failing does not skip the rest.
func (o *Orchestrator) standingsCycle(ctx context.Context, stop <-chan struct{}) (int, error) {
	var (
		total int
		errs  []error
	)
	for i, leagueID := range o.tracked {
		if i > 0 && !pause(ctx, stop, o.delay) {
			break
		}
		res, err := o.repo.RefreshStandings(ctx, leagueID, 0)
		if err != nil {
			logging.Warn(o.logger, "standings refresh failed", logging.FieldLeague, leagueID, "error", err)
			errs = append(errs, fmt.Errorf("league %d: %w", leagueID, err))
			continue
		}
		total += len(res.Standings)
	}
	return total, errors.Join(errs...)
}

// pause waits d and reports false if stop or ctx ended the wait.
func pause(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}
