package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/repository"
)

type stubRefresher struct {
	mu         sync.Mutex
	calls      []string
	standings  []int
	filters    []matches.Filter
	failLeague int
	err        error
}

func (s *stubRefresher) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *stubRefresher) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (s *stubRefresher) RefreshLiveMatches(context.Context) ([]matches.Match, error) {
	s.record(TaskLiveMatches)
	if s.err != nil {
		return nil, s.err
	}
	return []matches.Match{{ID: 1, Status: matches.StatusLive}}, nil
}

func (s *stubRefresher) RefreshLeagues(context.Context) ([]leagues.League, error) {
	s.record(TaskLeagues)
	return []leagues.League{{ID: 2021}}, s.err
}

func (s *stubRefresher) RefreshStandings(_ context.Context, leagueID, season int) (repository.StandingsResult, error) {
	s.mu.Lock()
	s.standings = append(s.standings, leagueID)
	s.mu.Unlock()
	s.record(TaskStandings)
	if leagueID == s.failLeague {
		return repository.StandingsResult{}, errors.New("upstream down")
	}
	return repository.StandingsResult{Season: 2024, Standings: []standings.Standing{{Position: 1}, {Position: 2}}}, nil
}

func (s *stubRefresher) RefreshTopScorers(_ context.Context, leagueID, season, limit int) (repository.ScorersResult, error) {
	s.record("scorers")
	return repository.ScorersResult{Season: season}, s.err
}

func (s *stubRefresher) RefreshLeagueMatches(_ context.Context, leagueID int, filter matches.Filter) ([]matches.Match, error) {
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	s.record("league_matches")
	return nil, s.err
}

func (s *stubRefresher) RefreshMatch(_ context.Context, id int) (matches.Match, error) {
	s.record("match")
	return matches.Match{ID: id}, s.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestStartRunsEveryTaskImmediately(t *testing.T) {
	repo := &stubRefresher{}
	rec := metrics.NewRecorder()
	o := New(Config{Repo: repo, Metrics: rec, TrackedLeagues: []int{2021, 2014}})

	o.StartAllSyncs(context.Background())
	defer o.StopAllSyncs()

	waitFor(t, func() bool {
		return repo.count(TaskLiveMatches) >= 1 && repo.count(TaskLeagues) >= 1 && repo.count(TaskStandings) >= 2
	})
	waitFor(t, func() bool { return o.Ready() })

	if stats := rec.SyncStats(TaskLiveMatches); stats.Cycles < 1 {
		t.Fatalf("expected live cycle recorded, got %+v", stats)
	}
}

func TestStandingsCycleIsSequentialWithDelay(t *testing.T) {
	repo := &stubRefresher{}
	o := New(Config{Repo: repo, TrackedLeagues: []int{2021, 2014, 2002}, LeagueDelay: 20 * time.Millisecond})

	start := time.Now()
	n, err := o.standingsCycle(context.Background(), make(chan struct{}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected two delays between three leagues, took %s", elapsed)
	}
	if n != 6 {
		t.Fatalf("expected 6 standings rows, got %d", n)
	}
	want := []int{2021, 2014, 2002}
	for i, id := range want {
		if repo.standings[i] != id {
			t.Fatalf("expected league order %v, got %v", want, repo.standings)
		}
	}
}

func TestStandingsCycleContinuesPastFailedLeague(t *testing.T) {
	repo := &stubRefresher{failLeague: 2014}
	o := New(Config{Repo: repo, TrackedLeagues: []int{2021, 2014, 2002}})

	_, err := o.standingsCycle(context.Background(), make(chan struct{}))
	if err == nil {
		t.Fatal("expected cycle error for failed league")
	}
	if len(repo.standings) != 3 {
		t.Fatalf("expected every league attempted, got %v", repo.standings)
	}
}

func TestStandingsCycleStopsDuringDelay(t *testing.T) {
	repo := &stubRefresher{}
	o := New(Config{Repo: repo, TrackedLeagues: []int{2021, 2014}, LeagueDelay: time.Hour})

	stop := make(chan struct{})
	close(stop)
	if _, err := o.standingsCycle(context.Background(), stop); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.standings) != 1 {
		t.Fatalf("expected stop to skip remaining leagues, got %v", repo.standings)
	}
}

func TestPeriodicFailuresAreSwallowedAndTracked(t *testing.T) {
	repo := &stubRefresher{err: errors.New("boom")}
	o := New(Config{Repo: repo, LiveInterval: 5 * time.Millisecond})

	o.StartAllSyncs(context.Background())
	waitFor(t, func() bool { return repo.count(TaskLiveMatches) >= 3 })
	o.StopAllSyncs()

	status := o.Status()[TaskLiveMatches]
	if status.ConsecutiveFailures < 2 {
		t.Fatalf("expected repeated failures tracked, got %+v", status)
	}
	if status.LastError != "boom" {
		t.Fatalf("expected last error boom, got %q", status.LastError)
	}
	if o.Ready() {
		t.Fatal("expected not ready while live refresh fails")
	}
}

func TestStopHaltsTriggers(t *testing.T) {
	repo := &stubRefresher{}
	o := New(Config{Repo: repo, LiveInterval: 5 * time.Millisecond})

	o.StartAllSyncs(context.Background())
	waitFor(t, func() bool { return repo.count(TaskLiveMatches) >= 1 })
	o.StopAllSyncs()
	time.Sleep(10 * time.Millisecond)

	before := repo.count(TaskLiveMatches)
	time.Sleep(30 * time.Millisecond)
	if after := repo.count(TaskLiveMatches); after != before {
		t.Fatalf("expected no cycles after stop; before=%d after=%d", before, after)
	}
	if o.Running() {
		t.Fatal("expected orchestrator stopped")
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	o := New(Config{Repo: &stubRefresher{}})

	o.StopAllSyncs()
	o.StartAllSyncs(context.Background())
	o.StartAllSyncs(context.Background())
	o.StopAllSyncs()
	o.StopAllSyncs()

	if o.Running() {
		t.Fatal("expected stopped")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	o := New(Config{Repo: &stubRefresher{}, LeagueDelay: -1})

	want := map[string]time.Duration{
		TaskLiveMatches: defaultLiveInterval,
		TaskStandings:   defaultStandingsInterval,
		TaskLeagues:     defaultLeaguesInterval,
	}
	for _, task := range o.tasks {
		if task.interval != want[task.name] {
			t.Fatalf("expected %s interval %s, got %s", task.name, want[task.name], task.interval)
		}
	}
	if o.delay != defaultLeagueDelay {
		t.Fatalf("expected default delay, got %s", o.delay)
	}
}

func TestStatusIsReady(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		status Status
		ready  bool
	}{
		{"never succeeded", Status{}, false},
		{"succeeded", Status{LastSuccess: now}, true},
		{"two failures", Status{LastSuccess: now, ConsecutiveFailures: 2}, true},
		{"three failures", Status{LastSuccess: now, ConsecutiveFailures: 3}, false},
	}
	for _, tc := range cases {
		if got := tc.status.IsReady(); got != tc.ready {
			t.Fatalf("%s: expected ready=%v, got %v", tc.name, tc.ready, got)
		}
	}
}

func TestOnDemandSyncsPropagateErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubRefresher{err: boom}
	o := New(Config{Repo: repo})
	ctx := context.Background()

	checks := map[string]func() error{
		"league matches": func() error { _, err := o.SyncLeagueMatches(ctx, 2021, 2024); return err },
		"upcoming":       func() error { _, err := o.SyncUpcomingMatches(ctx, 2021, 0); return err },
		"finished":       func() error { _, err := o.SyncFinishedMatches(ctx, 2021, 0); return err },
		"scorers":        func() error { _, err := o.SyncTopScorers(ctx, 2021, 0, 10); return err },
		"match":          func() error { _, err := o.SyncMatch(ctx, 1001); return err },
		"live":           func() error { _, err := o.SyncLiveMatches(ctx); return err },
		"leagues":        func() error { _, err := o.SyncLeagues(ctx); return err },
	}
	for name, call := range checks {
		if err := call(); !errors.Is(err, boom) {
			t.Fatalf("%s: expected boom, got %v", name, err)
		}
	}
}

func TestOnDemandMatchSyncsUseStatusFilters(t *testing.T) {
	repo := &stubRefresher{}
	o := New(Config{Repo: repo})
	ctx := context.Background()

	_, _ = o.SyncLeagueMatches(ctx, 2021, 2024)
	_, _ = o.SyncUpcomingMatches(ctx, 2021, 2024)
	_, _ = o.SyncFinishedMatches(ctx, 2021, 2024)

	want := []string{"", matches.FilterScheduled, matches.FilterFinished}
	for i, status := range want {
		if repo.filters[i].Status != status || repo.filters[i].Season != 2024 {
			t.Fatalf("call %d: expected status %q season 2024, got %+v", i, status, repo.filters[i])
		}
	}
}
