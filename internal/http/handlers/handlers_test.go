package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/orchestrator"
	"github.com/preston-bernstein/football-data-service/internal/repository"
	"github.com/preston-bernstein/football-data-service/internal/testutil"
)

// stubRepo answers the calls a test needs; anything else panics.
type stubRepo struct {
	repository.FootballRepository
	leagues    []leagues.League
	err        error
	leagueHits int
	forced     []bool
	from, to   time.Time
}

func (s *stubRepo) Leagues(context.Context) ([]leagues.League, error) {
	s.leagueHits++
	return s.leagues, s.err
}

func (s *stubRepo) MatchByID(_ context.Context, id int, force bool) (matches.Match, error) {
	s.forced = append(s.forced, force)
	return matches.Match{ID: id}, s.err
}

func (s *stubRepo) MatchesByDate(_ context.Context, from, to time.Time) ([]matches.Match, error) {
	s.from, s.to = from, to
	return []matches.Match{}, s.err
}

type stubSyncer struct {
	Syncer
	ready  bool
	status map[string]orchestrator.Status
}

func (s *stubSyncer) Ready() bool { return s.ready }

func (s *stubSyncer) Status() map[string]orchestrator.Status { return s.status }

func route(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/ready", h.Ready)
	r.Get("/health", h.Health)
	r.Get("/leagues", h.Leagues)
	r.Get("/matches", h.MatchesByDate)
	r.Get("/matches/{id}", h.Match)
	return r
}

func TestHealthShuttingDown(t *testing.T) {
	h := NewHandler(Deps{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(route(h), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		sync Syncer
		want int
	}{
		{"no syncer", nil, http.StatusOK},
		{"ready", &stubSyncer{ready: true}, http.StatusOK},
		{"failing", &stubSyncer{status: map[string]orchestrator.Status{
			orchestrator.TaskLiveMatches: {LastError: "upstream down"},
		}}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(Deps{Sync: tc.sync})
			rr := testutil.Serve(route(h), http.MethodGet, "/ready", nil)
			testutil.AssertStatus(t, rr, tc.want)
		})
	}
}

func TestReadyReportsLastError(t *testing.T) {
	h := NewHandler(Deps{Sync: &stubSyncer{status: map[string]orchestrator.Status{
		orchestrator.TaskLiveMatches: {LastError: "upstream down"},
	}}})

	var resp envelope
	testutil.DecodeJSON(t, testutil.Serve(route(h), http.MethodGet, "/ready", nil), &resp)
	if resp.Error != "upstream down" {
		t.Fatalf("expected last error surfaced, got %q", resp.Error)
	}
}

func TestWriteRepoErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("team: %w", repository.ErrNotFound), http.StatusNotFound},
		{repository.ErrNotAvailable, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeRepoError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, nil)
		if rr.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rr.Code)
		}
	}
}

func TestLeaguesServedFromClientCache(t *testing.T) {
	repo := &stubRepo{leagues: []leagues.League{{ID: 2021}}}
	h := NewHandler(Deps{Repo: repo})

	testutil.Serve(route(h), http.MethodGet, "/leagues", nil)
	var resp envelope
	testutil.DecodeJSON(t, testutil.Serve(route(h), http.MethodGet, "/leagues", nil), &resp)

	if repo.leagueHits != 1 {
		t.Fatalf("expected one repository call, got %d", repo.leagueHits)
	}
	if resp.Cached == nil || !*resp.Cached {
		t.Fatal("expected cached flag on second read")
	}
}

func TestLeaguesFailureIsNotCached(t *testing.T) {
	repo := &stubRepo{err: errors.New("store down")}
	h := NewHandler(Deps{Repo: repo})

	rr := testutil.Serve(route(h), http.MethodGet, "/leagues", nil)
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	var resp envelope
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Success || resp.Error != "store down" {
		t.Fatalf("expected failure envelope, got %+v", resp)
	}

	repo.err = nil
	testutil.Serve(route(h), http.MethodGet, "/leagues", nil)
	if repo.leagueHits != 2 {
		t.Fatalf("expected retry to reach repository, got %d calls", repo.leagueHits)
	}
}

func TestMatchRefreshBypassesCaches(t *testing.T) {
	repo := &stubRepo{}
	h := NewHandler(Deps{Repo: repo})

	testutil.Serve(route(h), http.MethodGet, "/matches/1001", nil)
	testutil.Serve(route(h), http.MethodGet, "/matches/1001", nil)
	testutil.Serve(route(h), http.MethodGet, "/matches/1001?refresh=true", nil)

	if len(repo.forced) != 2 || repo.forced[0] || !repo.forced[1] {
		t.Fatalf("expected one cached read then one forced refresh, got %v", repo.forced)
	}
}

func TestMatchesByDateCoversFinalDay(t *testing.T) {
	repo := &stubRepo{}
	h := NewHandler(Deps{Repo: repo})

	rr := testutil.Serve(route(h), http.MethodGet, "/matches?from=2024-08-17&to=2024-08-18", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	wantFrom := time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 8, 18, 23, 59, 59, 0, time.UTC)
	if !repo.from.Equal(wantFrom) || !repo.to.Equal(wantTo) {
		t.Fatalf("expected range %s..%s, got %s..%s", wantFrom, wantTo, repo.from, repo.to)
	}
}

func TestAdminClearCache(t *testing.T) {
	cleared := 0
	tier := clearFunc(func(context.Context) error { cleared++; return nil })
	failing := clearFunc(func(context.Context) error { return errors.New("disk full") })

	cases := []struct {
		name   string
		token  string
		header string
		tiers  []CacheClearer
		want   int
	}{
		{"no token configured", "", "Bearer ", []CacheClearer{tier}, http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", []CacheClearer{tier}, http.StatusUnauthorized},
		{"authorized", "s3cret", "Bearer s3cret", []CacheClearer{tier, tier}, http.StatusOK},
		{"tier failure", "s3cret", "Bearer s3cret", []CacheClearer{failing}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAdminHandler(tc.token, nil, tc.tiers...)
			req := httptest.NewRequest(http.MethodPost, "/admin/cache/clear", nil)
			req.Header.Set("Authorization", tc.header)
			rr := testutil.ServeRequest(http.HandlerFunc(h.ClearCache), req)
			testutil.AssertStatus(t, rr, tc.want)
		})
	}
	if cleared != 2 {
		t.Fatalf("expected both tiers cleared once, got %d", cleared)
	}
}

type clearFunc func(context.Context) error

func (f clearFunc) ClearCache(ctx context.Context) error { return f(ctx) }
