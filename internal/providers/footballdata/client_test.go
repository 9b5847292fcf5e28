package footballdata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripperFunc, rec *metrics.Recorder) *Client {
	return NewClient(Config{
		BaseURL:    "http://example.com/v4/",
		APIKey:     "secret",
		HTTPClient: &http.Client{Transport: rt},
		Limiter:    providers.NewWindowLimiter(100, time.Minute, nil),
		Recorder:   rec,
	})
}

func TestGetSendsAuthAndParams(t *testing.T) {
	var capturedPath, capturedQuery, capturedAuth string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.Path
		capturedQuery = req.URL.RawQuery
		capturedAuth = req.Header.Get("X-Auth-Token")
		return jsonResponse(http.StatusOK, `{"standings":[]}`), nil
	}, nil)

	payload, err := client.CompetitionStandings(context.Background(), 2021, 2024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if capturedPath != "/v4/competitions/2021/standings" {
		t.Fatalf("unexpected path %s", capturedPath)
	}
	if capturedQuery != "season=2024" {
		t.Fatalf("unexpected query %s", capturedQuery)
	}
	if capturedAuth != "secret" {
		t.Fatalf("expected auth header, got %q", capturedAuth)
	}
	if _, ok := payload["standings"]; !ok {
		t.Fatalf("expected decoded payload, got %v", payload)
	}
}

func TestConvenienceCallsBuildEndpoints(t *testing.T) {
	var got []string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		entry := req.URL.Path
		if req.URL.RawQuery != "" {
			entry += "?" + req.URL.RawQuery
		}
		got = append(got, entry)
		return jsonResponse(http.StatusOK, `{}`), nil
	}, nil)
	ctx := context.Background()

	_, _ = client.Competitions(ctx)
	_, _ = client.Competition(ctx, 2021)
	_, _ = client.CompetitionMatches(ctx, 2021, matches.Filter{Status: matches.FilterScheduled, Season: 2024})
	_, _ = client.CompetitionScorers(ctx, 2021, 0, 0)
	_, _ = client.CompetitionTeams(ctx, 2021, 0)
	_, _ = client.Match(ctx, 99)
	_, _ = client.LiveMatches(ctx)
	_, _ = client.MatchesByDate(ctx, "2024-08-17")
	_, _ = client.MatchesByDateRange(ctx, "2024-08-17", "2024-08-18")
	_, _ = client.Team(ctx, 57)
	_, _ = client.TeamMatches(ctx, 57, 5)
	_, _ = client.HeadToHead(ctx, 99, 10)

	want := []string{
		"/v4/competitions",
		"/v4/competitions/2021",
		"/v4/competitions/2021/matches?season=2024&status=SCHEDULED",
		"/v4/competitions/2021/scorers?limit=10",
		"/v4/competitions/2021/teams",
		"/v4/matches/99",
		"/v4/matches?status=LIVE",
		"/v4/matches?date=2024-08-17",
		"/v4/matches?dateFrom=2024-08-17&dateTo=2024-08-18",
		"/v4/teams/57",
		"/v4/teams/57/matches?limit=5",
		"/v4/matches/99/head2head?limit=10",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestGetClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		kind   providers.ErrorKind
	}{
		{http.StatusBadRequest, providers.KindBadRequest},
		{http.StatusForbidden, providers.KindForbidden},
		{http.StatusNotFound, providers.KindNotFound},
		{http.StatusTooManyRequests, providers.KindRateLimited},
		{http.StatusBadGateway, providers.KindServer},
		{http.StatusTeapot, providers.KindOther},
	}

	for _, tc := range cases {
		client := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(tc.status, `{"message":"nope"}`), nil
		}, nil)

		_, err := client.Match(context.Background(), 1)
		upErr, ok := providers.AsUpstreamError(err)
		if !ok {
			t.Fatalf("status %d: expected upstream error, got %v", tc.status, err)
		}
		if upErr.Kind != tc.kind || upErr.StatusCode != tc.status {
			t.Fatalf("status %d: expected kind %s, got %s (%d)", tc.status, tc.kind, upErr.Kind, upErr.StatusCode)
		}
		if upErr.Endpoint != "/matches/1" {
			t.Fatalf("expected endpoint recorded, got %s", upErr.Endpoint)
		}
	}
}

func TestGetSurfacesRateLimitDetails(t *testing.T) {
	rec := metrics.NewRecorder()
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		resp := jsonResponse(http.StatusTooManyRequests, `{"message":"slow down"}`)
		resp.Header.Set("X-RequestCounter-Reset", "42")
		resp.Header.Set("X-Requests-Available-Minute", "0")
		return resp, nil
	}, rec)

	_, err := client.Competitions(context.Background())
	rl, ok := providers.AsRateLimitError(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.RetryAfter != 42*time.Second || rl.Remaining != "0" {
		t.Fatalf("unexpected rate limit details %+v", rl)
	}
	if rec.RateLimitHits(providerName) != 1 {
		t.Fatalf("expected rate limit recorded, got %d", rec.RateLimitHits(providerName))
	}
	if rec.ProviderErrors(providerName) != 1 {
		t.Fatalf("expected provider error recorded, got %d", rec.ProviderErrors(providerName))
	}
}

func TestGetClassifiesNetworkErrors(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}, nil)

	_, err := client.Team(context.Background(), 57)
	upErr, ok := providers.AsUpstreamError(err)
	if !ok || upErr.Kind != providers.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestGetReportsDecodeFailures(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not json`), nil
	}, nil)

	_, err := client.Team(context.Background(), 57)
	upErr, ok := providers.AsUpstreamError(err)
	if !ok || upErr.Kind != providers.KindOther {
		t.Fatalf("expected other-kind decode error, got %v", err)
	}
}

func TestGetOpensCircuitAfterRepeatedServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusServiceUnavailable, `down`), nil
	}, nil)

	for i := 0; i < breakerFailures; i++ {
		_, _ = client.Competitions(context.Background())
	}
	_, err := client.Competitions(context.Background())

	if got := calls.Load(); got != breakerFailures {
		t.Fatalf("expected %d transport calls before the circuit opened, got %d", breakerFailures, got)
	}
	upErr, ok := providers.AsUpstreamError(err)
	if !ok || upErr.Kind != providers.KindNetwork {
		t.Fatalf("expected circuit-open network error, got %v", err)
	}
}

func TestGetClientErrorsDoNotTripCircuit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusNotFound, `missing`), nil
	}, nil)

	for i := 0; i < breakerFailures+3; i++ {
		_, _ = client.Match(context.Background(), i)
	}
	if got := calls.Load(); got != breakerFailures+3 {
		t.Fatalf("expected every 404 to reach the transport, got %d", got)
	}
}

func TestGetWaitsForThrottle(t *testing.T) {
	client := NewClient(Config{
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
		Limiter: providers.NewWindowLimiter(1, 25*time.Millisecond, nil),
	})

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := client.Competitions(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Fatalf("expected second call to be delayed by the throttle, elapsed %s", elapsed)
	}
}

func TestGetCanceledWhileThrottled(t *testing.T) {
	var calls atomic.Int32
	client := NewClient(Config{
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
		Limiter: providers.NewWindowLimiter(1, time.Hour, nil),
	})
	_, _ = client.Competitions(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.Competitions(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected throttled call not to reach transport, got %d calls", calls.Load())
	}
}
