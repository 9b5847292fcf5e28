package footballdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers"
)

// Config controls how the client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Limiter    *providers.WindowLimiter
	Recorder   *metrics.Recorder
	Logger     *slog.Logger
}

// Client issues throttled GET requests against the football API and returns raw payloads.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	limiter    *providers.WindowLimiter
	breaker    *gobreaker.CircuitBreaker[providers.Payload]
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

var _ providers.Source = (*Client)(nil)

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = providers.NewWindowLimiter(0, 0, cfg.Logger)
	}
	c := &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		limiter:    limiter,
		metrics:    cfg.Recorder,
		logger:     cfg.Logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[providers.Payload](gobreaker.Settings{
		Name:        providerName,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("upstream circuit state changed",
					slog.String("provider", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	})
	return c
}

// Get waits for a throttle slot and fetches endpoint with params.
// Every failure is returned as a *providers.UpstreamError.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (providers.Payload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &providers.UpstreamError{Kind: providers.KindOther, Endpoint: endpoint, Message: "throttle wait aborted", Err: err}
	}

	start := time.Now()
	payload, err := c.breaker.Execute(func() (providers.Payload, error) {
		return c.do(ctx, endpoint, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &providers.UpstreamError{Kind: providers.KindNetwork, Endpoint: endpoint, Message: "circuit open", Err: err}
	}

	elapsed := time.Since(start)
	c.metrics.RecordProviderAttempt(providerName, elapsed, err)
	if rl, ok := providers.AsRateLimitError(err); ok {
		c.metrics.RecordRateLimit(providerName, rl.RetryAfter)
	}
	if err != nil {
		c.logWarn(ctx, "upstream request failed", endpoint, elapsed, err)
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (providers.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, &providers.UpstreamError{Kind: providers.KindOther, Endpoint: endpoint, Err: err}
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(authHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &providers.UpstreamError{Kind: providers.KindNetwork, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(endpoint, resp, strings.TrimSpace(string(body)))
	}

	var payload providers.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &providers.UpstreamError{Kind: providers.KindOther, Endpoint: endpoint, Message: "decode response", Err: err}
	}
	if payload == nil {
		payload = providers.Payload{}
	}
	return payload, nil
}

func statusError(endpoint string, resp *http.Response, body string) error {
	kind := providers.KindForStatus(resp.StatusCode)
	upErr := &providers.UpstreamError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Message:    fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, body),
	}
	if kind == providers.KindRateLimited {
		upErr.Err = &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp.Header),
			Remaining:  resp.Header.Get(headerRequestsAvailable),
			Message:    body,
		}
	}
	return upErr
}

// countsAsHealthy keeps client-side mistakes and cancellations from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	if upErr, ok := providers.AsUpstreamError(err); ok {
		return upErr.Kind != providers.KindServer && upErr.Kind != providers.KindNetwork
	}
	return false
}

func (c *Client) logWarn(ctx context.Context, msg, endpoint string, elapsed time.Duration, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg,
		slog.String("provider", providerName),
		slog.String("endpoint", endpoint),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.Any("error", err),
	)
}

// Competitions lists available competitions.
func (c *Client) Competitions(ctx context.Context) (providers.Payload, error) {
	return c.Get(ctx, providers.PathCompetitions, nil)
}

// Competition fetches a single competition with its current season.
func (c *Client) Competition(ctx context.Context, id int) (providers.Payload, error) {
	return c.Get(ctx, providers.CompetitionPath(id, ""), nil)
}

// CompetitionMatches fetches a competition's matches narrowed by filter.
func (c *Client) CompetitionMatches(ctx context.Context, id int, filter matches.Filter) (providers.Payload, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	setSeason(params, filter.Season)
	if filter.DateFrom != "" {
		params.Set("dateFrom", filter.DateFrom)
	}
	if filter.DateTo != "" {
		params.Set("dateTo", filter.DateTo)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	return c.Get(ctx, providers.CompetitionPath(id, "matches"), params)
}

// CompetitionStandings fetches the full league table.
func (c *Client) CompetitionStandings(ctx context.Context, id, season int) (providers.Payload, error) {
	params := url.Values{}
	setSeason(params, season)
	return c.Get(ctx, providers.CompetitionPath(id, "standings"), params)
}

// CompetitionScorers fetches the scoring chart.
func (c *Client) CompetitionScorers(ctx context.Context, id, season, limit int) (providers.Payload, error) {
	if limit <= 0 {
		limit = defaultScorersLimit
	}
	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	setSeason(params, season)
	return c.Get(ctx, providers.CompetitionPath(id, "scorers"), params)
}

// CompetitionTeams fetches every team registered for a season.
func (c *Client) CompetitionTeams(ctx context.Context, id, season int) (providers.Payload, error) {
	params := url.Values{}
	setSeason(params, season)
	return c.Get(ctx, providers.CompetitionPath(id, "teams"), params)
}

// Match fetches a single match.
func (c *Client) Match(ctx context.Context, id int) (providers.Payload, error) {
	return c.Get(ctx, providers.MatchPath(id, ""), nil)
}

// LiveMatches fetches matches currently in play across competitions.
func (c *Client) LiveMatches(ctx context.Context) (providers.Payload, error) {
	return c.Get(ctx, providers.PathMatches, url.Values{"status": []string{matches.FilterLive}})
}

// MatchesByDate fetches matches on a YYYY-MM-DD date.
func (c *Client) MatchesByDate(ctx context.Context, date string) (providers.Payload, error) {
	return c.Get(ctx, providers.PathMatches, url.Values{"date": []string{date}})
}

// MatchesByDateRange fetches matches between two YYYY-MM-DD dates.
func (c *Client) MatchesByDateRange(ctx context.Context, from, to string) (providers.Payload, error) {
	return c.Get(ctx, providers.PathMatches, url.Values{"dateFrom": []string{from}, "dateTo": []string{to}})
}

// Team fetches a single team.
func (c *Client) Team(ctx context.Context, id int) (providers.Payload, error) {
	return c.Get(ctx, providers.TeamPath(id, ""), nil)
}

// TeamMatches fetches a team's recent and upcoming matches.
func (c *Client) TeamMatches(ctx context.Context, id, limit int) (providers.Payload, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.Get(ctx, providers.TeamPath(id, "matches"), params)
}

// HeadToHead fetches previous meetings between the sides of a match.
func (c *Client) HeadToHead(ctx context.Context, matchID, limit int) (providers.Payload, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.Get(ctx, providers.MatchPath(matchID, "head2head"), params)
}

func setSeason(params url.Values, season int) {
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
}
