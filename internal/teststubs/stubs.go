package teststubs

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/store"
)

// StubSource is a test double for providers.Source. Responses are keyed by
// endpoint path; Err applies to every endpoint without its own entry.
type StubSource struct {
	mu       sync.Mutex
	Payloads map[string]providers.Payload
	Errs     map[string]error
	Err      error
	Calls    atomic.Int32
	Notify   chan struct{}
	// Block, when set, holds every call until closed or ctx is done.
	Block  chan struct{}
	called []string
	params []url.Values
}

var _ providers.Source = (*StubSource)(nil)

// Set configures the payload returned for endpoint.
func (s *StubSource) Set(endpoint string, payload providers.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Payloads == nil {
		s.Payloads = make(map[string]providers.Payload)
	}
	s.Payloads[endpoint] = payload
}

// Fail configures the error returned for endpoint.
func (s *StubSource) Fail(endpoint string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Errs == nil {
		s.Errs = make(map[string]error)
	}
	s.Errs[endpoint] = err
}

// Endpoints returns every endpoint requested so far, in order.
func (s *StubSource) Endpoints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.called...)
}

// LastParams returns the query of the most recent call.
func (s *StubSource) LastParams() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	return s.params[len(s.params)-1]
}

func (s *StubSource) Get(ctx context.Context, endpoint string, params url.Values) (providers.Payload, error) {
	s.Calls.Add(1)
	s.mu.Lock()
	s.called = append(s.called, endpoint)
	s.params = append(s.params, params)
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	payload, hasPayload := s.Payloads[endpoint]
	err, hasErr := s.Errs[endpoint]
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if hasErr {
		return nil, err
	}
	if hasPayload {
		return payload, nil
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return providers.Payload{}, nil
}

func (s *StubSource) Competitions(ctx context.Context) (providers.Payload, error) {
	return s.Get(ctx, providers.PathCompetitions, nil)
}

func (s *StubSource) Competition(ctx context.Context, id int) (providers.Payload, error) {
	return s.Get(ctx, providers.CompetitionPath(id, ""), nil)
}

func (s *StubSource) CompetitionMatches(ctx context.Context, id int, filter matches.Filter) (providers.Payload, error) {
	return s.Get(ctx, providers.CompetitionPath(id, "matches"), url.Values{"status": []string{filter.Status}})
}

func (s *StubSource) CompetitionStandings(ctx context.Context, id, _ int) (providers.Payload, error) {
	return s.Get(ctx, providers.CompetitionPath(id, "standings"), nil)
}

func (s *StubSource) CompetitionScorers(ctx context.Context, id, _, limit int) (providers.Payload, error) {
	return s.Get(ctx, providers.CompetitionPath(id, "scorers"), url.Values{"limit": {strconv.Itoa(limit)}})
}

func (s *StubSource) CompetitionTeams(ctx context.Context, id, _ int) (providers.Payload, error) {
	return s.Get(ctx, providers.CompetitionPath(id, "teams"), nil)
}

func (s *StubSource) Match(ctx context.Context, id int) (providers.Payload, error) {
	return s.Get(ctx, providers.MatchPath(id, ""), nil)
}

func (s *StubSource) LiveMatches(ctx context.Context) (providers.Payload, error) {
	return s.Get(ctx, providers.PathMatches, url.Values{"status": []string{matches.FilterLive}})
}

func (s *StubSource) MatchesByDate(ctx context.Context, date string) (providers.Payload, error) {
	return s.Get(ctx, providers.PathMatches, url.Values{"date": []string{date}})
}

func (s *StubSource) MatchesByDateRange(ctx context.Context, from, to string) (providers.Payload, error) {
	return s.Get(ctx, providers.PathMatches, url.Values{"dateFrom": []string{from}, "dateTo": []string{to}})
}

func (s *StubSource) Team(ctx context.Context, id int) (providers.Payload, error) {
	return s.Get(ctx, providers.TeamPath(id, ""), nil)
}

func (s *StubSource) TeamMatches(ctx context.Context, id, _ int) (providers.Payload, error) {
	return s.Get(ctx, providers.TeamPath(id, "matches"), nil)
}

func (s *StubSource) HeadToHead(ctx context.Context, matchID, _ int) (providers.Payload, error) {
	return s.Get(ctx, providers.MatchPath(matchID, "head2head"), nil)
}

// RecordingStore wraps a store.Store and records the order of writes.
type RecordingStore struct {
	store.Store
	mu  sync.Mutex
	ops []string
}

// NewRecordingStore wraps an empty memory store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{Store: store.NewMemoryStore()}
}

// Ops returns the recorded write operations.
func (s *RecordingStore) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *RecordingStore) record(op string) {
	s.mu.Lock()
	s.ops = append(s.ops, op)
	s.mu.Unlock()
}

func (s *RecordingStore) UpsertLeagues(ctx context.Context, items []leagues.League, stamp store.Stamp) error {
	s.record("leagues")
	return s.Store.UpsertLeagues(ctx, items, stamp)
}

func (s *RecordingStore) UpsertTeams(ctx context.Context, items []teams.Team, stamp store.Stamp) error {
	s.record("teams")
	return s.Store.UpsertTeams(ctx, items, stamp)
}

func (s *RecordingStore) UpsertPlayers(ctx context.Context, items []players.Player, stamp store.Stamp) error {
	s.record("players")
	return s.Store.UpsertPlayers(ctx, items, stamp)
}

func (s *RecordingStore) UpsertMatches(ctx context.Context, items []matches.Match, stamp store.Stamp) error {
	s.record("matches")
	return s.Store.UpsertMatches(ctx, items, stamp)
}

func (s *RecordingStore) ReplaceStandings(ctx context.Context, leagueID, season int, rows []standings.Standing, stamp store.Stamp) error {
	s.record("standings")
	return s.Store.ReplaceStandings(ctx, leagueID, season, rows, stamp)
}

func (s *RecordingStore) ReplaceTopScorers(ctx context.Context, leagueID, season int, rows []standings.TopScorer, stamp store.Stamp) error {
	s.record("top_scorers")
	return s.Store.ReplaceTopScorers(ctx, leagueID, season, rows, stamp)
}
