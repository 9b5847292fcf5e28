package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

type scope struct{ league, season int }

type liveMatch struct {
	Record[matches.Match]
	live bool
}

// MemoryStore keeps the cache tables in thread-safe maps.
type MemoryStore struct {
	mu         sync.RWMutex
	leagues    map[int]Record[leagues.League]
	teams      map[int]Record[teams.Team]
	players    map[int]Record[players.Player]
	matches    map[int]liveMatch
	standings  map[scope][]Record[standings.Standing]
	scorers    map[scope][]Record[standings.TopScorer]
	statistics map[int]Record[[]matches.Statistic]
	events     map[int]Record[[]matches.Event]
	lineups    map[int]Record[[]matches.Lineup]
	syncLog    []SyncLogRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.leagues = make(map[int]Record[leagues.League])
	s.teams = make(map[int]Record[teams.Team])
	s.players = make(map[int]Record[players.Player])
	s.matches = make(map[int]liveMatch)
	s.standings = make(map[scope][]Record[standings.Standing])
	s.scorers = make(map[scope][]Record[standings.TopScorer])
	s.statistics = make(map[int]Record[[]matches.Statistic])
	s.events = make(map[int]Record[[]matches.Event])
	s.lineups = make(map[int]Record[[]matches.Lineup])
}

func (s *MemoryStore) Leagues(_ context.Context) ([]Record[leagues.League], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record[leagues.League], 0, len(s.leagues))
	for _, l := range s.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value.ID < out[j].Value.ID })
	return out, nil
}

func (s *MemoryStore) UpsertLeagues(_ context.Context, items []leagues.League, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range items {
		s.leagues[l.ID] = Record[leagues.League]{Value: l, Stamp: stamp}
	}
	return nil
}

func (s *MemoryStore) Team(_ context.Context, id int) (Record[teams.Team], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	return t, ok, nil
}

func (s *MemoryStore) UpsertTeams(_ context.Context, items []teams.Team, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range items {
		if t.ID == 0 {
			continue
		}
		s.teams[t.ID] = Record[teams.Team]{Value: t, Stamp: stamp}
	}
	return nil
}

func (s *MemoryStore) UpsertPlayers(_ context.Context, items []players.Player, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range items {
		if p.ID == 0 {
			continue
		}
		s.players[p.ID] = Record[players.Player]{Value: p, Stamp: stamp}
	}
	return nil
}

func (s *MemoryStore) Match(_ context.Context, id int) (Record[matches.Match], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	return m.Record, ok, nil
}

func (s *MemoryStore) LiveMatches(_ context.Context) ([]Record[matches.Match], error) {
	return s.selectMatches(func(m liveMatch) bool { return m.live }, byKickoff, 0), nil
}

func (s *MemoryStore) MatchesByLeague(_ context.Context, leagueID int, q MatchQuery) ([]Record[matches.Match], error) {
	return s.selectMatches(func(m liveMatch) bool {
		v := m.Value
		if v.League.ID != leagueID {
			return false
		}
		if q.Season != 0 && v.League.Season != q.Season {
			return false
		}
		return len(q.Statuses) == 0 || slices.Contains(q.Statuses, v.Status)
	}, byKickoff, q.Limit), nil
}

func (s *MemoryStore) TeamMatches(_ context.Context, teamID, limit int) ([]Record[matches.Match], error) {
	return s.selectMatches(func(m liveMatch) bool {
		return m.Value.HomeTeam.ID == teamID || m.Value.AwayTeam.ID == teamID
	}, byKickoffDesc, limit), nil
}

func (s *MemoryStore) MatchesByDateRange(_ context.Context, from, to time.Time, now time.Time) (DateRange, error) {
	lo, hi := from.Unix(), to.Unix()
	rows := s.selectMatches(func(m liveMatch) bool {
		return m.Value.Timestamp >= lo && m.Value.Timestamp <= hi
	}, byKickoff, 0)

	expired := len(rows) == 0
	for _, r := range rows {
		if !r.Fresh(now) {
			expired = true
			break
		}
	}
	return DateRange{Matches: rows, ExpiredOrEmpty: expired}, nil
}

func (s *MemoryStore) UpsertMatches(_ context.Context, items []matches.Match, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range items {
		s.matches[m.ID] = liveMatch{Record: Record[matches.Match]{Value: m, Stamp: stamp}, live: m.Status.IsLive()}
	}
	return nil
}

func (s *MemoryStore) ClearLiveFlags(_ context.Context, keep []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.matches {
		if m.live && !slices.Contains(keep, id) {
			m.live = false
			s.matches[id] = m
		}
	}
	return nil
}

func (s *MemoryStore) Standings(_ context.Context, leagueID, season int) ([]Record[standings.Standing], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.standings[scope{leagueID, season}]), nil
}

func (s *MemoryStore) ReplaceStandings(_ context.Context, leagueID, season int, rows []standings.Standing, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record[standings.Standing], 0, len(rows))
	for _, r := range rows {
		out = append(out, Record[standings.Standing]{Value: r, Stamp: stamp})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.Position < out[j].Value.Position })
	s.standings[scope{leagueID, season}] = out
	return nil
}

func (s *MemoryStore) TopScorers(_ context.Context, leagueID, season, limit int) ([]Record[standings.TopScorer], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.scorers[scope{leagueID, season}]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return slices.Clone(rows), nil
}

func (s *MemoryStore) ReplaceTopScorers(_ context.Context, leagueID, season int, rows []standings.TopScorer, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record[standings.TopScorer], 0, len(rows))
	for _, r := range rows {
		out = append(out, Record[standings.TopScorer]{Value: r, Stamp: stamp})
	}
	s.scorers[scope{leagueID, season}] = out
	return nil
}

func (s *MemoryStore) Statistics(_ context.Context, matchID int) (Record[[]matches.Statistic], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.statistics[matchID]
	return r, ok, nil
}

func (s *MemoryStore) SaveStatistics(_ context.Context, matchID int, items []matches.Statistic, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statistics[matchID] = Record[[]matches.Statistic]{Value: slices.Clone(items), Stamp: stamp}
	return nil
}

func (s *MemoryStore) Events(_ context.Context, matchID int) (Record[[]matches.Event], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.events[matchID]
	return r, ok, nil
}

func (s *MemoryStore) SaveEvents(_ context.Context, matchID int, items []matches.Event, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[matchID] = Record[[]matches.Event]{Value: slices.Clone(items), Stamp: stamp}
	return nil
}

func (s *MemoryStore) Lineups(_ context.Context, matchID int) (Record[[]matches.Lineup], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.lineups[matchID]
	return r, ok, nil
}

func (s *MemoryStore) SaveLineups(_ context.Context, matchID int, items []matches.Lineup, stamp Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lineups[matchID] = Record[[]matches.Lineup]{Value: slices.Clone(items), Stamp: stamp}
	return nil
}

func (s *MemoryStore) AppendSyncLog(_ context.Context, rec SyncLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLog = append(s.syncLog, rec)
	return nil
}

func (s *MemoryStore) RecentSyncLogs(_ context.Context, limit int) ([]SyncLogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SyncLogRecord, 0, len(s.syncLog))
	for i := len(s.syncLog) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.syncLog[i])
	}
	return out, nil
}

func (s *MemoryStore) SyncLogsSince(_ context.Context, since time.Time) ([]SyncLogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SyncLogRecord
	for i := len(s.syncLog) - 1; i >= 0; i-- {
		if !s.syncLog[i].SyncedAt.Before(since) {
			out = append(out, s.syncLog[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func byKickoff(a, b Record[matches.Match]) bool {
	if a.Value.Timestamp != b.Value.Timestamp {
		return a.Value.Timestamp < b.Value.Timestamp
	}
	return a.Value.ID < b.Value.ID
}

func byKickoffDesc(a, b Record[matches.Match]) bool {
	return byKickoff(b, a)
}

func (s *MemoryStore) selectMatches(keep func(liveMatch) bool, less func(a, b Record[matches.Match]) bool, limit int) []Record[matches.Match] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record[matches.Match], 0)
	for _, m := range s.matches {
		if keep(m) {
			out = append(out, m.Record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
