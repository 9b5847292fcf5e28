// Package clientcache is the in-process cache tier in front of the
// repository. Slots are keyed by query parameters, expire per family and are
// persisted to a blob store so they survive restarts.
package clientcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/repository"
)

// Family names, also used as persistence keys.
const (
	FamilyLeagues           = "leagues"
	FamilyLiveMatches       = "liveMatches"
	FamilyMatchesByLeague   = "matchesByLeague"
	FamilyMatch             = "match"
	FamilyMatchesByDate     = "matchesByDate"
	FamilyStandingsByLeague = "standingsByLeague"
	FamilyTopScorers        = "topScorers"
	FamilyTeam              = "team"
	FamilyTeamMatches       = "teamMatches"
	FamilyHeadToHead        = "headToHead"
)

// Config wires a Store.
type Config struct {
	Blobs   BlobStore
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Store holds every cache family.
type Store struct {
	blobs    BlobStore
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	families []family

	Leagues           *Family[[]leagues.League]
	LiveMatches       *Family[[]matches.Match]
	MatchesByLeague   *Family[[]matches.Match]
	Match             *Family[matches.Match]
	MatchesByDate     *Family[[]matches.Match]
	StandingsByLeague *Family[[]standings.Standing]
	TopScorers        *Family[[]standings.TopScorer]
	Team              *Family[teams.Team]
	TeamMatches       *Family[[]matches.Match]
	HeadToHead        *Family[matches.HeadToHead]
}

// New builds an empty store. Call Load to restore persisted slots.
func New(cfg Config) *Store {
	if cfg.Blobs == nil {
		cfg.Blobs = NewMemoryBlobStore()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Store{blobs: cfg.Blobs, logger: cfg.Logger, metrics: cfg.Metrics, now: cfg.Now}

	s.Leagues = newFamily[[]leagues.League](s, FamilyLeagues, repository.TTLLeagues)
	s.LiveMatches = newFamily[[]matches.Match](s, FamilyLiveMatches, repository.TTLLive)
	s.MatchesByLeague = newFamily[[]matches.Match](s, FamilyMatchesByLeague, repository.TTLMatches)
	s.Match = newFamily[matches.Match](s, FamilyMatch, repository.TTLMatches)
	s.MatchesByDate = newFamily[[]matches.Match](s, FamilyMatchesByDate, repository.TTLMatches)
	s.StandingsByLeague = newFamily[[]standings.Standing](s, FamilyStandingsByLeague, repository.TTLStandings)
	s.TopScorers = newFamily[[]standings.TopScorer](s, FamilyTopScorers, repository.TTLTopScorers)
	s.Team = newFamily[teams.Team](s, FamilyTeam, repository.TTLTeams)
	s.TeamMatches = newFamily[[]matches.Match](s, FamilyTeamMatches, repository.TTLMatches)
	s.HeadToHead = newFamily[matches.HeadToHead](s, FamilyHeadToHead, repository.TTLHeadToHead)
	return s
}

// Load restores every family from the blob store. Expired slots are kept and
// read as misses. Undecodable families are logged and left empty.
func (s *Store) Load(ctx context.Context) error {
	var errs []error
	for _, f := range s.families {
		raw, ok, err := s.blobs.Get(ctx, f.Name())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		if err := f.load(raw); err != nil {
			logging.Warn(s.logger, "client cache family unreadable", "family", f.Name(), "error", err)
		}
	}
	return errors.Join(errs...)
}

// ClearCache empties every family and the blob store.
func (s *Store) ClearCache(ctx context.Context) error {
	for _, f := range s.families {
		f.clear()
	}
	return s.blobs.Clear(ctx)
}

// ClearExpiredCache drops the stale top-level single slots.
func (s *Store) ClearExpiredCache(ctx context.Context) {
	now := s.now()
	if s.Leagues.expire(SingleKey, now) {
		logging.Debug(s.logger, "client cache slot expired", "family", s.Leagues.Name())
		s.persistFamily(ctx, s.Leagues)
	}
	if s.LiveMatches.expire(SingleKey, now) {
		logging.Debug(s.logger, "client cache slot expired", "family", s.LiveMatches.Name())
		s.persistFamily(ctx, s.LiveMatches)
	}
}

// Close releases the blob store.
func (s *Store) Close() error {
	return s.blobs.Close()
}

func (s *Store) persistFamily(ctx context.Context, f interface {
	Name() string
	snapshot() ([]byte, error)
}) {
	raw, err := f.snapshot()
	s.persist(ctx, f.Name(), raw, err)
}

func (s *Store) persist(ctx context.Context, name string, raw []byte, err error) {
	if err == nil {
		err = s.blobs.Set(ctx, name, raw)
	}
	if err != nil {
		logging.Warn(s.logger, "client cache persist failed", "family", name, "error", err)
	}
}

// Cached serves key from f while valid. Otherwise it calls load and stores a
// successful result, unless the load fell back to rows after a failed
// upstream refresh. hit reports whether the slot answered.
func Cached[T any](ctx context.Context, f *Family[T], key string, load func(context.Context) (T, error)) (data T, hit bool, err error) {
	if v, ok := f.Get(key); ok {
		return v, true, nil
	}
	loadCtx, degraded := repository.TrackDegraded(ctx)
	v, err := load(loadCtx)
	if err != nil {
		return v, false, err
	}
	if degraded() {
		return v, false, nil
	}
	f.Set(ctx, key, v)
	return v, false, nil
}
