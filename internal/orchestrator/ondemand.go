package orchestrator

import (
	"context"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/repository"
)

// On-demand refreshes return the repository's error unchanged.

func (o *Orchestrator) SyncLeagueMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error) {
	return o.repo.RefreshLeagueMatches(ctx, leagueID, matches.Filter{Season: season})
}

func (o *Orchestrator) SyncUpcomingMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error) {
	return o.repo.RefreshLeagueMatches(ctx, leagueID, matches.Filter{Season: season, Status: matches.FilterScheduled})
}

func (o *Orchestrator) SyncFinishedMatches(ctx context.Context, leagueID, season int) ([]matches.Match, error) {
	return o.repo.RefreshLeagueMatches(ctx, leagueID, matches.Filter{Season: season, Status: matches.FilterFinished})
}

func (o *Orchestrator) SyncTopScorers(ctx context.Context, leagueID, season, limit int) (repository.ScorersResult, error) {
	return o.repo.RefreshTopScorers(ctx, leagueID, season, limit)
}

func (o *Orchestrator) SyncMatch(ctx context.Context, id int) (matches.Match, error) {
	return o.repo.RefreshMatch(ctx, id)
}

func (o *Orchestrator) SyncStandings(ctx context.Context, leagueID, season int) (repository.StandingsResult, error) {
	return o.repo.RefreshStandings(ctx, leagueID, season)
}

func (o *Orchestrator) SyncLiveMatches(ctx context.Context) ([]matches.Match, error) {
	return o.repo.RefreshLiveMatches(ctx)
}

func (o *Orchestrator) SyncLeagues(ctx context.Context) ([]leagues.League, error) {
	return o.repo.RefreshLeagues(ctx)
}
