package fixture

import (
	"context"
	"net/url"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/providers"
)

const (
	premierLeague = 2021
	laLiga        = 2014
	season        = 2024
)

// Provider serves a small static football world in the upstream payload
// shape. Useful for local development without an API key.
type Provider struct {
	now func() time.Time
}

var _ providers.Source = (*Provider)(nil)

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{now: time.Now}
}

// Get resolves endpoint against the fixture routes. Unknown endpoints return
// a not_found upstream error, like the real API.
func (p *Provider) Get(ctx context.Context, endpoint string, params url.Values) (providers.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	build, ok := p.routes()[endpoint]
	if !ok {
		return nil, &providers.UpstreamError{Kind: providers.KindNotFound, StatusCode: 404, Endpoint: endpoint, Message: "no fixture"}
	}
	payload := build()
	if endpoint == providers.PathMatches && params.Get("status") == matches.FilterLive {
		payload = providers.Payload{"matches": filterStatus(payload, "IN_PLAY", "PAUSED")}
	}
	return payload, nil
}

func (p *Provider) Competitions(ctx context.Context) (providers.Payload, error) {
	return p.Get(ctx, providers.PathCompetitions, nil)
}

func (p *Provider) Competition(ctx context.Context, id int) (providers.Payload, error) {
	return p.Get(ctx, providers.CompetitionPath(id, ""), nil)
}

func (p *Provider) CompetitionMatches(ctx context.Context, id int, filter matches.Filter) (providers.Payload, error) {
	payload, err := p.Get(ctx, providers.CompetitionPath(id, "matches"), nil)
	if err != nil || filter.Status == "" {
		return payload, err
	}
	payload["matches"] = filterStatus(payload, filter.Status)
	return payload, nil
}

func (p *Provider) CompetitionStandings(ctx context.Context, id, _ int) (providers.Payload, error) {
	return p.Get(ctx, providers.CompetitionPath(id, "standings"), nil)
}

func (p *Provider) CompetitionScorers(ctx context.Context, id, _, _ int) (providers.Payload, error) {
	return p.Get(ctx, providers.CompetitionPath(id, "scorers"), nil)
}

func (p *Provider) CompetitionTeams(ctx context.Context, id, _ int) (providers.Payload, error) {
	return p.Get(ctx, providers.CompetitionPath(id, "teams"), nil)
}

func (p *Provider) Match(ctx context.Context, id int) (providers.Payload, error) {
	return p.Get(ctx, providers.MatchPath(id, ""), nil)
}

func (p *Provider) LiveMatches(ctx context.Context) (providers.Payload, error) {
	return p.Get(ctx, providers.PathMatches, url.Values{"status": []string{matches.FilterLive}})
}

func (p *Provider) MatchesByDate(ctx context.Context, _ string) (providers.Payload, error) {
	return p.Get(ctx, providers.PathMatches, nil)
}

func (p *Provider) MatchesByDateRange(ctx context.Context, _, _ string) (providers.Payload, error) {
	return p.Get(ctx, providers.PathMatches, nil)
}

func (p *Provider) Team(ctx context.Context, id int) (providers.Payload, error) {
	return p.Get(ctx, providers.TeamPath(id, ""), nil)
}

func (p *Provider) TeamMatches(ctx context.Context, id, _ int) (providers.Payload, error) {
	return p.Get(ctx, providers.TeamPath(id, "matches"), nil)
}

func (p *Provider) HeadToHead(ctx context.Context, matchID, _ int) (providers.Payload, error) {
	return p.Get(ctx, providers.MatchPath(matchID, "head2head"), nil)
}

func (p *Provider) routes() map[string]func() providers.Payload {
	kickoff := p.now().UTC().Truncate(time.Hour)
	all := func() []any { return fixtureMatches(kickoff) }
	return map[string]func() providers.Payload{
		providers.PathCompetitions: func() providers.Payload {
			return providers.Payload{"competitions": []any{competition(premierLeague), competition(laLiga)}}
		},
		providers.CompetitionPath(premierLeague, ""): func() providers.Payload {
			return providers.Payload(competition(premierLeague))
		},
		providers.CompetitionPath(premierLeague, "matches"): func() providers.Payload {
			return providers.Payload{"competition": competition(premierLeague), "matches": all()}
		},
		providers.CompetitionPath(premierLeague, "standings"): func() providers.Payload {
			return providers.Payload{
				"competition": competition(premierLeague),
				"season":      map[string]any{"startDate": "2024-08-16"},
				"standings": []any{map[string]any{"type": "TOTAL", "table": []any{
					standingRow(1, arsenal, 3, 2, 1, 0, 7, 2),
					standingRow(2, liverpool, 3, 2, 0, 1, 5, 3),
					standingRow(3, chelsea, 3, 1, 1, 1, 4, 4),
					standingRow(4, wolves, 3, 0, 0, 3, 1, 8),
				}}},
			}
		},
		providers.CompetitionPath(premierLeague, "scorers"): func() providers.Payload {
			return providers.Payload{"scorers": []any{
				scorer(7001, "Bukayo Saka", arsenal, 4, 3),
				scorer(7002, "Mohamed Salah", liverpool, 3, 2),
			}}
		},
		providers.CompetitionPath(premierLeague, "teams"): func() providers.Payload {
			return providers.Payload{"teams": []any{team(arsenal), team(liverpool), team(chelsea), team(wolves)}}
		},
		providers.PathMatches: func() providers.Payload {
			return providers.Payload{"matches": all()}
		},
		providers.MatchPath(1001, ""): func() providers.Payload {
			return providers.Payload(all()[0].(map[string]any))
		},
		providers.MatchPath(1002, ""): func() providers.Payload {
			return providers.Payload(all()[1].(map[string]any))
		},
		providers.MatchPath(1001, "head2head"): func() providers.Payload {
			return providers.Payload{"matches": []any{all()[2]}}
		},
		providers.TeamPath(arsenal, ""): func() providers.Payload {
			return providers.Payload(team(arsenal))
		},
		providers.TeamPath(arsenal, "matches"): func() providers.Payload {
			return providers.Payload{"matches": []any{all()[0], all()[2]}}
		},
	}
}

func filterStatus(payload providers.Payload, statuses ...string) []any {
	raw, _ := payload["matches"].([]any)
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, status := range statuses {
			if m["status"] == status {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
