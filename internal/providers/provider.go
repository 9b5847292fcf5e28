package providers

import (
	"context"
	"errors"
	"net/url"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
)

// ErrProviderUnavailable is returned when no upstream source is configured.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Payload is the schema-less upstream JSON document. It never leaves the
// mapper boundary.
type Payload map[string]any

// Source fetches raw football data from an upstream API.
type Source interface {
	Get(ctx context.Context, endpoint string, params url.Values) (Payload, error)

	Competitions(ctx context.Context) (Payload, error)
	Competition(ctx context.Context, id int) (Payload, error)
	CompetitionMatches(ctx context.Context, id int, filter matches.Filter) (Payload, error)
	CompetitionStandings(ctx context.Context, id, season int) (Payload, error)
	CompetitionScorers(ctx context.Context, id, season, limit int) (Payload, error)
	CompetitionTeams(ctx context.Context, id, season int) (Payload, error)
	Match(ctx context.Context, id int) (Payload, error)
	LiveMatches(ctx context.Context) (Payload, error)
	MatchesByDate(ctx context.Context, date string) (Payload, error)
	MatchesByDateRange(ctx context.Context, from, to string) (Payload, error)
	Team(ctx context.Context, id int) (Payload, error)
	TeamMatches(ctx context.Context, id, limit int) (Payload, error)
	HeadToHead(ctx context.Context, matchID, limit int) (Payload, error)
}
