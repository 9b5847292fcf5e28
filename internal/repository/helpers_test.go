package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/metrics"
	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/store"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
	"github.com/preston-bernstein/football-data-service/internal/teststubs"
	"github.com/preston-bernstein/football-data-service/internal/testutil"
)

var t0 = time.Date(2024, 8, 17, 15, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *CachedRepository
	source  *teststubs.StubSource
	store   store.Store
	clock   *testutil.Clock
	metrics *metrics.Recorder
}

func newFixture(st store.Store) *fixture {
	if st == nil {
		st = store.NewMemoryStore()
	}
	c := testutil.NewClock(t0)
	src := &teststubs.StubSource{}
	log := synclog.New(st, nil)
	rec := metrics.NewRecorder()
	repo := NewCached(Config{Source: src, Store: st, SyncLog: log, Metrics: rec})
	repo.up.now = c.Now
	return &fixture{repo: repo, source: src, store: st, clock: c, metrics: rec}
}

func teamPayload(id int) map[string]any {
	return map[string]any{"id": float64(id), "name": fmt.Sprintf("Team %d", id), "shortName": fmt.Sprintf("T%d", id)}
}

func matchPayload(id int, status string, home, away int) map[string]any {
	return map[string]any{
		"id":          float64(id),
		"utcDate":     t0.Format(time.RFC3339),
		"status":      status,
		"competition": map[string]any{"id": 2021.0, "name": "Premier League"},
		"season":      map[string]any{"startDate": "2024-08-16"},
		"homeTeam":    teamPayload(home),
		"awayTeam":    teamPayload(away),
		"score":       map[string]any{"fullTime": map[string]any{"home": 1.0, "away": 0.0}},
	}
}

func matchesPayload(items ...map[string]any) providers.Payload {
	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	return providers.Payload{"matches": list}
}

func standingsPayload(teamIDs ...int) providers.Payload {
	table := make([]any, 0, len(teamIDs))
	for i, id := range teamIDs {
		table = append(table, map[string]any{
			"position": float64(i + 1),
			"team":     teamPayload(id),
			"points":   float64(60 - i),
		})
	}
	return providers.Payload{
		"season":    map[string]any{"startDate": "2024-08-16"},
		"standings": []any{map[string]any{"type": "TOTAL", "table": table}},
	}
}

func leaguesPayload(ids ...int) providers.Payload {
	list := make([]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, map[string]any{
			"id": float64(id), "name": fmt.Sprintf("League %d", id),
			"currentSeason": map[string]any{"startDate": "2024-08-16"},
		})
	}
	return providers.Payload{"competitions": list}
}

func syncRows(f *fixture) []store.SyncLogRecord {
	rows, _ := f.store.RecentSyncLogs(context.Background(), 0)
	return rows
}
