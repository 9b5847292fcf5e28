package footballdata

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/providers"
)

func decodePayload(t *testing.T, raw string) providers.Payload {
	t.Helper()
	var p providers.Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return p
}

func withYear(t *testing.T, year int) {
	t.Helper()
	orig := currentYear
	currentYear = func() int { return year }
	t.Cleanup(func() { currentYear = orig })
}

func TestMapStatus(t *testing.T) {
	cases := map[string]matches.Status{
		"SCHEDULED": matches.StatusScheduled,
		"TIMED":     matches.StatusScheduled,
		"IN_PLAY":   matches.StatusLive,
		"LIVE":      matches.StatusLive,
		"PAUSED":    matches.StatusPaused,
		"FINISHED":  matches.StatusFinished,
		"AWARDED":   matches.StatusFinished,
		"POSTPONED": matches.StatusPostponed,
		"CANCELLED": matches.StatusCancelled,
		"CANCELED":  matches.StatusCancelled,
		"SUSPENDED": matches.StatusSuspended,
		"in_play":   matches.StatusLive,
		"":          matches.StatusScheduled,
		"WHATEVER":  matches.StatusScheduled,
	}
	for raw, want := range cases {
		if got := MapStatus(raw); got != want {
			t.Fatalf("MapStatus(%q): expected %s, got %s", raw, want, got)
		}
	}
}

const matchPayload = `{
	"id": 436001,
	"utcDate": "2024-08-17T14:00:00Z",
	"status": "IN_PLAY",
	"minute": 63,
	"matchday": 1,
	"venue": "Emirates Stadium",
	"season": {"startDate": "2024-08-16"},
	"competition": {"id": 2021, "name": "Premier League", "code": "PL", "type": "LEAGUE", "emblem": "pl.png"},
	"area": {"name": "England"},
	"homeTeam": {"id": 57, "name": "Arsenal FC", "shortName": "Arsenal", "tla": "ARS", "crest": "ars.png"},
	"awayTeam": {"id": 76, "name": "Wolverhampton Wanderers FC", "tla": "WOL"},
	"score": {"fullTime": {"home": 1, "away": 0}, "halfTime": {"home": 1, "away": 0}}
}`

func TestMapMatch(t *testing.T) {
	m := MapMatch(decodePayload(t, matchPayload), nil)

	if m.ID != 436001 || m.Status != matches.StatusLive {
		t.Fatalf("unexpected id/status %d %s", m.ID, m.Status)
	}
	if m.Timestamp != 1723903200 {
		t.Fatalf("expected unix timestamp, got %d", m.Timestamp)
	}
	if m.Minute == nil || *m.Minute != 63 {
		t.Fatalf("expected minute 63, got %v", m.Minute)
	}
	if m.HomeTeam.ShortName != "Arsenal" || m.AwayTeam.ShortName != "WOL" {
		t.Fatalf("unexpected short names %q %q", m.HomeTeam.ShortName, m.AwayTeam.ShortName)
	}
	if m.Score.Home == nil || *m.Score.Home != 1 || m.Score.Away == nil || *m.Score.Away != 0 {
		t.Fatalf("unexpected score %+v", m.Score)
	}
	if m.Score.HalfTime == nil {
		t.Fatal("expected half-time line")
	}
	if m.Score.FullTime != nil {
		t.Fatal("expected no full-time line while in play")
	}
	if m.League.ID != 2021 || m.League.Season != 2024 || m.League.Country != "England" || m.League.Type != "league" {
		t.Fatalf("unexpected league %+v", m.League)
	}
	if m.Venue != "Emirates Stadium" {
		t.Fatalf("unexpected venue %q", m.Venue)
	}
}

func TestMapMatchDefaultsMissingFields(t *testing.T) {
	withYear(t, 2031)

	m := MapMatch(map[string]any{"id": 5.0}, nil)

	if m.Status != matches.StatusScheduled {
		t.Fatalf("expected scheduled default, got %s", m.Status)
	}
	if m.Timestamp != 0 || m.Date != "" {
		t.Fatalf("expected empty date defaults, got %q %d", m.Date, m.Timestamp)
	}
	if m.Score.Home != nil || m.Score.Away != nil || m.Score.HalfTime != nil {
		t.Fatalf("expected undetermined score, got %+v", m.Score)
	}
	if m.League.Season != 2031 {
		t.Fatalf("expected current year season default, got %d", m.League.Season)
	}
	if m.Minute != nil {
		t.Fatalf("expected nil minute, got %v", *m.Minute)
	}
}

func TestMapMatchesUsesParentCompetition(t *testing.T) {
	payload := decodePayload(t, `{
		"competition": {"id": 2014, "name": "Primera Division"},
		"matches": [
			{"id": 1, "status": "FINISHED", "score": {"fullTime": {"home": 2, "away": 2}}},
			"garbage",
			{"id": 2, "status": "TIMED"}
		]
	}`)

	got := MapMatches(payload)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches (non-objects skipped), got %d", len(got))
	}
	if got[0].League.ID != 2014 || got[1].League.Name != "Primera Division" {
		t.Fatalf("expected parent competition, got %+v", got[0].League)
	}
	if got[0].Score.FullTime == nil || *got[0].Score.FullTime.Home != 2 {
		t.Fatalf("expected full-time line for finished match, got %+v", got[0].Score)
	}
}

func TestMapLeagues(t *testing.T) {
	withYear(t, 2030)
	payload := decodePayload(t, `{"competitions": [
		{"id": 2021, "name": "Premier League", "type": "LEAGUE", "area": {"name": "England"}, "emblem": "pl.png", "currentSeason": {"startDate": "2024-08-16"}},
		{"id": 2001, "name": "UEFA Champions League", "type": "CUP"}
	]}`)

	got := MapLeagues(payload)
	if len(got) != 2 {
		t.Fatalf("expected 2 leagues, got %d", len(got))
	}
	if got[0].Season != 2024 || got[0].Logo != "pl.png" || got[0].Country != "England" {
		t.Fatalf("unexpected first league %+v", got[0])
	}
	if got[1].Season != 2030 || got[1].Type != "cup" || got[1].Country != "" {
		t.Fatalf("unexpected defaults on second league %+v", got[1])
	}
}

func TestMapStandingsPrefersTotalTable(t *testing.T) {
	payload := decodePayload(t, `{
		"season": {"startDate": "2024-08-16"},
		"standings": [
			{"type": "HOME", "table": [{"position": 1, "team": {"id": 99}}]},
			{"type": "TOTAL", "table": [
				{"position": 1, "team": {"id": 64, "name": "Liverpool FC"}, "playedGames": 10, "won": 8, "draw": 1, "lost": 1, "points": 25, "goalsFor": 21, "goalsAgainst": 6, "goalDifference": 15, "form": "W,W,D"},
				{"position": 2, "team": {"id": 65, "name": "Manchester City FC"}, "playedGames": 10, "won": 7, "goalsFor": 20, "goalsAgainst": 9}
			]}
		]
	}`)

	season, rows := MapStandings(payload)
	if season != 2024 {
		t.Fatalf("expected season 2024, got %d", season)
	}
	if len(rows) != 2 || rows[0].Team.ID != 64 {
		t.Fatalf("expected TOTAL table, got %+v", rows)
	}
	if rows[0].Drawn != 1 || rows[0].Points != 25 || rows[0].Form != "W,W,D" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].GoalDifference != 11 {
		t.Fatalf("expected derived goal difference 11, got %d", rows[1].GoalDifference)
	}
}

func TestMapStandingsEmptyPayload(t *testing.T) {
	withYear(t, 2029)
	season, rows := MapStandings(nil)
	if season != 2029 || len(rows) != 0 || rows == nil {
		t.Fatalf("expected empty non-nil rows with default season, got %d %v", season, rows)
	}
}

func TestMapSeason(t *testing.T) {
	withYear(t, 2030)
	if got := MapSeason(decodePayload(t, `{"season":{"startDate":"2023-08-11"}}`)); got != 2023 {
		t.Fatalf("expected 2023, got %d", got)
	}
	if got := MapSeason(decodePayload(t, `{"scorers":[]}`)); got != 0 {
		t.Fatalf("expected 0 without season, got %d", got)
	}
}

func TestMapTopScorers(t *testing.T) {
	payload := decodePayload(t, `{"scorers": [
		{"player": {"id": 38101, "name": "Erling Haaland", "firstName": "Erling", "nationality": "Norway", "section": "Offence"},
		 "team": {"id": 65, "name": "Manchester City FC"}, "playedMatches": 10, "goals": 12, "assists": null},
		{"player": {"id": 7, "firstName": "Mohamed", "lastName": "Salah"}, "team": {"id": 64}, "goals": 8, "assists": 5}
	]}`)

	got := MapTopScorers(payload)
	if len(got) != 2 {
		t.Fatalf("expected 2 scorers, got %d", len(got))
	}
	if got[0].Goals != 12 || got[0].Appearances != 10 || got[0].Assists != nil {
		t.Fatalf("unexpected first scorer %+v", got[0])
	}
	if got[0].Player.Position != "Offence" {
		t.Fatalf("expected section as position fallback, got %q", got[0].Player.Position)
	}
	if got[1].Player.Name != "Mohamed Salah" || got[1].Assists == nil || *got[1].Assists != 5 {
		t.Fatalf("unexpected second scorer %+v", got[1])
	}
}

func TestMapHeadToHeadWithAggregates(t *testing.T) {
	payload := decodePayload(t, `{
		"aggregates": {"numberOfMatches": 3, "totalGoals": 7,
			"homeTeam": {"id": 57, "name": "Arsenal FC", "wins": 2, "draws": 1},
			"awayTeam": {"id": 61, "name": "Chelsea FC", "wins": 0, "draws": 1}},
		"matches": [{"id": 1, "status": "FINISHED"}]
	}`)

	h2h := MapHeadToHead(payload)
	if h2h.Team1.ID != 57 || h2h.Team2.ID != 61 {
		t.Fatalf("unexpected teams %+v %+v", h2h.Team1, h2h.Team2)
	}
	want := matches.HeadToHeadStats{NumberOfMatches: 3, TotalGoals: 7, Team1Wins: 2, Team2Wins: 0, Draws: 1}
	if h2h.Statistics != want {
		t.Fatalf("expected %+v, got %+v", want, h2h.Statistics)
	}
}

func TestMapHeadToHeadComputesAggregates(t *testing.T) {
	payload := decodePayload(t, `{"matches": [
		{"id": 1, "status": "FINISHED", "homeTeam": {"id": 57}, "awayTeam": {"id": 61}, "score": {"fullTime": {"home": 2, "away": 1}}},
		{"id": 2, "status": "FINISHED", "homeTeam": {"id": 61}, "awayTeam": {"id": 57}, "score": {"fullTime": {"home": 0, "away": 3}}},
		{"id": 3, "status": "FINISHED", "homeTeam": {"id": 61}, "awayTeam": {"id": 57}, "score": {"fullTime": {"home": 1, "away": 1}}},
		{"id": 4, "status": "TIMED", "homeTeam": {"id": 57}, "awayTeam": {"id": 61}}
	]}`)

	h2h := MapHeadToHead(payload)
	want := matches.HeadToHeadStats{NumberOfMatches: 4, TotalGoals: 8, Team1Wins: 2, Team2Wins: 0, Draws: 1}
	if h2h.Statistics != want {
		t.Fatalf("expected %+v, got %+v", want, h2h.Statistics)
	}
}

func TestMapDetails(t *testing.T) {
	payload := decodePayload(t, `{
		"id": 1,
		"homeTeam": {"id": 57, "formation": "4-3-3",
			"lineup": [{"id": 1, "name": "David Raya", "position": "Goalkeeper", "shirtNumber": 22}],
			"bench": [{"id": 2, "name": "Neto"}],
			"statistics": {"ball_possession": 61, "shots": 14}},
		"awayTeam": {"id": 76, "statistics": {"shots": 5}},
		"goals": [{"minute": 25, "type": "REGULAR", "team": {"id": 57}, "scorer": {"name": "Bukayo Saka"}}],
		"bookings": [{"minute": 12, "card": "YELLOW_CARD", "team": {"id": 76}, "player": {"name": "Mario Lemina"}}],
		"substitutions": [{"minute": 70, "team": {"id": 57}, "playerIn": {"name": "Leandro Trossard"}, "playerOut": {"name": "Gabriel Martinelli"}}]
	}`)

	d := MapDetails(payload)
	if len(d.Statistics) != 3 {
		t.Fatalf("expected 3 stats, got %+v", d.Statistics)
	}
	if d.Statistics[0].TeamID != 57 || d.Statistics[0].Type != "ball_possession" || d.Statistics[0].Value != "61" {
		t.Fatalf("unexpected first stat %+v", d.Statistics[0])
	}
	if len(d.Events) != 3 || d.Events[0].Type != matches.EventBooking || d.Events[2].Type != matches.EventSubstitution {
		t.Fatalf("expected minute-ordered events, got %+v", d.Events)
	}
	if len(d.Lineups) != 1 || d.Lineups[0].Formation != "4-3-3" || len(d.Lineups[0].Substitutes) != 1 {
		t.Fatalf("unexpected lineups %+v", d.Lineups)
	}
}

func TestMappingIsIdempotent(t *testing.T) {
	payload := decodePayload(t, `{"matches": [`+matchPayload+`], "scorers": [{"player": {"id": 1}, "goals": 3}]}`)
	before := decodePayload(t, `{"matches": [`+matchPayload+`], "scorers": [{"player": {"id": 1}, "goals": 3}]}`)

	first := MapMatches(payload)
	second := MapMatches(payload)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical matches on repeated mapping")
	}
	if !reflect.DeepEqual(MapTopScorers(payload), MapTopScorers(payload)) {
		t.Fatalf("expected identical scorers on repeated mapping")
	}
	if !reflect.DeepEqual(MapDetails(payload), MapDetails(payload)) {
		t.Fatalf("expected identical details on repeated mapping")
	}
	if !reflect.DeepEqual(payload, before) {
		t.Fatalf("expected mapping to leave the payload untouched")
	}
}
