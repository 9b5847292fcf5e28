package footballdata

import (
	"strings"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/matches"
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/standings"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
	"github.com/preston-bernstein/football-data-service/internal/timeutil"
)

// currentYear is the season default when the payload carries none.
var currentYear = func() int { return time.Now().UTC().Year() }

// MapStatus normalizes the upstream status vocabulary. Unknown values map to scheduled.
func MapStatus(raw string) matches.Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCHEDULED", "TIMED":
		return matches.StatusScheduled
	case "IN_PLAY", "LIVE":
		return matches.StatusLive
	case "PAUSED":
		return matches.StatusPaused
	case "FINISHED", "AWARDED":
		return matches.StatusFinished
	case "POSTPONED":
		return matches.StatusPostponed
	case "CANCELLED", "CANCELED":
		return matches.StatusCancelled
	case "SUSPENDED":
		return matches.StatusSuspended
	default:
		return matches.StatusScheduled
	}
}

// MapTeam converts a team object.
func MapTeam(m map[string]any) teams.Team {
	name := str(m, "name")
	return teams.Team{
		ID:        intOr(m, "id", 0),
		Name:      name,
		ShortName: firstNonEmpty(str(m, "shortName"), str(m, "tla"), name),
		Logo:      firstNonEmpty(str(m, "crest"), str(m, "logo")),
		Founded:   intPtr(m, "founded"),
		Country:   firstNonEmpty(str(obj(m, "area"), "name"), str(m, "country")),
		Venue:     str(m, "venue"),
	}
}

// MapTeams converts the "teams" list of a payload.
func MapTeams(m map[string]any) []teams.Team {
	items := list(m, "teams")
	out := make([]teams.Team, 0, len(items))
	for _, item := range items {
		out = append(out, MapTeam(item))
	}
	return out
}

// MapLeague converts a competition object.
func MapLeague(m map[string]any) leagues.League {
	return leagues.League{
		ID:      intOr(m, "id", 0),
		Name:    str(m, "name"),
		Code:    str(m, "code"),
		Country: firstNonEmpty(str(obj(m, "area"), "name"), str(m, "country")),
		Logo:    firstNonEmpty(str(m, "emblem"), str(m, "logo")),
		Season:  seasonYear(firstNonNil(obj(m, "currentSeason"), obj(m, "season"))),
		Type:    leagueType(str(m, "type")),
	}
}

// MapLeagues converts the "competitions" list of a payload.
func MapLeagues(m map[string]any) []leagues.League {
	items := list(m, "competitions")
	out := make([]leagues.League, 0, len(items))
	for _, item := range items {
		out = append(out, MapLeague(item))
	}
	return out
}

// MapMatch converts a match object. The league is taken from the match's own
// competition, falling back to the enclosing payload's competition.
func MapMatch(m map[string]any, parent map[string]any) matches.Match {
	competition := firstNonNil(obj(m, "competition"), obj(parent, "competition"))
	league := MapLeague(competition)
	if season := obj(m, "season"); season != nil {
		league.Season = seasonYear(season)
	}
	if league.Country == "" {
		league.Country = str(firstNonNil(obj(m, "area"), obj(parent, "area")), "name")
	}

	date := str(m, "utcDate")
	status := MapStatus(str(m, "status"))
	return matches.Match{
		ID:        intOr(m, "id", 0),
		Date:      date,
		Timestamp: unixSeconds(date),
		Status:    status,
		Minute:    intPtr(m, "minute"),
		Matchday:  intPtr(m, "matchday"),
		HomeTeam:  MapTeam(obj(m, "homeTeam")),
		AwayTeam:  MapTeam(obj(m, "awayTeam")),
		Score:     mapScore(obj(m, "score"), status),
		League:    league,
		Venue:     str(m, "venue"),
	}
}

// MapMatches converts the "matches" list of a payload.
func MapMatches(m map[string]any) []matches.Match {
	items := list(m, "matches")
	out := make([]matches.Match, 0, len(items))
	for _, item := range items {
		out = append(out, MapMatch(item, m))
	}
	return out
}

func mapScore(m map[string]any, status matches.Status) matches.Score {
	full := obj(m, "fullTime")
	score := matches.Score{
		Home: intPtr(full, "home"),
		Away: intPtr(full, "away"),
	}
	if half := mapScoreLine(obj(m, "halfTime")); half != nil {
		score.HalfTime = half
	}
	if status == matches.StatusFinished {
		score.FullTime = mapScoreLine(full)
	}
	return score
}

func mapScoreLine(m map[string]any) *matches.ScoreLine {
	line := matches.ScoreLine{Home: intPtr(m, "home"), Away: intPtr(m, "away")}
	if line.Home == nil && line.Away == nil {
		return nil
	}
	return &line
}

// MapStanding converts one row of a league table.
func MapStanding(m map[string]any) standings.Standing {
	goalsFor := intOr(m, "goalsFor", 0)
	goalsAgainst := intOr(m, "goalsAgainst", 0)
	return standings.Standing{
		Position:       intOr(m, "position", 0),
		Team:           MapTeam(obj(m, "team")),
		Played:         intOr(m, "playedGames", 0),
		Won:            intOr(m, "won", 0),
		Drawn:          intOr(m, "draw", 0),
		Lost:           intOr(m, "lost", 0),
		GoalsFor:       goalsFor,
		GoalsAgainst:   goalsAgainst,
		GoalDifference: intOr(m, "goalDifference", goalsFor-goalsAgainst),
		Points:         intOr(m, "points", 0),
		Form:           str(m, "form"),
		Description:    str(m, "description"),
	}
}

// MapStandings converts the overall table of a standings payload and returns
// the season it belongs to. The TOTAL table wins over home/away splits.
func MapStandings(m map[string]any) (int, []standings.Standing) {
	groups := list(m, "standings")
	var table []map[string]any
	for _, group := range groups {
		if strings.EqualFold(str(group, "type"), "TOTAL") {
			table = list(group, "table")
			break
		}
	}
	if table == nil && len(groups) > 0 {
		table = list(groups[0], "table")
	}

	out := make([]standings.Standing, 0, len(table))
	for _, row := range table {
		out = append(out, MapStanding(row))
	}
	return seasonYear(obj(m, "season")), out
}

// MapSeason returns the season a payload belongs to, or 0 when it names none.
func MapSeason(m map[string]any) int {
	season := obj(m, "season")
	if season == nil {
		return 0
	}
	return seasonYear(season)
}

// MapPlayer converts a player object.
func MapPlayer(m map[string]any) players.Player {
	first := str(m, "firstName")
	last := str(m, "lastName")
	name := str(m, "name")
	if name == "" {
		name = strings.TrimSpace(first + " " + last)
	}
	return players.Player{
		ID:          intOr(m, "id", 0),
		Name:        name,
		FirstName:   first,
		LastName:    last,
		Nationality: str(m, "nationality"),
		Position:    firstNonEmpty(str(m, "position"), str(m, "section")),
		DateOfBirth: str(m, "dateOfBirth"),
		ShirtNumber: intPtr(m, "shirtNumber"),
	}
}

// MapTopScorer converts one row of a scorers payload.
func MapTopScorer(m map[string]any) standings.TopScorer {
	return standings.TopScorer{
		Player:      MapPlayer(obj(m, "player")),
		Team:        MapTeam(obj(m, "team")),
		Goals:       intOr(m, "goals", 0),
		Assists:     intPtr(m, "assists"),
		Appearances: intOr(m, "playedMatches", 0),
	}
}

// MapTopScorers converts the "scorers" list of a payload.
func MapTopScorers(m map[string]any) []standings.TopScorer {
	items := list(m, "scorers")
	out := make([]standings.TopScorer, 0, len(items))
	for _, item := range items {
		out = append(out, MapTopScorer(item))
	}
	return out
}

// MapHeadToHead converts a head2head payload. Aggregates are computed from
// the match list when the payload omits them.
func MapHeadToHead(m map[string]any) matches.HeadToHead {
	history := MapMatches(m)
	agg := obj(m, "aggregates")
	home := obj(agg, "homeTeam")
	away := obj(agg, "awayTeam")

	h2h := matches.HeadToHead{
		Team1:   MapTeam(home),
		Team2:   MapTeam(away),
		Matches: history,
	}
	if agg != nil {
		h2h.Statistics = matches.HeadToHeadStats{
			NumberOfMatches: intOr(agg, "numberOfMatches", len(history)),
			TotalGoals:      intOr(agg, "totalGoals", 0),
			Team1Wins:       intOr(home, "wins", 0),
			Team2Wins:       intOr(away, "wins", 0),
			Draws:           intOr(home, "draws", 0),
		}
		return h2h
	}

	if len(history) > 0 {
		h2h.Team1 = history[0].HomeTeam
		h2h.Team2 = history[0].AwayTeam
	}
	h2h.Statistics = aggregate(h2h.Team1.ID, history)
	return h2h
}

func aggregate(team1 int, history []matches.Match) matches.HeadToHeadStats {
	stats := matches.HeadToHeadStats{NumberOfMatches: len(history)}
	for _, match := range history {
		if match.Score.Home == nil || match.Score.Away == nil {
			continue
		}
		home, away := *match.Score.Home, *match.Score.Away
		stats.TotalGoals += home + away
		switch {
		case home == away:
			stats.Draws++
		case (home > away) == (match.HomeTeam.ID == team1):
			stats.Team1Wins++
		default:
			stats.Team2Wins++
		}
	}
	return stats
}

// MapDetails extracts statistics, timeline events and lineups from a full match payload.
func MapDetails(m map[string]any) matches.Details {
	details := matches.Details{
		Statistics: []matches.Statistic{},
		Events:     []matches.Event{},
		Lineups:    []matches.Lineup{},
	}

	for _, side := range []string{"homeTeam", "awayTeam"} {
		team := obj(m, side)
		teamID := intOr(team, "id", 0)
		for key, value := range obj(team, "statistics") {
			details.Statistics = append(details.Statistics, matches.Statistic{
				TeamID: teamID,
				Type:   key,
				Value:  scalar(value),
			})
		}
		lineup := list(team, "lineup")
		bench := list(team, "bench")
		if len(lineup) > 0 || len(bench) > 0 {
			details.Lineups = append(details.Lineups, matches.Lineup{
				TeamID:      teamID,
				Formation:   str(team, "formation"),
				StartingXI:  mapLineupPlayers(lineup),
				Substitutes: mapLineupPlayers(bench),
			})
		}
	}
	sortStatistics(details.Statistics)

	for _, goal := range list(m, "goals") {
		details.Events = append(details.Events, matches.Event{
			Minute:     intOr(goal, "minute", 0),
			Type:       matches.EventGoal,
			TeamID:     intOr(obj(goal, "team"), "id", 0),
			PlayerName: str(obj(goal, "scorer"), "name"),
			Detail:     str(goal, "type"),
		})
	}
	for _, booking := range list(m, "bookings") {
		details.Events = append(details.Events, matches.Event{
			Minute:     intOr(booking, "minute", 0),
			Type:       matches.EventBooking,
			TeamID:     intOr(obj(booking, "team"), "id", 0),
			PlayerName: str(obj(booking, "player"), "name"),
			Detail:     str(booking, "card"),
		})
	}
	for _, sub := range list(m, "substitutions") {
		details.Events = append(details.Events, matches.Event{
			Minute:     intOr(sub, "minute", 0),
			Type:       matches.EventSubstitution,
			TeamID:     intOr(obj(sub, "team"), "id", 0),
			PlayerName: str(obj(sub, "playerIn"), "name"),
			Detail:     str(obj(sub, "playerOut"), "name"),
		})
	}
	sortEvents(details.Events)
	return details
}

func mapLineupPlayers(items []map[string]any) []matches.LineupPlayer {
	out := make([]matches.LineupPlayer, 0, len(items))
	for _, item := range items {
		out = append(out, matches.LineupPlayer{
			ID:          intOr(item, "id", 0),
			Name:        str(item, "name"),
			Position:    str(item, "position"),
			ShirtNumber: intPtr(item, "shirtNumber"),
		})
	}
	return out
}

func seasonYear(season map[string]any) int {
	if start := str(season, "startDate"); len(start) >= 4 {
		if t, err := timeutil.ParseDate(start); err == nil {
			return t.Year()
		}
	}
	if year, ok := intVal(season, "year"); ok && year > 0 {
		return year
	}
	return currentYear()
}

func leagueType(raw string) string {
	if raw == "" {
		return "league"
	}
	return strings.ToLower(raw)
}

func unixSeconds(date string) int64 {
	if date == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return 0
	}
	return t.Unix()
}

func firstNonNil(maps ...map[string]any) map[string]any {
	for _, m := range maps {
		if m != nil {
			return m
		}
	}
	return nil
}
