package fixture

import "time"

const (
	arsenal   = 57
	chelsea   = 61
	liverpool = 64
	wolves    = 76
)

var fixtureTeams = map[int]map[string]any{
	arsenal:   {"name": "Arsenal FC", "shortName": "Arsenal", "tla": "ARS", "founded": 1886.0, "venue": "Emirates Stadium"},
	chelsea:   {"name": "Chelsea FC", "shortName": "Chelsea", "tla": "CHE", "founded": 1905.0, "venue": "Stamford Bridge"},
	liverpool: {"name": "Liverpool FC", "shortName": "Liverpool", "tla": "LIV", "founded": 1892.0, "venue": "Anfield"},
	wolves:    {"name": "Wolverhampton Wanderers FC", "shortName": "Wolves", "tla": "WOL", "founded": 1877.0, "venue": "Molineux Stadium"},
}

func team(id int) map[string]any {
	out := map[string]any{"id": float64(id), "area": map[string]any{"name": "England"}}
	for k, v := range fixtureTeams[id] {
		out[k] = v
	}
	return out
}

func competition(id int) map[string]any {
	if id == laLiga {
		return map[string]any{
			"id": float64(laLiga), "name": "Primera Division", "code": "PD", "type": "LEAGUE",
			"area": map[string]any{"name": "Spain"}, "currentSeason": map[string]any{"startDate": "2024-08-18"},
		}
	}
	return map[string]any{
		"id": float64(premierLeague), "name": "Premier League", "code": "PL", "type": "LEAGUE",
		"area": map[string]any{"name": "England"}, "currentSeason": map[string]any{"startDate": "2024-08-16"},
	}
}

func score(home, away any) map[string]any {
	return map[string]any{"fullTime": map[string]any{"home": home, "away": away}}
}

func match(id int, kickoff time.Time, status string, home, away int, sc map[string]any) map[string]any {
	return map[string]any{
		"id":          float64(id),
		"utcDate":     kickoff.Format(time.RFC3339),
		"status":      status,
		"matchday":    1.0,
		"competition": competition(premierLeague),
		"season":      map[string]any{"startDate": "2024-08-16"},
		"homeTeam":    team(home),
		"awayTeam":    team(away),
		"score":       sc,
	}
}

func fixtureMatches(kickoff time.Time) []any {
	live := match(1001, kickoff.Add(-time.Hour), "IN_PLAY", arsenal, wolves, score(1.0, 0.0))
	live["minute"] = 63.0
	return []any{
		live,
		match(1002, kickoff.Add(3*time.Hour), "TIMED", liverpool, chelsea, score(nil, nil)),
		match(1003, kickoff.AddDate(0, 0, -7), "FINISHED", chelsea, arsenal, score(1.0, 2.0)),
	}
}

func standingRow(position, teamID, played, won, draw, lost, goalsFor, goalsAgainst int) map[string]any {
	return map[string]any{
		"position":       float64(position),
		"team":           team(teamID),
		"playedGames":    float64(played),
		"won":            float64(won),
		"draw":           float64(draw),
		"lost":           float64(lost),
		"points":         float64(won*3 + draw),
		"goalsFor":       float64(goalsFor),
		"goalsAgainst":   float64(goalsAgainst),
		"goalDifference": float64(goalsFor - goalsAgainst),
	}
}

func scorer(playerID int, name string, teamID, goals, assists int) map[string]any {
	return map[string]any{
		"player":        map[string]any{"id": float64(playerID), "name": name, "nationality": "England", "section": "Offence"},
		"team":          team(teamID),
		"goals":         float64(goals),
		"assists":       float64(assists),
		"playedMatches": 3.0,
	}
}
