package providers

import "fmt"

// Upstream endpoint paths. Shared by the HTTP client and the sync log so both
// describe a call the same way.
const PathCompetitions = "/competitions"

// PathMatches lists matches across competitions.
const PathMatches = "/matches"

// CompetitionPath returns /competitions/{id} or /competitions/{id}/{sub}.
func CompetitionPath(id int, sub string) string {
	if sub == "" {
		return fmt.Sprintf("%s/%d", PathCompetitions, id)
	}
	return fmt.Sprintf("%s/%d/%s", PathCompetitions, id, sub)
}

// MatchPath returns /matches/{id} or /matches/{id}/{sub}.
func MatchPath(id int, sub string) string {
	if sub == "" {
		return fmt.Sprintf("%s/%d", PathMatches, id)
	}
	return fmt.Sprintf("%s/%d/%s", PathMatches, id, sub)
}

// TeamPath returns /teams/{id} or /teams/{id}/{sub}.
func TeamPath(id int, sub string) string {
	if sub == "" {
		return fmt.Sprintf("/teams/%d", id)
	}
	return fmt.Sprintf("/teams/%d/%s", id, sub)
}
