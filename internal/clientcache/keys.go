package clientcache

import (
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/timeutil"
)

// SingleKey addresses the one slot of the top-level families.
const SingleKey = "all"

func join(parts ...string) string {
	return strings.Join(parts, "-")
}

// KeyID keys single-entity families.
func KeyID(id int) string {
	return strconv.Itoa(id)
}

// KeyMatchesByLeague is leagueId-status-season.
func KeyMatchesByLeague(leagueID int, status string, season int) string {
	return join(strconv.Itoa(leagueID), status, strconv.Itoa(season))
}

// KeyMatchesByDate is from-to in YYYY-MM-DD.
func KeyMatchesByDate(from, to time.Time) string {
	return join(timeutil.FormatUTCDate(from), timeutil.FormatUTCDate(to))
}

// KeyStandings is leagueId-season.
func KeyStandings(leagueID, season int) string {
	return join(strconv.Itoa(leagueID), strconv.Itoa(season))
}

// KeyTopScorers is leagueId-season-limit.
func KeyTopScorers(leagueID, season, limit int) string {
	return join(strconv.Itoa(leagueID), strconv.Itoa(season), strconv.Itoa(limit))
}

// KeyTeamMatches is teamId-limit.
func KeyTeamMatches(teamID, limit int) string {
	return join(strconv.Itoa(teamID), strconv.Itoa(limit))
}

// KeyHeadToHead is matchId-limit.
func KeyHeadToHead(matchID, limit int) string {
	return join(strconv.Itoa(matchID), strconv.Itoa(limit))
}
