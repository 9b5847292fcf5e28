package standings

import (
	"github.com/preston-bernstein/football-data-service/internal/domain/players"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

// Standing is one row of a league table.
type Standing struct {
	Position       int        `json:"position"`
	Team           teams.Team `json:"team"`
	Played         int        `json:"played"`
	Won            int        `json:"won"`
	Drawn          int        `json:"drawn"`
	Lost           int        `json:"lost"`
	GoalsFor       int        `json:"goalsFor"`
	GoalsAgainst   int        `json:"goalsAgainst"`
	GoalDifference int        `json:"goalDifference"`
	Points         int        `json:"points"`
	Form           string     `json:"form,omitempty"`
	Description    string     `json:"description,omitempty"`
}

// TopScorer is one row of a league's scoring chart.
type TopScorer struct {
	Player      players.Player `json:"player"`
	Team        teams.Team     `json:"team"`
	Goals       int            `json:"goals"`
	Assists     *int           `json:"assists,omitempty"`
	Appearances int            `json:"appearances"`
}
