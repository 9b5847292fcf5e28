package matches

import (
	"github.com/preston-bernstein/football-data-service/internal/domain/leagues"
	"github.com/preston-bernstein/football-data-service/internal/domain/teams"
)

// Status is the normalized match lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusInPlay    Status = "in_play"
	StatusPaused    Status = "paused"
	StatusFinished  Status = "finished"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
	StatusSuspended Status = "suspended"
)

// IsLive reports whether a match in this state is currently being played.
func (s Status) IsLive() bool {
	switch s {
	case StatusLive, StatusInPlay, StatusPaused:
		return true
	default:
		return false
	}
}

// ScoreLine is a home/away pair where either side may still be unknown.
type ScoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Score captures the running score plus the half-time and full-time lines when known.
type Score struct {
	Home     *int       `json:"home"`
	Away     *int       `json:"away"`
	HalfTime *ScoreLine `json:"halftime,omitempty"`
	FullTime *ScoreLine `json:"fulltime,omitempty"`
}

// Match is the canonical fixture shape exposed by the service.
type Match struct {
	ID        int            `json:"id"`
	Date      string         `json:"date"`
	Timestamp int64          `json:"timestamp"`
	Status    Status         `json:"status"`
	Minute    *int           `json:"minute,omitempty"`
	Matchday  *int           `json:"matchday,omitempty"`
	HomeTeam  teams.Team     `json:"homeTeam"`
	AwayTeam  teams.Team     `json:"awayTeam"`
	Score     Score          `json:"score"`
	League    leagues.League `json:"league"`
	Venue     string         `json:"venue,omitempty"`
}

// Filter narrows a league's match list. Zero values mean "no constraint".
type Filter struct {
	Status   string
	Season   int
	DateFrom string
	DateTo   string
	Limit    int
}

// Upstream status filters understood by the football API.
const (
	FilterScheduled = "SCHEDULED"
	FilterFinished  = "FINISHED"
	FilterLive      = "LIVE"
)

// HeadToHeadStats aggregates results across previous meetings.
type HeadToHeadStats struct {
	NumberOfMatches int `json:"numberOfMatches"`
	TotalGoals      int `json:"totalGoals"`
	Team1Wins       int `json:"team1Wins"`
	Team2Wins       int `json:"team2Wins"`
	Draws           int `json:"draws"`
}

// HeadToHead lists previous meetings between the two sides of a match.
type HeadToHead struct {
	Team1      teams.Team      `json:"team1"`
	Team2      teams.Team      `json:"team2"`
	Matches    []Match         `json:"matches"`
	Statistics HeadToHeadStats `json:"statistics"`
}
