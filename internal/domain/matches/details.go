package matches

// Statistic is a single per-team stat line such as possession or shots.
type Statistic struct {
	TeamID int    `json:"teamId"`
	Type   string `json:"type"`
	Value  string `json:"value"`
}

// Event kinds recorded during a match.
const (
	EventGoal         = "goal"
	EventBooking      = "booking"
	EventSubstitution = "substitution"
)

// Event is a timeline entry: a goal, booking or substitution.
type Event struct {
	Minute     int    `json:"minute"`
	Type       string `json:"type"`
	TeamID     int    `json:"teamId"`
	PlayerName string `json:"playerName"`
	Detail     string `json:"detail,omitempty"`
}

// LineupPlayer is one entry in a team sheet.
type LineupPlayer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	ShirtNumber *int   `json:"shirtNumber,omitempty"`
}

// Lineup is a team's formation, starters and bench for a match.
type Lineup struct {
	TeamID      int            `json:"teamId"`
	Formation   string         `json:"formation,omitempty"`
	StartingXI  []LineupPlayer `json:"startingXI"`
	Substitutes []LineupPlayer `json:"substitutes"`
}

// Details bundles the sub-resources fetched alongside a single match.
type Details struct {
	Statistics []Statistic `json:"statistics"`
	Events     []Event     `json:"events"`
	Lineups    []Lineup    `json:"lineups"`
}
