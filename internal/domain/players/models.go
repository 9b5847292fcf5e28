package players

// Player represents the normalized player shape referenced by scorer tables.
type Player struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Nationality string `json:"nationality"`
	Position    string `json:"position"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	ShirtNumber *int   `json:"shirtNumber,omitempty"`
}
