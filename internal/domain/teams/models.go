package teams

// Team represents the normalized club shape shared by matches, standings and scorers.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Logo      string `json:"logo"`
	Founded   *int   `json:"founded,omitempty"`
	Country   string `json:"country"`
	Venue     string `json:"venue,omitempty"`
}
