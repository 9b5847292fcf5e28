package leagues

// League represents a competition and the season it is currently playing.
type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
	Season  int    `json:"season"`
	Type    string `json:"type"`
}
