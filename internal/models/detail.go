package models

// Rating represents a third-party rating attached to a detail record
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// ItemDetail represents the full record for a single catalog entry
type ItemDetail struct {
	ID           string    `json:"imdbID"`
	Title        string    `json:"Title"`
	Year         string    `json:"Year"`
	Rated        string    `json:"Rated"`
	Released     string    `json:"Released"`
	Runtime      string    `json:"Runtime"`
	Genre        string    `json:"Genre"`
	Director     string    `json:"Director"`
	Writer       string    `json:"Writer"`
	Actors       string    `json:"Actors"`
	Plot         string    `json:"Plot"`
	Language     string    `json:"Language"`
	Country      string    `json:"Country"`
	Awards       string    `json:"Awards"`
	Poster       string    `json:"Poster"`
	Ratings      []Rating  `json:"Ratings"`
	Metascore    string    `json:"Metascore"`
	IMDbRating   string    `json:"imdbRating"`
	IMDbVotes    string    `json:"imdbVotes"`
	Type         MediaKind `json:"Type"`
	BoxOffice    string    `json:"BoxOffice,omitempty"`
	TotalSeasons string    `json:"totalSeasons,omitempty"`
}

// Summary returns the item fields of the detail record
func (d ItemDetail) Summary() Item {
	return Item{
		ID:     d.ID,
		Title:  d.Title,
		Year:   d.Year,
		Poster: d.Poster,
		Type:   d.Type,
		Rating: d.IMDbRating,
	}
}
