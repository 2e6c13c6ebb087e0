package models

// Kind is the content kind of a catalogue record.
type Kind string

const (
	KindMovie  Kind = "Movie"
	KindSeries Kind = "TV Show"
)

// CatalogueRecord is one parsed row of the source media table.
// Columns: show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
type CatalogueRecord struct {
	ShowID      string `json:"show_id"`
	Kind        Kind   `json:"type"`
	Title       string `json:"title"`
	Director    string `json:"director"`
	Cast        string `json:"cast"`
	Country     string `json:"country"`
	DateAdded   string `json:"date_added"`
	ReleaseYear int    `json:"release_year"`
	Rating      string `json:"rating"`
	Duration    string `json:"duration"`
	ListedIn    string `json:"listed_in"`
	Description string `json:"description"`
}
