package models

// SavedItem is a title kept in the watch-later list. Title is the identity.
type SavedItem struct {
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	SimilarityScore float64 `json:"similarityScore"`
	Reason          string  `json:"reason"`
	Year            string  `json:"year"`
	Genre           string  `json:"genre"`
	TrailerURL      string  `json:"trailerUrl,omitempty"`
	PosterURL       string  `json:"posterUrl,omitempty"`
}
