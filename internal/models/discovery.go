package models

import (
	"math"
	"time"
)

type Recommendation struct {
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	SimilarityScore float64 `json:"similarityScore"` // 0-100, untrusted
	Reason          string  `json:"reason"`
	Year            string  `json:"year"`
	Genre           string  `json:"genre"`
	TrailerURL      string  `json:"trailerUrl,omitempty"`
	PosterURL       string  `json:"posterUrl,omitempty"`
}

// DisplayScore returns the similarity score clamped to [0,100].
func (r Recommendation) DisplayScore() int {
	s := r.SimilarityScore
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return int(math.Round(s))
}

type Polarity string

const (
	PolarityPositive Polarity = "Positive"
	PolarityNeutral  Polarity = "Neutral"
	PolarityNegative Polarity = "Negative"
)

type Review struct {
	Author    string   `json:"author"`
	Text      string   `json:"text"`
	Sentiment Polarity `json:"sentiment"`
}

// SentimentSummary percentages are advisory and are not required to sum to 100.
type SentimentSummary struct {
	PositivePercent float64  `json:"positivePercent"`
	NeutralPercent  float64  `json:"neutralPercent"`
	NegativePercent float64  `json:"negativePercent"`
	Summary         string   `json:"summary"`
	SampleReviews   []Review `json:"sampleReviews"`
}

type DiscoveryResult struct {
	Query           string            `json:"query"`
	Recommendations []Recommendation  `json:"recommendations"`
	Sentiment       *SentimentSummary `json:"sentiment,omitempty"`
}

// Titles returns the recommendation titles in display order.
func (d *DiscoveryResult) Titles() []string {
	if d == nil {
		return nil
	}
	titles := make([]string, 0, len(d.Recommendations))
	for _, r := range d.Recommendations {
		titles = append(titles, r.Title)
	}
	return titles
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type DigestEntry struct {
	Query  string           `json:"query"`
	Result *DiscoveryResult `json:"result"`
}

type DigestReport struct {
	Date     time.Time     `json:"date"`
	Entries  []DigestEntry `json:"entries"`
	Queries  int           `json:"queries"`
	Failures int           `json:"failures"`
}
