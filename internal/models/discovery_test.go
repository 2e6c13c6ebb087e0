package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayScore(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{92.4, 92},
		{92.5, 93},
		{-3, 0},
		{140, 100},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommendation{SimilarityScore: tt.score}.DisplayScore(), "score %v", tt.score)
	}
}

func TestDiscoveryResultTitles(t *testing.T) {
	var nilResult *DiscoveryResult
	assert.Nil(t, nilResult.Titles())

	r := &DiscoveryResult{Recommendations: []Recommendation{{Title: "Dark"}, {Title: "1899"}}}
	assert.Equal(t, []string{"Dark", "1899"}, r.Titles())
}
