package ai

import (
	"bytes"
	"fmt"
	"strings"

	"cinemai/internal/models"
	"cinemai/shared/logging"

	"github.com/goccy/go-json"
)

// looseString accepts a JSON string or number; models sometimes send years as numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = looseString(n.String())
	return nil
}

type recommendationDTO struct {
	Title           string      `json:"title"`
	Type            string      `json:"type"`
	SimilarityScore float64     `json:"similarityScore"`
	Reason          string      `json:"reason"`
	Year            looseString `json:"year"`
	Genre           string      `json:"genre"`
	TrailerURL      string      `json:"trailerUrl"`
	PosterURL       string      `json:"posterUrl"`
}

func parseRecommendations(text string) ([]models.Recommendation, error) {
	var dtos []recommendationDTO
	if err := decodeJSON(text, '[', ']', &dtos); err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, len(dtos))
	for _, d := range dtos {
		recs = append(recs, models.Recommendation{
			Title:           strings.TrimSpace(d.Title),
			Type:            d.Type,
			SimilarityScore: d.SimilarityScore,
			Reason:          d.Reason,
			Year:            string(d.Year),
			Genre:           d.Genre,
			TrailerURL:      strings.TrimSpace(d.TrailerURL),
			PosterURL:       strings.TrimSpace(d.PosterURL),
		})
	}
	return recs, nil
}

func parseSentiment(text string) (*models.SentimentSummary, error) {
	var summary models.SentimentSummary
	if err := decodeJSON(text, '{', '}', &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// decodeJSON unmarshals the outermost open..close span of response into v,
// retrying once on a sanitized copy.
func decodeJSON(response string, open, close byte, v any) error {
	startIdx := strings.IndexByte(response, open)
	endIdx := strings.LastIndexByte(response, close)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
	}
	jsonStr := response[startIdx : endIdx+1]

	err := json.Unmarshal([]byte(jsonStr), v)
	if err == nil {
		return nil
	}
	sanitized := sanitizeJSON(jsonStr)
	if sanitizedErr := json.Unmarshal([]byte(sanitized), v); sanitizedErr != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w (sanitized version also failed: %v)", err, sanitizedErr)
	}
	logging.Warn().Msg("had to sanitize malformed JSON from model")
	return nil
}

// sanitizeJSON escapes stray quotes inside single-line string values.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx != -1 && strings.Contains(line, `"`) {
			key := line[:colonIdx+1]
			value := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(value, `"`) {
				if last := strings.LastIndex(value, `"`); last > 0 {
					content := value[1:last]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					line = key + ` "` + content + `"` + value[last+1:]
				}
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
