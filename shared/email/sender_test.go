package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.DigestReport {
	return &models.DigestReport{
		Date:     time.Date(2026, 10, 9, 18, 0, 0, 0, time.UTC),
		Queries:  2,
		Failures: 1,
		Entries: []models.DigestEntry{{
			Query: "Inception",
			Result: &models.DiscoveryResult{
				Query: "Inception",
				Recommendations: []models.Recommendation{{
					Title:           "Dark & Stormy",
					Type:            "Movie",
					Year:            "2014",
					SimilarityScore: 92.4,
					Reason:          "Mind-bending",
					TrailerURL:      "https://www.youtube.com/watch?v=zSWdZVtXT7E",
				}},
				Sentiment: &models.SentimentSummary{PositivePercent: 86.6, Summary: "Critics adore it"},
			},
		}},
	}
}

func TestGenerateEmailBody(t *testing.T) {
	body, err := generateEmailBody(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, body, "Dark &amp; Stormy")
	assert.Contains(t, body, "92% Match")
	assert.Contains(t, body, "87% positive")
	assert.Contains(t, body, "1 of 2 searches, 1 failed")
	assert.Contains(t, body, "https://placehold.co/400x600/18181b/404040?text=Dark%20%26%20Stormy")
	assert.Contains(t, body, "Watch trailer")
}

func TestSendReport(t *testing.T) {
	cfg := &config.EmailConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		FromEmail:  "bot@example.com",
		ToEmail:    "me@example.com",
	}

	t.Run("sends html", func(t *testing.T) {
		s := NewSender(cfg)
		var gotAddr string
		var gotMsg []byte
		s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotMsg = addr, msg
			assert.Equal(t, "bot@example.com", from)
			assert.Equal(t, []string{"me@example.com"}, to)
			return nil
		}

		require.NoError(t, s.SendReport(sampleReport()))
		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.Contains(t, string(gotMsg), "Subject: CinemAI Discovery Digest - 1 Picks Lists (Oct 9, 2026)")
		assert.Contains(t, string(gotMsg), "Content-Type: text/html")
	})

	t.Run("empty report is skipped", func(t *testing.T) {
		s := NewSender(cfg)
		s.send = func(string, smtp.Auth, string, []string, []byte) error {
			t.Fatal("should not send")
			return nil
		}
		require.NoError(t, s.SendReport(&models.DigestReport{}))
	})

	t.Run("nil report", func(t *testing.T) {
		assert.Error(t, NewSender(cfg).SendReport(nil))
	})

	t.Run("smtp failure is wrapped", func(t *testing.T) {
		s := NewSender(cfg)
		s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
		err := s.SendReport(sampleReport())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refused")
	})
}
