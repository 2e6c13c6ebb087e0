package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinemai/internal/models"
	"cinemai/shared/config"
	"cinemai/shared/logging"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Completer is the AI completion collaborator.
type Completer interface {
	GetRecommendations(ctx context.Context, query string, excludeTitles []string) ([]models.Recommendation, error)
	GetSentiment(ctx context.Context, title string) (*models.SentimentSummary, error)
	ExplainMatch(ctx context.Context, title, userContext string) (string, error)
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

const chatSystemInstruction = "You are 'CinemAI', a witty, knowledgeable, and personalized movie assistant. " +
	"Your goal is to help users find content they will love. Be concise, friendly, and use emojis. " +
	"If asked for recommendations, list 3 titles with a 1-sentence pitch for each."

// Client talks to Gemini.
type Client struct {
	client         *genai.Client
	model          string
	recommendCount int
}

func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	count := cfg.RecommendCount
	if count <= 0 {
		count = 8
	}
	return &Client{client: client, model: cfg.Model, recommendCount: count}, nil
}

func (c *Client) GetRecommendations(ctx context.Context, query string, excludeTitles []string) ([]models.Recommendation, error) {
	prompt := buildRecommendationPrompt(query, excludeTitles, c.recommendCount)

	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recommendationSchema,
	})
	if errors.Is(err, ErrEmptyResponse) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations for %q: %w", query, err)
	}

	recs, err := parseRecommendations(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommendations for %q: %w", query, err)
	}
	return recs, nil
}

func (c *Client) GetSentiment(ctx context.Context, title string) (*models.SentimentSummary, error) {
	prompt := fmt.Sprintf(`Perform a sentiment analysis for the movie or show "%s" based on general public reception and critics.
Generate a plausible distribution of Positive, Neutral, and Negative sentiment percentages (they must sum to 100).
Write a 1 sentence summary of the general consensus.
Generate 3 representative user reviews (one for each sentiment if possible) that reflect real audience opinions.`, title)

	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   sentimentSchema,
	})
	if errors.Is(err, ErrEmptyResponse) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sentiment for %q: %w", title, err)
	}

	summary, err := parseSentiment(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sentiment for %q: %w", title, err)
	}
	return summary, nil
}

func (c *Client) ExplainMatch(ctx context.Context, title, userContext string) (string, error) {
	prompt := fmt.Sprintf(`Explain why the movie/show "%s" is a good match for a viewer interested in: %s.
Keep it to 2 short, punchy sentences. Start with "You'll love this because..."`, title, userContext)

	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		return "", fmt.Errorf("failed to explain match for %q: %w", title, err)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	chat, err := c.client.Chats.Create(ctx, c.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemInstruction, genai.RoleUser),
	}, toContents(history))
	if err != nil {
		return "", fmt.Errorf("failed to start chat: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	text := result.Text()
	if text == "" {
		logging.Debug().Str("model", c.model).Msg("model returned no text")
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildRecommendationPrompt(query string, excludeTitles []string, count int) string {
	prompt := fmt.Sprintf(`Recommend %d movies or TV shows based on the user query: "%s".
The query might be a specific movie title (find similar), a specific genre, a mood (e.g. 'sad', 'inspiring'), or a plot description.
Focus on content available on Netflix historically or globally.
Provide a match/relevance score (0-100) based on how well it fits the query.
Provide a short, punchy reason for the recommendation (e.g. "Perfect if you like dark humor...").

CRITICAL INSTRUCTIONS FOR MEDIA:
1. TRAILERS: You MUST provide a real, working YouTube URL for the official trailer. Format: 'https://www.youtube.com/watch?v=ID'. Do not hallucinate IDs.
2. POSTERS: Try to provide a valid URL for the poster. If you cannot guarantee a working link, leave it empty string "".`, count, query)

	if len(excludeTitles) > 0 {
		prompt += fmt.Sprintf("\nDo NOT include the following titles in your response: %s. Find different recommendations.",
			strings.Join(excludeTitles, ", "))
	}
	return prompt
}

// toContents converts chat history. Gemini expects the first turn to be the
// user's, so leading model turns (the greeting) are skipped.
func toContents(history []models.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		switch msg.Role {
		case models.ChatRoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleUser))
		case models.ChatRoleModel:
			if len(contents) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleModel))
		}
	}
	return contents
}

var recommendationSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":           {Type: genai.TypeString},
			"type":            {Type: genai.TypeString},
			"similarityScore": {Type: genai.TypeNumber},
			"reason":          {Type: genai.TypeString},
			"year":            {Type: genai.TypeString},
			"genre":           {Type: genai.TypeString},
			"trailerUrl": {
				Type:        genai.TypeString,
				Description: "A valid, real YouTube video URL (format: https://www.youtube.com/watch?v=VIDEO_ID) for the trailer. Do not use shortened URLs if possible.",
			},
			"posterUrl": {
				Type:        genai.TypeString,
				Description: "A publicly accessible URL for the movie poster. If unsure, leave empty.",
			},
		},
		Required: []string{"title", "similarityScore", "reason", "type", "year", "genre", "trailerUrl", "posterUrl"},
	},
}

var sentimentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"positivePercent": {Type: genai.TypeNumber},
		"neutralPercent":  {Type: genai.TypeNumber},
		"negativePercent": {Type: genai.TypeNumber},
		"summary":         {Type: genai.TypeString},
		"sampleReviews": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"author":    {Type: genai.TypeString},
					"text":      {Type: genai.TypeString},
					"sentiment": {Type: genai.TypeString, Enum: []string{"Positive", "Neutral", "Negative"}},
				},
				Required: []string{"author", "text", "sentiment"},
			},
		},
	},
	Required: []string{"positivePercent", "neutralPercent", "negativePercent", "summary", "sampleReviews"},
}
