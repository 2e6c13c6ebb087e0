package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/logging"
)

const (
	DefaultExplainContext = "General Audience"
	ExplainFallback       = "We think you'll love this based on your viewing history and genre preferences."

	ChatGreeting = "Hi! I'm CinemAI 🎬. Tell me your mood or a movie you love, and I'll find your next binge!"
	ChatApology  = "I'm having a bit of trouble connecting to the mainframe right now. Try again in a moment! 🤖"
)

type Explainer interface {
	ExplainMatch(ctx context.Context, title, userContext string) (string, error)
}

type Chatter interface {
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// ExplainMatch returns a short pitch for title. It never fails: any error or
// empty answer yields ExplainFallback.
func ExplainMatch(ctx context.Context, ai Explainer, title, userContext string) string {
	if strings.TrimSpace(userContext) == "" {
		userContext = DefaultExplainContext
	}
	text, err := ai.ExplainMatch(ctx, title, userContext)
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("match explanation failed")
		return ExplainFallback
	}
	if strings.TrimSpace(text) == "" {
		return ExplainFallback
	}
	return text
}

// ChatSession keeps one conversation with the assistant.
type ChatSession struct {
	ai  Chatter
	now func() time.Time

	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewChatSession starts a conversation holding only the greeting.
func NewChatSession(ai Chatter) *ChatSession {
	s := &ChatSession{ai: ai, now: time.Now}
	s.messages = []models.ChatMessage{{Role: models.ChatRoleModel, Text: ChatGreeting, Timestamp: s.now()}}
	return s
}

// Send appends message and the assistant's reply. A blank message is ignored
// and reports false. Failed calls reply with ChatApology.
func (s *ChatSession) Send(ctx context.Context, message string) (models.ChatMessage, bool) {
	if strings.TrimSpace(message) == "" {
		return models.ChatMessage{}, false
	}

	s.mu.Lock()
	history := append([]models.ChatMessage(nil), s.messages...)
	s.messages = append(s.messages, models.ChatMessage{Role: models.ChatRoleUser, Text: message, Timestamp: s.now()})
	s.mu.Unlock()

	text, err := s.ai.Chat(ctx, history, message)
	if err != nil || strings.TrimSpace(text) == "" {
		logging.Warn().Err(err).Msg("chat reply failed")
		text = ChatApology
	}

	reply := models.ChatMessage{Role: models.ChatRoleModel, Text: text, Timestamp: s.now()}
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	return reply, true
}

func (s *ChatSession) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}
