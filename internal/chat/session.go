package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("solix/chat")

// Replier produces the assistant's answer to message given the history,
// which already ends with message.
type Replier interface {
	Reply(ctx context.Context, message string, history []Turn) (string, error)
}

// Session is one conversation with the assistant. Sends are not serialized:
// concurrent replies are appended in the order they arrive.
type Session struct {
	replier Replier

	mu       sync.Mutex
	messages []Message
	pending  int
	now      func() time.Time
}

// NewSession starts a conversation seeded with the greeting.
func NewSession(r Replier) *Session {
	s := &Session{replier: r, now: time.Now}
	s.messages = []Message{s.newMessage(RoleBot, Greeting)}
	return s
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// IsAwaitingReply reports whether any send is still waiting on the assistant.
func (s *Session) IsAwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// SendMessage appends text as a user message and blocks until the bot
// reply (or the fallback) is appended. Blank text is ignored and reports
// false.
func (s *Session) SendMessage(ctx context.Context, text string) (Message, bool) {
	if strings.TrimSpace(text) == "" {
		return Message{}, false
	}

	s.mu.Lock()
	s.messages = append(s.messages, s.newMessage(RoleUser, text))
	history := make([]Turn, len(s.messages))
	for i, m := range s.messages {
		history[i] = Turn{Role: m.Role, Content: m.Content}
	}
	s.pending++
	s.mu.Unlock()

	ctx, span := tracer.Start(ctx, "chat.send")
	span.SetAttributes(attribute.Int("chat.history_len", len(history)))
	defer span.End()

	content, err := s.replier.Reply(ctx, text, history)
	if err != nil {
		log.Printf("[chat] reply failed: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		content = FallbackReply
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	reply := s.newMessage(RoleBot, content)
	s.messages = append(s.messages, reply)
	return reply, true
}

func (s *Session) newMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content, SentAt: s.now()}
}
