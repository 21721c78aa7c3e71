package chat

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Greeting seeds every new session.
const Greeting = "Hello! I'm SOLIX. Ask me about solar costs, rates, or your roof potential."

// FallbackReply is appended when the assistant cannot be reached.
const FallbackReply = "Connection error. Please try again."

// Message is one entry in the conversation.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// Turn is the wire shape of a history entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
