// Package session holds the per-user request context: who is asking, their
// conversation so far, and where it persists. Nothing here is process-global;
// a Session is constructed explicitly and passed to the pipeline.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the ordered message history of one user.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// Session binds a user to their conversation for the lifetime of a chat.
type Session struct {
	UserID       string
	Conversation *Conversation

	now func() time.Time
}

func New(userID string, conv *Conversation) *Session {
	if conv == nil {
		conv = &Conversation{}
	}
	return &Session{
		UserID:       strings.TrimSpace(userID),
		Conversation: conv,
		now:          time.Now,
	}
}

func (s *Session) AppendUser(content string) Message {
	return s.append(RoleUser, content)
}

func (s *Session) AppendAssistant(content string) Message {
	return s.append(RoleAssistant, content)
}

func (s *Session) append(role Role, content string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	s.Conversation.Messages = append(s.Conversation.Messages, msg)
	return msg
}
