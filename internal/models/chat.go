package models

import (
	"strings"

	"github.com/google/uuid"
)

// Chat message types.
const (
	MessageTypeUser   = "user"
	MessageTypeAI     = "ai"
	MessageTypeSystem = "system"
)

// ChatMessage is one message in a chat session. Immutable once appended.
// The pronunciation, translation and example fields are set on AI messages only.
type ChatMessage struct {
	ID                 string         `json:"id"`
	Type               string         `json:"type"`
	Text               string         `json:"text"`
	Timestamp          Timestamp      `json:"timestamp,omitzero"`
	Pronunciation      string         `json:"pronunciation,omitempty"`
	RussianTranslation string         `json:"russian_translation,omitempty"`
	UsageExamples      []UsageExample `json:"usage_examples,omitempty"`
}

// NewChatMessage creates a message of the given type with a fresh id and timestamp.
func NewChatMessage(msgType, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Type:      msgType,
		Text:      text,
		Timestamp: Now(),
	}
}

// ChatSession is an ordered conversation. MessageCount is denormalized and
// recomputed on every append; it always equals len(Messages).
type ChatSession struct {
	SessionID    string        `json:"session_id"`
	Title        string        `json:"title,omitempty"`
	CreatedAt    Timestamp     `json:"created_at,omitzero"`
	LastUpdated  Timestamp     `json:"last_updated,omitzero"`
	MessageCount int           `json:"message_count"`
	Messages     []ChatMessage `json:"messages"`
}

// NewChatSession creates an empty session. The id is the creation time plus
// a random suffix so ids sort chronologically and stay unique.
func NewChatSession() *ChatSession {
	now := Now()
	return &ChatSession{
		SessionID:   now.Format("20060102_150405") + "_" + uuid.NewString()[:8],
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// AddMessage appends msg, recomputes the message count, and bumps
// LastUpdated. The title is derived exactly once, the first time the session
// holds at least one user message; later messages never change it.
func (s *ChatSession) AddMessage(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
	s.MessageCount = len(s.Messages)
	s.LastUpdated = Now()
	if s.Title == "" {
		s.deriveTitle()
	}
}

const titleMessageLimit = 3

// deriveTitle joins the text of up to the first three user messages,
// ellipsis-suffixed when more exist. No-op while no user message is present.
func (s *ChatSession) deriveTitle() {
	var texts []string
	more := false
	for _, m := range s.Messages {
		if m.Type != MessageTypeUser {
			continue
		}
		if len(texts) == titleMessageLimit {
			more = true
			break
		}
		texts = append(texts, m.Text)
	}
	if len(texts) == 0 {
		return
	}
	title := strings.Join(texts, ", ")
	if more {
		title += "..."
	}
	s.Title = title
}
