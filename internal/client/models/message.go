package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one entry of the ordered chat log. Text is immutable once
// the message is created; entries are only ever appended.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage creates a message with a time-ordered id. The timestamp
// prefix keeps ids sortable in creation order; the uuid suffix keeps them
// unique when two messages land in the same millisecond.
func NewChatMessage(sender Sender, text string) ChatMessage {
	now := time.Now()
	return ChatMessage{
		ID:        strconv.FormatInt(now.UnixMilli(), 36) + "-" + uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}
}
