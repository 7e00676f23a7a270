package messaging

import (
	"time"

	"github.com/google/uuid"
)

// MessageStatus tracks where a message sits in its lifecycle
type MessageStatus string

const (
	StatusInbox      MessageStatus = "inbox"
	StatusProcessing MessageStatus = "processing"
	StatusArchive    MessageStatus = "archive"
)

// IsValid reports whether the status is a known lifecycle state
func (s MessageStatus) IsValid() bool {
	switch s {
	case StatusInbox, StatusProcessing, StatusArchive:
		return true
	}
	return false
}

// Message is a note passed between units. Units are addressed by their
// id strings only; the exchange never inspects the units themselves.
type Message struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	SenderID    string        `json:"sender_id,omitempty"`
	ReceiverID  string        `json:"receiver_id"`
	Status      MessageStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ProcessedAt time.Time     `json:"processed_at,omitempty"`
}

func newMessage(content, senderID, receiverID string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     StatusInbox,
		CreatedAt:  time.Now(),
	}
}
