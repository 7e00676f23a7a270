package messaging

import (
	"strings"
	"time"

	"go.uber.org/zap"

	pkgerrors "workable/pkg/errors"
)

// Exchange routes messages between units through per-receiver
// mailboxes. Pending messages wait in the inbox oldest first; processed
// and archived ones share the handled list, discriminated by status.
type Exchange struct {
	inbox   map[string][]*Message
	handled map[string][]*Message
	logger  *zap.Logger
}

// NewExchange creates an empty exchange
func NewExchange() *Exchange {
	return &Exchange{
		inbox:   make(map[string][]*Message),
		handled: make(map[string][]*Message),
		logger:  zap.NewNop(),
	}
}

// SetLogger replaces the exchange's logger
func (e *Exchange) SetLogger(logger *zap.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Post delivers a new message to the receiver's inbox
func (e *Exchange) Post(content, senderID, receiverID string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, pkgerrors.NewMessageError("CONTENT_REQUIRED", "message content is required")
	}
	if strings.TrimSpace(receiverID) == "" {
		return nil, pkgerrors.NewMessageError("RECEIVER_REQUIRED", "message receiver is required")
	}

	message := newMessage(content, senderID, receiverID)
	e.inbox[receiverID] = append(e.inbox[receiverID], message)

	e.logger.Debug("message posted",
		zap.String("message_id", message.ID),
		zap.String("receiver_id", receiverID),
		zap.String("content_preview", preview(content)),
	)

	return message, nil
}

// Inbox returns the receiver's pending messages, oldest first
func (e *Exchange) Inbox(receiverID string) []*Message {
	pending := e.inbox[receiverID]
	out := make([]*Message, len(pending))
	copy(out, pending)
	return out
}

// Archived returns the receiver's archived messages
func (e *Exchange) Archived(receiverID string) []*Message {
	var out []*Message
	for _, message := range e.handled[receiverID] {
		if message.Status == StatusArchive {
			out = append(out, message)
		}
	}
	return out
}

// ByStatus returns the receiver's messages in the given state
func (e *Exchange) ByStatus(receiverID string, status MessageStatus) ([]*Message, error) {
	if !status.IsValid() {
		return nil, pkgerrors.NewMessageError("STATUS_INVALID", "unknown message status").
			WithDetail("status", string(status))
	}

	if status == StatusInbox {
		return e.Inbox(receiverID), nil
	}

	var out []*Message
	for _, message := range e.handled[receiverID] {
		if message.Status == status {
			out = append(out, message)
		}
	}
	return out, nil
}

// ProcessNext pops the receiver's oldest pending message into the
// processing state. Returns false when the inbox is empty.
func (e *Exchange) ProcessNext(receiverID string) (*Message, bool) {
	pending := e.inbox[receiverID]
	if len(pending) == 0 {
		e.logger.Debug("inbox empty", zap.String("receiver_id", receiverID))
		return nil, false
	}

	message := pending[0]
	e.inbox[receiverID] = pending[1:]

	message.Status = StatusProcessing
	message.ProcessedAt = time.Now()
	e.handled[receiverID] = append(e.handled[receiverID], message)

	e.logger.Debug("message processing",
		zap.String("message_id", message.ID),
		zap.String("receiver_id", receiverID),
	)

	return message, true
}

// Archive moves a processing message to the archive. Messages advance
// strictly inbox to processing to archive, so archiving anything else
// fails.
func (e *Exchange) Archive(messageID string) error {
	message, ok := e.Find(messageID)
	if !ok {
		return pkgerrors.NewMessageError("MESSAGE_NOT_FOUND", "no message with this id").
			WithDetail("message_id", messageID)
	}
	if message.Status != StatusProcessing {
		return pkgerrors.NewMessageError("MESSAGE_NOT_PROCESSING", "only a processing message can be archived").
			WithDetail("message_id", messageID).
			WithDetail("status", string(message.Status))
	}

	message.Status = StatusArchive

	e.logger.Debug("message archived",
		zap.String("message_id", messageID),
		zap.String("receiver_id", message.ReceiverID),
	)

	return nil
}

// Find locates a message by id across every mailbox
func (e *Exchange) Find(messageID string) (*Message, bool) {
	for _, pending := range e.inbox {
		for _, message := range pending {
			if message.ID == messageID {
				return message, true
			}
		}
	}
	for _, handled := range e.handled {
		for _, message := range handled {
			if message.ID == messageID {
				return message, true
			}
		}
	}
	return nil, false
}

// ClearInbox drops the receiver's pending messages and returns how many
// were dropped
func (e *Exchange) ClearInbox(receiverID string) int {
	dropped := len(e.inbox[receiverID])
	delete(e.inbox, receiverID)

	if dropped > 0 {
		e.logger.Debug("inbox cleared",
			zap.String("receiver_id", receiverID),
			zap.Int("dropped", dropped),
		)
	}

	return dropped
}

// Purge drops every message addressed to the receiver, whatever the
// state. Called when the receiving unit is deleted.
func (e *Exchange) Purge(receiverID string) {
	delete(e.inbox, receiverID)
	delete(e.handled, receiverID)
}

func preview(content string) string {
	const max = 20
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
