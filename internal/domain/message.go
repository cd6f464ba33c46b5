package domain

import (
	"time"
)

// MessageStatus represents the delivery status of a message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (MessageStatus, bool) {
	st := MessageStatus(s)
	_, ok := statusRank[st]
	return st, ok
}

// CanTransition reports whether a message status may move from one value
// to another. The ladder is monotonic: SENT -> DELIVERED -> READ, skipping
// allowed, regression rejected. Re-asserting the current status is a no-op
// and allowed.
func CanTransition(from, to MessageStatus) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr >= fr
}

// Message is a single chat message owned by its conversation.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	RecipientID    string        `json:"recipient_id,omitempty"`
	Content        string        `json:"content"`
	Status         MessageStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	SenderID       string `json:"sender_id" binding:"required"`
	RecipientID    string `json:"recipient_id"`
	Content        string `json:"content" binding:"required"`
}

// UpdateMessageStatusRequest is the body of PUT /messages/:id.
type UpdateMessageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MessageResponse represents a message in API responses and WS frames.
type MessageResponse struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	RecipientID    string        `json:"recipient_id,omitempty"`
	Content        string        `json:"content"`
	Status         MessageStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ToResponse converts Message to MessageResponse.
func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}
}

// ListMessagesResponse is the payload for message history listings.
type ListMessagesResponse struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []MessageResponse `json:"messages"`
	Total          int               `json:"total"`
}
