package domain

import (
	"time"
)

// Conversation is a two-party chat channel. The participant pair is
// unordered; it is canonicalized (smaller id first) before storage so the
// pair can carry a uniqueness guarantee.
type Conversation struct {
	ID           string     `json:"id"`
	UserFirstID  string     `json:"user_first_id"`
	UserSecondID string     `json:"user_second_id"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CanonicalPair returns the two participant ids in canonical (ascending)
// order. CanonicalPair(a, b) == CanonicalPair(b, a) for all a, b.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether id is one of the two participants.
func (c *Conversation) HasParticipant(id string) bool {
	return id == c.UserFirstID || id == c.UserSecondID
}

// OtherParticipant returns the participant opposite to id.
// ok is false when id is not a participant at all.
func (c *Conversation) OtherParticipant(id string) (other string, ok bool) {
	switch id {
	case c.UserFirstID:
		return c.UserSecondID, true
	case c.UserSecondID:
		return c.UserFirstID, true
	}
	return "", false
}

// CreateConversationRequest is the body of POST /conversations.
type CreateConversationRequest struct {
	UserFirstID  string `json:"user_first_id" binding:"required"`
	UserSecondID string `json:"user_second_id" binding:"required"`
}

// ConversationResponse represents a conversation in API responses.
type ConversationResponse struct {
	ID           string    `json:"id"`
	UserFirstID  string    `json:"user_first_id"`
	UserSecondID string    `json:"user_second_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts Conversation to ConversationResponse.
func (c *Conversation) ToResponse() ConversationResponse {
	return ConversationResponse{
		ID:           c.ID,
		UserFirstID:  c.UserFirstID,
		UserSecondID: c.UserSecondID,
		CreatedAt:    c.CreatedAt,
	}
}
