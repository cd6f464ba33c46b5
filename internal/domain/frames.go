package domain

import (
	"encoding/json"
)

// WebSocket actions from client.
const (
	ActionSendMessage = "send_message"
)

// WebSocket actions to client.
const (
	ActionMessageSaved = "message_saved"
	ActionNewMessage   = "new_message"
)

// ActionFrame is the envelope for all inbound WebSocket frames.
type ActionFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// SendMessagePayload is the data of a send_message action.
type SendMessagePayload struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

// MessageFrame is an outbound frame carrying a persisted message.
// The sender's own session receives it as message_saved; every other
// subscriber receives it as new_message.
type MessageFrame struct {
	Action string          `json:"action"`
	Data   MessageResponse `json:"data"`
}

// ErrorFrame is an outbound error frame. It mirrors the REST error shape
// minimally: a single detail string.
type ErrorFrame struct {
	Error string `json:"error"`
}

// NewMessageFrame builds an outbound frame for a persisted message.
func NewMessageFrame(action string, m *Message) *MessageFrame {
	return &MessageFrame{
		Action: action,
		Data:   m.ToResponse(),
	}
}

// NewErrorFrame builds an outbound error frame.
func NewErrorFrame(detail string) *ErrorFrame {
	return &ErrorFrame{Error: detail}
}
