package domain

import (
	"time"
)

// ConversationModel is the GORM model for the conversations table.
// The participant pair is stored canonicalized, so the composite unique
// index enforces one conversation per unordered pair.
type ConversationModel struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	UserFirstID  string `gorm:"type:varchar(36);not null;uniqueIndex:uniq_conversation_pair"`
	UserSecondID string `gorm:"type:varchar(36);not null;uniqueIndex:uniq_conversation_pair"`
	IsDeleted    bool   `gorm:"index;not null;default:false"`
	DeletedAt    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationModel.
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts ConversationModel to domain Conversation.
func (m *ConversationModel) ToDomain() *Conversation {
	return &Conversation{
		ID:           m.ID,
		UserFirstID:  m.UserFirstID,
		UserSecondID: m.UserSecondID,
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
		CreatedAt:    m.CreatedAt,
	}
}

// ConversationToModel converts domain Conversation to ConversationModel.
func ConversationToModel(c *Conversation) *ConversationModel {
	return &ConversationModel{
		ID:           c.ID,
		UserFirstID:  c.UserFirstID,
		UserSecondID: c.UserSecondID,
		IsDeleted:    c.IsDeleted,
		DeletedAt:    c.DeletedAt,
		CreatedAt:    c.CreatedAt,
	}
}

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	ConversationID string    `gorm:"type:varchar(36);index;not null"`
	SenderID       string    `gorm:"type:varchar(36);not null"`
	RecipientID    string    `gorm:"type:varchar(36)"`
	Content        string    `gorm:"type:text;not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'SENT'"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		Status:         MessageStatus(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(m *Message) *MessageModel {
	return &MessageModel{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}
