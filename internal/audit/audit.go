package audit

import (
	"context"

	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// Audit actions for chat-service.
const (
	ActionCreateConversation = "conversation.create"
	ActionDeleteConversation = "conversation.delete"
	ActionDeleteMessage      = "message.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, conversationID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldConversationID, conversationID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action, conversationID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldConversationID, conversationID).
		Str(FieldDetail, detail).
		Msg(msg)
}
