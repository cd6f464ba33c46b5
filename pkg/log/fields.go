package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Chat entities
	FieldConversationID = "conversation_id"
	FieldMessageID      = "message_id"
	FieldSessionID      = "session_id"
	FieldSenderID       = "sender_id"
	FieldRecipientID    = "recipient_id"
	FieldParticipantID  = "participant_id"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
