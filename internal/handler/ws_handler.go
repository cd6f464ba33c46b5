package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/E-LOVE-APP/chat-service/internal/broker"
	"github.com/E-LOVE-APP/chat-service/internal/config"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/hub"
	"github.com/E-LOVE-APP/chat-service/internal/service"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// WSHandler upgrades chat connections and drives the session lifecycle.
// Handshake validation happens before the session is registered: a caller
// that is not a live participant of the conversation is closed with policy
// violation (1008) and never sees any fan-out.
type WSHandler struct {
	conversations service.ConversationService
	broker        *broker.Broker
	registry      *hub.Registry
	cfg           config.WebSocketConfig
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(conversations service.ConversationService, b *broker.Broker, registry *hub.Registry, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		conversations: conversations,
		broker:        b,
		registry:      registry,
		cfg:           cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat/ws/:conversation_id", h.Serve)
}

// Serve handles a chat WebSocket connection for one participant.
func (h *WSHandler) Serve(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	participantID := c.Query("participant_id")

	l := log.Ctx(c.Request.Context()).With().
		Str(log.FieldConversationID, conversationID).
		Str(log.FieldParticipantID, participantID).
		Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	if reason, ok := h.validateHandshake(c.Request.Context(), conversationID, participantID); !ok {
		l.Warn().Str("reason", reason).Msg("rejecting websocket handshake")
		rejectConn(conn, reason)
		return
	}

	transport := hub.NewWSTransport(conn, h.cfg.MaxMessageSize, h.cfg.PongWait, h.cfg.WriteWait)
	session := hub.NewSession(uuid.NewString(), conversationID, participantID, transport, h.registry, hub.Config{
		PingInterval:  h.cfg.PingInterval,
		WriteWait:     h.cfg.WriteWait,
		QueueCapacity: h.cfg.QueueCapacity,
		QueuePolicy:   hub.ParsePolicy(h.cfg.QueuePolicy),
	})

	if !session.Activate() {
		l.Error().Msg("failed to activate session")
		_ = transport.Close()
		return
	}

	l.Info().Str(log.FieldSessionID, session.ID).Msg("chat session connected")

	go session.WritePump()
	go session.ReadPump(context.Background(), h.handleFrame)
}

// validateHandshake checks that the conversation is live and the caller is
// one of its two participants. Returns a close reason when rejected.
func (h *WSHandler) validateHandshake(ctx context.Context, conversationID, participantID string) (string, bool) {
	if participantID == "" {
		return "participant_id is required", false
	}

	conversation, err := h.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return "conversation not found", false
		}
		return "internal error", false
	}

	if conversation.UserFirstID != participantID && conversation.UserSecondID != participantID {
		return "not a participant of this conversation", false
	}

	return "", true
}

// rejectConn closes a freshly upgraded connection with 1008 before any
// session state exists.
func rejectConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
}

// handleFrame dispatches one inbound frame from an active session. Bad
// frames answer with an error frame and keep the session alive.
func (h *WSHandler) handleFrame(ctx context.Context, s *hub.Session, raw []byte) {
	l := log.Ctx(ctx).With().
		Str(log.FieldSessionID, s.ID).
		Str(log.FieldConversationID, s.ConversationID).
		Logger()

	var frame domain.ActionFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		l.Debug().Err(err).Msg("malformed frame")
		s.SendError("Invalid message format")
		return
	}

	switch frame.Action {
	case domain.ActionSendMessage:
		h.handleSendMessage(ctx, s, frame.Data)
	default:
		l.Debug().Str("action", frame.Action).Msg("unknown action")
		s.SendError("Unknown action")
	}
}

func (h *WSHandler) handleSendMessage(ctx context.Context, s *hub.Session, data json.RawMessage) {
	var payload domain.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.SendError("Invalid message format")
		return
	}

	msg, err := h.broker.Send(ctx, s.ConversationID, payload.SenderID, payload.RecipientID, payload.Content, s)
	if err != nil {
		s.SendError(sendErrorDetail(err))
		return
	}

	// Fan-out to the other subscribers happened inside the broker; the
	// sender gets an explicit acknowledgement instead.
	s.Deliver(domain.NewMessageFrame(domain.ActionMessageSaved, msg))
}

func sendErrorDetail(err error) string {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		return "conversation not found"
	case errors.Is(err, service.ErrSenderNotParticipant):
		return "sender is not a participant of this conversation"
	case errors.Is(err, service.ErrRecipientNotParticipant):
		return "recipient is not a participant of this conversation"
	case errors.Is(err, service.ErrMissingFields):
		return "sender_id, recipient_id and content are required"
	default:
		return "failed to send message"
	}
}
