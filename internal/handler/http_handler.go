package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/E-LOVE-APP/chat-service/internal/broker"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/service"
	"github.com/E-LOVE-APP/chat-service/pkg/log"
	"github.com/E-LOVE-APP/chat-service/pkg/response"
)

// HTTPHandler handles the REST surface: conversation CRUD and message
// CRUD. Message creation goes through the broker so REST sends fan out to
// live subscribers exactly like WebSocket sends.
type HTTPHandler struct {
	conversations service.ConversationService
	messages      service.MessageService
	broker        *broker.Broker
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(conversations service.ConversationService, messages service.MessageService, b *broker.Broker) *HTTPHandler {
	return &HTTPHandler{
		conversations: conversations,
		messages:      messages,
		broker:        b,
	}
}

// RegisterRoutes registers all REST routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		conversations := api.Group("/conversations")
		{
			conversations.POST("", h.CreateConversation)
			conversations.GET("/:id", h.GetConversation)
			conversations.DELETE("/:id", h.DeleteConversation)
		}

		messages := api.Group("/messages")
		{
			messages.GET("/:conversation_id", h.ListMessages)
			messages.POST("", h.CreateMessage)
			messages.PUT("/:id", h.UpdateMessageStatus)
			messages.DELETE("/:id", h.DeleteMessage)
		}
	}
}

// CreateConversation creates (or returns) a conversation between two users.
func (h *HTTPHandler) CreateConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create conversation request")
		response.BadRequest(c, err.Error())
		return
	}

	conversation, err := h.conversations.CreateConversation(ctx, req.UserFirstID, req.UserSecondID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSameParticipants), errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrConversationDeleted):
			response.BadRequest(c, err.Error())
		default:
			l.Error().Err(err).Msg("failed to create conversation")
			response.InternalError(c, "failed to create conversation")
		}
		return
	}

	response.Created(c, conversation)
}

// GetConversation retrieves a conversation by ID.
func (h *HTTPHandler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id := c.Param("id")

	conversation, err := h.conversations.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			response.NotFound(c, "conversation not found")
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, id).Msg("failed to get conversation")
		response.InternalError(c, "failed to get conversation")
		return
	}

	response.Success(c, conversation)
}

// DeleteConversation soft-deletes a conversation.
func (h *HTTPHandler) DeleteConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id := c.Param("id")

	if err := h.conversations.DeleteConversation(ctx, id); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			response.NotFound(c, "conversation not found")
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, id).Msg("failed to delete conversation")
		response.InternalError(c, "failed to delete conversation")
		return
	}

	response.Success(c, gin.H{"message": "conversation deleted successfully"})
}

// ListMessages returns the ascending message history of a conversation.
func (h *HTTPHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	conversationID := c.Param("conversation_id")

	result, err := h.messages.ListMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			response.NotFound(c, "conversation not found")
			return
		}
		l.Error().Err(err).Str(log.FieldConversationID, conversationID).Msg("failed to list messages")
		response.InternalError(c, "failed to list messages")
		return
	}

	response.Success(c, result)
}

// CreateMessage sends a message into a conversation via the broker.
func (h *HTTPHandler) CreateMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create message request")
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.broker.Send(ctx, req.ConversationID, req.SenderID, req.RecipientID, req.Content, nil)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFound(c, "conversation not found")
		case errors.Is(err, service.ErrSenderNotParticipant), errors.Is(err, service.ErrRecipientNotParticipant):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrMissingFields):
			response.BadRequest(c, err.Error())
		default:
			l.Error().Err(err).Str(log.FieldConversationID, req.ConversationID).Msg("failed to create message")
			response.InternalError(c, "failed to create message")
		}
		return
	}

	response.Created(c, msg.ToResponse())
}

// UpdateMessageStatus moves a message forward on the status ladder.
func (h *HTTPHandler) UpdateMessageStatus(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id := c.Param("id")

	var req domain.UpdateMessageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messages.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrStatusRegression), errors.Is(err, service.ErrMissingFields):
			response.BadRequest(c, err.Error())
		default:
			l.Error().Err(err).Str(log.FieldMessageID, id).Msg("failed to update message status")
			response.InternalError(c, "failed to update message")
		}
		return
	}

	response.Success(c, msg.ToResponse())
}

// DeleteMessage removes a single message.
func (h *HTTPHandler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	id := c.Param("id")

	if err := h.messages.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		l.Error().Err(err).Str(log.FieldMessageID, id).Msg("failed to delete message")
		response.InternalError(c, "failed to delete message")
		return
	}

	response.Success(c, gin.H{"message": "message deleted successfully"})
}
