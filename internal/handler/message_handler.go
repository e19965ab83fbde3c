package handler

import (
	"net/http"
	"strconv"

	"chat-messages/internal/domain/message"
	"chat-messages/internal/middleware"
	"chat-messages/internal/repository"
	"chat-messages/internal/services"
	"chat-messages/internal/transport/httpdto"
	chat_errors "chat-messages/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Create(c *gin.Context) {
	var req httpdto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", httpdto.CodeUnauthorized))
		return
	}

	conversationID, err := message.ParseID(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversationId", httpdto.CodeInvalidRequest))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), message.CreateMessageInput{
		ConversationID: conversationID,
		Text:           req.Text,
	}, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) GetByID(c *gin.Context) {
	msg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, userID, ok := messageAndUser(c)
	if !ok {
		return
	}
	msg, err := h.service.Delete(c.Request.Context(), messageID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) UpdateTags(c *gin.Context) {
	messageID, err := message.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req httpdto.UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	msg, err := h.service.UpdateTags(c.Request.Context(), messageID, req.ToDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) Like(c *gin.Context) {
	messageID, userID, ok := messageAndUser(c)
	if !ok {
		return
	}
	respond(c)(h.service.Like(c.Request.Context(), messageID, userID))
}

func (h *MessageHandler) Unlike(c *gin.Context) {
	messageID, userID, ok := messageAndUser(c)
	if !ok {
		return
	}
	respond(c)(h.service.Unlike(c.Request.Context(), messageID, userID))
}

func (h *MessageHandler) Resolve(c *gin.Context) {
	messageID, err := message.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c)(h.service.Resolve(c.Request.Context(), messageID))
}

func (h *MessageHandler) Unresolve(c *gin.Context) {
	messageID, err := message.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c)(h.service.Unresolve(c.Request.Context(), messageID))
}

func (h *MessageHandler) ListConversation(c *gin.Context) {
	conversationID, err := message.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	limit, err := parseInt(c.Query("limit"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", httpdto.CodeInvalidRequest))
		return
	}

	opts := repository.ListOptions{Limit: limit}
	if before := c.Query("before"); before != "" {
		opts.Before, err = message.ParseID(before)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid before", httpdto.CodeInvalidRequest))
			return
		}
	}

	items, err := h.service.ListConversation(c.Request.Context(), conversationID, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessageListResponse(items, effectiveLimit(limit))))
}

func (h *MessageHandler) Health(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("store unreachable", "UNHEALTHY"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
}

func respond(c *gin.Context) func(message.ChatMessage, error) {
	return func(msg message.ChatMessage, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
	}
}

func messageAndUser(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	messageID, err := message.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		writeError(c, chat_errors.ErrUnauthorized)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return messageID, userID, true
}

// writeError records err for the error middleware and answers with the
// status its sentinel maps to.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := services.HTTPStatus(err)
	c.JSON(status, httpdto.NewErrorResponse(middleware.PublicMessage(status, err), httpdto.CodeForStatus(status)))
}

func effectiveLimit(limit int) int {
	switch {
	case limit <= 0:
		return repository.DefaultListLimit
	case limit > repository.MaxListLimit:
		return repository.MaxListLimit
	}
	return limit
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
