package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

// MessageHandler manages the direct-message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	hub         ws.Broadcaster
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, hub ws.Broadcaster, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, hub: hub, audit: audit}
}

// ListConversation returns every message the caller sent or received,
// oldest first, together with the caller's id so a stateless client can
// tell message direction.
func (h *MessageHandler) ListConversation(c *gin.Context) {
	userID := c.GetInt("userID")

	msgs, err := h.messageRepo.ListConversationFor(c.Request.Context(), userID)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "list conversation failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to retrieve messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "current_user_id": userID})
}

// SendMessage stores a direct message to friend_id. The receiver id is
// accepted as supplied.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		FriendID int    `json:"friend_id" binding:"required"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.messageRepo.CreateMessage(c.Request.Context(), userID, req.FriendID, req.Message); err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "send message failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.hub.Broadcast(models.NotifyEvent{Type: models.EventNewMessage})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
