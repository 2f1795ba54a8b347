package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

// FriendHandler manages the friend-request and friendship endpoints.
// Every successful mutation broadcasts exactly one notification event.
type FriendHandler struct {
	friendRepo repositories.FriendRepository
	hub        ws.Broadcaster
	audit      *telemetry.AuditEmitter
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(friendRepo repositories.FriendRepository, hub ws.Broadcaster, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friendRepo: friendRepo, hub: hub, audit: audit}
}

// ListPendingRequests returns the users with a pending request targeting
// the caller.
func (h *FriendHandler) ListPendingRequests(c *gin.Context) {
	userID := c.GetInt("userID")

	users, err := h.friendRepo.ListPendingFor(c.Request.Context(), userID)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "list pending requests failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to retrieve requests"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// SendRequest stores a pending friend request from the caller to friend_id.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.friendRepo.CreateRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "send friend request failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.hub.Broadcast(models.NotifyEvent{Type: models.EventNewFriendRequest})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AcceptRequest accepts a pending request. The caller is the target;
// friend_id names the original requester.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.friendRepo.AcceptRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "accept friendship failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.hub.Broadcast(models.NotifyEvent{Type: models.EventNewFriendship})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeclineRequest declines a pending request from friend_id to the caller.
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.friendRepo.DeclineRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "decline friendship failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.hub.Broadcast(models.NotifyEvent{Type: models.EventNewFriendRequest})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListFriends returns the caller's friends.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("userID")

	users, err := h.friendRepo.ListFriends(c.Request.Context(), userID)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "list friends failed: "+err.Error(), requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to retrieve friends"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}
