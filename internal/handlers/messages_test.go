package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/messages", handler.ListConversation)
	r.POST("/messages", handler.SendMessage)
	return r
}

func TestListConversationSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.BroadcasterMock), nil)
	router := setupMessageRouter(handler)

	now := time.Now()
	messageRepo.On("ListConversationFor", mock.Anything, 1).Return([]models.Message{
		{ID: 1, SenderID: 2, ReceiverID: 1, Content: "hey", CreatedAt: now.Add(-time.Minute)},
		{ID: 2, SenderID: 1, ReceiverID: 2, Content: "hi", CreatedAt: now},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages      []models.Message `json:"messages"`
		CurrentUserID int              `json:"current_user_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.CurrentUserID)
	require.Len(t, resp.Messages, 2)
	assert.True(t, !resp.Messages[1].CreatedAt.Before(resp.Messages[0].CreatedAt))
	messageRepo.AssertExpectations(t)
}

func TestListConversationRepoError(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.BroadcasterMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("ListConversationFor", mock.Anything, 1).Return(([]models.Message)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	messageRepo.AssertExpectations(t)
}

func TestSendMessageSuccessBroadcastsOnce(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	handler := NewMessageHandler(messageRepo, broadcaster, nil)
	router := setupMessageRouter(handler)

	messageRepo.On("CreateMessage", mock.Anything, 1, 2, "hi").
		Return(models.Message{ID: 9, SenderID: 1, ReceiverID: 2, Content: "hi"}, nil).Once()
	broadcaster.On("Broadcast", models.NotifyEvent{Type: models.EventNewMessage}).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"friend_id":2,"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	messageRepo.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestSendMessageRepoErrorNoBroadcast(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	handler := NewMessageHandler(messageRepo, broadcaster, nil)
	router := setupMessageRouter(handler)

	messageRepo.On("CreateMessage", mock.Anything, 1, 2, "hi").
		Return(models.Message{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"friend_id":2,"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything)
	messageRepo.AssertExpectations(t)
}

func TestSendMessageInvalidBody(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.BroadcasterMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"friend_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
