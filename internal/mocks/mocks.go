package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/ws"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) CreateRequest(ctx context.Context, requesterID int, targetID int) error {
	args := m.Called(ctx, requesterID, targetID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) ListPendingFor(ctx context.Context, targetID int) ([]models.User, error) {
	args := m.Called(ctx, targetID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *FriendRepositoryMock) AcceptRequest(ctx context.Context, userID int, friendID int) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) DeclineRequest(ctx context.Context, userID int, friendID int) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) ListFriends(ctx context.Context, userID int) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversationFor(ctx context.Context, userID int) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Broadcast(event models.NotifyEvent) {
	m.Called(event)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.FriendRepository = (*FriendRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ ws.Broadcaster = (*BroadcasterMock)(nil)
