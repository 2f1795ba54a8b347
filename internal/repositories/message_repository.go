package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error)
	ListConversationFor(ctx context.Context, userID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a direct message. The receiver id is taken as
// given; existence is not checked.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID int, receiverID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, message, created_at) VALUES ($1, $2, $3, NOW())
         RETURNING id, sender_id, receiver_id, message, created_at`,
		senderID, receiverID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListConversationFor returns every message sent or received by the user,
// oldest first.
func (r *MessageRepo) ListConversationFor(ctx context.Context, userID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, sender_id, receiver_id, message, created_at
         FROM messages
         WHERE sender_id = $1 OR receiver_id = $1
         ORDER BY created_at ASC`,
		userID)
	return msgs, err
}
