package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// FriendRepository abstracts the friend-request and friendship state.
type FriendRepository interface {
	CreateRequest(ctx context.Context, requesterID int, targetID int) error
	ListPendingFor(ctx context.Context, targetID int) ([]models.User, error)
	AcceptRequest(ctx context.Context, userID int, friendID int) error
	DeclineRequest(ctx context.Context, userID int, friendID int) error
	ListFriends(ctx context.Context, userID int) ([]models.User, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// CreateRequest inserts a pending friend request. Repeated calls for the
// same pair create additional pending rows; no uniqueness is enforced.
func (r *FriendRepo) CreateRequest(ctx context.Context, requesterID int, targetID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friend_requests (user_id, friend_id, created_at, status) VALUES ($1, $2, NOW(), $3)`,
		requesterID, targetID, models.RequestStatusPending)
	return err
}

// ListPendingFor returns the users with a pending request targeting userID.
func (r *FriendRepo) ListPendingFor(ctx context.Context, targetID int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT u.id, u.login
         FROM friend_requests fr
         JOIN users u ON u.id = fr.user_id
         WHERE fr.friend_id = $1 AND fr.status = $2`,
		targetID, models.RequestStatusPending)
	return users, err
}

// AcceptRequest marks the pending request from friendID to userID as
// accepted and inserts both directed friendship edges. The three writes
// commit or roll back as one unit; NOW() is the transaction timestamp,
// so both edges carry the same created_at.
func (r *FriendRepo) AcceptRequest(ctx context.Context, userID int, friendID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// A zero-row update means no matching pending request existed; the
	// friendship edges are inserted regardless, matching the accept
	// contract as observed by clients.
	if _, err = tx.ExecContext(ctx,
		`UPDATE friend_requests SET status = $1 WHERE user_id = $2 AND friend_id = $3 AND status = $4`,
		models.RequestStatusAccepted, friendID, userID, models.RequestStatusPending); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO friends (user_id, friend_id, created_at) VALUES ($1, $2, NOW())`,
		userID, friendID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO friends (user_id, friend_id, created_at) VALUES ($1, $2, NOW())`,
		friendID, userID); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// DeclineRequest marks the pending request from friendID to userID as declined.
func (r *FriendRepo) DeclineRequest(ctx context.Context, userID int, friendID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = $1 WHERE user_id = $2 AND friend_id = $3 AND status = $4`,
		models.RequestStatusDeclined, friendID, userID, models.RequestStatusPending)
	return err
}

// ListFriends returns the distinct users reachable from userID via a
// friendship edge.
func (r *FriendRepo) ListFriends(ctx context.Context, userID int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT DISTINCT u.id, u.login
         FROM friends f
         JOIN users u ON u.id = f.friend_id
         WHERE f.user_id = $1`,
		userID)
	return users, err
}
