package models

import "time"

// Friend request status values. Transitions are one-way:
// pending moves to accepted or declined and stays there.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// FriendRequest is a row in friend_requests. UserID is the requester,
// FriendID the target.
type FriendRequest struct {
	UserID    int       `db:"user_id" json:"user_id"`
	FriendID  int       `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Status    string    `db:"status" json:"status"`
}

// Friendship is a single directed edge in the friends table. A mutual
// friendship is two such rows, one per direction.
type Friendship struct {
	UserID    int       `db:"user_id" json:"user_id"`
	FriendID  int       `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
