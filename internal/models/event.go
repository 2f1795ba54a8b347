package models

// Notification event tags pushed over the websocket channel. They carry
// no payload; clients re-fetch the affected listings on receipt.
const (
	EventNewFriendRequest = "newFriendRequest"
	EventNewFriendship    = "newFriendship"
	EventNewMessage       = "newMessage"
)

// NotifyEvent is broadcast to every connected websocket client.
type NotifyEvent struct {
	Type string `json:"type"`
}
