package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

// Broadcaster pushes a notification event to every connected client.
type Broadcaster interface {
	Broadcast(event models.NotifyEvent)
}

// client pairs a connection's metadata with its write lock. Gorilla
// websocket connections allow at most one concurrent writer, and
// broadcasts from concurrent requests land on the same connection.
type client struct {
	info    ConnInfo
	writeMu sync.Mutex
}

// Hub maintains the live set of notification websocket connections.
// All clients receive every event; there is no per-user targeting and
// no replay for clients that connect later.
type Hub struct {
	conns map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]*client)}
}

// AddClient registers a websocket connection.
func (h *Hub) AddClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &client{info: info}
}

// RemoveClient removes a websocket connection.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the event to every client connected at the time of
// the call. Delivery is best-effort; a connection whose write fails is
// closed and evicted.
func (h *Hub) Broadcast(event models.NotifyEvent) {
	type member struct {
		conn *websocket.Conn
		cl   *client
	}

	h.mu.RLock()
	members := make([]member, 0, len(h.conns))
	for conn, cl := range h.conns {
		members = append(members, member{conn: conn, cl: cl})
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, m := range members {
		m.cl.writeMu.Lock()
		err := m.conn.WriteMessage(websocket.TextMessage, payload)
		m.cl.writeMu.Unlock()
		if err != nil {
			log.Printf("websocket write error: %v", err)
			m.conn.Close()
			h.publishWSError(m.cl.info, err)
			h.RemoveClient(m.conn)
		}
	}
	observability.IncBroadcast(event.Type)
}

func (h *Hub) publishWSError(info ConnInfo, err error) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"client": map[string]interface{}{
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.notify", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

var _ Broadcaster = (*Hub)(nil)
