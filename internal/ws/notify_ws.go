package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/observability"
)

// NotifyWebSocketHandler handles the notification channel endpoint.
// The channel is deliberately unauthenticated and untargeted: every
// connected client observes the same event stream.
type NotifyWebSocketHandler struct {
	hub *Hub
}

// NewNotifyWebSocketHandler constructs a NotifyWebSocketHandler.
func NewNotifyWebSocketHandler(hub *Hub) *NotifyWebSocketHandler {
	return &NotifyWebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client until it closes.
func (h *NotifyWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.notify", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   connPayload(info, "ws_connect", 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// Drain inbound frames until the peer closes; clients never send
	// business data over this channel.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, "ws_events.notify", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   connPayload(info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}
		}
	}()
}

func connPayload(info ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"client": map[string]interface{}{
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
