package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(nil, ConnInfo{ConnID: "a"})
	if hub.ClientCount() != 1 {
		t.Fatalf("expected client to be registered")
	}

	hub.RemoveClient(nil)
	if hub.ClientCount() != 0 {
		t.Fatalf("expected client to be removed")
	}
}

func TestHubBroadcastEmpty(t *testing.T) {
	hub := NewHub()

	// Broadcasting with no clients connected is not an error.
	hub.Broadcast(models.NotifyEvent{Type: models.EventNewMessage})
}

// startHubServer upgrades every incoming request and registers the
// connection with the hub, mirroring the registration half of the
// notification handler.
func startHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.AddClient(conn, ConnInfo{ConnID: newConnID(), ConnectedAt: time.Now()})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastReachesAllConnectedClients(t *testing.T) {
	hub := NewHub()
	srv := startHubServer(t, hub)

	first := dialHub(t, srv)
	second := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(models.NotifyEvent{Type: models.EventNewMessage})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"newMessage"}`, string(payload))
	}

	// Events are not replayed: a client connecting after the broadcast
	// sees nothing until the next one.
	late := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 10*time.Millisecond)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := late.ReadMessage()
	assert.Error(t, err, "expected read deadline, got a frame")
}

func TestHubConcurrentBroadcasts(t *testing.T) {
	hub := NewHub()
	srv := startHubServer(t, hub)

	conn := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	const broadcasts = 16
	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast(models.NotifyEvent{Type: models.EventNewFriendship})
		}()
	}
	wg.Wait()

	for i := 0; i < broadcasts; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"newFriendship"}`, string(payload))
	}

	require.Equal(t, 1, hub.ClientCount(), "client should survive concurrent broadcasts")
}
