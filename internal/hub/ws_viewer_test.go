package hub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swarajdesk/backend/internal/hub"
	"swarajdesk/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialViewer(t *testing.T, h *hub.Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.NewWebSocketViewer(conn, h, "", zerolog.Nop()).Run()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	var env models.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocketViewer_Lifecycle(t *testing.T) {
	h := startHub(t, time.Hour, 2*time.Hour)
	conn := dialViewer(t, h)

	welcome := readEnvelope(t, conn)
	assert.Equal(t, models.MessageConnectionEstablished, welcome.Type)
	assert.NotEmpty(t, welcome.Data.(map[string]any)["clientId"])
	require.Eventually(t, func() bool { return h.Count() == 1 }, waitFor, tick)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: "ping"}))
	assert.Equal(t, models.MessagePong, readEnvelope(t, conn).Type)

	h.PublishUpvote(context.Background(), models.UpvoteUpdate{ComplaintID: "c9", UpvoteCount: 1})
	env := readEnvelope(t, conn)
	assert.Equal(t, models.MessageUpvoteUpdate, env.Type)
	assert.Equal(t, "c9", env.Data.(map[string]any)["complaintId"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Count() == 0 }, waitFor, tick)
}

func TestWebSocketViewer_MalformedMessageIgnored(t *testing.T) {
	h := startHub(t, time.Hour, 2*time.Hour)
	conn := dialViewer(t, h)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: "heartbeat"}))
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: "ping"}))

	assert.Equal(t, models.MessagePong, readEnvelope(t, conn).Type)
	assert.Equal(t, 1, h.Count())
}

func TestWebSocketViewer_StaleConnectionClosed(t *testing.T) {
	h := startHub(t, 20*time.Millisecond, 60*time.Millisecond)
	conn := dialViewer(t, h)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return h.Count() == 1 }, waitFor, tick)

	// The client never reads, so server pings go unanswered.
	assert.Eventually(t, func() bool { return h.Count() == 0 }, waitFor, tick)
}

func TestWebSocketViewer_PongKeepsAlive(t *testing.T) {
	h := startHub(t, 20*time.Millisecond, 200*time.Millisecond)
	conn := dialViewer(t, h)

	// Reading lets gorilla answer server pings with pongs.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, h.Count())
}
