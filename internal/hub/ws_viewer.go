package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"swarajdesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// WebSocketViewer is a Viewer backed by a websocket connection.
type WebSocketViewer struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub

	send chan []byte
	ping chan struct{}
	done chan struct{}

	lastSeen  atomic.Int64
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewWebSocketViewer wraps conn. userID is empty for anonymous viewers.
func NewWebSocketViewer(conn *websocket.Conn, h *Hub, userID string, log zerolog.Logger) *WebSocketViewer {
	v := &WebSocketViewer{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		hub:    h,
		send:   make(chan []byte, sendBuffer),
		ping:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	v.log = log.With().Str("viewer", v.id).Logger()
	v.touch()
	return v
}

func (v *WebSocketViewer) ID() string     { return v.id }
func (v *WebSocketViewer) UserID() string { return v.userID }

func (v *WebSocketViewer) LastSeen() time.Time {
	return time.Unix(0, v.lastSeen.Load())
}

func (v *WebSocketViewer) touch() {
	v.lastSeen.Store(time.Now().UnixNano())
}

func (v *WebSocketViewer) Send(payload []byte) bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.send <- payload:
		return true
	default:
		return false
	}
}

func (v *WebSocketViewer) Ping() bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.ping <- struct{}{}:
	default:
	}
	return true
}

// Close stops the write pump, which says goodbye and closes the socket.
func (v *WebSocketViewer) Close() {
	v.closeOnce.Do(func() { close(v.done) })
}

// Run greets the viewer, registers it and starts both pumps.
func (v *WebSocketViewer) Run() {
	v.reply(models.MessageConnectionEstablished, map[string]any{
		"clientId":   v.id,
		"message":    "Connected to complaint updates",
		"serverTime": time.Now().UTC(),
	})
	v.hub.Register(v)
	go v.writePump()
	go v.readPump()
}

func (v *WebSocketViewer) reply(msgType string, data any) {
	payload, err := json.Marshal(models.Envelope{Type: msgType, Data: data})
	if err != nil {
		return
	}
	v.Send(payload)
}

func (v *WebSocketViewer) readPump() {
	defer func() {
		v.hub.Unregister(v)
		v.Close()
	}()

	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetPongHandler(func(string) error {
		v.touch()
		return nil
	})

	for {
		_, message, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				v.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		v.touch()

		var msg models.ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			v.log.Debug().Err(err).Msg("ignoring malformed message")
			continue
		}
		switch msg.Type {
		case "ping":
			v.reply(models.MessagePong, map[string]any{"serverTime": time.Now().UTC()})
		case "heartbeat":
		default:
			v.log.Debug().Str("type", msg.Type).Msg("ignoring unknown message")
		}
	}
}

func (v *WebSocketViewer) writePump() {
	defer v.conn.Close()

	for {
		select {
		case payload := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				v.Close()
				return
			}

		case <-v.ping:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				v.Close()
				return
			}

		case <-v.done:
			_ = v.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
