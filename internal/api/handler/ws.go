package handler

import (
	"net/http"
	"slices"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return originAllowed(h.origins, origin)
		},
	}
}

// ServeWebSocket upgrades GET /ws into a live complaint feed. A token is
// optional; when present (header, cookie or ?token=) it must be valid and
// binds the viewer to that user.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	raw := tokenFromRequest(c)
	if raw == "" {
		raw = c.Query("token")
	}

	var userID string
	if raw != "" {
		claims, err := h.Auth.Parse(raw)
		if err != nil {
			h.respondError(c, complaint.Unauthorized("Invalid or expired token"))
			return
		}
		userID = claims.ID
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	hub.NewWebSocketViewer(conn, h.Hub, userID, h.log).Run()
}

func originAllowed(allowed []string, origin string) bool {
	return len(allowed) == 0 || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}
