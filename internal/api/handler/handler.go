package handler

import (
	"context"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/hub"

	"github.com/rs/zerolog"
)

// Pinger reports whether the backing stores are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of every HTTP endpoint.
type Handler struct {
	Complaints *complaint.Service
	Hub        *hub.Hub
	Health     Pinger
	Auth       *Authenticator

	origins    []string
	production bool
	log        zerolog.Logger
}

func NewHandler(svc *complaint.Service, h *hub.Hub, health Pinger, auth *Authenticator,
	origins []string, production bool, log zerolog.Logger) *Handler {
	return &Handler{
		Complaints: svc,
		Hub:        h,
		Health:     health,
		Auth:       auth,
		origins:    origins,
		production: production,
		log:        log.With().Str("component", "http").Logger(),
	}
}
