// Package hub fans complaint updates out to connected live viewers.
package hub

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"swarajdesk/backend/internal/metrics"
	"swarajdesk/backend/internal/models"

	"github.com/rs/zerolog"
)

const queueSize = 256

// Hub owns the viewer registry. Only Run touches the map; everything else
// talks to it through channels.
type Hub struct {
	viewers map[string]Viewer

	register   chan Viewer
	unregister chan Viewer
	broadcast  chan []byte
	done       chan struct{}

	sweepInterval time.Duration
	staleAfter    time.Duration
	now           func() time.Time

	count atomic.Int64
	log   zerolog.Logger
}

func New(sweepInterval, staleAfter time.Duration, log zerolog.Logger) *Hub {
	return &Hub{
		viewers:       make(map[string]Viewer),
		register:      make(chan Viewer, 64),
		unregister:    make(chan Viewer, 64),
		broadcast:     make(chan []byte, queueSize),
		done:          make(chan struct{}),
		sweepInterval: sweepInterval,
		staleAfter:    staleAfter,
		now:           time.Now,
		log:           log.With().Str("component", "hub").Logger(),
	}
}

// Register adds v. After the hub has stopped, v is closed instead.
func (h *Hub) Register(v Viewer) {
	select {
	case <-h.done:
		v.Close()
		return
	default:
	}
	select {
	case h.register <- v:
	case <-h.done:
		v.Close()
	}
}

func (h *Hub) Unregister(v Viewer) {
	select {
	case h.unregister <- v:
	case <-h.done:
	}
}

// Count reports the number of registered viewers.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Broadcast encodes an envelope and queues it for every viewer.
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := json.Marshal(models.Envelope{Type: msgType, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("encode broadcast")
		return
	}
	h.BroadcastRaw(payload)
}

// BroadcastRaw queues an encoded envelope. It never blocks: when the queue
// is full the message is dropped.
func (h *Hub) BroadcastRaw(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		metrics.HubDropped.Inc()
		h.log.Warn().Msg("broadcast queue full, dropping message")
	}
}

func (h *Hub) PublishUpvote(_ context.Context, u models.UpvoteUpdate) {
	h.Broadcast(models.MessageUpvoteUpdate, u)
}

func (h *Hub) PublishStatus(_ context.Context, u models.StatusUpdate) {
	h.Broadcast(models.MessageStatusUpdate, u)
}

// Run serves the registry until ctx is cancelled, then closes every viewer.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.sweepInterval)
	defer func() {
		ticker.Stop()
		for id, v := range h.viewers {
			v.Close()
			delete(h.viewers, id)
		}
		h.sync()
		close(h.done)
	}()

	h.log.Info().Dur("sweep", h.sweepInterval).Dur("stale_after", h.staleAfter).Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			return

		case v := <-h.register:
			if old, ok := h.viewers[v.ID()]; ok && old != v {
				old.Close()
			}
			h.viewers[v.ID()] = v
			h.sync()
			h.log.Debug().Str("viewer", v.ID()).Int("viewers", len(h.viewers)).Msg("viewer registered")

		case v := <-h.unregister:
			h.drop(v)

		case payload := <-h.broadcast:
			for _, v := range h.viewers {
				if !v.Send(payload) {
					h.drop(v)
				}
			}

		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep terminates viewers silent for longer than staleAfter and pings the rest.
func (h *Hub) sweep() {
	now := h.now()
	for _, v := range h.viewers {
		if now.Sub(v.LastSeen()) > h.staleAfter {
			h.log.Debug().Str("viewer", v.ID()).Msg("terminating stale viewer")
			h.drop(v)
			continue
		}
		if !v.Ping() {
			h.drop(v)
		}
	}
}

func (h *Hub) drop(v Viewer) {
	current, ok := h.viewers[v.ID()]
	if !ok || current != v {
		return
	}
	delete(h.viewers, v.ID())
	v.Close()
	h.sync()
}

func (h *Hub) sync() {
	h.count.Store(int64(len(h.viewers)))
	metrics.HubViewers.Set(float64(len(h.viewers)))
}
