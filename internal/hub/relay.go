package hub

import (
	"context"
	"encoding/json"
	"time"

	"swarajdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RelayChannel carries encoded envelopes between API instances.
const RelayChannel = "complaints:events"

const (
	publishTimeout = 2 * time.Second
	resubscribeMin = 100 * time.Millisecond
	resubscribeMax = 5 * time.Second
)

// RedisRelay publishes updates through Redis so every instance's hub
// delivers them, not only the one that handled the request.
type RedisRelay struct {
	client  *redis.Client
	hub     *Hub
	channel string
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, h *Hub, log zerolog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		hub:     h,
		channel: RelayChannel,
		log:     log.With().Str("component", "relay").Logger(),
	}
}

func (r *RedisRelay) PublishUpvote(ctx context.Context, u models.UpvoteUpdate) {
	r.publish(ctx, models.MessageUpvoteUpdate, u)
}

func (r *RedisRelay) PublishStatus(ctx context.Context, u models.StatusUpdate) {
	r.publish(ctx, models.MessageStatusUpdate, u)
}

// publish runs in the background. If Redis refuses the message the local hub
// still gets it.
func (r *RedisRelay) publish(ctx context.Context, msgType string, data any) {
	payload, err := json.Marshal(models.Envelope{Type: msgType, Data: data})
	if err != nil {
		r.log.Error().Err(err).Str("type", msgType).Msg("encode relay message")
		return
	}

	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := r.client.Publish(pctx, r.channel, payload).Err(); err != nil {
			r.log.Warn().Err(err).Msg("relay publish failed, delivering locally")
			r.hub.BroadcastRaw(payload)
		}
	}()
}

// Run keeps the relay subscribed until ctx is cancelled. A failed or dropped
// subscription is retried with backoff; publishes meanwhile still reach the
// local hub through Redis or the fallback path.
func (r *RedisRelay) Run(ctx context.Context) {
	backoff := resubscribeMin
	for {
		started := time.Now()
		err := r.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > resubscribeMax {
			backoff = resubscribeMin
		}
		r.log.Warn().Err(err).Dur("retry_in", backoff).Msg("relay subscription lost")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, resubscribeMax)
	}
}

// Listen feeds relayed envelopes into the local hub until ctx is cancelled.
func (r *RedisRelay) Listen(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	r.log.Info().Str("channel", r.channel).Msg("relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if !json.Valid([]byte(msg.Payload)) {
				r.log.Warn().Msg("dropping malformed relay message")
				continue
			}
			r.hub.BroadcastRaw([]byte(msg.Payload))
		}
	}
}
