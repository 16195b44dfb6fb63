package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"kitchenstock/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChannelPrefix prefixes the per-tenant change channels.
const ChannelPrefix = "ks:changes:"

func Channel(tenantCode string) string {
	return ChannelPrefix + tenantCode
}

// PublishClient is the subset of *redis.Client the publisher uses.
type PublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher sends change events to the tenant's Redis channel.
type Publisher struct {
	client PublishClient
}

func NewPublisher(client PublishClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(event.TenantCode), data).Err()
}

// Handler receives decoded change events.
type Handler func(models.ChangeEvent)

// Subscriber listens on every tenant channel and hands events to its handlers.
type Subscriber struct {
	client   *redis.Client
	handlers []Handler
	logger   zerolog.Logger
}

func NewSubscriber(client *redis.Client, logger zerolog.Logger, handlers ...Handler) *Subscriber {
	return &Subscriber{
		client:   client,
		handlers: handlers,
		logger:   logger.With().Str("component", "realtime-subscriber").Logger(),
	}
}

// Run subscribes and blocks until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info().Str("pattern", ChannelPrefix+"*").Msg("subscribed to change channels")
	s.Consume(ctx, pubsub.Channel())
	return ctx.Err()
}

// Consume dispatches messages from ch until it closes or ctx is done.
func (s *Subscriber) Consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.dispatch(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Subscriber) dispatch(msg *redis.Message) {
	var event models.ChangeEvent
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		s.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed change event")
		return
	}
	tenant := strings.TrimPrefix(msg.Channel, ChannelPrefix)
	if event.TenantCode != tenant {
		s.logger.Warn().Str("channel", msg.Channel).Str("tenant", event.TenantCode).Msg("change event tenant does not match channel")
		return
	}
	for _, h := range s.handlers {
		h(event)
	}
}
