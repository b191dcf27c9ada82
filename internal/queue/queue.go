package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/types"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers change-triggered guard events to an external sink.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev types.Event) error
	Shutdown()
}

// QueueManager publishes events as JSON messages to a durable topic exchange.
type QueueManager struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

func NewQueueManager(cfg *config.NotifierConfig) (*QueueManager, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event queue: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}, nil
}

func (qm *QueueManager) PublishEvent(ctx context.Context, ev types.Event) error {
	msg, err := newPublishing(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	qm.mu.Lock()
	defer qm.mu.Unlock()

	routingKey := qm.routingKey + "." + ev.ChannelID
	if err := qm.channel.PublishWithContext(ctx, qm.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}

	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if err := qm.channel.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close queue channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close queue connection")
	}
}

func newPublishing(ev types.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.Timestamp,
		Type:         ev.Type.String(),
		Body:         body,
	}, nil
}

// NoopPublisher is used when no queue is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, types.Event) error {
	return nil
}

func (NoopPublisher) Shutdown() {}
