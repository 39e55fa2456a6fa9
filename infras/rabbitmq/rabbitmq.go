package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/shared/constant"
	"pms/shared/events"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const defaultExchange = "pms.events"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type publisherImpl struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  channel
	exchange string
	otel     otel.Otel
}

// New dials the broker and declares a durable topic exchange. Events are
// routed by their type, so consumers bind queues with patterns like "payment.*".
func New(config *config.Config, otl otel.Otel) (events.Publisher, error) {
	exchange := config.Events.RabbitMQ.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(config.Events.RabbitMQ.URL)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")

		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("RabbitMQ publisher initialized")

	return &publisherImpl{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		otel:     otl,
	}, nil
}

func newWithChannel(ch channel, exchange string, otl otel.Otel) *publisherImpl {
	return &publisherImpl{
		channel:  ch,
		exchange: exchange,
		otel:     otl,
	}
}

// ToPublishing encodes an event as a persistent JSON message.
func ToPublishing(event events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

func (p *publisherImpl) Publish(ctx context.Context, event events.Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".rabbitmq.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("routing_key", event.Type)

	msg, err := ToPublishing(event)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if err = p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("rabbitmq: publish failed")

		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *publisherImpl) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq channel: %w", err)
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close rabbitmq connection: %w", err)
		}
	}

	return nil
}
