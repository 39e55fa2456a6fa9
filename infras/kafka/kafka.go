package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/shared/constant"
	"pms/shared/events"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const headerEventType = "event-type"

// ToKafkaMessage encodes an event envelope keyed by its aggregate.
func ToKafkaMessage(topic string, event events.Event) (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event to JSON")

		return kafkaGo.Message{}, fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	return kafkaGo.Message{
		Topic: topic,
		Key:   []byte(event.Key()),
		Value: jsonValue,
		Headers: []kafkaGo.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}, nil
}

// DecodeEvent is the inverse of ToKafkaMessage.
func DecodeEvent(msg kafkaGo.Message) (events.Event, error) {
	var event events.Event

	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal Kafka message value from JSON")

		return events.Event{}, fmt.Errorf("failed to unmarshal Kafka message value from JSON: %w", err)
	}

	return event, nil
}

// Topic maps an event type to its topic: prefix + type.
func Topic(prefix, eventType string) string {
	return prefix + eventType
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type publisherImpl struct {
	writer      messageWriter
	topicPrefix string
	otel        otel.Otel
}

// New returns an events.Publisher writing one topic per event type.
func New(config *config.Config, otl otel.Otel) events.Publisher {
	transport := &kafkaGo.Transport{}

	if config.Events.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: config.Events.Kafka.SASL.Username,
			Password: config.Events.Kafka.SASL.Password,
		}
	}

	writer := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(config.Events.Kafka.Brokers...),
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireAll,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", config.Events.Kafka.Brokers).Msg("Kafka publisher initialized")

	return NewWithWriter(writer, config.Events.Kafka.TopicPrefix, otl)
}

func NewWithWriter(writer messageWriter, topicPrefix string, otl otel.Otel) events.Publisher {
	return &publisherImpl{
		writer:      writer,
		topicPrefix: topicPrefix,
		otel:        otl,
	}
}

func (k *publisherImpl) Publish(ctx context.Context, event events.Event) (err error) {
	ctx, scope := k.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".kafka.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	topic := Topic(k.topicPrefix, event.Type)
	scope.SetAttribute("topic", topic)

	msg, err := ToKafkaMessage(topic, event)
	if err != nil {
		return err
	}

	if err = k.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Str("key", event.Key()).Msg("Sent message successfully.")

	return nil
}

func (k *publisherImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}
