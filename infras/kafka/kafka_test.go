package kafka

import (
	"context"
	"errors"
	"pms/infras/otel/mocks"
	"pms/shared/events"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafkaGo.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, msgs...)

	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true

	return nil
}

func TestPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewWithWriter(writer, "pms.", mocks.NewOtel())

	event, err := events.New(events.TypeReservationCreated, "b-1", "r-1", "u-1", time.Now(), map[string]string{"code": "RES-2024-001"})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "pms.reservation.created", msg.Topic)
	assert.Equal(t, "r-1", string(msg.Key))
	assert.Equal(t, "reservation.created", string(msg.Headers[0].Value))

	decoded, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	otl := mocks.NewOtel()
	publisher := NewWithWriter(&fakeWriter{err: errors.New("broker down")}, "", otl)

	err := publisher.Publish(context.Background(), events.Event{Type: events.TypePaymentRecorded})
	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, otl.Errors(), 1)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent(kafkaGo.Message{Value: []byte("{")})
	assert.Error(t, err)
}
