package events_test

import (
	"context"
	"encoding/json"
	"pms/shared/events"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	at := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

	event, err := events.New(events.TypePaymentRecorded, "b-1", "r-1", "u-1", at, map[string]any{"amount": "750.00"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "payment.recorded", event.Type)
	assert.Equal(t, "r-1", event.Key())
	assert.JSONEq(t, `{"amount":"750.00"}`, string(event.Payload))

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"aggregate_id":"r-1"`)
}

func TestNew_UnmarshalablePayload(t *testing.T) {
	_, err := events.New(events.TypeReservationCreated, "b-1", "r-1", "u-1", time.Now(), make(chan int))
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	publisher := events.NewNoop()

	assert.NoError(t, publisher.Publish(context.Background(), events.Event{}))
	assert.NoError(t, publisher.Close())
}
