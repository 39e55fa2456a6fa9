// Package events defines the domain events emitted after a reservation or
// payment write has committed, and the publisher port the brokers implement.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeReservationCreated       = "reservation.created"
	TypeReservationStatusChanged = "reservation.status_changed"
	TypeReservationRescheduled   = "reservation.rescheduled"
	TypePaymentRecorded          = "payment.recorded"
)

// Event is the JSON envelope put on the wire.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	BranchID    string          `json:"branch_id"`
	AggregateID string          `json:"aggregate_id"`
	ActorID     string          `json:"actor_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// New builds an envelope, marshalling payload.
func New(eventType, branchID, aggregateID, actorID string, occurredAt time.Time, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		BranchID:    branchID,
		AggregateID: aggregateID,
		ActorID:     actorID,
		OccurredAt:  occurredAt,
		Payload:     body,
	}, nil
}

// Key partitions events of one aggregate together.
func (e Event) Key() string {
	return e.AggregateID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
