package postgres_test

import (
	"errors"
	"fmt"
	"pms/infras/postgres"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, expected: true},
		{name: "deadlock wrapped", err: fmt.Errorf("failed to insert: %w", &pq.Error{Code: "40P01"}), expected: true},
		{name: "exclusion violation", err: &pq.Error{Code: "23P01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, postgres.IsRetryable(tt.err))
		})
	}
}

func TestErrorCodeAndConstraint(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505", Constraint: "payments_idempotency_key"})

	assert.Equal(t, "23505", postgres.ErrorCode(err))
	assert.Equal(t, "payments_idempotency_key", postgres.ConstraintName(err))
	assert.Empty(t, postgres.ErrorCode(errors.New("x")))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://pms:secret@db:5432/pms?sslmode=disable", postgres.DSN("pms", "secret", "db", "5432", "pms", ""))
	assert.Equal(t, "postgres://pms:secret@db:5432/pms?sslmode=require", postgres.DSN("pms", "secret", "db", "5432", "pms", "require"))
}
