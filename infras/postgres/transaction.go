package postgres

import (
	"context"
	"errors"
	"fmt"
	"pms/shared/constant"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const retryBackoff = 50 * time.Millisecond

// Transact runs fn inside a write transaction. Serialization failures and
// deadlocks roll back and run fn again, up to maxRetry extra attempts.
// fn must not keep state between attempts.
func (c *Connection) Transact(ctx context.Context, maxRetry int, fn func(tx *sqlx.Tx) error) error {
	var err error

	for attempt := 0; attempt <= maxRetry; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("transaction aborted: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}

			log.Warn().Err(err).Int("attempt", attempt).Msg("retrying transaction")
		}

		err = c.transact(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}

	return err
}

func (c *Connection) transact(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsRetryable reports whether err is a serialization failure or a deadlock.
func IsRetryable(err error) bool {
	code := ErrorCode(err)

	return code == constant.PqErrorCodeSerializationFailure || code == constant.PqErrorCodeDeadlockDetected
}

// ErrorCode returns the SQLSTATE of the first *pq.Error in the chain, or "".
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// ConstraintName returns the violated constraint of the first *pq.Error in the chain.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}
