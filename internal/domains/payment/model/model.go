package model

import (
	"fmt"
	"net/http"
	"pms/shared/failure"
	"pms/shared/money"
	"slices"
	"strings"
	"time"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID             = "id"
	FieldReservationID  = "reservation_id"
	FieldAmount         = "amount"
	FieldMethod         = "method"
	FieldReference      = "reference"
	FieldPaymentDate    = "payment_date"
	FieldProcessedBy    = "processed_by"
	FieldIdempotencyKey = "idempotency_key"
	FieldSequence       = "seq"
	FieldCreatedAt      = "created_at"
)

const (
	KindInvalidAmount     = "invalid_amount"
	KindOverPayment       = "over_payment"
	KindMissingReference  = "missing_reference"
	KindReservationClosed = "reservation_closed"
	KindInvalidMethod     = "invalid_method"
	KindDuplicatePayment  = "duplicate_payment"
)

var (
	ErrInvalidAmount     = failure.New(http.StatusBadRequest, KindInvalidAmount, "payment amount must be positive with at most two decimals")
	ErrOverPayment       = failure.New(http.StatusUnprocessableEntity, KindOverPayment, "payment amount exceeds the reservation balance")
	ErrMissingReference  = failure.New(http.StatusBadRequest, KindMissingReference, "payment method requires a reference")
	ErrReservationClosed = failure.New(http.StatusConflict, KindReservationClosed, "reservation is closed")
	ErrInvalidMethod     = failure.New(http.StatusBadRequest, KindInvalidMethod, "unknown payment method")

	// ErrDuplicatePayment means a payment with the same idempotency key already exists.
	ErrDuplicatePayment = failure.New(http.StatusConflict, KindDuplicatePayment, "payment already recorded")
)

type OverPaymentError struct {
	Amount  money.Money
	Balance money.Money
}

func (e *OverPaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds the balance of %s", e.Amount, e.Balance)
}

func (e *OverPaymentError) Unwrap() error {
	return ErrOverPayment
}

type Method string

const (
	MethodCash          Method = "cash"
	MethodTransfer      Method = "transfer"
	MethodDigitalWallet Method = "digital_wallet"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodDigitalWallet:
		return true
	default:
		return false
	}
}

// RequiresReference is true for every non-cash method.
func (m Method) RequiresReference() bool {
	return m.IsValid() && m != MethodCash
}

type Payment struct {
	ID             string      `db:"id"`
	ReservationID  string      `db:"reservation_id"`
	Amount         money.Money `db:"amount"`
	Method         Method      `db:"method"`
	Reference      string      `db:"reference"`
	PaymentDate    time.Time   `db:"payment_date"`
	ProcessedBy    string      `db:"processed_by"`
	IdempotencyKey *string     `db:"idempotency_key"`
	Sequence       int64       `db:"seq"`
	CreatedAt      time.Time   `db:"created_at"`
}

// ValidateDraft runs the checks that need no reservation.
func (p Payment) ValidateDraft() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !p.Method.IsValid() {
		return ErrInvalidMethod
	}

	return nil
}

// Validate checks the payment against the reservation balance before the payment:
// amount, then over-payment, then reference.
func (p Payment) Validate(balance money.Money) error {
	if err := p.ValidateDraft(); err != nil {
		return err
	}

	if p.Amount > balance {
		return &OverPaymentError{Amount: p.Amount, Balance: balance}
	}

	if p.Method.RequiresReference() && strings.TrimSpace(p.Reference) == "" {
		return ErrMissingReference
	}

	return nil
}

// Sort orders payments by payment date, ties by insertion sequence.
func Sort(payments []Payment) {
	slices.SortStableFunc(payments, func(a, b Payment) int {
		if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
			return c
		}

		switch {
		case a.Sequence < b.Sequence:
			return -1
		case a.Sequence > b.Sequence:
			return 1
		default:
			return 0
		}
	})
}

func Total(payments []Payment) money.Money {
	var total money.Money

	for _, p := range payments {
		total += p.Amount
	}

	return total
}
