package dto

import (
	"pms/internal/domains/payment/model"
	resModel "pms/internal/domains/reservation/model"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/money"
	"pms/shared/timezone"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Amount and method are left to the ledger so that their failures carry the ledger kinds.
type RecordPaymentRequest struct {
	Amount         float64 `json:"amount"`
	Method         string  `json:"method"`
	Reference      string  `json:"reference"    validate:"max=100"`
	PaymentDate    string  `json:"payment_date" validate:"date"`
	IdempotencyKey string  `json:"-"            validate:"max=100"`
}

// ToModel dates the payment today unless a date is supplied.
func (r *RecordPaymentRequest) ToModel(reservationID, actor string, now time.Time) (model.Payment, error) {
	paymentDate := timezone.DateOf(now)

	if r.PaymentDate != constant.Empty {
		date, err := timezone.ParseDate(r.PaymentDate)
		if err != nil {
			return model.Payment{}, failure.BadRequestFromString("payment_date must be a date formatted as YYYY-MM-DD") //nolint:wrapcheck
		}

		paymentDate = date
	}

	if money.HasSubCentPrecision(r.Amount) {
		return model.Payment{}, model.ErrInvalidAmount
	}

	payment := model.Payment{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Amount:        money.FromMajor(r.Amount),
		Method:        model.Method(strings.TrimSpace(r.Method)),
		Reference:     strings.TrimSpace(r.Reference),
		PaymentDate:   paymentDate,
		ProcessedBy:   actor,
		CreatedAt:     now,
	}

	if key := strings.TrimSpace(r.IdempotencyKey); key != constant.Empty {
		payment.IdempotencyKey = &key
	}

	return payment, nil
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	ReservationID string  `json:"reservation_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Reference     string  `json:"reference,omitempty"`
	PaymentDate   string  `json:"payment_date"`
	ProcessedBy   string  `json:"processed_by"`
	Sequence      int64   `json:"sequence"`
	CreatedAt     string  `json:"created_at"`
	// Replayed is set when an idempotency key matched an earlier payment.
	Replayed bool `json:"replayed,omitempty"`
}

func (p *PaymentResponse) FromModel(model model.Payment) {
	p.ID = model.ID
	p.ReservationID = model.ReservationID
	p.Amount = model.Amount.Major()
	p.Method = string(model.Method)
	p.Reference = model.Reference
	p.PaymentDate = timezone.FormatDate(model.PaymentDate)
	p.ProcessedBy = model.ProcessedBy
	p.Sequence = model.Sequence
	p.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    float64           `json:"total"`
}

func (l *ListPaymentsResponse) FromModels(models []model.Payment) {
	l.Total = model.Total(models).Major()

	l.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		l.Payments[i].FromModel(mod)
	}
}

type SummaryResponse struct {
	ReservationID string  `json:"reservation_id"`
	TotalAmount   float64 `json:"total_amount"`
	PaidAmount    float64 `json:"paid_amount"`
	Balance       float64 `json:"balance"`
	ListPaymentsResponse
}

func (s *SummaryResponse) FromModels(reservation resModel.Reservation, payments []model.Payment) {
	s.ReservationID = reservation.ID
	s.TotalAmount = reservation.TotalAmount.Major()
	s.PaidAmount = reservation.PaidAmount.Major()
	s.Balance = reservation.DisplayBalance().Major()
	s.ListPaymentsResponse.FromModels(payments)
}
