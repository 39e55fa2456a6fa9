package memstore

import (
	"context"
	"fmt"
	"pms/internal/domains/payment/model"
	"pms/internal/domains/payment/repository"
	resModel "pms/internal/domains/reservation/model"
	"pms/shared/failure"
	"slices"
)

type paymentRepo struct {
	*Store
}

func (s *Store) Payments() repository.Payment {
	return paymentRepo{s}
}

func (p paymentRepo) Record(_ context.Context, payment model.Payment) (model.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, ok := p.reservations[payment.ReservationID]
	if !ok {
		return model.Payment{}, failure.NotFound(fmt.Sprintf("reservation %s not found", payment.ReservationID)) //nolint:wrapcheck
	}

	if res.Status == resModel.StatusCancelled || res.Status == resModel.StatusNoShow {
		return model.Payment{}, model.ErrReservationClosed
	}

	if res.PaidAmount+payment.Amount > res.TotalAmount {
		return model.Payment{}, &model.OverPaymentError{Amount: payment.Amount, Balance: res.Balance()}
	}

	if payment.IdempotencyKey != nil && p.byKey(payment.ReservationID, *payment.IdempotencyKey).ID != "" {
		return model.Payment{}, model.ErrDuplicatePayment
	}

	p.paymentSeq++
	payment.Sequence = p.paymentSeq

	res.PaidAmount += payment.Amount
	res.Version++
	res.ModifiedAt = payment.CreatedAt
	res.ModifiedBy = payment.ProcessedBy

	p.reservations[res.ID] = res
	p.payments[res.ID] = append(p.payments[res.ID], payment)

	return payment, nil
}

func (p paymentRepo) GetAllByReservation(_ context.Context, reservationID string) ([]model.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payments := slices.Clone(p.payments[reservationID])
	if payments == nil {
		payments = []model.Payment{}
	}

	model.Sort(payments)

	return payments, nil
}

func (p paymentRepo) GetByIdempotencyKey(_ context.Context, reservationID, key string) (model.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.byKey(reservationID, key), nil
}

func (p paymentRepo) byKey(reservationID, key string) model.Payment {
	for _, payment := range p.payments[reservationID] {
		if payment.IdempotencyKey != nil && *payment.IdempotencyKey == key {
			return payment
		}
	}

	return model.Payment{}
}
