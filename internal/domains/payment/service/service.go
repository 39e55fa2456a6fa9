package service

import (
	"context"
	"errors"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/internal/domains/payment/model"
	"pms/internal/domains/payment/model/dto"
	"pms/internal/domains/payment/repository"
	resModel "pms/internal/domains/reservation/model"
	resRepository "pms/internal/domains/reservation/repository"
	resService "pms/internal/domains/reservation/service"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/events"
	"pms/shared/failure"
	"pms/shared/session"

	"github.com/rs/zerolog/log"
)

const (
	cacheIdempotencyClaim = "payment:claim"

	defaultIdempotencyTTLSeconds = 86400
)

type Payment interface {
	Record(ctx context.Context, sess session.Session, reservationID string, req dto.RecordPaymentRequest) (dto.PaymentResponse, error)
	List(ctx context.Context, sess session.Session, reservationID string) (dto.ListPaymentsResponse, error)
	Summary(ctx context.Context, sess session.Session, reservationID string) (dto.SummaryResponse, error)
}

type serviceImpl struct {
	repo         repository.Payment
	reservations resRepository.Reservation
	cfg          *config.Config
	cache        cache.RedisCache
	publisher    events.Publisher
	clock        clock.Clock
	otel         otel.Otel
}

func New(
	repo repository.Payment,
	reservations resRepository.Reservation,
	cfg *config.Config,
	cache cache.RedisCache,
	publisher events.Publisher,
	clk clock.Clock,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:         repo,
		reservations: reservations,
		cfg:          cfg,
		cache:        cache,
		publisher:    publisher,
		clock:        clk,
		otel:         otel,
	}
}

type recordedPayload struct {
	PaymentID string       `json:"payment_id"`
	Amount    string       `json:"amount"`
	Method    model.Method `json:"method"`
}

func (s *serviceImpl) Record(ctx context.Context, sess session.Session, reservationID string, req dto.RecordPaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Record")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	payment, err := req.ToModel(reservationID, sess.ActorID, s.clock.Now())
	if err != nil {
		return res, err
	}

	if err = payment.ValidateDraft(); err != nil {
		return res, err
	}

	reservation, err := s.reservation(ctx, sess, reservationID)
	if err != nil {
		return res, err
	}

	if payment.IdempotencyKey != nil {
		if replayed, found, replayErr := s.replay(ctx, reservationID, *payment.IdempotencyKey); replayErr != nil || found {
			return replayed, replayErr
		}
	}

	if reservation.Status == resModel.StatusCancelled || reservation.Status == resModel.StatusNoShow {
		return res, model.ErrReservationClosed
	}

	if err = payment.Validate(reservation.Balance()); err != nil {
		return res, err
	}

	if payment.IdempotencyKey != nil {
		release, claimErr := s.claim(ctx, reservationID, *payment.IdempotencyKey, payment.ID)
		if claimErr != nil {
			return res, claimErr
		}

		defer func() {
			if err != nil {
				release()
			}
		}()
	}

	recorded, err := s.repo.Record(ctx, payment)
	if err != nil {
		if errors.Is(err, model.ErrDuplicatePayment) && payment.IdempotencyKey != nil {
			replayed, _, replayErr := s.replay(ctx, reservationID, *payment.IdempotencyKey)

			return replayed, replayErr
		}

		var fail *failure.Failure
		if errors.As(err, &fail) {
			return res, err
		}

		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to record payment")

		return res, fmt.Errorf("failed to record payment for reservation %s: %w", reservationID, err)
	}

	res.FromModel(recorded)

	s.refreshReservation(ctx, reservationID)

	go func() {
		c := context.WithoutCancel(ctx)

		event, err := events.New(events.TypePaymentRecorded, reservation.BranchID, reservationID, sess.ActorID, s.clock.Now(), recordedPayload{
			PaymentID: recorded.ID,
			Amount:    recorded.Amount.String(),
			Method:    recorded.Method,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to build payment event")

			return
		}

		if err = s.publisher.Publish(c, event); err != nil {
			log.Error().Err(err).Str("payment_id", recorded.ID).Msg("failed to publish payment event")
		}
	}()

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, sess session.Session, reservationID string) (res dto.ListPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	if _, err = s.reservation(ctx, sess, reservationID); err != nil {
		return res, err
	}

	payments, err := s.payments(ctx, reservationID)
	if err != nil {
		return res, err
	}

	res.FromModels(payments)

	return res, nil
}

func (s *serviceImpl) Summary(ctx context.Context, sess session.Session, reservationID string) (res dto.SummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Summary")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	reservation, err := s.reservation(ctx, sess, reservationID)
	if err != nil {
		return res, err
	}

	payments, err := s.payments(ctx, reservationID)
	if err != nil {
		return res, err
	}

	res.FromModels(reservation, payments)

	return res, nil
}

func (s *serviceImpl) payments(ctx context.Context, reservationID string) ([]model.Payment, error) {
	payments, err := s.repo.GetAllByReservation(ctx, reservationID)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to get payments")

		return nil, fmt.Errorf("failed to get payments of reservation %s: %w", reservationID, err)
	}

	return payments, nil
}

func (s *serviceImpl) reservation(ctx context.Context, sess session.Session, id string) (resModel.Reservation, error) {
	reservation, err := s.reservations.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}

	if reservation.ID == constant.Empty || !sess.CanAccessBranch(reservation.BranchID) {
		return resModel.Reservation{}, failure.NotFound(fmt.Sprintf("reservation %s not found", id)) // nolint:wrapcheck
	}

	return reservation, nil
}

// refreshReservation caches the reservation with its new paid amount, read from the primary.
func (s *serviceImpl) refreshReservation(ctx context.Context, reservationID string) {
	ctx = context.WithoutCancel(ctx)
	cacheKey := shared.BuildCacheKey(resService.CacheGetReservation, reservationID)

	latest, err := s.reservations.GetPrimary(ctx, reservationID)
	if err != nil || latest.ID == constant.Empty {
		log.Warn().Err(err).Str("reservation_id", reservationID).Msg("failed to reload reservation after payment")

		if err = s.cache.Delete(ctx, cacheKey); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation from cache")
		}

		return
	}

	resService.RefreshCache(ctx, s.cache, latest, s.cfg.Cache.TTL)
}

// replay returns the payment already recorded under key, if any.
func (s *serviceImpl) replay(ctx context.Context, reservationID, key string) (dto.PaymentResponse, bool, error) {
	var res dto.PaymentResponse

	existing, err := s.repo.GetByIdempotencyKey(ctx, reservationID, key)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to look up idempotency key")

		return res, false, fmt.Errorf("failed to look up payment by idempotency key: %w", err)
	}

	if existing.ID == constant.Empty {
		return res, false, nil
	}

	res.FromModel(existing)
	res.Replayed = true

	return res, true, nil
}

// claim reserves key in Redis for the duration of the write. The database unique index
// stays the authority, so a cache failure only logs.
func (s *serviceImpl) claim(ctx context.Context, reservationID, key, paymentID string) (func(), error) {
	cacheKey := shared.BuildCacheKey(cacheIdempotencyClaim, reservationID, key)

	ttl := s.cfg.App.Reservation.IdempotencyTTLSeconds
	if ttl <= 0 {
		ttl = defaultIdempotencyTTLSeconds
	}

	claimed, err := s.cache.SaveIfAbsent(ctx, cacheKey, paymentID, ttl)
	if err != nil {
		log.Warn().Err(err).Str("cacheKey", cacheKey).Msg("failed to claim idempotency key")

		return func() {}, nil
	}

	if !claimed {
		return nil, failure.Conflict("a payment with this idempotency key is already being processed") // nolint:wrapcheck
	}

	return func() {
		if err := s.cache.Delete(context.WithoutCancel(ctx), cacheKey); err != nil {
			log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to release idempotency key")
		}
	}, nil
}
