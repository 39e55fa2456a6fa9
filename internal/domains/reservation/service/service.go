package service

import (
	"context"
	"errors"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	availabilityModel "pms/internal/domains/availability/model"
	availabilityService "pms/internal/domains/availability/service"
	"pms/internal/domains/reservation/model"
	"pms/internal/domains/reservation/model/dto"
	"pms/internal/domains/reservation/repository"
	roomModel "pms/internal/domains/room/model"
	roomRepository "pms/internal/domains/room/repository"
	roomService "pms/internal/domains/room/service"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/events"
	"pms/shared/failure"
	"pms/shared/session"

	"github.com/rs/zerolog/log"
)

// CacheGetReservation prefixes single reservation reads; payment writes refresh it too.
const CacheGetReservation = "reservation:get"

// RefreshCache writes the committed reservation over its cache entry. Reads only fill
// an absent entry, so a read that loaded before the commit cannot overwrite it.
func RefreshCache(ctx context.Context, redisCache cache.RedisCache, reservation model.Reservation, ttl int) {
	cacheKey := shared.BuildCacheKey(CacheGetReservation, reservation.ID)

	var res dto.ReservationResponse
	res.FromModel(reservation)

	if err := redisCache.Save(ctx, cacheKey, res, ttl); err != nil {
		log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to refresh reservation cache")

		if err = redisCache.Delete(ctx, cacheKey); err != nil {
			log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to delete reservation from cache")
		}
	}
}

type Reservation interface {
	Create(ctx context.Context, sess session.Session, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error)
	ListByBranch(ctx context.Context, sess session.Session, criteria model.Criteria) (dto.ListReservationsResponse, error)
	// Search filters already loaded reservations.
	Search(reservations []model.Reservation, criteria model.Criteria) []model.Reservation

	Confirm(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, sess session.Session, id, reason string) (dto.ReservationResponse, error)
	CheckIn(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error)
	CheckOut(ctx context.Context, sess session.Session, id string, override bool) (dto.ReservationResponse, error)
	MarkNoShow(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error)
	Transition(ctx context.Context, sess session.Session, id string, req dto.TransitionRequest) (dto.ReservationResponse, error)
	Reschedule(ctx context.Context, sess session.Session, id string, req dto.RescheduleRequest) (dto.ReservationResponse, error)
}

type serviceImpl struct {
	repo         repository.Reservation
	rooms        roomRepository.Room
	availability availabilityService.Availability
	cfg          *config.Config
	cache        cache.RedisCache
	publisher    events.Publisher
	clock        clock.Clock
	otel         otel.Otel
}

func New(
	repo repository.Reservation,
	rooms roomRepository.Room,
	availability availabilityService.Availability,
	cfg *config.Config,
	cache cache.RedisCache,
	publisher events.Publisher,
	clk clock.Clock,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:         repo,
		rooms:        rooms,
		availability: availability,
		cfg:          cfg,
		cache:        cache,
		publisher:    publisher,
		clock:        clk,
		otel:         otel,
	}
}

type createdPayload struct {
	ConfirmationCode string `json:"confirmation_code"`
	RoomID           string `json:"room_id"`
	GuestID          string `json:"guest_id"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	TotalAmount      string `json:"total_amount"`
}

type statusChangedPayload struct {
	From   model.Status `json:"from"`
	To     model.Status `json:"to"`
	Reason string       `json:"reason,omitempty"`
}

type rescheduledPayload struct {
	RoomID      string `json:"room_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	TotalAmount string `json:"total_amount"`
}

func (s *serviceImpl) Create(ctx context.Context, sess session.Session, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	rng, err := req.Range()
	if err != nil {
		return res, err
	}

	room, err := s.room(ctx, sess, req.RoomID)
	if err != nil {
		return res, err
	}

	if !room.Fits(req.Adults, req.Children) {
		return res, failure.BadRequestFromString(fmt.Sprintf("room %s holds at most %d guests", room.Number, room.Capacity)) // nolint:wrapcheck
	}

	booking := req.ToBooking(rng, room, sess.ActorID, s.cfg.App.Reservation.ConfirmationPrefix, s.clock.Now())
	if err = booking.Validate(); err != nil {
		return res, err
	}

	if err = s.ensureAvailable(ctx, sess, room.ID, rng, constant.Empty); err != nil {
		return res, err
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		if isDomainError(err) {
			return res, err
		}

		log.Error().Err(err).Str("room_id", room.ID).Msg("failed to create reservation")

		return res, fmt.Errorf("failed to create reservation for room %s: %w", room.ID, err)
	}

	res.FromModel(created)

	s.afterWrite(ctx, created, sess.ActorID, events.TypeReservationCreated, createdPayload{
		ConfirmationCode: created.ConfirmationCode,
		RoomID:           created.RoomID,
		GuestID:          created.GuestID,
		CheckIn:          res.CheckIn,
		CheckOut:         res.CheckOut,
		TotalAmount:      created.TotalAmount.String(),
	})

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, sess session.Session, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(CacheGetReservation, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		if !sess.CanAccessBranch(res.BranchID) {
			return dto.ReservationResponse{}, notFound(id)
		}

		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.load(ctx, sess, id, s.repo.Get)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	if _, cacheErr := s.cache.SaveIfAbsent(ctx, cacheKey, res, s.cfg.Cache.TTL); cacheErr != nil {
		log.Error().Err(cacheErr).Msg("failed to save reservation to cache")
	}

	return res, nil
}

func (s *serviceImpl) ListByBranch(ctx context.Context, sess session.Session, criteria model.Criteria) (res dto.ListReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.ListByBranch")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	if err = criteria.Validate(); err != nil {
		return res, err
	}

	now := s.clock.Now()

	reservations, err := s.repo.GetAllByBranch(ctx, sess.BranchID, criteria.ListFilter(now))
	if err != nil {
		log.Error().Err(err).Str("branch_id", sess.BranchID).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations of branch %s: %w", sess.BranchID, err)
	}

	res.FromModels(model.Search(reservations, criteria, now))

	return res, nil
}

func (s *serviceImpl) Search(reservations []model.Reservation, criteria model.Criteria) []model.Reservation {
	return model.Search(reservations, criteria, s.clock.Now())
}

func (s *serviceImpl) Confirm(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.StatusConfirmed, model.TransitionOptions{})
}

func (s *serviceImpl) Cancel(ctx context.Context, sess session.Session, id, reason string) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.StatusCancelled, model.TransitionOptions{Reason: reason})
}

func (s *serviceImpl) CheckIn(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.StatusCheckedIn, model.TransitionOptions{})
}

func (s *serviceImpl) CheckOut(ctx context.Context, sess session.Session, id string, override bool) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.StatusCheckedOut, model.TransitionOptions{Override: override})
}

func (s *serviceImpl) MarkNoShow(ctx context.Context, sess session.Session, id string) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.StatusNoShow, model.TransitionOptions{})
}

func (s *serviceImpl) Transition(ctx context.Context, sess session.Session, id string, req dto.TransitionRequest) (dto.ReservationResponse, error) {
	return s.transition(ctx, sess, id, model.Status(req.Status), model.TransitionOptions{Reason: req.Reason, Override: req.Override})
}

func (s *serviceImpl) transition(ctx context.Context, sess session.Session, id string, to model.Status, opts model.TransitionOptions) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Transition")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("reservation.status", string(to))

	if err = sess.Validate(); err != nil {
		return res, err
	}

	current, err := s.load(ctx, sess, id, s.repo.GetPrimary)
	if err != nil {
		return res, err
	}

	opts.Now = s.clock.Now()
	opts.Actor = sess.ActorID

	next := current
	if err = next.Transition(to, opts); err != nil {
		return res, err
	}

	saved, err := s.repo.UpdateStatus(ctx, next)
	if err != nil {
		if isDomainError(err) {
			return res, err
		}

		log.Error().Err(err).Str("reservation_id", id).Msg("failed to update reservation status")

		return res, fmt.Errorf("failed to update reservation %s status: %w", id, err)
	}

	s.syncRoomStatus(ctx, saved, sess.ActorID, opts)

	res.FromModel(saved)

	s.afterWrite(ctx, saved, sess.ActorID, events.TypeReservationStatusChanged, statusChangedPayload{
		From:   current.Status,
		To:     saved.Status,
		Reason: opts.Reason,
	})

	return res, nil
}

func (s *serviceImpl) Reschedule(ctx context.Context, sess session.Session, id string, req dto.RescheduleRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Reschedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	rng, err := req.Range()
	if err != nil {
		return res, err
	}

	current, err := s.load(ctx, sess, id, s.repo.GetPrimary)
	if err != nil {
		return res, err
	}

	if current.Status != model.StatusPending && current.Status != model.StatusConfirmed {
		return res, &model.InvalidTransitionError{
			From:   current.Status,
			To:     current.Status,
			Reason: "only pending or confirmed reservations can be rescheduled",
		}
	}

	roomID := req.RoomID
	if roomID == constant.Empty {
		roomID = current.RoomID
	}

	room, err := s.room(ctx, sess, roomID)
	if err != nil {
		return res, err
	}

	if room.BranchID != current.BranchID {
		return res, failure.BadRequestFromString("a reservation cannot move to another branch") // nolint:wrapcheck
	}

	if !room.Fits(current.Adults, current.Children) {
		return res, failure.BadRequestFromString(fmt.Sprintf("room %s holds at most %d guests", room.Number, room.Capacity)) // nolint:wrapcheck
	}

	next := req.Apply(current, rng, room, sess.ActorID, s.clock.Now())
	if next.TotalAmount < current.PaidAmount {
		return res, failure.Unprocessable(fmt.Sprintf("total of %s is below the %s already paid", next.TotalAmount, current.PaidAmount)) // nolint:wrapcheck
	}

	if err = s.ensureAvailable(ctx, sess, room.ID, rng, current.ID); err != nil {
		return res, err
	}

	saved, err := s.repo.Reschedule(ctx, next)
	if err != nil {
		if isDomainError(err) {
			return res, err
		}

		log.Error().Err(err).Str("reservation_id", id).Msg("failed to reschedule reservation")

		return res, fmt.Errorf("failed to reschedule reservation %s: %w", id, err)
	}

	res.FromModel(saved)

	s.afterWrite(ctx, saved, sess.ActorID, events.TypeReservationRescheduled, rescheduledPayload{
		RoomID:      saved.RoomID,
		CheckIn:     res.CheckIn,
		CheckOut:    res.CheckOut,
		TotalAmount: saved.TotalAmount.String(),
	})

	return res, nil
}

// load reads the reservation from the repository, never from cache, so that its
// version is current.
// load reads through get; writes pass GetPrimary so the version they check is the committed one.
func (s *serviceImpl) load(ctx context.Context, sess session.Session, id string, get func(context.Context, string) (model.Reservation, error)) (model.Reservation, error) {
	reservation, err := get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}

	if reservation.ID == constant.Empty || !sess.CanAccessBranch(reservation.BranchID) {
		return model.Reservation{}, notFound(id)
	}

	return reservation, nil
}

func (s *serviceImpl) room(ctx context.Context, sess session.Session, id string) (roomModel.Room, error) {
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room %s: %w", id, err)
	}

	if room.ID == constant.Empty || !sess.CanAccessBranch(room.BranchID) {
		return roomModel.Room{}, failure.NotFound(fmt.Sprintf("room %s not found", id)) // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) ensureAvailable(ctx context.Context, sess session.Session, roomID string, rng model.DateRange, excludeID string) error {
	conflicts, err := s.availability.Conflicts(ctx, sess, availabilityModel.Query{
		RoomID:               roomID,
		CheckIn:              rng.CheckIn,
		CheckOut:             rng.CheckOut,
		ExcludeReservationID: excludeID,
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	if len(conflicts) > 0 {
		return &model.RoomUnavailableError{RoomID: roomID, ConflictingIDs: conflicts}
	}

	return nil
}

// syncRoomStatus marks the room occupied on check-in and dirty on check-out.
// A failure is logged and does not undo the transition.
func (s *serviceImpl) syncRoomStatus(ctx context.Context, res model.Reservation, actor string, opts model.TransitionOptions) {
	var status roomModel.Status

	switch res.Status {
	case model.StatusCheckedIn:
		status = roomModel.StatusOccupied
	case model.StatusCheckedOut:
		status = roomModel.StatusCleaning
	default:
		return
	}

	if _, err := s.rooms.UpdateStatus(ctx, res.RoomID, status, actor, opts.Now); err != nil {
		log.Error().Err(err).Str("room_id", res.RoomID).Str("status", string(status)).Msg("failed to update room status")
	}
}

// afterWrite drops stale cache entries and publishes the event once the write committed.
func (s *serviceImpl) afterWrite(ctx context.Context, res model.Reservation, actor, eventType string, payload any) {
	RefreshCache(context.WithoutCancel(ctx), s.cache, res, s.cfg.Cache.TTL)

	go func() {
		c := context.WithoutCancel(ctx)

		if eventType == events.TypeReservationStatusChanged {
			if err := s.cache.Delete(c, shared.BuildCacheKey(roomService.CacheGetRoom, res.RoomID)); err != nil {
				log.Error().Err(err).Msg("failed to delete room from cache")
			}

			shared.InvalidateCaches(c, s.cache, roomService.CacheListRooms)
		}

		event, err := events.New(eventType, res.BranchID, res.ID, actor, s.clock.Now(), payload)
		if err != nil {
			log.Error().Err(err).Str("type", eventType).Msg("failed to build event")

			return
		}

		if err = s.publisher.Publish(c, event); err != nil {
			log.Error().Err(err).Str("type", eventType).Str("reservation_id", res.ID).Msg("failed to publish event")
		}
	}()
}

func notFound(id string) error {
	return failure.NotFound(fmt.Sprintf("reservation %s not found", id)) // nolint:wrapcheck
}

// isDomainError reports errors the repository returns already classified.
func isDomainError(err error) bool {
	var fail *failure.Failure

	return errors.As(err, &fail)
}
