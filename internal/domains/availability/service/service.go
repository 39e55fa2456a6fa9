package service

import (
	"context"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/internal/domains/availability/model"
	resRepository "pms/internal/domains/reservation/repository"
	roomModel "pms/internal/domains/room/model"
	roomDto "pms/internal/domains/room/model/dto"
	roomRepository "pms/internal/domains/room/repository"
	roomService "pms/internal/domains/room/service"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"

	"github.com/rs/zerolog/log"
)

// cached room models live under the room list prefix so room writes invalidate them
const cacheRoomModels = "models"

type Availability interface {
	FindAvailableRooms(ctx context.Context, sess session.Session, query model.Query) (roomDto.GetRoomsResponse, error)
	IsRoomAvailable(ctx context.Context, sess session.Session, query model.Query) (bool, error)
	// Conflicts returns the ids of the blocking reservations overlapping the query on query.RoomID.
	Conflicts(ctx context.Context, sess session.Session, query model.Query) ([]string, error)
}

type serviceImpl struct {
	rooms        roomRepository.Room
	reservations resRepository.Reservation
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(rooms roomRepository.Room, reservations resRepository.Reservation, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Availability {
	return &serviceImpl{
		rooms:        rooms,
		reservations: reservations,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) FindAvailableRooms(ctx context.Context, sess session.Session, query model.Query) (res roomDto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.FindAvailableRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	rng, err := query.Range()
	if err != nil {
		return res, err
	}

	branchID, err := branchOf(sess, query.BranchID)
	if err != nil {
		return res, err
	}

	rooms, err := s.branchRooms(ctx, branchID)
	if err != nil {
		return res, err
	}

	blocking, err := s.reservations.GetBlocking(ctx, resRepository.BlockingQuery{BranchID: branchID, Range: rng})
	if err != nil {
		log.Error().Err(err).Str("branch_id", branchID).Msg("failed to get blocking reservations")

		return res, fmt.Errorf("failed to get reservations of branch %s: %w", branchID, err)
	}

	res.FromModels(model.FreeRooms(rooms, blocking, rng, query.ExcludeReservationID))

	return res, nil
}

func (s *serviceImpl) IsRoomAvailable(ctx context.Context, sess session.Session, query model.Query) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.IsRoomAvailable")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	conflicts, err := s.Conflicts(ctx, sess, query)
	if err != nil {
		return false, err
	}

	return len(conflicts) == 0, nil
}

func (s *serviceImpl) Conflicts(ctx context.Context, sess session.Session, query model.Query) (ids []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Conflicts")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return nil, err
	}

	rng, err := query.Range()
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.Get(ctx, query.RoomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", query.RoomID).Msg("failed to get room")

		return nil, fmt.Errorf("failed to get room %s: %w", query.RoomID, err)
	}

	if room.ID == constant.Empty || !sess.CanAccessBranch(room.BranchID) {
		return nil, failure.NotFound(fmt.Sprintf("room %s not found", query.RoomID)) // nolint:wrapcheck
	}

	blocking, err := s.reservations.GetBlocking(ctx, resRepository.BlockingQuery{RoomID: room.ID, Range: rng})
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("failed to get blocking reservations")

		return nil, fmt.Errorf("failed to get reservations of room %s: %w", room.ID, err)
	}

	return model.Conflicts(blocking, room.ID, rng, query.ExcludeReservationID), nil
}

func (s *serviceImpl) branchRooms(ctx context.Context, branchID string) ([]roomModel.Room, error) {
	cacheKey := shared.BuildCacheKey(roomService.CacheListRooms, branchID, cacheRoomModels)

	var rooms []roomModel.Room
	if cacheErr := s.cache.Get(ctx, cacheKey, &rooms); cacheErr == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for branch rooms")

		return rooms, nil
	}

	rooms, err := s.rooms.GetAllByBranch(ctx, branchID)
	if err != nil {
		log.Error().Err(err).Str("branch_id", branchID).Msg("failed to get rooms")

		return nil, fmt.Errorf("failed to get rooms of branch %s: %w", branchID, err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, rooms, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save branch rooms to cache")
		}
	}()

	return rooms, nil
}

// branchOf resolves the branch of a query; only admins may look at another branch.
func branchOf(sess session.Session, requested string) (string, error) {
	if requested == constant.Empty || requested == sess.BranchID {
		return sess.BranchID, nil
	}

	if !sess.CanAccessBranch(requested) {
		return "", failure.BranchRestricted
	}

	return requested, nil
}
