package service

import (
	"context"
	"errors"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/internal/domains/room/model"
	"pms/internal/domains/room/model/dto"
	"pms/internal/domains/room/repository"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"

	"github.com/rs/zerolog/log"
)

const (
	// CacheListRooms prefixes the per-branch room list; writers elsewhere invalidate it.
	CacheListRooms = "room:list"
	CacheGetRoom   = "room:get"
)

type Room interface {
	Create(ctx context.Context, sess session.Session, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	ListByBranch(ctx context.Context, sess session.Session) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, sess session.Session, id string) (dto.RoomResponse, error)
	UpdateStatus(ctx context.Context, sess session.Session, id string, req dto.UpdateStatusRequest) (dto.RoomResponse, error)
}

type serviceImpl struct {
	repo  repository.Room
	cfg   *config.Config
	cache cache.RedisCache
	clock clock.Clock
	otel  otel.Otel
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, clk clock.Clock, otel otel.Otel) Room {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		clock: clk,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, sess session.Session, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	if !sess.HasRole(constant.RoleAdmin, constant.RoleManager) {
		return res, failure.ForbiddenError
	}

	room := req.ToModel(sess.BranchID, sess.ActorID, s.clock.Now())

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Str("number", room.Number).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(room)

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, CacheListRooms)
	}()

	return res, nil
}

func (s *serviceImpl) ListByBranch(ctx context.Context, sess session.Session) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.ListByBranch")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(CacheListRooms, sess.BranchID)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	rooms, err := s.repo.GetAllByBranch(ctx, sess.BranchID)
	if err != nil {
		log.Error().Err(err).Str("branch_id", sess.BranchID).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms of branch %s: %w", sess.BranchID, err)
	}

	res.FromModels(rooms)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, sess session.Session, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	room, err := s.get(ctx, sess, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, sess session.Session, id string, req dto.UpdateStatusRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	status := model.Status(req.Status)
	if !status.IsValid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid room status %q", req.Status)) // nolint:wrapcheck
	}

	if _, err = s.get(ctx, sess, id); err != nil {
		return res, err
	}

	room, err := s.repo.UpdateStatus(ctx, id, status, sess.ActorID, s.clock.Now())
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return res, err
		}

		log.Error().Err(err).Str("room_id", id).Msg("failed to update room status")

		return res, fmt.Errorf("failed to update room %s status: %w", id, err)
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(CacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room from cache")
		}

		shared.InvalidateCaches(c, s.cache, CacheListRooms)
	}()

	return res, nil
}

// get loads a room visible to the session.
func (s *serviceImpl) get(ctx context.Context, sess session.Session, id string) (model.Room, error) {
	cacheKey := shared.BuildCacheKey(CacheGetRoom, id)

	var room model.Room
	if cacheErr := s.cache.Get(ctx, cacheKey, &room); cacheErr != nil {
		var err error

		room, err = s.repo.Get(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

			return room, fmt.Errorf("failed to get room %s: %w", id, err)
		}

		if room.ID != constant.Empty {
			go func() {
				c := context.WithoutCancel(ctx)

				if err := s.cache.Save(c, cacheKey, room, s.cfg.Cache.TTL); err != nil {
					log.Error().Err(err).Msg("failed to save room to cache")
				}
			}()
		}
	}

	// rooms of other branches are reported as missing
	if room.ID == constant.Empty || !sess.CanAccessBranch(room.BranchID) {
		return model.Room{}, failure.NotFound(fmt.Sprintf("room %s not found", id)) // nolint:wrapcheck
	}

	return room, nil
}
