package service

import (
	"context"
	"errors"
	"fmt"
	"pms/config"
	"pms/infras/otel"
	"pms/internal/domains/guest/model/dto"
	"pms/internal/domains/guest/repository"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetGuest = "guest:get"

	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type Guest interface {
	Create(ctx context.Context, sess session.Session, req dto.CreateGuestRequest) (dto.GuestResponse, error)
	Get(ctx context.Context, sess session.Session, id string) (dto.GuestResponse, error)
	Search(ctx context.Context, sess session.Session, term string, limit int) (dto.SearchGuestsResponse, error)
	UpdateContact(ctx context.Context, sess session.Session, id string, req dto.UpdateContactRequest) (dto.GuestResponse, error)
}

type serviceImpl struct {
	repo  repository.Guest
	cfg   *config.Config
	cache cache.RedisCache
	clock clock.Clock
	otel  otel.Otel
}

func New(repo repository.Guest, cfg *config.Config, cache cache.RedisCache, clk clock.Clock, otel otel.Otel) Guest {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		clock: clk,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, sess session.Session, req dto.CreateGuestRequest) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	guest := req.ToModel(sess.ActorID, s.clock.Now())

	existing, err := s.repo.GetByDocument(ctx, guest.DocumentType, guest.DocumentNumber)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up guest document")

		return res, fmt.Errorf("failed to look up guest document: %w", err)
	}

	if existing.ID != constant.Empty {
		return res, failure.Conflict(fmt.Sprintf("guest with document %s %s already exists", guest.DocumentType, guest.DocumentNumber)) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, guest); err != nil {
		log.Error().Err(err).Msg("failed to create guest")

		return res, fmt.Errorf("failed to create guest: %w", err)
	}

	res.FromModel(guest)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, sess session.Session, id string) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetGuest, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for guest")

		return res, nil
	}

	guest, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("guest_id", id).Msg("failed to get guest")

		return res, fmt.Errorf("failed to get guest %s: %w", id, err)
	}

	if guest.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("guest %s not found", id)) // nolint:wrapcheck
	}

	res.FromModel(guest)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guest to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Search(ctx context.Context, sess session.Session, term string, limit int) (res dto.SearchGuestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Search")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	term = strings.TrimSpace(term)
	if term == constant.Empty {
		res.FromModels(nil)

		return res, nil
	}

	if limit < 0 || limit > maxSearchLimit {
		return res, failure.InvalidLimitParam
	}

	if limit == 0 {
		limit = s.searchLimit()
	}

	guests, err := s.repo.Search(ctx, term, limit)
	if err != nil {
		log.Error().Err(err).Str("term", term).Msg("failed to search guests")

		return res, fmt.Errorf("failed to search guests: %w", err)
	}

	res.FromModels(guests)

	return res, nil
}

func (s *serviceImpl) UpdateContact(ctx context.Context, sess session.Session, id string, req dto.UpdateContactRequest) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.UpdateContact")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = sess.Validate(); err != nil {
		return res, err
	}

	contact := req.ToModel()
	if contact.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	guest, err := s.repo.UpdateContact(ctx, id, contact, sess.ActorID, s.clock.Now())
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return res, err
		}

		log.Error().Err(err).Str("guest_id", id).Msg("failed to update guest contact")

		return res, fmt.Errorf("failed to update guest %s contact: %w", id, err)
	}

	res.FromModel(guest)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetGuest, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete guest from cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) searchLimit() int {
	if limit := s.cfg.App.Reservation.GuestSearchLimit; limit > 0 && limit <= maxSearchLimit {
		return limit
	}

	return defaultSearchLimit
}
