//go:build wireinject
// +build wireinject

package di

import (
	"pms/config"
	"pms/infras/broker"
	"pms/infras/jwt"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/infras/redis"
	"pms/permissions"
	"pms/shared/cache"
	"pms/shared/clock"
	"pms/transport/http"
	"pms/transport/http/middleware"
	"pms/transport/http/router"

	"github.com/google/wire"

	authService "pms/internal/domains/auth/service"
	availabilityService "pms/internal/domains/availability/service"
	guestRepository "pms/internal/domains/guest/repository"
	guestService "pms/internal/domains/guest/service"
	paymentRepository "pms/internal/domains/payment/repository"
	paymentService "pms/internal/domains/payment/service"
	reservationRepository "pms/internal/domains/reservation/repository"
	reservationService "pms/internal/domains/reservation/service"
	roomRepository "pms/internal/domains/room/repository"
	roomService "pms/internal/domains/room/service"
	staffRepository "pms/internal/domains/staff/repository"

	authHandler "pms/internal/handlers/auth"
	guestHandler "pms/internal/handlers/guest"
	paymentHandler "pms/internal/handlers/payment"
	reservationHandler "pms/internal/handlers/reservation"
	roomHandler "pms/internal/handlers/room"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	broker.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
	availabilityService.New,
)

var guestDomain = wire.NewSet(
	guestRepository.New,
	guestService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var paymentDomain = wire.NewSet(
	paymentRepository.New,
	paymentService.New,
)

var authDomain = wire.NewSet(
	staffRepository.New,
	authService.New,
)

var domains = wire.NewSet(
	authDomain,
	roomDomain,
	guestDomain,
	reservationDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	guestHandler.New,
	reservationHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
