//go:build wireinject
// +build wireinject

package di

import (
	"pousada/config"
	"pousada/infras/cep"
	"pousada/infras/jwt"
	"pousada/infras/otel"
	"pousada/infras/postgres"
	"pousada/infras/redis"
	"pousada/infras/s3"
	"pousada/permissions"
	"pousada/shared/cache"
	"pousada/transport/http"
	"pousada/transport/http/middleware"
	"pousada/transport/http/router"

	"github.com/google/wire"

	authService "pousada/internal/domains/auth/service"
	reservationRepository "pousada/internal/domains/reservation/repository"
	reservationService "pousada/internal/domains/reservation/service"
	roomRepository "pousada/internal/domains/room/repository"
	roomService "pousada/internal/domains/room/service"
	userRepository "pousada/internal/domains/user/repository"
	userService "pousada/internal/domains/user/service"

	authHandler "pousada/internal/handlers/auth"
	reservationHandler "pousada/internal/handlers/reservation"
	roomHandler "pousada/internal/handlers/room"
	userHandler "pousada/internal/handlers/user"
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
	s3.New,
	cep.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var authDomain = wire.NewSet(
	authService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var domains = wire.NewSet(
	authDomain,
	userDomain,
	roomDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	reservationHandler.New,
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
