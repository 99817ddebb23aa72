package main

import (
	"context"
	"os"

	"pousada/config"
	"pousada/infras/otel"
	"pousada/infras/postgres"
	userModel "pousada/internal/domains/user/model"
	userRepository "pousada/internal/domains/user/repository"
	"pousada/shared/constant"
	gDto "pousada/shared/dto"
	"pousada/shared/logger"
	gModel "pousada/shared/model"
	"pousada/shared/password"
	"pousada/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultAdminName  = "Administrator"
	defaultAdminEmail = "admin@pousada.local"
)

// Seeds the initial admin account. Safe to run repeatedly.
func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}

	plainPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if plainPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()

	db := postgres.New(cfg)
	ot := otel.New(cfg)
	repo := userRepository.New(db, ot)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    userModel.TableName,
			},
		},
	}

	exists, err := repo.Exist(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check for existing admin")
	}

	if exists {
		log.Info().Str("email", email).Msg("Admin account already exists. Nothing to do.")

		return
	}

	hashed, err := password.Hash(plainPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash admin password")
	}

	now := timezone.Now()
	admin := userModel.User{
		ID:       uuid.NewString(),
		Name:     defaultAdminName,
		Email:    email,
		Password: hashed,
		Role:     constant.RoleAdmin,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  constant.ContextGuest,
			ModifiedBy: constant.ContextGuest,
		},
	}

	if err := repo.Insert(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert admin account")
	}

	log.Info().Str("email", email).Msg("Admin account seeded successfully")
}
