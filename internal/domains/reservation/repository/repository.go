package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"pousada/infras/otel"
	"pousada/infras/postgres"
	"pousada/internal/domains/reservation/model"
	"pousada/shared/constant"
	gDto "pousada/shared/dto"
	"pousada/shared/logger"
	gRepo "pousada/shared/repository"
)

// ErrDatesUnavailable reports that the requested stay overlaps an existing
// reservation on the same room. Touching date ranges count as an overlap,
// so there is no same day turnover.
var ErrDatesUnavailable = errors.New("room is unavailable for the requested dates")

// Overlap conditions, inclusive on both ends: the candidate check-in falls
// inside an existing stay, the candidate check-out falls inside an existing
// stay, or the candidate stay fully contains an existing one. The exclude id
// arrives as a string so an empty value must become NULL before the uuid
// cast, otherwise the comparison against the uuid primary key cannot parse.
const overlapQuery = `
	SELECT EXISTS (
		SELECT 1
		FROM reservations
		WHERE room_id = $1
		  AND (NULLIF($2, '')::uuid IS NULL OR id <> NULLIF($2, '')::uuid)
		  AND (
		        $3 BETWEEN check_in AND check_out
		     OR $4 BETWEEN check_in AND check_out
		     OR (check_in >= $3 AND check_out <= $4)
		  )
	)`

const advisoryLockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

type Reservation interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	Overlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	InsertExclusive(ctx context.Context, reservation model.Reservation) error
	UpdateExclusive(ctx context.Context, req map[string]any, reservation model.Reservation) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

type getter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func overlapExists(ctx context.Context, q getter, roomID, excludeID string, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	if err := q.GetContext(ctx, &exists, overlapQuery, roomID, excludeID, checkIn, checkOut); err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to check overlapping reservations: %w", err)
	}

	return exists, nil
}

func (repo *repositoryImpl) Overlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (exists bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.Overlapping")
	defer scope.End()
	defer scope.TraceIfError(err)

	return overlapExists(ctx, repo.db.Read, roomID, excludeID, checkIn, checkOut)
}

// InsertExclusive serializes the conflict check and the insert behind a
// transaction scoped advisory lock on the room id, closing the
// check-then-act window between concurrent bookings of the same room.
func (repo *repositoryImpl) InsertExclusive(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.InsertExclusive")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin reservation transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback reservation transaction")
			}
		}
	}()

	if err = repo.lockRoom(ctx, tx, reservation.RoomID); err != nil {
		return err
	}

	exists, err := overlapExists(ctx, tx, reservation.RoomID, constant.Empty, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return err
	}

	if exists {
		err = ErrDatesUnavailable

		return err
	}

	if err = repo.InsertTx(ctx, tx, reservation); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit reservation transaction: %w", err)
	}

	return nil
}

// UpdateExclusive revalidates the new stay under the same advisory lock,
// excluding the reservation's own prior span from the overlap check.
func (repo *repositoryImpl) UpdateExclusive(ctx context.Context, req map[string]any, reservation model.Reservation) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.UpdateExclusive")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin reservation transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback reservation transaction")
			}
		}
	}()

	if err = repo.lockRoom(ctx, tx, reservation.RoomID); err != nil {
		return err
	}

	exists, err := overlapExists(ctx, tx, reservation.RoomID, reservation.ID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return err
	}

	if exists {
		err = ErrDatesUnavailable

		return err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    reservation.ID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	if err = repo.UpdateTx(ctx, tx, req, filter); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit reservation transaction: %w", err)
	}

	return nil
}

func (repo *repositoryImpl) lockRoom(ctx context.Context, tx *sqlx.Tx, roomID string) error {
	if _, err := tx.ExecContext(ctx, advisoryLockQuery, roomID); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to acquire room lock: %w", err)
	}

	return nil
}
