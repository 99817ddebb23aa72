package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pousada/infras/otel/mocks"
	"pousada/infras/postgres"
	"pousada/internal/domains/reservation/model"
	"pousada/internal/domains/reservation/repository"
)

// The exclude id must go through a NULLIF before the uuid cast: binding an
// empty string straight against the uuid primary key cannot parse.
var overlapPattern = regexp.QuoteMeta("NULLIF($2, '')::uuid") +
	"(?s).*" + regexp.QuoteMeta("$3 BETWEEN check_in AND check_out") +
	"(?s).*" + regexp.QuoteMeta("$4 BETWEEN check_in AND check_out") +
	"(?s).*" + regexp.QuoteMeta("check_in >= $3 AND check_out <= $4")

func newRepo(t *testing.T) (repository.Reservation, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.New(conn, mocks.NewOtel()), mock
}

func stay(t *testing.T) (time.Time, time.Time) {
	t.Helper()

	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
}

func TestOverlapping(t *testing.T) {
	roomID := "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	excludeID := "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21"

	t.Run("without exclude id", func(t *testing.T) {
		repo, mock := newRepo(t)
		checkIn, checkOut := stay(t)

		mock.ExpectQuery(overlapPattern).
			WithArgs(roomID, "", checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Overlapping(context.Background(), roomID, checkIn, checkOut, "")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exclude id skips the reservation's own span", func(t *testing.T) {
		repo, mock := newRepo(t)
		checkIn, checkOut := stay(t)

		mock.ExpectQuery(overlapPattern).
			WithArgs(roomID, excludeID, checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Overlapping(context.Background(), roomID, checkIn, checkOut, excludeID)

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInsertExclusive(t *testing.T) {
	checkIn, checkOut := stay(t)

	reservation := model.Reservation{
		ID:         "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21",
		UserID:     "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		RoomID:     "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: decimal.RequireFromString("400"),
	}

	t.Run("inserts when no overlap exists", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(reservation.RoomID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(overlapPattern).
			WithArgs(reservation.RoomID, "", checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO reservations").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.InsertExclusive(context.Background(), reservation)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on overlap", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(reservation.RoomID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(overlapPattern).
			WithArgs(reservation.RoomID, "", checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.InsertExclusive(context.Background(), reservation)

		assert.ErrorIs(t, err, repository.ErrDatesUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateExclusive(t *testing.T) {
	checkIn, checkOut := stay(t)

	reservation := model.Reservation{
		ID:       "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21",
		RoomID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}

	t.Run("excludes itself from the overlap check", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(reservation.RoomID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(overlapPattern).
			WithArgs(reservation.RoomID, reservation.ID, checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("UPDATE reservations").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateExclusive(context.Background(), map[string]any{
			"check_in":  checkIn,
			"check_out": checkOut,
		}, reservation)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the new stay collides", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WithArgs(reservation.RoomID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(overlapPattern).
			WithArgs(reservation.RoomID, reservation.ID, checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.UpdateExclusive(context.Background(), map[string]any{
			"check_in": checkIn,
		}, reservation)

		assert.ErrorIs(t, err, repository.ErrDatesUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
