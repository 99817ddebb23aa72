package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"pousada/config"
	"pousada/infras/otel/mocks"
	reservationMocks "pousada/internal/domains/reservation/mocks"
	"pousada/internal/domains/reservation/model"
	"pousada/internal/domains/reservation/model/dto"
	"pousada/internal/domains/reservation/repository"
	"pousada/internal/domains/reservation/service"
	roomMocks "pousada/internal/domains/room/mocks"
	roomModel "pousada/internal/domains/room/model"
	"pousada/shared/cache"
	cacheMocks "pousada/shared/cache/mocks"
	"pousada/shared/constant"
	gDto "pousada/shared/dto"
	"pousada/shared/failure"
	gModel "pousada/shared/model"
	"pousada/shared/timezone"
)

func userContext(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func newService(t *testing.T) (service.Reservation, *reservationMocks.MockReservation, *roomMocks.MockRoom, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := reservationMocks.NewMockReservation(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockRoomRepo, cfg, mockCache, mockOtel)

	return svc, mockRepo, mockRoomRepo, mockCache
}

func standardRoom() roomModel.Room {
	return roomModel.Room{
		ID:            "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Title:         "Garden Suite",
		PricePerNight: decimal.NewFromInt(100),
	}
}

func TestReservationService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateReservationRequest
		setupMock func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, c *cacheMocks.MockRedisCache)
		wantErr   bool
		wantCode  int
		wantTotal string
	}{
		{
			name: "successful booking prices four nights",
			req: dto.CreateReservationRequest{
				RoomID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-05",
			},
			setupMock: func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, c *cacheMocks.MockRedisCache) {
				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(standardRoom(), nil)

				repo.EXPECT().
					InsertExclusive(gomock.Any(), gomock.Any()).
					Return(nil)

				c.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantTotal: "400",
		},
		{
			name: "unparseable check_in",
			req: dto.CreateReservationRequest{
				RoomID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				CheckIn:  "June first",
				CheckOut: "2024-06-05",
			},
			setupMock: func(_ *reservationMocks.MockReservation, _ *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {},
			wantErr:   true,
			wantCode:  400,
		},
		{
			name: "room not found",
			req: dto.CreateReservationRequest{
				RoomID:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-05",
			},
			setupMock: func(_ *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {
				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(roomModel.Room{}, nil)
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name: "malformed room id is not found",
			req: dto.CreateReservationRequest{
				RoomID:   "999999",
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-05",
			},
			setupMock: func(_ *reservationMocks.MockReservation, _ *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {},
			wantErr:   true,
			wantCode:  404,
		},
		{
			name: "inverted dates rejected after room lookup",
			req: dto.CreateReservationRequest{
				RoomID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				CheckIn:  "2024-06-05",
				CheckOut: "2024-06-01",
			},
			setupMock: func(_ *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {
				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(standardRoom(), nil)
			},
			wantErr:  true,
			wantCode: 400,
		},
		{
			name: "overlapping dates conflict",
			req: dto.CreateReservationRequest{
				RoomID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-05",
			},
			setupMock: func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {
				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(standardRoom(), nil)

				repo.EXPECT().
					InsertExclusive(gomock.Any(), gomock.Any()).
					Return(repository.ErrDatesUnavailable)
			},
			wantErr:  true,
			wantCode: 409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockRoomRepo, mockCache := newService(t)
			tt.setupMock(mockRepo, mockRoomRepo, mockCache)

			res, err := svc.Create(userContext("1b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", res.UserID)
			assert.True(t, res.TotalPrice.Equal(decimal.RequireFromString(tt.wantTotal)), "got %s, want %s", res.TotalPrice, tt.wantTotal)
		})
	}
}

func TestReservationService_Update(t *testing.T) {
	existing := model.Reservation{
		ID:         "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21",
		UserID:     "2b4e28ba-2fa1-11d2-883f-0016d3cca427",
		RoomID:     "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		TotalPrice: decimal.NewFromInt(400),
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
		},
	}

	tests := []struct {
		name      string
		actor     context.Context
		req       dto.UpdateReservationRequest
		setupMock func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, c *cacheMocks.MockRedisCache)
		wantErr   bool
		wantCode  int
		wantTotal string
	}{
		{
			name:  "shrinking the stay reprices at current rate",
			actor: userContext("admin-1", constant.RoleAdmin),
			req: dto.UpdateReservationRequest{
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-03",
			},
			setupMock: func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, c *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)

				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(standardRoom(), nil)

				repo.EXPECT().
					UpdateExclusive(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				c.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantTotal: "200",
		},
		{
			name:  "non-admin forbidden",
			actor: userContext("2b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser),
			req: dto.UpdateReservationRequest{
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-03",
			},
			setupMock: func(_ *reservationMocks.MockReservation, _ *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {},
			wantErr:   true,
			wantCode:  403,
		},
		{
			name:  "reservation not found",
			actor: userContext("admin-1", constant.RoleAdmin),
			req: dto.UpdateReservationRequest{
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-03",
			},
			setupMock: func(repo *reservationMocks.MockReservation, _ *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Reservation{}, nil)
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name:  "new dates collide with another reservation",
			actor: userContext("admin-1", constant.RoleAdmin),
			req: dto.UpdateReservationRequest{
				CheckIn:  "2024-06-01",
				CheckOut: "2024-06-03",
			},
			setupMock: func(repo *reservationMocks.MockReservation, roomRepo *roomMocks.MockRoom, _ *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)

				roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(standardRoom(), nil)

				repo.EXPECT().
					UpdateExclusive(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(repository.ErrDatesUnavailable)
			},
			wantErr:  true,
			wantCode: 409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockRoomRepo, mockCache := newService(t)
			tt.setupMock(mockRepo, mockRoomRepo, mockCache)

			res, err := svc.Update(tt.actor, tt.req, "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.True(t, res.TotalPrice.Equal(decimal.RequireFromString(tt.wantTotal)), "got %s, want %s", res.TotalPrice, tt.wantTotal)
		})
	}

	t.Run("malformed id is not found", func(t *testing.T) {
		svc, _, _, _ := newService(t)

		_, err := svc.Update(userContext("admin-1", constant.RoleAdmin), dto.UpdateReservationRequest{
			CheckIn:  "2024-06-01",
			CheckOut: "2024-06-03",
		}, "999999")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestReservationService_Delete(t *testing.T) {
	existing := model.Reservation{
		ID:     "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21",
		UserID: "2b4e28ba-2fa1-11d2-883f-0016d3cca427",
		RoomID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
	}

	tests := []struct {
		name      string
		actor     context.Context
		setupMock func(repo *reservationMocks.MockReservation, c *cacheMocks.MockRedisCache)
		wantErr   bool
		wantCode  int
	}{
		{
			name:  "owner can cancel their reservation",
			actor: userContext("2b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser),
			setupMock: func(repo *reservationMocks.MockReservation, c *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)

				repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				c.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
		},
		{
			name:  "admin can cancel any reservation",
			actor: userContext("admin-1", constant.RoleAdmin),
			setupMock: func(repo *reservationMocks.MockReservation, c *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)

				repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				c.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
		},
		{
			name:  "stranger cannot cancel",
			actor: userContext("3b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser),
			setupMock: func(repo *reservationMocks.MockReservation, _ *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name:  "missing reservation",
			actor: userContext("2b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser),
			setupMock: func(repo *reservationMocks.MockReservation, _ *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Reservation{}, nil)
			},
			wantErr:  true,
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _, mockCache := newService(t)
			tt.setupMock(mockRepo, mockCache)

			err := svc.Delete(tt.actor, "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}

	t.Run("malformed id is not found", func(t *testing.T) {
		svc, _, _, _ := newService(t)

		err := svc.Delete(userContext("2b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser), "999999")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestReservationService_GetMine(t *testing.T) {
	svc, mockRepo, _, mockCache := newService(t)

	reservations := []model.Reservation{
		{
			ID:     "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21",
			UserID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
			RoomID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		},
	}

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cache.Nil)

	mockRepo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
			assert.Len(t, filter.Filters, 1)

			scoped, ok := filter.Filters[0].(gDto.Filter)
			assert.True(t, ok)
			assert.Equal(t, model.FieldUserID, scoped.Field)
			assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", scoped.Value)

			return reservations, nil
		})

	mockCache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.GetMine(userContext("1b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser), gDto.QueryParams{Page: 1, Limit: 10})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
}

func TestReservationService_GetAll(t *testing.T) {
	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _, _, _ := newService(t)

		_, err := svc.GetAll(userContext("1b4e28ba-2fa1-11d2-883f-0016d3cca427", constant.RoleUser), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("admin lists everything", func(t *testing.T) {
		svc, mockRepo, _, mockCache := newService(t)

		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(cache.Nil)

		mockRepo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(2, nil)

		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Reservation{{ID: "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f21"}, {ID: "9a3f66e6-0c85-4b1f-8a3e-52f93c1e5f22"}}, nil)

		mockCache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		res, err := svc.GetAll(userContext("admin-1", constant.RoleAdmin), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.TotalData)
		assert.Len(t, res.Reservations, 2)
	})
}
