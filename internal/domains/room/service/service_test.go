package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"pousada/config"
	"pousada/infras/cep"
	cepMocks "pousada/infras/cep/mocks"
	"pousada/infras/otel/mocks"
	s3Mocks "pousada/infras/s3/mocks"
	roomMocks "pousada/internal/domains/room/mocks"
	"pousada/internal/domains/room/model"
	"pousada/internal/domains/room/model/dto"
	"pousada/internal/domains/room/service"
	"pousada/shared/cache"
	cacheMocks "pousada/shared/cache/mocks"
	"pousada/shared/constant"
	gDto "pousada/shared/dto"
	"pousada/shared/failure"
)

type roomMocksBundle struct {
	repo  *roomMocks.MockRoom
	cache *cacheMocks.MockRedisCache
	s3    *s3Mocks.MockS3
	cep   *cepMocks.MockClient
}

func newService(t *testing.T) (service.Room, roomMocksBundle) {
	t.Helper()

	ctrl := gomock.NewController(t)

	bundle := roomMocksBundle{
		repo:  roomMocks.NewMockRoom(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
		cep:   cepMocks.NewMockClient(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "pousada-media"

	svc := service.New(bundle.repo, cfg, bundle.cache, mocks.NewOtel(), bundle.s3, bundle.cep)

	return svc, bundle
}

func adminContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)
}

func guestContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleUser)
}

func TestRoomService_Create(t *testing.T) {
	baseReq := dto.CreateRoomRequest{
		Title:         "Garden Suite",
		Description:   "Quiet room facing the garden",
		PricePerNight: decimal.RequireFromString("149.90"),
		Beds:          2,
		MaxPeople:     3,
		Tags:          []string{"garden", "quiet"},
	}

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(guestContext(), baseReq)

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("admin creates room without image", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, room model.Room) error {
				assert.Equal(t, "Garden Suite", room.Title)
				assert.Equal(t, "admin-1", room.CreatedBy)
				assert.Empty(t, room.ImageURL)

				return nil
			})

		bundle.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		res, err := svc.Create(adminContext(), baseReq)

		assert.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "Garden Suite", res.Title)
	})

	t.Run("cep lookup fills the address", func(t *testing.T) {
		svc, bundle := newService(t)

		req := baseReq
		req.AddressCEP = "01310-100"

		bundle.cep.EXPECT().
			Lookup(gomock.Any(), "01310-100").
			Return(&cep.Address{
				CEP:          "01310-100",
				State:        "SP",
				City:         "Sao Paulo",
				Neighborhood: "Bela Vista",
				Street:       "Avenida Paulista",
			})

		bundle.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, room model.Room) error {
				assert.Equal(t, "Avenida Paulista", room.AddressStreet)
				assert.Equal(t, "Sao Paulo", room.AddressCity)
				assert.Equal(t, "SP", room.AddressState)

				return nil
			})

		bundle.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		_, err := svc.Create(adminContext(), req)

		assert.NoError(t, err)
	})

	t.Run("cep lookup failure does not block the write", func(t *testing.T) {
		svc, bundle := newService(t)

		req := baseReq
		req.AddressCEP = "00000000"

		bundle.cep.EXPECT().
			Lookup(gomock.Any(), "00000000").
			Return(nil)

		bundle.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, room model.Room) error {
				assert.Empty(t, room.AddressStreet)

				return nil
			})

		bundle.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		_, err := svc.Create(adminContext(), req)

		assert.NoError(t, err)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		_, err := svc.Create(adminContext(), baseReq)

		assert.Error(t, err)
	})
}

func TestRoomService_Get(t *testing.T) {
	room := model.Room{
		ID:            "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Title:         "Garden Suite",
		PricePerNight: decimal.NewFromInt(100),
	}

	t.Run("cache miss falls back to repository", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(cache.Nil)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(room, nil)

		bundle.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		res, err := svc.Get(context.Background(), "f47ac10b-58cc-4372-a567-0e02b2c3d479")

		assert.NoError(t, err)
		assert.Equal(t, "Garden Suite", res.Title)
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(cache.Nil)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{}, nil)

		_, err := svc.Get(context.Background(), "6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Get(context.Background(), "999999")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestRoomService_GetAll(t *testing.T) {
	svc, bundle := newService(t)

	bundle.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(cache.Nil).
		Times(2)

	bundle.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	bundle.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Room{{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", Title: "Garden Suite"}}, nil)

	bundle.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Rooms, 1)
}

func TestRoomService_Update(t *testing.T) {
	title := "Renamed Suite"

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.Update(guestContext(), dto.UpdateRoomRequest{Title: &title}, "f47ac10b-58cc-4372-a567-0e02b2c3d479")

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{}, nil)

		err := svc.Update(adminContext(), dto.UpdateRoomRequest{Title: &title}, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("admin renames the room", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", Title: "Garden Suite"}, nil)

		bundle.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, title, fields[model.FieldTitle])

				return nil
			})

		bundle.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		bundle.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		err := svc.Update(adminContext(), dto.UpdateRoomRequest{Title: &title}, "f47ac10b-58cc-4372-a567-0e02b2c3d479")

		assert.NoError(t, err)
	})
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{}, nil)

		err := svc.Delete(adminContext(), "6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("room with reservations conflicts", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479"}, nil)

		bundle.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeFkViolation)})

		err := svc.Delete(adminContext(), "f47ac10b-58cc-4372-a567-0e02b2c3d479")

		assert.Error(t, err)
		assert.Equal(t, 409, failure.GetCode(err))
	})

	t.Run("admin deletes an idle room", func(t *testing.T) {
		svc, bundle := newService(t)

		bundle.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479"}, nil)

		bundle.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		bundle.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		bundle.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		err := svc.Delete(adminContext(), "f47ac10b-58cc-4372-a567-0e02b2c3d479")

		assert.NoError(t, err)
	})
}
