package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pms/config"
	"pms/infras/otel/mocks"
	roomMocks "pms/internal/domains/room/mocks"
	"pms/internal/domains/room/model"
	"pms/internal/domains/room/model/dto"
	"pms/internal/domains/room/service"
	"pms/internal/memstore"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/money"
	"pms/shared/session"
)

var (
	manager      = session.Session{ActorID: "u-1", BranchID: "b-1", Role: constant.RoleManager}
	receptionist = session.Session{ActorID: "u-2", BranchID: "b-1", Role: constant.RoleReceptionist}
	otherBranch  = session.Session{ActorID: "u-3", BranchID: "b-2", Role: constant.RoleReceptionist}
	admin        = session.Session{ActorID: "u-4", BranchID: "b-2", Role: constant.RoleAdmin}
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return cfg
}

func TestRoomService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	clk := clock.NewMockClock(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
	svc := service.New(mockRepo, newConfig(), memstore.NewCache(), clk, mocks.NewOtel())

	req := dto.CreateRoomRequest{Number: "101", Floor: 1, Type: "double", Capacity: 2, BaseRate: 150}

	tests := []struct {
		name      string
		sess      session.Session
		setupMock func()
		wantErr   error
	}{
		{
			name: "manager creates a room in their branch",
			sess: manager,
			setupMock: func() {
				mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.Equal(t, "b-1", room.BranchID)
						assert.Equal(t, money.FromUnits(150), room.BaseRate)
						assert.Equal(t, model.StatusAvailable, room.Status)
						assert.Equal(t, "u-1", room.CreatedBy)

						return nil
					})
			},
		},
		{
			name:      "receptionists cannot create rooms",
			sess:      receptionist,
			setupMock: func() {},
			wantErr:   failure.ForbiddenError,
		},
		{
			name: "duplicate number",
			sess: manager,
			setupMock: func() {
				mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("room 101 already exists"))
			},
			wantErr: failure.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Create(context.Background(), tt.sess, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "101", res.Number)
			assert.InDelta(t, 150.0, res.BaseRate, 0.001)
		})
	}
}

func TestRoomService_ListAndCache(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SeedRooms(
		model.Room{ID: "room-10", BranchID: "b-1", Number: "10", Capacity: 2},
		model.Room{ID: "room-9", BranchID: "b-1", Number: "9", Capacity: 2},
		model.Room{ID: "room-201", BranchID: "b-2", Number: "201", Capacity: 2},
	)

	c := memstore.NewCache()
	clk := clock.NewMockClock(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
	svc := service.New(store.Rooms(), newConfig(), c, clk, mocks.NewOtel())

	rooms, err := svc.ListByBranch(ctx, receptionist)
	require.NoError(t, err)
	require.Equal(t, 2, rooms.Total)
	assert.Equal(t, "9", rooms.Rooms[0].Number)
	assert.Equal(t, "10", rooms.Rooms[1].Number)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"room:list:b-1"}, c.Keys())
	}, time.Second, 10*time.Millisecond)

	_, err = svc.Get(ctx, otherBranch, "room-9")
	assert.ErrorIs(t, err, failure.ErrNotFound)

	res, err := svc.Get(ctx, admin, "room-9")
	require.NoError(t, err)
	assert.Equal(t, "b-1", res.BranchID)

	assert.Eventually(t, func() bool {
		return len(c.Keys()) == 2
	}, time.Second, 10*time.Millisecond)

	updated, err := svc.UpdateStatus(ctx, receptionist, "room-9", dto.UpdateStatusRequest{Status: "maintenance"})
	require.NoError(t, err)
	assert.Equal(t, "maintenance", updated.Status)

	assert.Eventually(t, func() bool {
		return len(c.Keys()) == 0
	}, time.Second, 10*time.Millisecond)

	_, err = svc.UpdateStatus(ctx, receptionist, "room-9", dto.UpdateStatusRequest{Status: "flooded"})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	_, err = svc.UpdateStatus(ctx, otherBranch, "room-9", dto.UpdateStatusRequest{Status: "cleaning"})
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestRoomService_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := roomMocks.NewMockRoom(ctrl)
	ot := mocks.NewOtel()
	svc := service.New(mockRepo, newConfig(), memstore.NewCache(), clock.New(), ot)

	mockRepo.EXPECT().GetAllByBranch(gomock.Any(), "b-1").Return(nil, errors.New("connection reset"))

	_, err := svc.ListByBranch(context.Background(), receptionist)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b-1")
	assert.Len(t, ot.Errors(), 1)
}
