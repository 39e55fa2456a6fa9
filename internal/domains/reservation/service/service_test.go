package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pms/config"
	otelMocks "pms/infras/otel/mocks"
	availabilityService "pms/internal/domains/availability/service"
	guestDto "pms/internal/domains/guest/model/dto"
	resMocks "pms/internal/domains/reservation/mocks"
	"pms/internal/domains/reservation/model"
	"pms/internal/domains/reservation/model/dto"
	"pms/internal/domains/reservation/service"
	roomModel "pms/internal/domains/room/model"
	"pms/internal/memstore"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/events"
	"pms/shared/failure"
	"pms/shared/money"
	"pms/shared/session"
)

var (
	frontDesk = session.Session{ActorID: "u-1", BranchID: "b-1", Role: constant.RoleReceptionist}
	otherDesk = session.Session{ActorID: "u-2", BranchID: "b-2", Role: constant.RoleReceptionist}
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *recorder) Close() error {
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}

	return types
}

type fixture struct {
	store  *memstore.Store
	cache  *memstore.Cache
	clock  *clock.MockClock
	events *recorder
	svc    service.Reservation
}

func newFixture() fixture {
	store := memstore.New()
	store.SeedRooms(
		roomModel.Room{ID: "room-101", BranchID: "b-1", Number: "101", Capacity: 2, BaseRate: money.FromUnits(150), Status: roomModel.StatusAvailable},
		roomModel.Room{ID: "room-102", BranchID: "b-1", Number: "102", Capacity: 4, BaseRate: money.FromUnits(100), Status: roomModel.StatusAvailable},
		roomModel.Room{ID: "room-201", BranchID: "b-2", Number: "201", Capacity: 2, BaseRate: money.FromUnits(90), Status: roomModel.StatusAvailable},
	)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.App.Reservation.ConfirmationPrefix = "RES"

	c := memstore.NewCache()
	clk := clock.NewMockClock(time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC))
	rec := &recorder{}
	ot := otelMocks.NewOtel()

	availability := availabilityService.New(store.Rooms(), store.Reservations(), cfg, c, ot)

	return fixture{
		store:  store,
		cache:  c,
		clock:  clk,
		events: rec,
		svc:    service.New(store.Reservations(), store.Rooms(), availability, cfg, c, rec, clk, ot),
	}
}

func guestRequest(document string) *guestDto.CreateGuestRequest {
	return &guestDto.CreateGuestRequest{FullName: "Ana Torres", DocumentType: "dni", DocumentNumber: document}
}

func request(roomID, in, out string) dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		RoomID:   roomID,
		Guest:    guestRequest("12345678"),
		CheckIn:  in,
		CheckOut: out,
		Adults:   2,
	}
}

func TestReservationService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// a room rated 150 booked for five nights
	res, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-20"))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Nights)
	assert.InDelta(t, 750.0, res.TotalAmount, 0.001)
	assert.InDelta(t, 750.0, res.Balance, 0.001)
	assert.Equal(t, string(model.StatusPending), res.Status)
	assert.Equal(t, "Pending", res.StatusLabel)
	assert.Equal(t, "RES-2024-001", res.ConfirmationCode)
	assert.Equal(t, "Ana Torres", res.GuestName)
	assert.Equal(t, "101", res.RoomNumber)
	assert.Equal(t, string(model.SourceDirect), res.Source)

	assert.Eventually(t, func() bool {
		return len(f.events.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.TypeReservationCreated}, f.events.types())

	explicit := 500.0
	req := request("room-102", "2024-07-15", "2024-07-20")
	req.TotalAmount = &explicit
	req.Source = string(model.SourceBooking)

	res, err = f.svc.Create(ctx, frontDesk, req)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, res.TotalAmount, 0.001)
	assert.Equal(t, "RES-2024-002", res.ConfirmationCode)
	assert.Equal(t, "Ana Torres", res.GuestName)
}

func TestReservationService_CreateRejections(t *testing.T) {
	tests := []struct {
		name     string
		sess     session.Session
		req      func() dto.CreateReservationRequest
		wantCode int
	}{
		{
			name:     "check-out before check-in",
			sess:     frontDesk,
			req:      func() dto.CreateReservationRequest { return request("room-101", "2024-07-20", "2024-07-15") },
			wantCode: 400,
		},
		{
			name:     "same day stay",
			sess:     frontDesk,
			req:      func() dto.CreateReservationRequest { return request("room-101", "2024-07-15", "2024-07-15") },
			wantCode: 400,
		},
		{
			name:     "malformed date",
			sess:     frontDesk,
			req:      func() dto.CreateReservationRequest { return request("room-101", "15/07/2024", "2024-07-20") },
			wantCode: 400,
		},
		{
			name:     "room of another branch",
			sess:     otherDesk,
			req:      func() dto.CreateReservationRequest { return request("room-101", "2024-07-15", "2024-07-20") },
			wantCode: 404,
		},
		{
			name:     "unknown room",
			sess:     frontDesk,
			req:      func() dto.CreateReservationRequest { return request("room-999", "2024-07-15", "2024-07-20") },
			wantCode: 404,
		},
		{
			name: "party larger than the room",
			sess: frontDesk,
			req: func() dto.CreateReservationRequest {
				req := request("room-101", "2024-07-15", "2024-07-20")
				req.Children = 1

				return req
			},
			wantCode: 400,
		},
		{
			name:     "missing session",
			sess:     session.Session{},
			req:      func() dto.CreateReservationRequest { return request("room-101", "2024-07-15", "2024-07-20") },
			wantCode: 401,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Create(context.Background(), tt.sess, tt.req())

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestReservationService_DoubleBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-20"))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, frontDesk, first.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-17", "2024-07-18"))

	var unavailable *model.RoomUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{first.ID}, unavailable.ConflictingIDs)
	assert.Equal(t, 409, failure.GetCode(err))

	// touching stays do not overlap
	_, err = f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-20", "2024-07-22"))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, frontDesk, first.ID, "guest request")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-17", "2024-07-18"))
	assert.NoError(t, err)
}

func TestReservationService_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-17"))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, frontDesk, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	confirmed, err := f.svc.Confirm(ctx, frontDesk, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, confirmed.Version)

	_, err = f.svc.CheckIn(ctx, frontDesk, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition, "check-in date not reached")

	f.clock.Set(time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC))

	checkedIn, err := f.svc.CheckIn(ctx, frontDesk, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCheckedIn), checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)

	room, err := f.store.Rooms().Get(ctx, "room-101")
	require.NoError(t, err)
	assert.Equal(t, roomModel.StatusOccupied, room.Status)

	_, err = f.svc.CheckOut(ctx, frontDesk, created.ID, false)

	var invalid *model.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "300.00")

	checkedOut, err := f.svc.CheckOut(ctx, frontDesk, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCheckedOut), checkedOut.Status)

	room, err = f.store.Rooms().Get(ctx, "room-101")
	require.NoError(t, err)
	assert.Equal(t, roomModel.StatusCleaning, room.Status)

	_, err = f.svc.Cancel(ctx, frontDesk, created.ID, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition, "checked out is terminal")

	assert.Eventually(t, func() bool {
		return len(f.events.types()) == 4
	}, time.Second, 10*time.Millisecond)
}

func TestReservationService_NoShow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-17"))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, frontDesk, created.ID)
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 7, 15, 23, 0, 0, 0, time.UTC))

	_, err = f.svc.MarkNoShow(ctx, frontDesk, created.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	f.clock.Add(24 * time.Hour)

	res, err := f.svc.MarkNoShow(ctx, frontDesk, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusNoShow), res.Status)

	// a no-show frees the room
	_, err = f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-16", "2024-07-17"))
	assert.NoError(t, err)
}

func TestReservationService_Transition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-17"))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, frontDesk, created.ID, dto.TransitionRequest{Status: string(model.StatusCheckedOut)})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	res, err := f.svc.Transition(ctx, frontDesk, created.ID, dto.TransitionRequest{Status: string(model.StatusCancelled), Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "duplicate", res.CancellationReason)
	assert.NotNil(t, res.CancelledAt)

	_, err = f.svc.Confirm(ctx, otherDesk, created.ID)
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestReservationService_Reschedule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-17"))
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-20", "2024-07-22"))
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, frontDesk, second.ID, dto.RescheduleRequest{CheckIn: "2024-07-16", CheckOut: "2024-07-21"})
	assert.ErrorIs(t, err, model.ErrRoomUnavailable)

	moved, err := f.svc.Reschedule(ctx, frontDesk, second.ID, dto.RescheduleRequest{CheckIn: "2024-07-19", CheckOut: "2024-07-22"})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-19", moved.CheckIn)
	assert.Equal(t, 3, moved.Nights)
	assert.InDelta(t, 450.0, moved.TotalAmount, 0.001)

	toOtherRoom, err := f.svc.Reschedule(ctx, frontDesk, first.ID, dto.RescheduleRequest{RoomID: "room-102", CheckIn: "2024-07-15", CheckOut: "2024-07-17"})
	require.NoError(t, err)
	assert.Equal(t, "102", toOtherRoom.RoomNumber)
	assert.InDelta(t, 200.0, toOtherRoom.TotalAmount, 0.001)

	_, err = f.svc.Reschedule(ctx, frontDesk, first.ID, dto.RescheduleRequest{RoomID: "room-201", CheckIn: "2024-07-15", CheckOut: "2024-07-17"})
	assert.ErrorIs(t, err, failure.ErrNotFound)

	_, err = f.svc.Cancel(ctx, frontDesk, first.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, frontDesk, first.ID, dto.RescheduleRequest{CheckIn: "2024-07-25", CheckOut: "2024-07-26"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestReservationService_GetAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.clock.Set(time.Date(2024, 7, 17, 9, 0, 0, 0, time.UTC))

	today, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-17", "2024-07-18"))
	require.NoError(t, err)

	later := request("room-102", "2024-07-25", "2024-07-27")
	later.Source = string(model.SourcePhone)
	_, err = f.svc.Create(ctx, frontDesk, later)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, frontDesk, today.ID)
	require.NoError(t, err)
	assert.Equal(t, today.ConfirmationCode, got.ConfirmationCode)

	_, err = f.svc.Get(ctx, otherDesk, today.ID)
	assert.ErrorIs(t, err, failure.ErrNotFound)

	tests := []struct {
		name     string
		criteria model.Criteria
		expected int
		wantErr  bool
	}{
		{name: "all", expected: 2},
		{name: "today", criteria: model.Criteria{DateRange: model.PresetToday}, expected: 1},
		{name: "next week", criteria: model.Criteria{DateRange: model.PresetNextWeek}, expected: 1},
		{name: "by source", criteria: model.Criteria{Source: model.SourcePhone}, expected: 1},
		{name: "by guest name", criteria: model.Criteria{GuestName: "ana"}, expected: 2},
		{name: "unknown preset", criteria: model.Criteria{DateRange: "someday"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.ListByBranch(ctx, frontDesk, tt.criteria)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Total)
		})
	}

	other, err := f.svc.ListByBranch(ctx, otherDesk, model.Criteria{})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestReservationService_CacheFollowsCommits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, frontDesk, request("room-101", "2024-07-15", "2024-07-20"))
	require.NoError(t, err)

	// a reader that loaded before the commit
	stale, err := f.svc.Get(ctx, frontDesk, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusPending), stale.Status)

	_, err = f.svc.Confirm(ctx, frontDesk, created.ID)
	require.NoError(t, err)

	saved, err := f.cache.SaveIfAbsent(ctx, service.CacheGetReservation+":"+created.ID, stale, 60)
	require.NoError(t, err)
	assert.False(t, saved)

	got, err := f.svc.Get(ctx, frontDesk, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusConfirmed), got.Status)
}

func TestReservationService_RepositoryFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture()
	mockRepo := resMocks.NewMockReservation(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	ot := otelMocks.NewOtel()
	availability := availabilityService.New(f.store.Rooms(), f.store.Reservations(), cfg, f.cache, ot)
	svc := service.New(mockRepo, f.store.Rooms(), availability, cfg, f.cache, events.NewNoop(), f.clock, ot)

	pending := model.Reservation{ID: "r-1", BranchID: "b-1", RoomID: "room-101", Status: model.StatusPending, Version: 3}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   error
	}{
		{
			name: "concurrent modification",
			setupMock: func() {
				mockRepo.EXPECT().GetPrimary(gomock.Any(), "r-1").Return(pending, nil)
				mockRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, res model.Reservation) (model.Reservation, error) {
						assert.Equal(t, 3, res.Version)
						assert.Equal(t, model.StatusConfirmed, res.Status)

						return model.Reservation{}, model.ErrConcurrentUpdate
					})
			},
			wantErr: model.ErrConcurrentUpdate,
		},
		{
			name: "missing reservation",
			setupMock: func() {
				mockRepo.EXPECT().GetPrimary(gomock.Any(), "r-1").Return(model.Reservation{}, nil)
			},
			wantErr: failure.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func() {
				mockRepo.EXPECT().GetPrimary(gomock.Any(), "r-1").Return(model.Reservation{}, errors.New("connection reset"))
			},
		},
		{
			name: "update error",
			setupMock: func() {
				mockRepo.EXPECT().GetPrimary(gomock.Any(), "r-1").Return(pending, nil)
				mockRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).Return(model.Reservation{}, errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			_, err := svc.Confirm(context.Background(), frontDesk, "r-1")
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.NotEmpty(t, ot.Errors())
}

func TestReservationService_TransitionReadsPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture()
	mockRepo := resMocks.NewMockReservation(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	ot := otelMocks.NewOtel()
	availability := availabilityService.New(f.store.Rooms(), f.store.Reservations(), cfg, f.cache, ot)
	svc := service.New(mockRepo, f.store.Rooms(), availability, cfg, f.cache, events.NewNoop(), f.clock, ot)

	committed := model.Reservation{ID: "r-1", BranchID: "b-1", RoomID: "room-101", Status: model.StatusPending, Version: 4}
	persisted := committed
	persisted.Status = model.StatusConfirmed
	persisted.Version = 5

	// a lagging replica would still answer version 3; Get must not be consulted
	mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
	mockRepo.EXPECT().GetPrimary(gomock.Any(), "r-1").Return(committed, nil)
	mockRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, res model.Reservation) (model.Reservation, error) {
			assert.Equal(t, 4, res.Version)

			return persisted, nil
		})

	res, err := svc.Confirm(context.Background(), frontDesk, "r-1")
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusConfirmed), string(res.Status))
}
