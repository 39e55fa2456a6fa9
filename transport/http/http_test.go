package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/config"
	"pms/infras/jwt"
	otelMocks "pms/infras/otel/mocks"
	authService "pms/internal/domains/auth/service"
	availabilityService "pms/internal/domains/availability/service"
	guestService "pms/internal/domains/guest/service"
	paymentService "pms/internal/domains/payment/service"
	reservationService "pms/internal/domains/reservation/service"
	roomModel "pms/internal/domains/room/model"
	roomService "pms/internal/domains/room/service"
	staffModel "pms/internal/domains/staff/model"
	authHandler "pms/internal/handlers/auth"
	guestHandler "pms/internal/handlers/guest"
	paymentHandler "pms/internal/handlers/payment"
	reservationHandler "pms/internal/handlers/reservation"
	roomHandler "pms/internal/handlers/room"
	"pms/internal/memstore"
	"pms/permissions"
	"pms/shared/clock"
	"pms/shared/constant"
	"pms/shared/events"
	"pms/shared/money"
	"pms/shared/password"
	"pms/shared/session"
	transportHTTP "pms/transport/http"
	"pms/transport/http/middleware"
	"pms/transport/http/router"
)

const internalKey = "internal-key"

type server struct {
	handler http.Handler
	jwt     jwt.JWT
	clock   *clock.MockClock
}

func newServer(t *testing.T) server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.App.Name = "pms"
	cfg.App.APIKey = internalKey
	cfg.App.Reservation.ConfirmationPrefix = "RES"
	cfg.JWT.AccessSecret = "test-secret"
	cfg.JWT.AccessExpireMin = 60
	cfg.JWT.Issuer = "pms"

	store := memstore.New()
	store.SeedRooms(
		roomModel.Room{ID: "room-101", BranchID: "b-1", Number: "101", Type: roomModel.TypeDouble, Capacity: 2, BaseRate: money.FromUnits(150), Status: roomModel.StatusAvailable},
		roomModel.Room{ID: "room-102", BranchID: "b-1", Number: "102", Type: roomModel.TypeFamily, Capacity: 4, BaseRate: money.FromUnits(100), Status: roomModel.StatusAvailable},
	)

	hash, err := password.Hash("night-audit-1")
	require.NoError(t, err)

	store.SeedStaff(staffModel.Staff{ID: "s-admin", BranchID: "b-1", Email: "admin@hotel.test", Password: hash, FullName: "Admin", Role: constant.RoleAdmin, Active: true})

	c := memstore.NewCache()
	clk := clock.NewMockClock(time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC))
	ot := otelMocks.NewOtel()
	publisher := events.NewNoop()

	availability := availabilityService.New(store.Rooms(), store.Reservations(), cfg, c, ot)
	rooms := roomService.New(store.Rooms(), cfg, c, clk, ot)
	guests := guestService.New(store.Guests(), cfg, c, clk, ot)
	reservations := reservationService.New(store.Reservations(), store.Rooms(), availability, cfg, c, publisher, clk, ot)
	payments := paymentService.New(store.Payments(), store.Reservations(), cfg, c, publisher, clk, ot)

	jwtService := jwt.New(cfg)
	auth := authService.New(store.Staff(), cfg, clk, ot, jwtService)

	r := router.New(router.DomainHandlers{
		Auth:        authHandler.New(auth, ot),
		Room:        roomHandler.New(rooms, availability, ot),
		Guest:       guestHandler.New(guests, ot),
		Reservation: reservationHandler.New(reservations, ot),
		Payment:     paymentHandler.New(payments, ot),
	})

	perms := permissions.Get()
	require.NotNil(t, perms)

	h := transportHTTP.New(
		cfg,
		r,
		middleware.NewAppMiddleware(ot, cfg, c, clk),
		middleware.NewAuthRoleMiddleware(jwtService, ot, perms, cfg),
		nil,
		publisher,
		ot,
	)

	return server{handler: h.Handler(), jwt: jwtService, clock: clk}
}

func (s server) token(t *testing.T, role string) string {
	t.Helper()

	token, err := s.jwt.GenerateAccessToken(session.Session{ActorID: "u-1", BranchID: "b-1", Role: role})
	require.NoError(t, err)

	return token
}

func (s server) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	if token != "" {
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

type reservationBody struct {
	Data struct {
		ID               string  `json:"id"`
		ConfirmationCode string  `json:"confirmation_code"`
		Status           string  `json:"status"`
		TotalAmount      float64 `json:"total_amount"`
	} `json:"data"`
}

type paymentBody struct {
	Data struct {
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
	} `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func createBody(in, out string) map[string]any {
	return map[string]any{
		"room_id": "room-101",
		"guest": map[string]any{
			"full_name":       "Ana Torres",
			"document_type":   "dni",
			"document_number": "12345678",
		},
		"check_in":  in,
		"check_out": out,
		"adults":    2,
	}
}

func TestHealthz(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

type loginBody struct {
	Data struct {
		AccessToken string `json:"access_token"`
		Staff       struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"staff"`
	} `json:"data"`
}

func TestStaffLogin(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "admin@hotel.test", "password": "wrong-one"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "admin@hotel.test", "password": "night-audit-1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	adminToken := decode[loginBody](t, rec).Data.AccessToken
	require.NotEmpty(t, adminToken)

	rec = s.do(t, http.MethodGet, "/v1/rooms", adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/staff", adminToken, map[string]any{
		"email":     "desk@hotel.test",
		"password":  "front-desk-1",
		"full_name": "Front Desk",
		"role":      constant.RoleReceptionist,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "desk@hotel.test", "password": "front-desk-1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	login := decode[loginBody](t, rec)
	assert.Equal(t, constant.RoleReceptionist, login.Data.Staff.Role)

	rec = s.do(t, http.MethodPost, "/v1/auth/staff", login.Data.AccessToken, map[string]any{
		"email":     "other@hotel.test",
		"password":  "front-desk-2",
		"full_name": "Other",
		"role":      constant.RoleReceptionist,
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/change-password", login.Data.AccessToken, map[string]any{
		"current_password": "front-desk-1",
		"new_password":     "front-desk-9",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		token    string
		headers  map[string]string
		method   string
		path     string
		body     any
		expected int
	}{
		{name: "missing token", method: http.MethodGet, path: "/v1/rooms", expected: http.StatusUnauthorized},
		{name: "garbage token", token: "not-a-jwt", method: http.MethodGet, path: "/v1/rooms", expected: http.StatusUnauthorized},
		{name: "receptionist lists rooms", token: s.token(t, constant.RoleReceptionist), method: http.MethodGet, path: "/v1/rooms", expected: http.StatusOK},
		{
			name: "receptionist cannot create rooms", token: s.token(t, constant.RoleReceptionist),
			method: http.MethodPost, path: "/v1/rooms",
			body:     map[string]any{"number": "103", "type": "single", "capacity": 1, "base_rate": 80},
			expected: http.StatusForbidden,
		},
		{
			name: "manager creates rooms", token: s.token(t, constant.RoleManager),
			method: http.MethodPost, path: "/v1/rooms",
			body:     map[string]any{"number": "103", "type": "single", "capacity": 1, "base_rate": 80},
			expected: http.StatusCreated,
		},
		{
			name:    "internal caller with api key",
			headers: map[string]string{constant.RequestHeaderAPIKey: internalKey, constant.RequestHeaderBranchID: "b-1"},
			method:  http.MethodGet, path: "/v1/rooms", expected: http.StatusOK,
		},
		{
			name:    "wrong api key",
			headers: map[string]string{constant.RequestHeaderAPIKey: "nope"},
			method:  http.MethodGet, path: "/v1/rooms", expected: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body, tt.headers)

			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}

func TestReservationFlow(t *testing.T) {
	s := newServer(t)
	token := s.token(t, constant.RoleReceptionist)

	rec := s.do(t, http.MethodPost, "/v1/reservations", token, createBody("2024-07-15", "2024-07-20"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[reservationBody](t, rec)
	assert.Equal(t, "RES-2024-001", created.Data.ConfirmationCode)
	assert.Equal(t, "pending", created.Data.Status)
	assert.InDelta(t, 750, created.Data.TotalAmount, 0.001)

	rec = s.do(t, http.MethodPost, "/v1/reservations", token, createBody("2024-07-18", "2024-07-22"), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "room_unavailable", decode[errorBody](t, rec).Kind)

	rec = s.do(t, http.MethodGet, "/v1/rooms/available?check_in=2024-07-18&check_out=2024-07-22", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "room-101")
	assert.Contains(t, rec.Body.String(), "room-102")

	id := created.Data.ID

	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/check-in", token, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, rec).Kind)

	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/confirm", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode[reservationBody](t, rec).Data.Status)

	idempotent := map[string]string{constant.RequestHeaderIdempotencyKey: "k-1"}

	first := s.do(t, http.MethodPost, "/v1/reservations/"+id+"/payments", token, map[string]any{"amount": 300, "method": "cash"}, idempotent)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := s.do(t, http.MethodPost, "/v1/reservations/"+id+"/payments", token, map[string]any{"amount": 300, "method": "cash"}, idempotent)
	require.Equal(t, http.StatusCreated, replay.Code, replay.Body.String())
	assert.Equal(t, decode[paymentBody](t, first).Data.ID, decode[paymentBody](t, replay).Data.ID)

	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/payments", token, map[string]any{"amount": 500, "method": "cash"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/reservations/"+id+"/payments", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	s.clock.Set(time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC))

	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/check-in", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 450 still outstanding
	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/check-out", token, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/reservations/"+id+"/check-out?override=true", token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "checked_out", decode[reservationBody](t, rec).Data.Status)
}

func TestValidationErrors(t *testing.T) {
	s := newServer(t)
	token := s.token(t, constant.RoleReceptionist)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "reservation without guest", method: http.MethodPost, path: "/v1/reservations", body: map[string]any{"room_id": "room-101", "adults": 1}},
		{name: "reversed dates", method: http.MethodPost, path: "/v1/reservations", body: createBody("2024-07-20", "2024-07-15")},
		{name: "availability without dates", method: http.MethodGet, path: "/v1/rooms/available"},
		{name: "non numeric search limit", method: http.MethodGet, path: "/v1/guests/search?term=ana&limit=ten"},
		{name: "unknown room status", method: http.MethodPatch, path: "/v1/rooms/room-101/status", body: map[string]any{"status": "dirty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, token, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
