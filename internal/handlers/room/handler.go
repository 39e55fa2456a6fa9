package room

import (
	"net/http"
	"pms/infras/otel"
	availabilityModel "pms/internal/domains/availability/model"
	availabilityService "pms/internal/domains/availability/service"
	"pms/internal/domains/room/model/dto"
	"pms/internal/domains/room/service"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"
	"pms/shared/timezone"
	"pms/shared/validator"
	"pms/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service      service.Room
	availability availabilityService.Availability
	otel         otel.Otel
}

func New(service service.Room, availability availabilityService.Availability, otel otel.Otel) Handler {
	return Handler{
		service:      service,
		availability: availability,
		otel:         otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/available", handler.GetAvailableRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}/status", handler.UpdateRoomStatus)
	})
}

// CreateRoom registers a room in the caller's branch.
// @Summary Create a room
// @Tags Room
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 201 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	var req dto.CreateRoomRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Create(ctx, sess, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetRooms lists the rooms of the caller's branch with their housekeeping status.
// @Summary List rooms
// @Tags Room
// @Produce json
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 404 {object} response.Error
// @Router /v1/rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.ListByBranch(ctx, sess)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetRoomByID retrieves a room by id.
// @Summary Get a room
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 404 {object} response.Error
// @Router /v1/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Get(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// UpdateRoomStatus sets the housekeeping status of a room.
// @Summary Update room status
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/rooms/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoomStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoomStatus")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.UpdateStatusRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.UpdateStatus(ctx, sess, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room status")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetAvailableRooms lists the rooms free for the whole stay.
// @Summary List available rooms
// @Tags Room
// @Produce json
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Param branch_id query string false "Branch, defaults to the caller's"
// @Param exclude_reservation_id query string false "Reservation ignored when checking overlaps"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/rooms/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableRooms")
	defer scope.End()

	sess, _ := session.FromContext(ctx)

	query, err := availabilityQuery(request, sess)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse availability query")

		response.WithError(writer, err)

		return
	}

	res, err := handler.availability.FindAvailableRooms(ctx, sess, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("branch_id", query.BranchID).Msg("failed to get available rooms")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

func availabilityQuery(request *http.Request, sess session.Session) (availabilityModel.Query, error) {
	params := request.URL.Query()

	checkIn, err := timezone.ParseDate(params.Get(constant.RequestParamCheckIn))
	if err != nil {
		return availabilityModel.Query{}, failure.BadRequestFromString("check_in must be a date formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	checkOut, err := timezone.ParseDate(params.Get(constant.RequestParamCheckOut))
	if err != nil {
		return availabilityModel.Query{}, failure.BadRequestFromString("check_out must be a date formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	branchID := params.Get(constant.RequestParamBranchID)
	if branchID == constant.Empty {
		branchID = sess.BranchID
	}

	return availabilityModel.Query{
		BranchID:             branchID,
		CheckIn:              checkIn,
		CheckOut:             checkOut,
		ExcludeReservationID: params.Get(constant.RequestParamExclude),
	}, nil
}
