package reservation

import (
	"fmt"
	"io"
	"net/http"
	"pms/infras/otel"
	"pms/internal/domains/reservation/model/dto"
	"pms/internal/domains/reservation/service"
	"pms/shared"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"
	"pms/shared/validator"
	"pms/transport/http/response"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Reservation
	otel    otel.Otel
}

func New(service service.Reservation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReservation)
		routerGroup.Get("/", handler.GetReservations)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Patch("/{id}", handler.RescheduleReservation)
		routerGroup.Post("/{id}/confirm", handler.ConfirmReservation)
		routerGroup.Post("/{id}/cancel", handler.CancelReservation)
		routerGroup.Post("/{id}/check-in", handler.CheckIn)
		routerGroup.Post("/{id}/check-out", handler.CheckOut)
		routerGroup.Post("/{id}/no-show", handler.MarkNoShow)
		routerGroup.Post("/{id}/transition", handler.TransitionReservation)
	})
}

// CreateReservation books a room for a known guest or a guest draft.
// @Summary Create a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Reservation"
// @Success 201 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Room unavailable for the dates"
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) CreateReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	var req dto.CreateReservationRequest
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
		log.Error().Err(err).Str("room_id", req.RoomID).Msg("failed to create reservation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("reservation " + res.ConfirmationCode + " created by " + sess.ActorID)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetReservations lists the reservations of the caller's branch.
// @Summary List reservations
// @Tags Reservation
// @Produce json
// @Param status query string false "Reservation status"
// @Param date_range query string false "today, tomorrow, this_week, next_week or this_month"
// @Param guest query string false "Guest name, partial match"
// @Param source query string false "Booking source"
// @Success 200 {object} response.Data[dto.ListReservationsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	var req dto.SearchRequest
	req.FromRequest(request)

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.ListByBranch(ctx, sess, req.ToCriteria())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetReservationByID retrieves a reservation with its guest and room.
// @Summary Get a reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Get(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to get reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// RescheduleReservation moves a pending or confirmed reservation to new dates or another room.
// @Summary Reschedule a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.RescheduleRequest true "New stay"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) RescheduleReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.RescheduleRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Reschedule(ctx, sess, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to reschedule reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ConfirmReservation moves a pending reservation to confirmed.
// @Summary Confirm a reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Confirm(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to confirm reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CancelReservation cancels a pending or confirmed reservation. The body is optional.
// @Summary Cancel a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.CancelRequest false "Reason"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.CancelRequest
	if err := validateOptional(request, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Cancel(ctx, sess, id, req.Reason)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to cancel reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CheckIn registers the guest arrival of a confirmed reservation.
// @Summary Check in
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/check-in [post]
// @Security BearerAuth
func (handler *Handler) CheckIn(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckIn")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.CheckIn(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to check in")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CheckOut closes the stay. An outstanding balance blocks it unless overridden,
// either in the body or with ?override=true.
// @Summary Check out
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param override query bool false "Check out with an outstanding balance"
// @Param request body dto.CheckOutRequest false "Override"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/check-out [post]
// @Security BearerAuth
func (handler *Handler) CheckOut(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckOut")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.CheckOutRequest
	if err := validateOptional(request, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	if override := shared.ConvertStringToBool(request.URL.Query().Get(constant.RequestParamOverride)); override != nil {
		req.Override = req.Override || *override
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.CheckOut(ctx, sess, id, req.Override)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to check out")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// MarkNoShow closes a confirmed reservation whose guest never arrived.
// @Summary Mark no-show
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/no-show [post]
// @Security BearerAuth
func (handler *Handler) MarkNoShow(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkNoShow")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.MarkNoShow(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Msg("failed to mark no-show")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// TransitionReservation applies any lifecycle transition by target status.
// @Summary Change reservation status
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations/{id}/transition [post]
// @Security BearerAuth
func (handler *Handler) TransitionReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TransitionReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.TransitionRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Transition(ctx, sess, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", id).Str("status", req.Status).Msg("failed to change reservation status")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// validateOptional decodes the body when one was sent.
func validateOptional[T any](request *http.Request, data *T) error {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to read request body: %w", err)) //nolint:wrapcheck
	}

	if strings.TrimSpace(string(body)) == constant.Empty {
		return validator.ValidateStruct(data)
	}

	return validator.Validate(strings.NewReader(string(body)), data)
}
