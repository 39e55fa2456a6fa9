package guest

import (
	"net/http"
	"pms/infras/otel"
	"pms/internal/domains/guest/model/dto"
	"pms/internal/domains/guest/service"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/session"
	"pms/shared/validator"
	"pms/transport/http/response"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Guest
	otel    otel.Otel
}

func New(service service.Guest, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/guests", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateGuest)
		routerGroup.Get("/search", handler.SearchGuests)
		routerGroup.Get("/{id}", handler.GetGuestByID)
		routerGroup.Patch("/{id}", handler.UpdateGuestContact)
	})
}

// CreateGuest registers a guest. The document number is unique.
// @Summary Create a guest
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.CreateGuestRequest true "Guest"
// @Success 201 {object} response.Data[dto.GuestResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/guests [post]
// @Security BearerAuth
func (handler *Handler) CreateGuest(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateGuest")
	defer scope.End()

	var req dto.CreateGuestRequest
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
		log.Error().Err(err).Msg("failed to create guest")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// SearchGuests matches the term against name, document number and email.
// @Summary Search guests
// @Tags Guest
// @Produce json
// @Param term query string true "Search term"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Data[dto.SearchGuestsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/guests/search [get]
// @Security BearerAuth
func (handler *Handler) SearchGuests(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchGuests")
	defer scope.End()

	term := request.URL.Query().Get(constant.RequestParamTerm)

	limit := 0

	if raw := request.URL.Query().Get(constant.RequestParamLimit); raw != constant.Empty {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, failure.InvalidLimitParam)

			return
		}

		limit = parsed
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Search(ctx, sess, term, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search guests")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetGuestByID retrieves a guest by id.
// @Summary Get a guest
// @Tags Guest
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} response.Data[dto.GuestResponse]
// @Failure 404 {object} response.Error
// @Router /v1/guests/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetGuestByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGuestByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Get(ctx, sess, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("guest_id", id).Msg("failed to get guest")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// UpdateGuestContact changes the phone and email of a guest.
// @Summary Update guest contact
// @Tags Guest
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Param request body dto.UpdateContactRequest true "Contact"
// @Success 200 {object} response.Data[dto.GuestResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/guests/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateGuestContact(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateGuestContact")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	var req dto.UpdateContactRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.UpdateContact(ctx, sess, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("guest_id", id).Msg("failed to update guest contact")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
