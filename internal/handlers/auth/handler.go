package auth

import (
	"net/http"
	"pms/infras/otel"
	"pms/internal/domains/auth/model/dto"
	"pms/internal/domains/auth/service"
	"pms/shared/constant"
	"pms/shared/session"
	"pms/shared/validator"
	"pms/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/auth", func(routerGroup chi.Router) {
		routerGroup.Post("/login", handler.Login)
		routerGroup.Post("/staff", handler.RegisterStaff)
		routerGroup.Post("/change-password", handler.ChangePassword)
	})
}

// Login exchanges staff credentials for an access token.
// @Summary Staff login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Data[dto.LoginResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	var req dto.LoginRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// @Summary Register staff
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Staff"
// @Success 201 {object} response.Data[dto.StaffResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/auth/staff [post]
// @Security BearerAuth
func (handler *Handler) RegisterStaff(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RegisterStaff")
	defer scope.End()

	var req dto.RegisterRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Register(ctx, sess, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to register staff")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// @Summary Change own password
// @Tags Auth
// @Accept json
// @Param request body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Router /v1/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangePassword")
	defer scope.End()

	var req dto.ChangePasswordRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	if err := handler.service.ChangePassword(ctx, sess, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change password")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "password changed")
}
