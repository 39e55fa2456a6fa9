package payment

import (
	"net/http"
	"pms/infras/otel"
	"pms/internal/domains/payment/model/dto"
	"pms/internal/domains/payment/service"
	"pms/shared/constant"
	"pms/shared/session"
	"pms/shared/validator"
	"pms/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Payments live under their reservation; the patterns are registered next to
// the reservation routes so chi resolves them before the reservation subtree.
func (handler *Handler) Router(router chi.Router) {
	router.Post("/reservations/{id}/payments", handler.RecordPayment)
	router.Get("/reservations/{id}/payments", handler.GetPayments)
	router.Get("/reservations/{id}/payments/summary", handler.GetPaymentSummary)
}

// RecordPayment appends a payment to the reservation ledger. Retries carrying the
// same Idempotency-Key return the payment recorded first.
// @Summary Record a payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error "Over payment"
// @Router /v1/reservations/{id}/payments [post]
// @Security BearerAuth
func (handler *Handler) RecordPayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordPayment")
	defer scope.End()

	reservationID := chi.URLParam(request, constant.RequestParamID)

	var req dto.RecordPaymentRequest

	req.IdempotencyKey = request.Header.Get(constant.RequestHeaderIdempotencyKey)

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Record(ctx, sess, reservationID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to record payment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetPayments lists the payments of a reservation in recording order.
// @Summary List payments
// @Tags Payment
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ListPaymentsResponse]
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id}/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPayments")
	defer scope.End()

	reservationID := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.List(ctx, sess, reservationID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to get payments")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetPaymentSummary returns total, paid and balance with the payments.
// @Summary Payment summary
// @Tags Payment
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.SummaryResponse]
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id}/payments/summary [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentSummary(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentSummary")
	defer scope.End()

	reservationID := chi.URLParam(request, constant.RequestParamID)
	sess, _ := session.FromContext(ctx)

	res, err := handler.service.Summary(ctx, sess, reservationID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to get payment summary")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
