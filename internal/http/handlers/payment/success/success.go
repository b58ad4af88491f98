// Package success реализует HTTP-обработчик подтверждения успешной оплаты.
//
// Сообщение клиента об успехе не принимается на веру: сервис перепроверяет
// состояние интента в платёжном шлюзе и только после этого отмечает счёт
// оплаченным.
package success

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-service/internal/http/response"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/paymentgateway"
)

// Request — структура входных данных подтверждения оплаты.
type Request struct {
	InvoiceID       int    `json:"invoice_id" validate:"required,gt=0"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на подтверждение оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс подтверждения оплаты счёта.
type Service interface {
	ConfirmPaymentSuccess(ctx context.Context, actor authz.Actor, invoiceID int, paymentIntentID string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить успешную оплату
// @Description Проверяет статус интента в платёжном шлюзе и отмечает счёт оплаченным.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID счёта и интента"
// @Success 200 {object} response.Response "Оплата подтверждена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, неподтверждённый платёж или повторная оплата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Счёт не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payment-success [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.success"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.ConfirmPaymentSuccess(r.Context(), actor, req.InvoiceID, req.PaymentIntentID); err != nil {
		var gatewayErr *paymentgateway.GatewayError
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("invoice not found", slog.Int("invoice_id", req.InvoiceID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invoice not found"))
		case errors.Is(err, errs.ErrPermissionDenied):
			log.Error("permission denied", slog.String("username", actor.Username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(errs.ErrPermissionDenied.Error()))
		case errors.Is(err, errs.ErrPaymentNotConfirmed):
			log.Error("payment not confirmed",
				slog.Int("invoice_id", req.InvoiceID),
				slog.String("intent_id", req.PaymentIntentID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(errs.ErrPaymentNotConfirmed.Error()))
		case errors.Is(err, errs.ErrAlreadyPaid):
			log.Error("invoice already paid", slog.Int("invoice_id", req.InvoiceID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(errs.ErrAlreadyPaid.Error()))
		case errors.As(err, &gatewayErr):
			log.Error("payment gateway rejected request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(gatewayErr.Message))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm payment"))
		}
		return
	}

	log.Info("payment confirmed", slog.Int("invoice_id", req.InvoiceID))
	render.JSON(w, r, response.OK())
}
