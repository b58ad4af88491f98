// Package intent реализует HTTP-обработчик создания платёжного интента
// для оплаты счёта через внешний шлюз.
package intent

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

// Request — структура входных данных для создания интента.
type Request struct {
	InvoiceID int `json:"invoice_id" validate:"required,gt=0"`
}

// Handler обрабатывает HTTP-запросы на создание платёжного интента.
type Handler struct {
	log            *slog.Logger
	service        Service
	validate       *validator.Validate
	publishableKey string
}

// Service описывает интерфейс создания интента по счёту.
type Service interface {
	CreatePaymentIntent(ctx context.Context, actor authz.Actor, invoiceID int) (*paymentgateway.Intent, error)
}

// New создает новый экземпляр Handler. publishableKey отдаётся клиенту
// вместе с интентом для инициализации SDK шлюза.
func New(log *slog.Logger, service Service, publishableKey string) *Handler {
	return &Handler{
		log:            log,
		service:        service,
		validate:       validator.New(),
		publishableKey: publishableKey,
	}
}

// ServeHTTP godoc
// @Summary Создать платёжный интент
// @Description Создает интент в платёжном шлюзе на сумму неоплаченного счёта. Возвращает client_secret для оплаты на клиенте.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID счёта"
// @Success 200 {object} map[string]any "Данные интента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или отказ шлюза"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Счёт не найден или уже оплачен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /create-payment-intent [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.intent"

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

	intent, err := h.service.CreatePaymentIntent(r.Context(), actor, req.InvoiceID)
	if err != nil {
		var gatewayErr *paymentgateway.GatewayError
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("invoice not found or already paid", slog.Int("invoice_id", req.InvoiceID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invoice not found"))
		case errors.Is(err, errs.ErrPermissionDenied):
			log.Error("permission denied", slog.String("username", actor.Username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(errs.ErrPermissionDenied.Error()))
		case errors.As(err, &gatewayErr):
			log.Error("payment gateway rejected request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(gatewayErr.Message))
		default:
			log.Error("failed to create payment intent", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create payment intent"))
		}
		return
	}

	log.Info("payment intent created",
		slog.Int("invoice_id", req.InvoiceID), slog.String("intent_id", intent.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"publishable_key":   h.publishableKey,
	}))
}
