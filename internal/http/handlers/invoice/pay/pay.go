// Package pay реализует HTTP-обработчик отметки счёта оплаченным без
// обращения к платёжному шлюзу.
package pay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-service/internal/http/response"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы на оплату счёта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс оплаты счёта.
type Service interface {
	Pay(ctx context.Context, actor authz.Actor, id int) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Оплатить счёт
// @Description Переводит счёт в статус paid. Доступно владельцу и администратору.
// @Tags Invoices
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID счёта"
// @Success 200 {object} response.Response "Счёт оплачен"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или повторная оплата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Счёт не найден"
// @Router /invoices/{id}/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.pay"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid invoice id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid invoice id"))
		return
	}

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Pay(r.Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("invoice not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invoice not found"))
		case errors.Is(err, errs.ErrPermissionDenied):
			log.Error("permission denied", slog.String("username", actor.Username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(errs.ErrPermissionDenied.Error()))
		case errors.Is(err, errs.ErrAlreadyPaid):
			log.Error("invoice already paid", slog.Int("id", id))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(errs.ErrAlreadyPaid.Error()))
		default:
			log.Error("failed to pay invoice", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not pay invoice"))
		}
		return
	}

	log.Info("invoice paid", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
