// Package remove реализует HTTP-обработчик удаления тарифного плана.
package remove

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

// Handler обрабатывает HTTP-запросы на удаление плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления плана.
type Service interface {
	Remove(ctx context.Context, actor authz.Actor, id int) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить тарифный план
// @Description Удаляет план по ID. Доступно только администратору.
// @Tags Plans
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Success 200 {object} map[string]any "Число удаленных записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или план используется подписками"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid plan id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	rows, err := h.service.Remove(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrPermissionDenied):
			log.Error("permission denied", slog.String("username", actor.Username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(errs.ErrPermissionDenied.Error()))
		case errors.Is(err, errs.ErrNotFound):
			log.Error("plan not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
		case errors.Is(err, errs.ErrPlanInUse):
			log.Error("plan is referenced by subscriptions", slog.Int("id", id))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(errs.ErrPlanInUse.Error()))
		default:
			log.Error("failed to remove plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove plan"))
		}
		return
	}

	log.Info("plan removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed": rows,
	}))
}
