// Package list реализует HTTP-обработчик выдачи счетов.
//
// Администратор видит счета всех пользователей, обычный пользователь —
// только свои. Поддерживаются фильтр по статусу и пагинация через query.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-service/internal/http/response"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

const (
	defaultLimit  = 10
	defaultOffset = 0
)

// Handler обрабатывает HTTP-запросы на получение списка счетов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выдачи счетов с учётом роли.
type Service interface {
	List(ctx context.Context, actor authz.Actor, status *string, limit, offset int) ([]*models.Invoice, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список счетов
// @Description Возвращает счета: администратору — все, пользователю — только свои.
// @Tags Invoices
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу (pending, paid, overdue)"
// @Param limit query int false "Максимум записей (по умолчанию 10)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список счетов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /invoices [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var status *string
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = &raw
	}
	limit := queryInt(r, "limit", defaultLimit)
	offset := queryInt(r, "offset", defaultOffset)

	invoices, err := h.service.List(r.Context(), actor, status, limit, offset)
	if err != nil {
		log.Error("failed to list invoices", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list invoices"))
		return
	}

	log.Info("invoices listed", slog.Int("count", len(invoices)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"invoices": invoices,
	}))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
