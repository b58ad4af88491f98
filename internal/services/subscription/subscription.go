// Package subscription содержит бизнес-логику жизненного цикла подписок.
//
// Создание опирается на частичный уникальный индекс в базе: вторая активная
// подписка невозможна и при конкурентных запросах, без проверки перед вставкой.
// Отмена мягкая и идемпотентная по эффекту: повторная отмена не меняет
// состояние, но возвращает конфликт, а не успех.
package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// ReadSubscription возвращает подписку по ID или errs.ErrNotFound.
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// ListSubscriptions возвращает подписки по фильтру с пагинацией.
	ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error)
	// CancelSubscription условно переводит подписку в cancelled.
	CancelSubscription(ctx context.Context, id int) (int, error)
	// ReadPlan возвращает план по ID или errs.ErrNotFound.
	ReadPlan(ctx context.Context, id int) (*models.Plan, error)
}

// SubscriptionService реализует бизнес-логику работы с подписками.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
	}
}

// Create создает активную подписку для пользователя и возвращает её ID.
//
// Возвращает errs.ErrInvalidDate при нечитаемых датах,
// errs.ErrActiveSubscriptionExists, если активная подписка уже есть,
// и errs.ErrNotFound, если указанного плана нет в каталоге.
func (s *SubscriptionService) Create(ctx context.Context, userUID string, req models.DummySubscription) (int, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, errs.ErrInvalidDate
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return 0, errs.ErrInvalidDate
	}
	if endDate.Before(startDate) {
		return 0, errs.ErrInvalidPeriod
	}

	if _, err := s.repo.ReadPlan(ctx, req.PlanID); err != nil {
		return 0, err
	}

	sub := models.Subscription{
		UserUID:   userUID,
		PlanID:    req.PlanID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    models.SubscriptionActive,
	}

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new subscription",
		slog.Int("id", id), slog.String("user_uid", userUID), slog.Int("plan_id", req.PlanID))
	return id, nil
}

// List возвращает подписки: администратору — все, пользователю — только свои,
// с необязательным точным фильтром по статусу.
func (s *SubscriptionService) List(ctx context.Context, actor authz.Actor, status *string, limit, offset int) ([]*models.Subscription, error) {
	filter := models.SubscriptionFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	}
	if !authz.IsAdmin(actor) {
		filter.UserUID = actor.UserUID
	}
	return s.repo.ListSubscriptions(ctx, filter)
}

// Cancel мягко отменяет подписку: запись остаётся, статус становится cancelled.
//
// Отменить может владелец или администратор. Повторная отмена возвращает
// errs.ErrAlreadyCancelled, не меняя состояние.
func (s *SubscriptionService) Cancel(ctx context.Context, actor authz.Actor, id int) error {
	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return err
	}
	if !authz.OwnerOrAdmin(actor, sub.UserUID) {
		return errs.ErrPermissionDenied
	}

	rows, err := s.repo.CancelSubscription(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrAlreadyCancelled
	}

	s.log.Info("cancelled subscription", slog.Int("id", id), slog.String("by", actor.Username))
	return nil
}
