// Package plan содержит бизнес-логику каталога тарифных планов с кешированием.
//
// Чтения идут через Redis-кеш, любые мутации каталога его инвалидируют.
// Мутации доступны только администратору — проверка через предикат authz.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

const catalogCacheKey = "plans:catalog"

// PlanRepository определяет методы для работы с планами в хранилище.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.Plan) (int, error)
	ReadPlan(ctx context.Context, id int) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	UpdatePlan(ctx context.Context, plan models.Plan, id int) (int, error)
	RemovePlan(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PlanService реализует бизнес-логику каталога планов.
type PlanService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет план в каталог. Только для администратора.
func (s *PlanService) Create(ctx context.Context, actor authz.Actor, req models.DummyPlan) (int, error) {
	if !authz.IsAdmin(actor) {
		return 0, errs.ErrPermissionDenied
	}

	plan := models.Plan{
		Name:  req.Name,
		Price: req.Price,
	}
	if req.Description != "" {
		plan.Description = &req.Description
	}

	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new plan", slog.Int("id", id), slog.String("name", req.Name))

	s.invalidateCatalog()
	return id, nil
}

// Read возвращает план по ID, используя кеш или репозиторий.
func (s *PlanService) Read(ctx context.Context, id int) (*models.Plan, error) {
	var result *models.Plan
	cacheKey := fmt.Sprintf("plan:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// List возвращает каталог планов, используя кеш или репозиторий.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	var result []*models.Plan
	found, err := s.cache.Get(catalogCacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", catalogCacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(catalogCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache catalog", slog.String("key", catalogCacheKey), sl.Err(err))
	}
	return result, nil
}

// Update обновляет план по ID. Только для администратора.
func (s *PlanService) Update(ctx context.Context, actor authz.Actor, req models.DummyPlan, id int) (int, error) {
	if !authz.IsAdmin(actor) {
		return 0, errs.ErrPermissionDenied
	}

	plan := models.Plan{
		Name:  req.Name,
		Price: req.Price,
	}
	if req.Description != "" {
		plan.Description = &req.Description
	}

	rows, err := s.repo.UpdatePlan(ctx, plan, id)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, errs.ErrNotFound
	}
	s.log.Info("updated plan", slog.Int("id", id))

	s.invalidateCatalog()
	if err := s.cache.Invalidate(fmt.Sprintf("plan:%d", id)); err != nil {
		s.log.Warn("failed to invalidate plan cache", sl.Err(err))
	}
	return rows, nil
}

// Remove удаляет план по ID. Только для администратора.
func (s *PlanService) Remove(ctx context.Context, actor authz.Actor, id int) (int, error) {
	if !authz.IsAdmin(actor) {
		return 0, errs.ErrPermissionDenied
	}

	rows, err := s.repo.RemovePlan(ctx, id)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, errs.ErrNotFound
	}
	s.log.Info("removed plan", slog.Int("id", id))

	s.invalidateCatalog()
	if err := s.cache.Invalidate(fmt.Sprintf("plan:%d", id)); err != nil {
		s.log.Warn("failed to invalidate plan cache", sl.Err(err))
	}
	return rows, nil
}

func (s *PlanService) invalidateCatalog() {
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate catalog cache", sl.Err(err))
	}
}
