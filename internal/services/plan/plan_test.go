package plan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.Plan) (int, error) {
	args := m.Called(ctx, plan)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, plan models.Plan, id int) (int, error) {
	args := m.Called(ctx, plan, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemovePlan(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var (
	admin = authz.Actor{UserUID: "admin-uid", Username: "root", Role: models.RoleAdmin}
	user  = authz.Actor{UserUID: "user-uid", Username: "alice", Role: models.RoleUser}
)

func TestPlan_Create(t *testing.T) {
	req := models.DummyPlan{Name: models.PlanBasic, Price: 9.99}

	t.Run("admin creates plan", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("CreatePlan", mock.Anything, models.Plan{Name: models.PlanBasic, Price: 9.99}).
			Return(1, nil).Once()
		cache.On("Invalidate", "plans:catalog").Return(nil).Once()

		service := NewPlanService(repo, cache, newNoopLogger())

		id, err := service.Create(context.Background(), admin, req)

		assert.NoError(t, err)
		assert.Equal(t, 1, id)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		service := NewPlanService(new(RepoMock), new(CacheMock), newNoopLogger())

		_, err := service.Create(context.Background(), user, req)

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreatePlan", mock.Anything, mock.Anything).
			Return(0, errs.ErrPlanNameTaken).Once()

		service := NewPlanService(repo, new(CacheMock), newNoopLogger())

		_, err := service.Create(context.Background(), admin, req)

		assert.ErrorIs(t, err, errs.ErrPlanNameTaken)
	})
}

func TestPlan_List(t *testing.T) {
	plans := []*models.Plan{{ID: 1, Name: models.PlanBasic, Price: 9.99}}

	t.Run("cache miss goes to repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "plans:catalog", mock.Anything).Return(false, nil).Once()
		repo.On("ListPlans", mock.Anything).Return(plans, nil).Once()
		cache.On("Set", "plans:catalog", plans, time.Hour).Return(nil).Once()

		service := NewPlanService(repo, cache, newNoopLogger())

		got, err := service.List(context.Background())

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "plans:catalog", mock.Anything).Return(true, nil).Once()

		service := NewPlanService(repo, cache, newNoopLogger())

		_, err := service.List(context.Background())

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "ListPlans")
	})
}

func TestPlan_Update(t *testing.T) {
	req := models.DummyPlan{Name: models.PlanPro, Price: 19.99}

	t.Run("missing plan", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdatePlan", mock.Anything, mock.Anything, 7).Return(0, nil).Once()

		service := NewPlanService(repo, new(CacheMock), newNoopLogger())

		_, err := service.Update(context.Background(), admin, req, 7)

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("update invalidates both cache keys", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("UpdatePlan", mock.Anything, mock.Anything, 7).Return(1, nil).Once()
		cache.On("Invalidate", "plans:catalog").Return(nil).Once()
		cache.On("Invalidate", "plan:7").Return(nil).Once()

		service := NewPlanService(repo, cache, newNoopLogger())

		rows, err := service.Update(context.Background(), admin, req, 7)

		assert.NoError(t, err)
		assert.Equal(t, 1, rows)
		cache.AssertExpectations(t)
	})
}

func TestPlan_Remove(t *testing.T) {
	t.Run("regular user is rejected", func(t *testing.T) {
		service := NewPlanService(new(RepoMock), new(CacheMock), newNoopLogger())

		_, err := service.Remove(context.Background(), user, 1)

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	})

	t.Run("admin removes plan", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("RemovePlan", mock.Anything, 1).Return(1, nil).Once()
		cache.On("Invalidate", "plans:catalog").Return(nil).Once()
		cache.On("Invalidate", "plan:1").Return(nil).Once()

		service := NewPlanService(repo, cache, newNoopLogger())

		rows, err := service.Remove(context.Background(), admin, 1)

		assert.NoError(t, err)
		assert.Equal(t, 1, rows)
	})
}
