package remove

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, actor authz.Actor, id int) (int, error) {
	args := m.Called(ctx, actor, id)
	return args.Int(0), args.Error(1)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		urlID          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешное удаление",
			urlID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, mock.Anything, 3).Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"removed":1`,
		},
		{
			name:  "план используется подписками",
			urlID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, mock.Anything, 3).
					Return(0, errs.ErrPlanInUse)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `plan is in use by existing subscriptions`,
		},
		{
			name:  "план не найден",
			urlID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, mock.Anything, 3).
					Return(0, errs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `plan not found`,
		},
		{
			name:  "недостаточно прав",
			urlID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, mock.Anything, 3).
					Return(0, errs.ErrPermissionDenied)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `permission denied`,
		},
		{
			name:           "некорректный id",
			urlID:          "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid plan id`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/plans/"+tt.urlID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.User, "root")
			ctx = context.WithValue(ctx, middlewarectx.Role, "admin")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-a")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
