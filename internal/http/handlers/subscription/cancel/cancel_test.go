package cancel

import (
	"context"
	"errors"
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

// MockService реализует интерфейс cancel.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Cancel(ctx context.Context, actor authz.Actor, id int) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func TestCancelHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		urlID          string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная отмена",
			urlID:    "123",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, mock.Anything, 123).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "некорректный id",
			urlID:          "abc",
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid subscription id`,
		},
		{
			name:           "нет пользователя в контексте",
			urlID:          "123",
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:     "повторная отмена",
			urlID:    "123",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, mock.Anything, 123).Return(errs.ErrAlreadyCancelled)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `subscription already cancelled`,
		},
		{
			name:     "чужая подписка",
			urlID:    "123",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, mock.Anything, 123).Return(errs.ErrPermissionDenied)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `permission denied`,
		},
		{
			name:     "подписка не найдена",
			urlID:    "123",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, mock.Anything, 123).Return(errs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `subscription not found`,
		},
		{
			name:     "ошибка сервиса",
			urlID:    "123",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, mock.Anything, 123).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not cancel subscription`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/subscriptions/"+tt.urlID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.User, "alice")
				ctx = context.WithValue(ctx, middlewarectx.Role, "user")
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
			}
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
