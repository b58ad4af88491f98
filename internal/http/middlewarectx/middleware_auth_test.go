package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
)

// MockAuthService реализует интерфейс middlewarectx.Service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*authz.Actor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authz.Actor), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(*MockAuthService)
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "нет заголовка",
			authHeader:     "",
			setupMock:      func(_ *MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "не Bearer",
			authHeader:     "Basic abc",
			setupMock:      func(_ *MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "невалидный токен",
			authHeader: "Bearer bad-token",
			setupMock: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "bad-token").
					Return(nil, errors.New("invalid token"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "валидный токен",
			authHeader: "Bearer good-token",
			setupMock: func(m *MockAuthService) {
				m.On("ValidateToken", mock.Anything, "good-token").
					Return(&authz.Actor{UserUID: "uid-1", Username: "alice", Role: "user"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				actor, ok := ActorFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "alice", actor.Username)
				assert.Equal(t, "uid-1", actor.UserUID)
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(mockService, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AdminOnlyMiddleware(newNoopLogger())(next)

	t.Run("администратор проходит", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/plans", nil)
		ctx := context.WithValue(req.Context(), User, "root")
		ctx = context.WithValue(ctx, Role, "admin")
		ctx = context.WithValue(ctx, UserUID, "uid-a")
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("обычный пользователь получает 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/plans", nil)
		ctx := context.WithValue(req.Context(), User, "alice")
		ctx = context.WithValue(ctx, Role, "user")
		ctx = context.WithValue(ctx, UserUID, "uid-1")
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("без пользователя — 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/plans", nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
