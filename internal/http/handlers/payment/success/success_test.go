package success

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
)

// MockService реализует интерфейс success.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ConfirmPaymentSuccess(ctx context.Context, actor authz.Actor, invoiceID int, paymentIntentID string) error {
	args := m.Called(ctx, actor, invoiceID, paymentIntentID)
	return args.Error(0)
}

func TestSuccessHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "оплата подтверждена",
			body: `{"invoice_id":10,"payment_intent_id":"pi_123"}`,
			setupMock: func(m *MockService) {
				m.On("ConfirmPaymentSuccess", mock.Anything, mock.Anything, 10, "pi_123").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "шлюз не подтвердил оплату",
			body: `{"invoice_id":10,"payment_intent_id":"pi_123"}`,
			setupMock: func(m *MockService) {
				m.On("ConfirmPaymentSuccess", mock.Anything, mock.Anything, 10, "pi_123").
					Return(errs.ErrPaymentNotConfirmed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `payment not confirmed by gateway`,
		},
		{
			name: "повторное подтверждение",
			body: `{"invoice_id":10,"payment_intent_id":"pi_123"}`,
			setupMock: func(m *MockService) {
				m.On("ConfirmPaymentSuccess", mock.Anything, mock.Anything, 10, "pi_123").
					Return(errs.ErrAlreadyPaid)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invoice already paid`,
		},
		{
			name:           "отсутствует payment_intent_id",
			body:           `{"invoice_id":10}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `PaymentIntentID`,
		},
		{
			name:           "некорректный JSON",
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/payment-success", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.User, "alice")
			ctx = context.WithValue(ctx, middlewarectx.Role, "user")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
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
