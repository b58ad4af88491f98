package invoice

import (
	"context"
	"errors"
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

func (m *RepoMock) GenerateInvoices(ctx context.Context, issueDate, dueDate time.Time) (int, error) {
	args := m.Called(ctx, issueDate, dueDate)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) MarkOverdueInvoices(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListPendingReminders(ctx context.Context, today time.Time) ([]*models.InvoiceReminder, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]*models.InvoiceReminder), args.Error(1)
}

func (m *RepoMock) ListInvoices(ctx context.Context, filter models.InvoiceFilter) ([]*models.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *RepoMock) ReadInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *RepoMock) MarkInvoicePaid(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishReminder(reminder *models.InvoiceReminder) error {
	return m.Called(reminder).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestInvoice_GenerateDailyInvoices(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GenerateInvoices", mock.Anything,
		mock.MatchedBy(func(issue time.Time) bool {
			return issue.Hour() == 0 && issue.Location() == time.UTC
		}),
		mock.MatchedBy(func(due time.Time) bool { return true }),
	).Return(3, nil).Once()

	service := NewInvoiceService(repo, new(PublisherMock), newNoopLogger())

	count, err := service.GenerateDailyInvoices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	repo.AssertExpectations(t)

	// Срок оплаты — ровно через неделю после даты выставления.
	call := repo.Calls[0]
	issue := call.Arguments.Get(1).(time.Time)
	due := call.Arguments.Get(2).(time.Time)
	assert.Equal(t, issue.Add(7*24*time.Hour), due)
}

func TestInvoice_MarkOverdue(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkOverdueInvoices", mock.Anything, mock.Anything).Return(5, nil).Once()

	service := NewInvoiceService(repo, new(PublisherMock), newNoopLogger())

	count, err := service.MarkOverdue(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 5, count)
	repo.AssertExpectations(t)
}

func TestInvoice_SendPendingReminders(t *testing.T) {
	reminders := []*models.InvoiceReminder{
		{InvoiceID: 1, Email: "a@example.com", Username: "alice", Amount: 9.99},
		{InvoiceID: 2, Email: "b@example.com", Username: "bob", Amount: 19.99},
	}

	t.Run("all published", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListPendingReminders", mock.Anything, mock.Anything).Return(reminders, nil).Once()
		publisher := new(PublisherMock)
		publisher.On("PublishReminder", reminders[0]).Return(nil).Once()
		publisher.On("PublishReminder", reminders[1]).Return(nil).Once()

		service := NewInvoiceService(repo, publisher, newNoopLogger())

		published, err := service.SendPendingReminders(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 2, published)
		publisher.AssertExpectations(t)
	})

	t.Run("nil publisher returns error without panic", func(t *testing.T) {
		repo := new(RepoMock)

		service := NewInvoiceService(repo, nil, newNoopLogger())

		published, err := service.SendPendingReminders(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 0, published)
		repo.AssertNotCalled(t, "ListPendingReminders", mock.Anything, mock.Anything)
	})

	t.Run("publish error does not stop the rest", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListPendingReminders", mock.Anything, mock.Anything).Return(reminders, nil).Once()
		publisher := new(PublisherMock)
		publisher.On("PublishReminder", reminders[0]).Return(errors.New("broker down")).Once()
		publisher.On("PublishReminder", reminders[1]).Return(nil).Once()

		service := NewInvoiceService(repo, publisher, newNoopLogger())

		published, err := service.SendPendingReminders(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, published)
		publisher.AssertExpectations(t)
	})
}

func TestInvoice_List(t *testing.T) {
	invoices := []*models.Invoice{{ID: 1}, {ID: 2}}
	status := models.InvoicePending

	repo := new(RepoMock)
	repo.On("ListInvoices", mock.Anything,
		models.InvoiceFilter{UserUID: "user-uid", Status: &status, Limit: 10, Offset: 0}).
		Return(invoices, nil).Once()

	service := NewInvoiceService(repo, new(PublisherMock), newNoopLogger())
	actor := authz.Actor{UserUID: "user-uid", Username: "alice", Role: models.RoleUser}

	got, err := service.List(context.Background(), actor, &status, 10, 0)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestInvoice_Pay(t *testing.T) {
	owner := authz.Actor{UserUID: "owner-uid", Username: "alice", Role: models.RoleUser}
	stranger := authz.Actor{UserUID: "other-uid", Username: "bob", Role: models.RoleUser}
	inv := &models.Invoice{ID: 3, UserUID: "owner-uid", Status: models.InvoicePending}

	tests := []struct {
		name       string
		actor      authz.Actor
		setupMocks func(repo *RepoMock)
		wantErr    error
	}{
		{
			name:  "owner pays pending invoice",
			actor: owner,
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadInvoice", mock.Anything, 3).Return(inv, nil).Once()
				repo.On("MarkInvoicePaid", mock.Anything, 3).Return(1, nil).Once()
			},
		},
		{
			name:  "stranger is rejected",
			actor: stranger,
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadInvoice", mock.Anything, 3).Return(inv, nil).Once()
			},
			wantErr: errs.ErrPermissionDenied,
		},
		{
			name:  "repeat payment",
			actor: owner,
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadInvoice", mock.Anything, 3).Return(inv, nil).Once()
				repo.On("MarkInvoicePaid", mock.Anything, 3).Return(0, nil).Once()
			},
			wantErr: errs.ErrAlreadyPaid,
		},
		{
			name:  "missing invoice",
			actor: owner,
			setupMocks: func(repo *RepoMock) {
				repo.On("ReadInvoice", mock.Anything, 3).Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			service := NewInvoiceService(repo, new(PublisherMock), newNoopLogger())

			err := service.Pay(context.Background(), tt.actor, 3)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
