// Package invoice содержит бизнес-логику счетов: ежедневную генерацию,
// просрочку, напоминания и отметку оплаты.
//
// Генерация и просрочка идемпотентны на уровне базы, поэтому повторный
// запуск заданий за тот же день безопасен.
package invoice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// Счёт к оплате выставляется за неделю до срока.
const paymentTerm = 7 * 24 * time.Hour

var (
	invoicesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoices_generated_total",
		Help: "Total number of invoices generated by the daily job.",
	})
	invoicesOverdue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoices_overdue_total",
		Help: "Total number of invoices marked overdue.",
	})
	remindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoice_reminders_published_total",
		Help: "Total number of invoice reminders published to the queue.",
	})
)

// InvoiceRepository определяет методы для работы со счетами в хранилище.
type InvoiceRepository interface {
	GenerateInvoices(ctx context.Context, issueDate, dueDate time.Time) (int, error)
	MarkOverdueInvoices(ctx context.Context, today time.Time) (int, error)
	ListPendingReminders(ctx context.Context, today time.Time) ([]*models.InvoiceReminder, error)
	ListInvoices(ctx context.Context, filter models.InvoiceFilter) ([]*models.Invoice, error)
	ReadInvoice(ctx context.Context, id int) (*models.Invoice, error)
	MarkInvoicePaid(ctx context.Context, id int) (int, error)
}

// ReminderPublisher публикует напоминание в очередь уведомлений.
type ReminderPublisher interface {
	PublishReminder(reminder *models.InvoiceReminder) error
}

// InvoiceService реализует бизнес-логику работы со счетами.
type InvoiceService struct {
	repo      InvoiceRepository
	publisher ReminderPublisher
	log       *slog.Logger
}

// NewInvoiceService создает новый экземпляр InvoiceService.
//
// publisher может быть nil в процессах, которые не публикуют напоминания
// (HTTP API использует только List и Pay); SendPendingReminders в этом
// случае возвращает ошибку, не паникуя.
func NewInvoiceService(repo InvoiceRepository, publisher ReminderPublisher, log *slog.Logger) *InvoiceService {
	return &InvoiceService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// GenerateDailyInvoices выставляет счета по активным подпискам, стартующим
// сегодня. Срок оплаты — через неделю. Возвращает число созданных счетов.
func (s *InvoiceService) GenerateDailyInvoices(ctx context.Context) (int, error) {
	today := truncateToDay(time.Now().UTC())
	dueDate := today.Add(paymentTerm)

	count, err := s.repo.GenerateInvoices(ctx, today, dueDate)
	if err != nil {
		return 0, err
	}
	invoicesGenerated.Add(float64(count))
	s.log.Info("generated daily invoices",
		slog.Int("count", count), slog.Time("issue_date", today))
	return count, nil
}

// MarkOverdue переводит просроченные pending-счета в overdue.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int, error) {
	today := truncateToDay(time.Now().UTC())

	count, err := s.repo.MarkOverdueInvoices(ctx, today)
	if err != nil {
		return 0, err
	}
	invoicesOverdue.Add(float64(count))
	s.log.Info("marked overdue invoices", slog.Int("count", count))
	return count, nil
}

// SendPendingReminders публикует напоминания по всем pending-счетам, срок
// оплаты которых ещё не наступил. Ошибка публикации одного напоминания не
// останавливает остальные.
func (s *InvoiceService) SendPendingReminders(ctx context.Context) (int, error) {
	if s.publisher == nil {
		return 0, errors.New("reminder publisher is not configured")
	}
	today := truncateToDay(time.Now().UTC())

	reminders, err := s.repo.ListPendingReminders(ctx, today)
	if err != nil {
		return 0, err
	}

	var published int
	for _, reminder := range reminders {
		if err := s.publisher.PublishReminder(reminder); err != nil {
			s.log.Error("failed to publish reminder",
				slog.Int("invoice_id", reminder.InvoiceID), sl.Err(err))
			continue
		}
		published++
	}
	remindersPublished.Add(float64(published))
	s.log.Info("published invoice reminders",
		slog.Int("published", published), slog.Int("total", len(reminders)))
	return published, nil
}

// List возвращает счета: администратору — все, пользователю — только свои,
// с необязательным точным фильтром по статусу.
func (s *InvoiceService) List(ctx context.Context, actor authz.Actor, status *string, limit, offset int) ([]*models.Invoice, error) {
	filter := models.InvoiceFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	}
	if !authz.IsAdmin(actor) {
		filter.UserUID = actor.UserUID
	}
	return s.repo.ListInvoices(ctx, filter)
}

// Pay переводит счёт в paid. Оплатить может владелец или администратор.
//
// Переход разрешён из pending и overdue; повторная оплата возвращает
// errs.ErrAlreadyPaid, не меняя состояние.
func (s *InvoiceService) Pay(ctx context.Context, actor authz.Actor, id int) error {
	inv, err := s.repo.ReadInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !authz.OwnerOrAdmin(actor, inv.UserUID) {
		return errs.ErrPermissionDenied
	}

	rows, err := s.repo.MarkInvoicePaid(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrAlreadyPaid
	}

	s.log.Info("invoice paid", slog.Int("id", id), slog.String("by", actor.Username))
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
