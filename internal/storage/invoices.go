package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// GenerateInvoices выставляет счета по всем активным подпискам, стартующим
// в issueDate. Сумма — текущая цена плана, статус pending.
//
// Вставка идёт одним запросом с ON CONFLICT DO NOTHING по
// (subscription_id, issue_date): повторный запуск за тот же день не создаёт
// дублей независимо от числа конкурентных запусков. Возвращает число
// созданных счетов.
func (s *Storage) GenerateInvoices(ctx context.Context, issueDate, dueDate time.Time) (int, error) {
	const op = "storage.GenerateInvoices"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO invoices (user_uid, plan_id, subscription_id, amount, issue_date, due_date, status)
			  SELECT s.user_uid, s.plan_id, s.id, p.price, $1, $2, $3
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.status = $4 AND s.start_date = $1
			  ON CONFLICT (subscription_id, issue_date) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		issueDate, dueDate, models.InvoicePending, models.SubscriptionActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkOverdueInvoices переводит в overdue все pending-счета, у которых срок
// оплаты строго раньше today. Возвращает число затронутых строк.
func (s *Storage) MarkOverdueInvoices(ctx context.Context, today time.Time) (int, error) {
	const op = "storage.MarkOverdueInvoices"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE invoices
			  SET status = $1, updated_at = now()
			  WHERE status = $2 AND due_date < $3`
	result, err := s.DB.ExecContext(ctx, query,
		models.InvoiceOverdue, models.InvoicePending, today)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPendingReminders возвращает напоминания по pending-счетам, срок оплаты
// которых ещё не прошёл (due_date >= today), вместе с адресами владельцев.
func (s *Storage) ListPendingReminders(ctx context.Context, today time.Time) ([]*models.InvoiceReminder, error) {
	const op = "storage.ListPendingReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT i.id, u.email, u.username, i.amount, i.due_date
			  FROM invoices i
			  JOIN users u ON u.uid = i.user_uid
			  WHERE i.status = $1 AND i.due_date >= $2`
	rows, err := s.DB.QueryContext(ctx, query, models.InvoicePending, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.InvoiceReminder
	for rows.Next() {
		var item models.InvoiceReminder
		if err := rows.Scan(&item.InvoiceID, &item.Email, &item.Username,
			&item.Amount, &item.DueDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListInvoices возвращает счета по фильтру: владелец (пустой — все)
// и необязательный точный статус, с пагинацией.
func (s *Storage) ListInvoices(ctx context.Context, filter models.InvoiceFilter) ([]*models.Invoice, error) {
	const op = "storage.ListInvoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var userUID *string
	if filter.UserUID != "" {
		userUID = &filter.UserUID
	}

	query := `SELECT id, user_uid, plan_id, subscription_id, amount, issue_date, due_date,
			      status, created_at, updated_at
			  FROM invoices
			  WHERE ($1::uuid IS NULL OR user_uid = $1)
			    AND ($2::text IS NULL OR status = $2)
			  ORDER BY id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Invoice
	for rows.Next() {
		var item models.Invoice
		if err := rows.Scan(&item.ID, &item.UserUID, &item.PlanID, &item.SubscriptionID,
			&item.Amount, &item.IssueDate, &item.DueDate, &item.Status,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReadInvoice возвращает счёт по его ID.
func (s *Storage) ReadInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	const op = "storage.ReadInvoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, subscription_id, amount, issue_date, due_date,
			      status, created_at, updated_at
			  FROM invoices WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Invoice
	if err := row.Scan(&result.ID, &result.UserUID, &result.PlanID, &result.SubscriptionID,
		&result.Amount, &result.IssueDate, &result.DueDate, &result.Status,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ReadUnpaidInvoice возвращает счёт по ID, исключая оплаченные:
// для оплаченного или отсутствующего счёта — errs.ErrNotFound.
func (s *Storage) ReadUnpaidInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	const op = "storage.ReadUnpaidInvoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, subscription_id, amount, issue_date, due_date,
			      status, created_at, updated_at
			  FROM invoices WHERE id = $1 AND status <> $2`
	row := s.DB.QueryRowContext(ctx, query, id, models.InvoicePaid)

	var result models.Invoice
	if err := row.Scan(&result.ID, &result.UserUID, &result.PlanID, &result.SubscriptionID,
		&result.Amount, &result.IssueDate, &result.DueDate, &result.Status,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// MarkInvoicePaid условно переводит счёт в paid; уже оплаченный счёт не
// изменяется. Возвращает число затронутых строк.
func (s *Storage) MarkInvoicePaid(ctx context.Context, id int) (int, error) {
	const op = "storage.MarkInvoicePaid"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE invoices
			  SET status = $1, updated_at = now()
			  WHERE id = $2 AND status <> $1`
	result, err := s.DB.ExecContext(ctx, query, models.InvoicePaid, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
