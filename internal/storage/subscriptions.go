package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// CreateSubscription вставляет новую подписку со статусом active и возвращает её ID.
//
// Частичный уникальный индекс uq_subscriptions_one_active гарантирует не больше
// одной активной подписки на пользователя даже при конкурентных вставках.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_id, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err, "uq_subscriptions_one_active") {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrActiveSubscriptionExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает подписку по её ID.
func (s *Storage) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, start_date, end_date, status, created_at, updated_at
			  FROM subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Subscription
	if err := row.Scan(&result.ID, &result.UserUID, &result.PlanID, &result.StartDate,
		&result.EndDate, &result.Status, &result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListSubscriptions возвращает подписки по фильтру: владелец (пустой — все)
// и необязательный точный статус, с пагинацией.
func (s *Storage) ListSubscriptions(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var userUID *string
	if filter.UserUID != "" {
		userUID = &filter.UserUID
	}

	query := `SELECT id, user_uid, plan_id, start_date, end_date, status, created_at, updated_at
			  FROM subscriptions
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

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.UserUID, &item.PlanID, &item.StartDate,
			&item.EndDate, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CancelSubscription переводит подписку в cancelled условной записью:
// уже отменённая строка не изменяется, возвращается число затронутых строк.
func (s *Storage) CancelSubscription(ctx context.Context, id int) (int, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, updated_at = now()
			  WHERE id = $2 AND status <> $1`
	result, err := s.DB.ExecContext(ctx, query, models.SubscriptionCancelled, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
