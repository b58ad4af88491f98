package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// CreatePlan вставляет новый план каталога и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (int, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (name, price, description)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Price, plan.Description).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err, "plans_name_key") {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrPlanNameTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPlan возвращает план по его ID.
func (s *Storage) ReadPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.ReadPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, description, created_at, updated_at
			  FROM plans WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Plan
	if err := row.Scan(&result.ID, &result.Name, &result.Price, &result.Description,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListPlans возвращает весь каталог планов.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, description, created_at, updated_at
			  FROM plans
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var item models.Plan
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Description,
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

// UpdatePlan обновляет план по ID и возвращает количество изменённых строк.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.Plan, id int) (int, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans
			  SET name = $1, price = $2, description = $3, updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, plan.Name, plan.Price, plan.Description, id)
	if err != nil {
		if isUniqueViolation(err, "plans_name_key") {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrPlanNameTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePlan удаляет план по ID и возвращает количество удалённых строк.
// План, на который ссылаются подписки, удалить нельзя — внешний ключ
// транслируется в errs.ErrPlanInUse. Счета переживают удаление: plan_id
// в invoices становится NULL (ON DELETE SET NULL).
func (s *Storage) RemovePlan(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM plans WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrPlanInUse)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
