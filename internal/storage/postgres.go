// Package storage реализует хранилище данных на основе PostgreSQL
// для пользователей, планов, подписок и счетов.
//
// Инварианты "не больше одной активной подписки на пользователя" и
// "не больше одного счёта на пару (подписка, дата выставления)" закреплены
// ограничениями схемы, а не проверками перед вставкой: конкурентные записи
// упираются в индекс, нарушение транслируется в бизнес-ошибку.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его ping-ом.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'invoices'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table invoices missing or query error: %w", err)
	}
	return nil
}

// isUniqueViolation сообщает, что ошибка вызвана нарушением уникального
// индекса с данным именем.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
}

// isForeignKeyViolation сообщает, что ошибка вызвана нарушением внешнего ключа.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.ForeignKeyViolation
}
