// Package models содержит доменные структуры биллинга (пользователи, планы,
// подписки, счета), а также вспомогательные типы для приёма данных из
// JSON-запросов до их валидации.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"uid"`      // Уникальный идентификатор пользователя
	Email        string    `json:"email"`    // Электронная почта
	Username     string    `json:"username"` // Имя пользователя (уникальное)
	PasswordHash string    `json:"-"`        // Хэш пароля, наружу не отдаётся
	Role         string    `json:"role"`     // Роль пользователя, admin или user
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
