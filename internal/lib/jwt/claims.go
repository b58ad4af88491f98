// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Сервис выдаёт пару токенов: короткоживущий access и долгоживущий refresh.
// Тип токена фиксируется в claims, refresh нельзя использовать как access.
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Типы выдаваемых токенов.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"`   // Имя пользователя
	Role                 string `json:"role"`       // Роль пользователя
	UserUID              string `json:"user_uid"`   // Уникальный идентификатор пользователя
	TokenType            string `json:"token_type"` // access или refresh
	jwt.RegisteredClaims        // Стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}
