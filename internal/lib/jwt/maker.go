package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт access-токен с username, role и uid пользователя.
	GenerateToken(username, role, userUID string) (string, error)
	// GenerateRefreshToken создаёт refresh-токен с увеличенным сроком жизни.
	GenerateRefreshToken(username, role, userUID string) (string, error)
	// ParseToken проверяет подпись и возвращает *CustomClaims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов.
type MakerImpl struct {
	secretKey  string
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(secretKey string, tokenTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateToken создает access-токен, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(username, role, userUID string) (string, error) {
	return j.generate(username, role, userUID, TokenTypeAccess, j.tokenTTL)
}

// GenerateRefreshToken создает refresh-токен с TTL из конфига.
func (j *MakerImpl) GenerateRefreshToken(username, role, userUID string) (string, error) {
	return j.generate(username, role, userUID, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(username, role, userUID, tokenType string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Username:  username,
		Role:      role,
		UserUID:   userUID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
