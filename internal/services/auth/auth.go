// Package auth содержит логику регистрации, входа и проверки JWT.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/lib/jwt"
	"github.com/magabrotheeeer/billing-service/internal/lib/password"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его uid.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или errs.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user".
func (s *AuthService) Register(ctx context.Context, req models.DummyUser) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и возвращает пару access + refresh токенов.
//
// Отсутствующий пользователь и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, refresh string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", "", errs.ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", errs.ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.jwtMaker.GenerateRefreshToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, refresh, nil
}

// Refresh выпускает новый access-токен по действующему refresh-токену.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return "", fmt.Errorf("%s: token is not a refresh token", op)
	}
	return s.jwtMaker.GenerateToken(claims.Username, claims.Role, claims.UserUID)
}

// ValidateToken проверяет access-токен и возвращает данные действующего пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*authz.Actor, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, fmt.Errorf("%s: token is not an access token", op)
	}
	return &authz.Actor{
		UserUID:  claims.UserUID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
