package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/jwt"
	"github.com/magabrotheeeer/billing-service/internal/lib/password"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", 15*time.Minute, time.Hour)
}

func TestAuth_Register(t *testing.T) {
	users := new(UsersMock)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "alice" &&
			u.Role == models.RoleUser &&
			u.UID != "" &&
			password.CompareHash(u.PasswordHash, "secret123") == nil
	})).Return("some-uid", nil).Once()

	service := NewAuthService(users, newMaker())

	uid, err := service.Register(context.Background(), models.DummyUser{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "some-uid", uid)
	users.AssertExpectations(t)
}

func TestAuth_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	assert.NoError(t, err)
	user := &models.User{
		UID:          "uid-1",
		Username:     "alice",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	t.Run("valid credentials", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
		service := NewAuthService(users, newMaker())

		token, refresh, err := service.Login(context.Background(), "alice", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
		service := NewAuthService(users, newMaker())

		_, _, err := service.Login(context.Background(), "alice", "wrong")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, errs.ErrNotFound).Once()
		service := NewAuthService(users, newMaker())

		_, _, err := service.Login(context.Background(), "ghost", "secret123")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}

func TestAuth_Refresh(t *testing.T) {
	maker := newMaker()
	service := NewAuthService(new(UsersMock), maker)

	t.Run("refresh token issues new access token", func(t *testing.T) {
		refresh, err := maker.GenerateRefreshToken("alice", models.RoleUser, "uid-1")
		assert.NoError(t, err)

		token, err := service.Refresh(context.Background(), refresh)

		assert.NoError(t, err)
		claims, err := maker.ParseToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		access, err := maker.GenerateToken("alice", models.RoleUser, "uid-1")
		assert.NoError(t, err)

		_, err = service.Refresh(context.Background(), access)

		assert.Error(t, err)
	})
}

func TestAuth_ValidateToken(t *testing.T) {
	maker := newMaker()
	service := NewAuthService(new(UsersMock), maker)

	t.Run("valid access token", func(t *testing.T) {
		token, err := maker.GenerateToken("alice", models.RoleAdmin, "uid-1")
		assert.NoError(t, err)

		actor, err := service.ValidateToken(context.Background(), token)

		assert.NoError(t, err)
		assert.Equal(t, "alice", actor.Username)
		assert.Equal(t, models.RoleAdmin, actor.Role)
		assert.Equal(t, "uid-1", actor.UserUID)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		refresh, err := maker.GenerateRefreshToken("alice", models.RoleUser, "uid-1")
		assert.NoError(t, err)

		_, err = service.ValidateToken(context.Background(), refresh)

		assert.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := service.ValidateToken(context.Background(), "not-a-token")

		assert.Error(t, err)
	})
}
