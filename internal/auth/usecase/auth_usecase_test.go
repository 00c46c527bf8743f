package usecase

import (
	"context"
	"testing"
	"time"

	authdomain "taskflow-backend/internal/auth/domain"
	authdto "taskflow-backend/internal/auth/dto"
	"taskflow-backend/internal/auth/repository"
	"taskflow-backend/pkg/config"
	"taskflow-backend/pkg/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsecase(t *testing.T) AuthUsecase {
	t.Helper()
	db := database.NewTestConnection(t, &authdomain.User{}, &authdomain.RefreshToken{})
	return NewAuthUsecase(repository.NewUserRepository(db), &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}, nil)
}

func register(t *testing.T, uc AuthUsecase) *authdto.TokenResponse {
	t.Helper()
	resp, err := uc.Register(context.Background(), &authdto.RegisterRequest{
		Email: "Ada@Example.com", Password: "secret1", Name: "Ada",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	uc := newUsecase(t)
	ctx := context.Background()

	resp := register(t, uc)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	_, err := uc.Register(ctx, &authdto.RegisterRequest{Email: "ada@example.com", Password: "other12", Name: "Imposter"})
	assert.ErrorIs(t, err, authdomain.ErrEmailTaken)

	login, err := uc.Login(ctx, &authdto.LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = uc.Login(ctx, &authdto.LoginRequest{Email: "ada@example.com", Password: "wrong!!"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, &authdto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	uc := newUsecase(t)
	ctx := context.Background()
	resp := register(t, uc)

	user, err := uc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = uc.ValidateToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken, "refresh tokens are not access tokens")

	_, err = uc.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID, "typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = uc.ValidateToken(ctx, forged)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID, "typ": "access", "exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = uc.ValidateToken(ctx, expired)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	uc := newUsecase(t)
	ctx := context.Background()
	resp := register(t, uc)

	refreshed, err := uc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = uc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken, "old refresh token is single use")

	require.NoError(t, uc.Logout(ctx, refreshed.RefreshToken))
	_, err = uc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	_, err = uc.RefreshToken(ctx, resp.Token)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken, "access tokens cannot refresh")
}

func TestGetProfile(t *testing.T) {
	uc := newUsecase(t)
	resp := register(t, uc)

	user, err := uc.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, err = uc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}
