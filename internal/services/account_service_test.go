package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memoria/internal/models/request_models"
	"memoria/pkg/memcache"
	"memoria/pkg/utils"
)

func newAccountService(h *harness) (AccountServiceInterface, *utils.JWTManager) {
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	return NewAccountService(h.accounts, jwt, time.Hour, memcache.NewResetTokens(), h.mailer, zap.NewNop()), jwt
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc, jwt := newAccountService(h)

	created, err := svc.CreateAccount(ctx, request_models.SignUpRequest{
		DisplayName: "Jane Doe", Email: "Jane@Example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", created.Role)

	_, err = svc.CreateAccount(ctx, request_models.SignUpRequest{
		DisplayName: "Jane Again", Email: "jane@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)

	login, err := svc.Login(ctx, request_models.LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), login.ExpiresIn)

	claims, err := jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)

	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc, _ := newAccountService(h)
	jane := h.account(t, "jane@example.com")
	h.account(t, "taken@example.com")

	_, err := svc.UpdateProfile(ctx, jane.ID, request_models.UpdateProfileRequest{Email: "taken@example.com"})
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)

	updated, err := svc.UpdateProfile(ctx, jane.ID, request_models.UpdateProfileRequest{
		DisplayName: "Jane D.", FirstName: "Jane", Email: "jane.doe@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", updated.Name)
	assert.Equal(t, "jane.doe@example.com", updated.Email)

	profile, err := svc.GetProfile(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.FirstName)
}

func TestForgotAndResetPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc, _ := newAccountService(h)

	_, err := svc.CreateAccount(ctx, request_models.SignUpRequest{
		DisplayName: "Jane Doe", Email: "jane@example.com", Password: "old-secret",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, h.mailer.resets)

	require.NoError(t, svc.ForgotPassword(ctx, "jane@example.com"))
	token := h.mailer.resets["jane@example.com"]
	require.Len(t, token, 64)

	err = svc.ResetPassword(ctx, request_models.ForgotPasswordRequest{
		Email: "someone@example.com", Token: token, NewPassword: "new-secret",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)

	// The failed attempt consumed the token.
	err = svc.ResetPassword(ctx, request_models.ForgotPasswordRequest{
		Email: "jane@example.com", Token: token, NewPassword: "new-secret",
	})
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.ForgotPassword(ctx, "jane@example.com"))
	token = h.mailer.resets["jane@example.com"]
	require.NoError(t, svc.ResetPassword(ctx, request_models.ForgotPasswordRequest{
		Email: "jane@example.com", Token: token, NewPassword: "new-secret",
	}))

	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "jane@example.com", Password: "new-secret"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "jane@example.com", Password: "old-secret"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}
