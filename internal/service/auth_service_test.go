package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	s.lastLogin = &ts
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *stubUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{user: &models.User{
		ID: "u1", Username: "officer1", PasswordHash: string(hash),
		Role: "OFFICER", PrisonCode: "MDI", Active: active,
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "activities-api",
	})
	return svc, repo
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "officer1", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.NotNil(t, repo.lastLogin)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "officer1", claims.Username)
	assert.Equal(t, "MDI", claims.PrisonCode)
	assert.Equal(t, "u1", claims.Subject)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "officer1", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "officer1", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
