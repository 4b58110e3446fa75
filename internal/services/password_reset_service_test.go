package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessaci/digimart/internal/models"
	pkgauth "github.com/mkessaci/digimart/pkg/auth"
)

type resetFixture struct {
	svc    *PasswordResetService
	users  *memUserDirectory
	tokens *memResetStore
	email  *mockEmailService
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	users := newMemUserDirectory()
	tokens := newMemResetStore()
	email := &mockEmailService{}
	svc := NewPasswordResetService(users, tokens, email, testLogger(), time.Hour)

	hash, err := pkgauth.HashPassword("original-pass")
	require.NoError(t, err)
	_, err = users.Create(context.Background(), &models.User{
		Email:        "casey@example.com",
		Name:         "Casey",
		Role:         models.RoleUser,
		PasswordHash: &hash,
	})
	require.NoError(t, err)

	return &resetFixture{svc: svc, users: users, tokens: tokens, email: email}
}

func TestRequestReset_IssuesToken(t *testing.T) {
	f := newResetFixture(t)

	msg, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Reset email sent!", msg)
	assert.Equal(t, []string{"casey@example.com"}, f.email.resetEmails)

	token, err := f.tokens.GetByToken(context.Background(), f.email.lastToken)
	require.NoError(t, err)
	assert.Equal(t, "casey@example.com", token.Identifier)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	_, err := f.svc.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrEmailNotFound)
	assert.Equal(t, 0, f.tokens.count())
	assert.Empty(t, f.email.resetEmails)
}

func TestRequestReset_InvalidEmail(t *testing.T) {
	f := newResetFixture(t)

	_, err := f.svc.RequestReset(context.Background(), "not-an-email")
	_, ok := models.AsValidationError(err)
	assert.True(t, ok, "expected a validation error, got %v", err)
}

func TestRequestReset_SupersedesPreviousToken(t *testing.T) {
	f := newResetFixture(t)

	_, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)
	firstToken := f.email.lastToken

	_, err = f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, f.tokens.count(), "one live token per email")
	_, err = f.tokens.GetByToken(context.Background(), firstToken)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResetPassword_UpdatesHashAndConsumesToken(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)
	token := f.email.lastToken

	msg, err := f.svc.ResetPassword(context.Background(), token, "brand-new-pass")
	require.NoError(t, err)
	assert.Equal(t, "Password updated!", msg)

	user, err := f.users.GetByEmail(context.Background(), "casey@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(*user.PasswordHash, "brand-new-pass"))
	assert.Error(t, pkgauth.ComparePassword(*user.PasswordHash, "original-pass"))

	// Single use: the same token must not work twice.
	assert.Equal(t, 0, f.tokens.count())
	_, err = f.svc.ResetPassword(context.Background(), token, "another-pass")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestResetPassword_MissingToken(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.ResetPassword(context.Background(), "", "brand-new-pass")
	assert.ErrorIs(t, err, models.ErrMissingToken)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.ResetPassword(context.Background(), "no-such-token", "brand-new-pass")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(context.Background(), f.email.lastToken, "12345")
	verr, ok := models.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, verr.Fields, "password")

	// The token survives a rejected password so the user can retry.
	assert.Equal(t, 1, f.tokens.count())
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)
	token := f.email.lastToken
	f.tokens.expireToken(token)

	_, err = f.svc.ResetPassword(context.Background(), token, "brand-new-pass")
	assert.ErrorIs(t, err, models.ErrTokenExpired)

	// The password is untouched.
	user, err := f.users.GetByEmail(context.Background(), "casey@example.com")
	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(*user.PasswordHash, "original-pass"))
}

func TestResetPassword_AccountDeletedAfterIssue(t *testing.T) {
	f := newResetFixture(t)
	_, err := f.svc.RequestReset(context.Background(), "casey@example.com")
	require.NoError(t, err)

	user, err := f.users.GetByEmail(context.Background(), "casey@example.com")
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(context.Background(), user.ID))

	_, err = f.svc.ResetPassword(context.Background(), f.email.lastToken, "brand-new-pass")
	assert.ErrorIs(t, err, models.ErrEmailNotFound)
}
