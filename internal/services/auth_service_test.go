package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalauth "github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
	pkgauth "github.com/mkessaci/digimart/pkg/auth"
)

type authFixture struct {
	svc      *AuthService
	users    *memUserDirectory
	sessions *stubSessionIssuer
	oauth    *stubOAuthProvider
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUserDirectory()
	sessions := &stubSessionIssuer{}
	oauth := &stubOAuthProvider{}
	svc := NewAuthService(users, sessions, oauth, testLogger())

	hash, err := pkgauth.HashPassword("correct-horse")
	require.NoError(t, err)
	now := time.Now()
	_, err = users.Create(context.Background(), &models.User{
		Email:         "casey@example.com",
		Name:          "Casey",
		Role:          models.RoleUser,
		PasswordHash:  &hash,
		EmailVerified: &now,
	})
	require.NoError(t, err)

	return &authFixture{svc: svc, users: users, sessions: sessions, oauth: oauth}
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), "casey@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	assert.Equal(t, "casey@example.com", result.User.Email)
	assert.Equal(t, models.RoleUser, result.User.Role)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), "  Casey@Example.COM ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "casey@example.com", result.User.Email)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "correct-horse"},
		{name: "empty password", email: "casey@example.com", password: ""},
		{name: "unknown email", email: "nobody@example.com", password: "correct-horse"},
		{name: "wrong password", email: "casey@example.com", password: "wrong-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.svc.Login(context.Background(), tt.email, tt.password)
			// Every failure mode collapses to the same error.
			assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		})
	}
}

func TestLogin_OAuthOnlyAccountRejected(t *testing.T) {
	f := newAuthFixture(t)
	now := time.Now()
	_, err := f.users.Create(context.Background(), &models.User{
		Email:         "oauth-only@example.com",
		Name:          "Sam",
		Role:          models.RoleUser,
		EmailVerified: &now,
	})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "oauth-only@example.com", "anything-at-all")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestOAuthBegin_RejectsUnknownProvider(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.OAuthBegin("facebook", "state-1")
	assert.ErrorIs(t, err, models.ErrInvalidProvider)

	url, err := f.svc.OAuthBegin(internalauth.ProviderGoogle, "state-1")
	require.NoError(t, err)
	assert.Contains(t, url, "state-1")
}

func TestOAuthCallback_ExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.oauth.identity = &internalauth.OAuthIdentity{
		Email: "Casey@Example.com",
		Name:  "Casey From Google",
	}

	result, err := f.svc.OAuthCallback(context.Background(), internalauth.ProviderGoogle, "code-123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)

	// The existing account is reused, not shadowed by the provider profile.
	assert.Equal(t, "casey@example.com", result.User.Email)
	assert.Equal(t, "Casey", result.User.Name)
}

func TestOAuthCallback_FirstSignInCreatesAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.oauth.identity = &internalauth.OAuthIdentity{
		Email: "newcomer@example.com",
		Name:  "New Comer",
		Image: "https://avatars.example.com/nc.png",
	}

	result, err := f.svc.OAuthCallback(context.Background(), internalauth.ProviderGitHub, "code-456")
	require.NoError(t, err)

	user := result.User
	assert.Equal(t, "newcomer@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Nil(t, user.PasswordHash, "oauth accounts carry no password hash")
	require.NotNil(t, user.EmailVerified, "provider-verified email counts as verified")
	require.NotNil(t, user.Image)
	assert.Equal(t, "https://avatars.example.com/nc.png", *user.Image)

	stored, err := f.users.GetByEmail(context.Background(), "newcomer@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestOAuthCallback_ExchangeFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.oauth.err = errors.New("bad code")

	_, err := f.svc.OAuthCallback(context.Background(), internalauth.ProviderGoogle, "expired-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestOAuthCallback_UnknownProvider(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.OAuthCallback(context.Background(), "facebook", "code-123")
	assert.ErrorIs(t, err, models.ErrInvalidProvider)
}
