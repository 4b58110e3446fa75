package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	internalauth "github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
	pkgauth "github.com/mkessaci/digimart/pkg/auth"
)

// SessionIssuer signs session tokens from an authoritative User record.
type SessionIssuer interface {
	Issue(user *models.User) (string, error)
}

// OAuthProvider begins a provider flow and resolves its callback.
type OAuthProvider interface {
	AuthCodeURL(provider, state string) (string, error)
	Exchange(ctx context.Context, provider, code string) (*internalauth.OAuthIdentity, error)
}

// AuthService handles sign-in across the three methods: credentials and the
// two OAuth providers. The session payload is always rebuilt from the User
// row at issuance.
type AuthService struct {
	userRepo UserRepository
	sessions SessionIssuer
	oauth    OAuthProvider
	logger   *slog.Logger
}

func NewAuthService(userRepo UserRepository, sessions SessionIssuer, oauth OAuthProvider, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		oauth:    oauth,
		logger:   logger,
	}
}

// LoginResult carries the signed session token and the identity payload it
// embeds.
type LoginResult struct {
	SessionToken string
	User         *models.User
}

// Login authenticates with email and password. All credential failures
// collapse into ErrInvalidCredentials so the response never confirms which
// part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// OAuth-only accounts have no password hash and cannot sign in with
	// credentials.
	if user.PasswordHash == nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	if err := pkgauth.ComparePassword(*user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &LoginResult{SessionToken: token, User: user}, nil
}

// OAuthBegin validates the provider name against the closed enum and returns
// the provider authorize URL. Unknown providers are rejected before any
// delegation.
func (s *AuthService) OAuthBegin(provider, state string) (string, error) {
	if !internalauth.ValidProvider(provider) {
		return "", models.ErrInvalidProvider
	}
	return s.oauth.AuthCodeURL(provider, state)
}

// OAuthCallback completes a provider flow: exchanges the code, resolves the
// identity, finds or creates the account, and issues a session.
func (s *AuthService) OAuthCallback(ctx context.Context, provider, code string) (*LoginResult, error) {
	if !internalauth.ValidProvider(provider) {
		return nil, models.ErrInvalidProvider
	}

	identity, err := s.oauth.Exchange(ctx, provider, code)
	if err != nil {
		s.logger.Error("oauth exchange failed", slog.String("provider", provider), slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.createOAuthUser(ctx, email, identity)
	}
	if err != nil {
		s.logger.Error("failed to resolve oauth account", slog.String("provider", provider), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("oauth login", slog.String("provider", provider), slog.String("user_id", user.ID))

	return &LoginResult{SessionToken: token, User: user}, nil
}

// createOAuthUser creates a first-sign-in account. The provider already
// verified the email, so emailVerified is set immediately and no password
// hash exists.
func (s *AuthService) createOAuthUser(ctx context.Context, email string, identity *internalauth.OAuthIdentity) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		Email:         email,
		Name:          identity.Name,
		Role:          models.RoleUser,
		EmailVerified: &now,
	}
	if identity.Image != "" {
		user.Image = &identity.Image
	}

	created, err := s.userRepo.Create(ctx, user)
	if errors.Is(err, models.ErrConflict) {
		// Lost a creation race; the account exists now, use it.
		return s.userRepo.GetByEmail(ctx, email)
	}
	return created, err
}
