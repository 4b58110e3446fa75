package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkessaci/digimart/internal/models"
	pkgauth "github.com/mkessaci/digimart/pkg/auth"
)

// ResetTokenStore defines the interface for password reset token storage
type ResetTokenStore interface {
	Create(ctx context.Context, t *models.PasswordResetToken) (*models.PasswordResetToken, error)
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	GetByEmail(ctx context.Context, email string) (*models.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	Delete(ctx context.Context, token string) error
}

// PasswordResetService orchestrates reset-token issuance and consumption.
type PasswordResetService struct {
	userRepo  UserRepository
	tokenRepo ResetTokenStore
	email     EmailService
	logger    *slog.Logger
	tokenTTL  time.Duration
}

func NewPasswordResetService(
	userRepo UserRepository,
	tokenRepo ResetTokenStore,
	email EmailService,
	logger *slog.Logger,
	tokenTTL time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		email:     email,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

type resetRequestInput struct {
	Email string `validate:"required,email"`
}

// RequestReset issues a reset token for a known email and sends the reset
// link. The response states plainly when the email is unknown; see the
// anti-enumeration note in DESIGN.md.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validate.Struct(resetRequestInput{Email: email}); err != nil {
		return "", toValidationError(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrEmailNotFound
		}
		s.logger.Error("failed to look up user for reset", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	token := &models.PasswordResetToken{
		Token:      uuid.New().String(),
		Identifier: user.Email,
		ExpiresAt:  time.Now().Add(s.tokenTTL),
	}

	// Delete-then-insert keeps at most one live token per email. A
	// concurrent double-issue may briefly leave two rows; harmless, since
	// only a matching non-expired token is ever trusted.
	if err := s.tokenRepo.DeleteByEmail(ctx, user.Email); err != nil {
		s.logger.Error("failed to delete prior reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if _, err := s.tokenRepo.Create(ctx, token); err != nil {
		s.logger.Error("failed to create reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := s.email.SendPasswordResetEmail(ctx, user.Email, token.Token); err != nil {
		s.logger.Error("failed to send reset email", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("password reset token issued")

	return "Reset email sent!", nil
}

// ResetPassword consumes a reset token and updates the password. The token
// row is deleted only after the password mutation succeeds, so a failed
// update leaves the token valid for retry.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if token == "" {
		return "", models.ErrMissingToken
	}

	if len(newPassword) < 6 {
		return "", models.NewValidationError("password", "Password must be at least 6 characters")
	}

	resetToken, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrInvalidToken
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if resetToken.IsExpired() {
		// Left in place: it can never validate again, and the next issuance
		// for this email overwrites it.
		return "", models.ErrTokenExpired
	}

	user, err := s.userRepo.GetByEmail(ctx, resetToken.Identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Defensive; unreachable while tokens are only issued for
			// existing users.
			return "", models.ErrEmailNotFound
		}
		s.logger.Error("failed to resolve reset token owner", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := s.tokenRepo.Delete(ctx, token); err != nil {
		s.logger.Error("failed to consume reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("password updated", slog.String("user_id", user.ID))

	return "Password updated!", nil
}
