package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkessaci/digimart/internal/models"
	pkgauth "github.com/mkessaci/digimart/pkg/auth"
)

// PendingUserStore defines the interface for pending registration storage
type PendingUserStore interface {
	Create(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error)
	GetByToken(ctx context.Context, token string) (*models.PendingUser, error)
	GetByEmail(ctx context.Context, email string) (*models.PendingUser, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteByTokenTx(ctx context.Context, tx pgx.Tx, token string) error
}

// VendorStore defines the interface for vendor profile creation
type VendorStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, v *models.Vendor) (*models.Vendor, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// RegistrationService orchestrates credential registration: pending-user
// creation gated by email verification, and the verification-triggered
// promotion to a real account.
type RegistrationService struct {
	userRepo    UserRepository
	pendingRepo PendingUserStore
	vendorRepo  VendorStore
	tx          TxRunner
	email       EmailService
	logger      *slog.Logger
	tokenTTL    time.Duration
}

func NewRegistrationService(
	userRepo UserRepository,
	pendingRepo PendingUserStore,
	vendorRepo VendorStore,
	tx TxRunner,
	email EmailService,
	logger *slog.Logger,
	tokenTTL time.Duration,
) *RegistrationService {
	return &RegistrationService{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		vendorRepo:  vendorRepo,
		tx:          tx,
		email:       email,
		logger:      logger,
		tokenTTL:    tokenTTL,
	}
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=USER VENDOR ADMIN"`
	StoreName       string `json:"storeName" validate:"required_if=Role VENDOR"`
}

// Register validates the input, stores a pending registration and sends the
// verification email. No account exists until the email is verified.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if err := validate.Struct(input); err != nil {
		return "", toValidationError(err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	// Courtesy duplicate check; the database unique constraint is the real
	// guard against concurrent registrations.
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration rejected: account exists")
		return "", models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	pending := &models.PendingUser{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		Token:        uuid.New().String(),
		ExpiresAt:    time.Now().Add(s.tokenTTL),
	}
	if input.Role == models.RoleVendor {
		storeName := strings.TrimSpace(input.StoreName)
		pending.StoreName = &storeName
	}

	// Supersede any earlier attempt for the same email: the old token stops
	// validating and the expiry clock restarts.
	if err := s.pendingRepo.DeleteByEmail(ctx, email); err != nil {
		s.logger.Error("failed to supersede pending registration", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if _, err := s.pendingRepo.Create(ctx, pending); err != nil {
		s.logger.Error("failed to create pending registration", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	// A failed send leaves the pending row in place; re-registering issues a
	// fresh token and effectively resends.
	if err := s.email.SendVerificationEmail(ctx, email, pending.Token); err != nil {
		s.logger.Error("failed to send verification email", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("pending registration created", slog.String("role", input.Role))

	return "Verification email sent! Please check your inbox to verify your email address.", nil
}

// VerifyEmail consumes a verification token, promoting the pending
// registration to a real account. User creation and pending-row deletion
// commit in one transaction so a failure leaves the token intact for retry.
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrMissingToken
	}

	pending, err := s.pendingRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// "never existed" and "already consumed" are deliberately
			// indistinguishable to the caller.
			return "", models.ErrInvalidToken
		}
		s.logger.Error("failed to look up verification token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if pending.IsExpired() {
		if err := s.pendingRepo.DeleteByToken(ctx, token); err != nil {
			s.logger.Error("failed to delete expired pending registration", slog.Any("error", err))
		}
		return "", models.ErrTokenExpired
	}

	// The email may have been claimed in the interim, e.g. via OAuth.
	_, err = s.userRepo.GetByEmail(ctx, pending.Email)
	if err == nil {
		if err := s.pendingRepo.DeleteByToken(ctx, token); err != nil {
			s.logger.Error("failed to delete stale pending registration", slog.Any("error", err))
		}
		return "", models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	now := time.Now()
	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		user := &models.User{
			Email:         pending.Email,
			PasswordHash:  &pending.PasswordHash, // already hashed, never re-hash
			Name:          pending.Name,
			Role:          pending.Role,
			EmailVerified: &now,
		}

		created, err := s.userRepo.CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}

		if pending.Role == models.RoleVendor && pending.StoreName != nil {
			vendor := &models.Vendor{
				UserID:    created.ID,
				StoreName: *pending.StoreName,
			}
			if _, err := s.vendorRepo.CreateTx(ctx, tx, vendor); err != nil {
				return err
			}
		}

		// Deletion comes last: if anything above fails, the rollback leaves
		// the pending row and its token valid for retry.
		return s.pendingRepo.DeleteByTokenTx(ctx, tx, token)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a creation race after the pre-check; same outcome.
			return "", models.ErrConflict
		}
		s.logger.Error("failed to promote pending registration", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("email verified, account created", slog.String("role", pending.Role))

	return "Email verified successfully! You can now log in.", nil
}
