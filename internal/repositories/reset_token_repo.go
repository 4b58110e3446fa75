package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkessaci/digimart/internal/database"
	"github.com/mkessaci/digimart/internal/models"
)

// ResetTokenRepository handles password reset token data access.
type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(db *database.DB) *ResetTokenRepository {
	return &ResetTokenRepository{pool: db.Pool}
}

func scanResetTokenRow(row rowScanner) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken

	if err := row.Scan(&t.Token, &t.Identifier, &t.ExpiresAt); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &t, nil
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) (*models.PasswordResetToken, error) {
	query := `
		INSERT INTO password_reset_tokens (token, identifier, expires_at)
		VALUES ($1, $2, $3)
		RETURNING token, identifier, expires_at
	`

	created, err := scanResetTokenRow(r.pool.QueryRow(ctx, query, t.Token, t.Identifier, t.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return created, nil
}

func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `SELECT token, identifier, expires_at FROM password_reset_tokens WHERE token = $1`
	return scanResetTokenRow(r.pool.QueryRow(ctx, query, token))
}

func (r *ResetTokenRepository) GetByEmail(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	query := `SELECT token, identifier, expires_at FROM password_reset_tokens WHERE identifier = $1 LIMIT 1`
	return scanResetTokenRow(r.pool.QueryRow(ctx, query, email))
}

// DeleteByEmail removes any token issued for the email; backs the
// single-live-token invariant on issuance.
func (r *ResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM password_reset_tokens WHERE identifier = $1`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to delete reset tokens by email: %w", err)
	}

	return nil
}

// Delete consumes a token. Callers invoke this only after the password
// mutation succeeded, so a failed mutation leaves the token valid for retry.
func (r *ResetTokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM password_reset_tokens WHERE token = $1`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	return nil
}

// DeleteExpired removes tokens past their expiry. Lazy optimization; expiry
// is always re-checked at consumption time.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
