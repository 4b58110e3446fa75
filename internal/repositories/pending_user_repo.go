package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkessaci/digimart/internal/database"
	"github.com/mkessaci/digimart/internal/models"
)

const pendingUserColumns = "email, name, password_hash, role, store_name, token, expires_at, created_at"

// PendingUserRepository handles the not-yet-activated registrations awaiting
// email confirmation.
type PendingUserRepository struct {
	pool *pgxpool.Pool
}

func NewPendingUserRepository(db *database.DB) *PendingUserRepository {
	return &PendingUserRepository{pool: db.Pool}
}

func scanPendingUserRow(row rowScanner) (*models.PendingUser, error) {
	var p models.PendingUser

	err := row.Scan(
		&p.Email, &p.Name, &p.PasswordHash, &p.Role,
		&p.StoreName, &p.Token, &p.ExpiresAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &p, nil
}

// Create inserts a pending registration row.
func (r *PendingUserRepository) Create(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error) {
	query := `
		INSERT INTO pending_users (email, name, password_hash, role, store_name, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + pendingUserColumns

	created, err := scanPendingUserRow(r.pool.QueryRow(ctx, query,
		p.Email, p.Name, p.PasswordHash, p.Role, p.StoreName, p.Token, p.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create pending user: %w", err)
	}

	return created, nil
}

func (r *PendingUserRepository) GetByToken(ctx context.Context, token string) (*models.PendingUser, error) {
	query := `SELECT ` + pendingUserColumns + ` FROM pending_users WHERE token = $1`
	return scanPendingUserRow(r.pool.QueryRow(ctx, query, token))
}

func (r *PendingUserRepository) GetByEmail(ctx context.Context, email string) (*models.PendingUser, error) {
	query := `SELECT ` + pendingUserColumns + ` FROM pending_users WHERE email = $1`
	return scanPendingUserRow(r.pool.QueryRow(ctx, query, email))
}

// DeleteByEmail removes any pending registration for the email. Deleting a
// missing row is not an error; this backs the supersede semantics of issue.
func (r *PendingUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM pending_users WHERE email = $1`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to delete pending user by email: %w", err)
	}

	return nil
}

func (r *PendingUserRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM pending_users WHERE token = $1`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete pending user by token: %w", err)
	}

	return nil
}

// DeleteByTokenTx is DeleteByToken inside an existing transaction, used by
// the promotion flow so the pending row disappears in the same commit that
// creates the user.
func (r *PendingUserRepository) DeleteByTokenTx(ctx context.Context, tx pgx.Tx, token string) error {
	query := `DELETE FROM pending_users WHERE token = $1`

	if _, err := tx.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete pending user by token: %w", err)
	}

	return nil
}

// DeleteExpired removes pending registrations whose verification window has
// closed. This is an optimization only; expiry is always re-checked at
// consumption time.
func (r *PendingUserRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM pending_users WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pending users: %w", err)
	}

	return result.RowsAffected(), nil
}
