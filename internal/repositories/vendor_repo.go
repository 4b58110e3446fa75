package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkessaci/digimart/internal/database"
	"github.com/mkessaci/digimart/internal/models"
)

// VendorRepository handles the optional vendor profile attached to VENDOR
// accounts at promotion time.
type VendorRepository struct {
	pool *pgxpool.Pool
}

func NewVendorRepository(db *database.DB) *VendorRepository {
	return &VendorRepository{pool: db.Pool}
}

func scanVendorRow(row rowScanner) (*models.Vendor, error) {
	var v models.Vendor

	if err := row.Scan(&v.ID, &v.UserID, &v.StoreName, &v.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &v, nil
}

func (r *VendorRepository) GetByUserID(ctx context.Context, userID string) (*models.Vendor, error) {
	query := `SELECT id, user_id, store_name, created_at FROM vendors WHERE user_id = $1`
	return scanVendorRow(r.pool.QueryRow(ctx, query, userID))
}

// CreateTx inserts a vendor profile inside the promotion transaction.
func (r *VendorRepository) CreateTx(ctx context.Context, tx pgx.Tx, v *models.Vendor) (*models.Vendor, error) {
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now()

	query := `
		INSERT INTO vendors (id, user_id, store_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, store_name, created_at
	`

	return scanVendorRow(tx.QueryRow(ctx, query, v.ID, v.UserID, v.StoreName, v.CreatedAt))
}
