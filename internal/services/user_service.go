package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mkessaci/digimart/internal/models"
	"github.com/mkessaci/digimart/internal/repositories"
)

// UserRepository defines the interface for user directory operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params repositories.ListParams) ([]*models.User, error)
	Count(ctx context.Context, params repositories.ListParams) (int, error)
}

// UserService handles the admin user directory surface.
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Pagination describes a page of results.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// UsersPage is a page of users plus pagination metadata.
type UsersPage struct {
	Users     []*models.User `json:"users"`
	Paginated Pagination     `json:"paginated"`
}

// UsersListParams controls listing: page/limit plus optional search, role
// filter and sort.
type UsersListParams struct {
	Page      int
	Limit     int
	Search    string
	Role      string
	SortBy    string
	SortOrder string
}

// ListUsers returns a page of users for the admin dashboard.
func (s *UserService) ListUsers(ctx context.Context, params UsersListParams) (*UsersPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 10
	}
	if params.Role != "" && !models.ValidRole(params.Role) {
		return nil, models.NewValidationError("role", "must be one of: USER VENDOR ADMIN")
	}

	repoParams := repositories.ListParams{
		Limit:     params.Limit,
		Offset:    (params.Page - 1) * params.Limit,
		Search:    params.Search,
		Role:      params.Role,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}

	total, err := s.repo.Count(ctx, repoParams)
	if err != nil {
		s.logger.Error("failed to count users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	users, err := s.repo.List(ctx, repoParams)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	totalPages := total / params.Limit
	if total%params.Limit != 0 {
		totalPages++
	}

	return &UsersPage{
		Users: users,
		Paginated: Pagination{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: totalPages,
		},
	}, nil
}

// GetUserByID returns a single user.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser hard-deletes a user account. The vendor profile, if any, goes
// with it via the foreign key cascade.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}
