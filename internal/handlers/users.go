package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkessaci/digimart/internal/models"
	"github.com/mkessaci/digimart/internal/services"
	pkghttp "github.com/mkessaci/digimart/pkg/http"
)

// UserServiceInterface defines the interface for the admin user directory
type UserServiceInterface interface {
	ListUsers(ctx context.Context, params services.UsersListParams) (*services.UsersPage, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles the admin user directory endpoints
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers returns a page of users with optional search, role filter and
// sort
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := services.UsersListParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		Role:      q.Get("role"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	result, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		if verr, ok := models.AsValidationError(err); ok {
			pkghttp.WriteValidationError(w, verr.Fields)
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	users := make([]UserResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toUserResponse(u))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"users":      users,
		"pagination": result.Paginated,
	})
}

// GetUser returns a single user by id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// DeleteUser hard-deletes a user account
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
