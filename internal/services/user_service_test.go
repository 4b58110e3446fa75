package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessaci/digimart/internal/models"
)

func newUserServiceFixture(t *testing.T, n int) (*UserService, *memUserDirectory) {
	t.Helper()
	users := newMemUserDirectory()
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%5 == 0 {
			role = models.RoleVendor
		}
		_, err := users.Create(context.Background(), &models.User{
			Email: fmt.Sprintf("user%02d@example.com", i),
			Name:  fmt.Sprintf("User %02d", i),
			Role:  role,
		})
		require.NoError(t, err)
	}
	return NewUserService(users, testLogger()), users
}

func TestListUsers_Pagination(t *testing.T) {
	svc, _ := newUserServiceFixture(t, 25)

	page, err := svc.ListUsers(context.Background(), UsersListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Paginated.Total)
	assert.Equal(t, 2, page.Paginated.Page)
	assert.Equal(t, 10, page.Paginated.Limit)
	assert.Equal(t, 3, page.Paginated.TotalPages)
}

func TestListUsers_ClampsBadParams(t *testing.T) {
	svc, _ := newUserServiceFixture(t, 3)

	page, err := svc.ListUsers(context.Background(), UsersListParams{Page: -4, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Paginated.Page)
	assert.Equal(t, 10, page.Paginated.Limit)
}

func TestListUsers_RoleFilter(t *testing.T) {
	svc, _ := newUserServiceFixture(t, 25)

	page, err := svc.ListUsers(context.Background(), UsersListParams{Page: 1, Limit: 50, Role: models.RoleVendor})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Paginated.Total)
	for _, u := range page.Users {
		assert.Equal(t, models.RoleVendor, u.Role)
	}
}

func TestListUsers_InvalidRole(t *testing.T) {
	svc, _ := newUserServiceFixture(t, 3)

	_, err := svc.ListUsers(context.Background(), UsersListParams{Page: 1, Limit: 10, Role: "WIZARD"})
	verr, ok := models.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, verr.Fields, "role")
}

func TestGetUserByID(t *testing.T) {
	svc, users := newUserServiceFixture(t, 1)
	stored, err := users.GetByEmail(context.Background(), "user00@example.com")
	require.NoError(t, err)

	user, err := svc.GetUserByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Email, user.Email)

	_, err = svc.GetUserByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, users := newUserServiceFixture(t, 1)
	stored, err := users.GetByEmail(context.Background(), "user00@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), stored.ID))
	_, err = users.GetByEmail(context.Background(), "user00@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), stored.ID), models.ErrNotFound)
}
