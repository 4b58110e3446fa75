package handlers

import (
	"context"

	"github.com/mkessaci/digimart/internal/models"
	"github.com/mkessaci/digimart/internal/services"
)

// Function-field mocks so each test overrides only what it needs.

type mockAuthService struct {
	LoginFunc         func(ctx context.Context, email, password string) (*services.LoginResult, error)
	OAuthBeginFunc    func(provider, state string) (string, error)
	OAuthCallbackFunc func(ctx context.Context, provider, code string) (*services.LoginResult, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAuthService) OAuthBegin(provider, state string) (string, error) {
	return m.OAuthBeginFunc(provider, state)
}

func (m *mockAuthService) OAuthCallback(ctx context.Context, provider, code string) (*services.LoginResult, error) {
	return m.OAuthCallbackFunc(ctx, provider, code)
}

type mockRegistrationService struct {
	RegisterFunc    func(ctx context.Context, input services.RegisterInput) (string, error)
	VerifyEmailFunc func(ctx context.Context, token string) (string, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, input services.RegisterInput) (string, error) {
	return m.RegisterFunc(ctx, input)
}

func (m *mockRegistrationService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return m.VerifyEmailFunc(ctx, token)
}

type mockPasswordResetService struct {
	RequestResetFunc  func(ctx context.Context, email string) (string, error)
	ResetPasswordFunc func(ctx context.Context, token, newPassword string) (string, error)
}

func (m *mockPasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	return m.RequestResetFunc(ctx, email)
}

func (m *mockPasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return m.ResetPasswordFunc(ctx, token, newPassword)
}

type mockUserService struct {
	ListUsersFunc   func(ctx context.Context, params services.UsersListParams) (*services.UsersPage, error)
	GetUserByIDFunc func(ctx context.Context, id string) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, id string) error
}

func (m *mockUserService) ListUsers(ctx context.Context, params services.UsersListParams) (*services.UsersPage, error) {
	return m.ListUsersFunc(ctx, params)
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}

func (m *mockUserService) DeleteUser(ctx context.Context, id string) error {
	return m.DeleteUserFunc(ctx, id)
}
