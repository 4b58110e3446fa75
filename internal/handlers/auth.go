package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
	"github.com/mkessaci/digimart/internal/services"
	pkghttp "github.com/mkessaci/digimart/pkg/http"
)

// AuthServiceInterface defines the interface for sign-in business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	OAuthBegin(provider, state string) (string, error)
	OAuthCallback(ctx context.Context, provider, code string) (*services.LoginResult, error)
}

// RegistrationServiceInterface defines the interface for the registration flow
type RegistrationServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
}

// PasswordResetServiceInterface defines the interface for the reset flow
type PasswordResetServiceInterface interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService     AuthServiceInterface
	registration    RegistrationServiceInterface
	passwordReset   PasswordResetServiceInterface
	cookies         auth.CookieConfig
	sessionMaxAge   int
	defaultRedirect string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	authService AuthServiceInterface,
	registration RegistrationServiceInterface,
	passwordReset PasswordResetServiceInterface,
	cookies auth.CookieConfig,
	sessionMaxAge int,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		registration:    registration,
		passwordReset:   passwordReset,
		cookies:         cookies,
		sessionMaxAge:   sessionMaxAge,
		defaultRedirect: "/",
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the request body for a reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// NewPasswordRequest represents the request body for consuming a reset token
type NewPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// UserResponse is the identity payload returned after sign-in
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	Image         *string `json:"image,omitempty"`
	EmailVerified bool    `json:"email_verified"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Image:         u.Image,
		EmailVerified: u.EmailVerified != nil,
	}
}

// Login handles credential sign-in and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			// Generic on purpose: never confirm which part was wrong.
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.SetSessionCookie(w, result.SessionToken, h.sessionMaxAge, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"user": toUserResponse(result.User),
	})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session returns the identity claims of the current session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := auth.SessionFromContext(r)
	if claims == nil {
		pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":    claims.UserID,
			"email": claims.Email,
			"name":  claims.Name,
			"image": claims.Image,
			"role":  claims.Role,
		},
	})
}

// Register handles credential registration; no account exists until the
// verification email is confirmed
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	msg, err := h.registration.Register(r.Context(), input)
	if err != nil {
		if verr, ok := models.AsValidationError(err); ok {
			pkghttp.WriteValidationError(w, verr.Fields)
			return
		}
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "An account with this email already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, map[string]string{"message": msg})
}

// VerifyEmail consumes a verification token from the emailed link
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	msg, err := h.registration.VerifyEmail(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissingToken):
			pkghttp.WriteBadRequest(w, "Missing verification token")
		case errors.Is(err, models.ErrInvalidToken):
			pkghttp.WriteBadRequest(w, "Invalid or expired verification link")
		case errors.Is(err, models.ErrTokenExpired):
			pkghttp.WriteBadRequest(w, "Verification link has expired. Please register again.")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		default:
			pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// ForgotPassword issues a password-reset token and emails the link
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	msg, err := h.passwordReset.RequestReset(r.Context(), req.Email)
	if err != nil {
		if verr, ok := models.AsValidationError(err); ok {
			pkghttp.WriteValidationError(w, verr.Fields)
			return
		}
		if errors.Is(err, models.ErrEmailNotFound) {
			pkghttp.WriteNotFound(w, "No account found with this email")
			return
		}
		pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// NewPassword consumes a reset token and updates the password
func (h *AuthHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req NewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	msg, err := h.passwordReset.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		if verr, ok := models.AsValidationError(err); ok {
			pkghttp.WriteValidationError(w, verr.Fields)
			return
		}
		switch {
		case errors.Is(err, models.ErrMissingToken):
			pkghttp.WriteBadRequest(w, "Missing reset token")
		case errors.Is(err, models.ErrInvalidToken):
			pkghttp.WriteBadRequest(w, "Invalid or expired reset link")
		case errors.Is(err, models.ErrTokenExpired):
			pkghttp.WriteBadRequest(w, "Reset link has expired. Please request a new one.")
		case errors.Is(err, models.ErrEmailNotFound):
			pkghttp.WriteNotFound(w, "No account found with this email")
		default:
			pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

const oauthStateCookie = "oauth_state"

// OAuthBegin redirects to the provider's authorize URL with a state nonce
// pinned in a short-lived cookie
func (h *AuthHandler) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	state := uuid.New().String()

	authorizeURL, err := h.authService.OAuthBegin(provider, state)
	if err != nil {
		if errors.Is(err, models.ErrInvalidProvider) {
			pkghttp.WriteBadRequest(w, "Unknown sign-in provider")
			return
		}
		pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authorizeURL, http.StatusTemporaryRedirect)
}

// OAuthCallback completes the provider flow, sets the session cookie and
// redirects home
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		pkghttp.WriteUnauthorized(w, "Invalid sign-in state")
		return
	}

	// The nonce is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	result, err := h.authService.OAuthCallback(r.Context(), provider, code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidProvider):
			pkghttp.WriteBadRequest(w, "Unknown sign-in provider")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Sign-in failed")
		default:
			pkghttp.WriteInternalError(w, "Something went wrong. Please try again.")
		}
		return
	}

	auth.SetSessionCookie(w, result.SessionToken, h.sessionMaxAge, h.cookies)
	http.Redirect(w, r, h.defaultRedirect, http.StatusTemporaryRedirect)
}
