package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/handlers"
	"github.com/mkessaci/digimart/internal/middleware"
	"github.com/mkessaci/digimart/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Sign-in and token flows. Everything under /api/auth bypasses the
	// route-tier guard, so these handlers own their checks. Credential
	// endpoints get per-IP rate limiting.
	router.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/login", authHandler.Login)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/register", authHandler.Register)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/forgot-password", authHandler.ForgotPassword)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/new-password", authHandler.NewPassword)

		r.Get("/verify-email", authHandler.VerifyEmail)
		r.Get("/session", authHandler.Session)
		r.Post("/logout", authHandler.Logout)

		r.Get("/signin/{provider}", authHandler.OAuthBegin)
		r.Get("/callback/{provider}", authHandler.OAuthCallback)
	})

	// Admin user directory. These live outside /api/auth, so the guard has
	// already run; the role check here is the API-shaped enforcement.
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))

		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{id}", userHandler.GetUser)
		r.Delete("/users/{id}", userHandler.DeleteUser)
	})
}
