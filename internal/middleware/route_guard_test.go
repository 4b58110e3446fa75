package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
)

// guardRequest runs a request through the guard, optionally with a session of
// the given role, and reports whether the inner handler was reached.
func guardRequest(t *testing.T, target, role string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	guard := RouteGuard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if role != "" {
		claims := &models.SessionClaims{UserID: "u-1", Email: "u@example.com", Role: role}
		req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, claims))
	}

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	return rec, reached
}

func TestRouteGuard_TierDecisions(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		role         string // "" means no session
		wantAllowed  bool
		wantLocation string
	}{
		{name: "api auth without session", target: "/api/auth/callback/google", wantAllowed: true},
		{name: "api auth with session", target: "/api/auth/callback/google", role: models.RoleUser, wantAllowed: true},
		{name: "api auth beats dot heuristic", target: "/api/auth/callback/oauth.redirect", wantAllowed: true},
		{name: "static prefix", target: "/static/css/site.css", wantAllowed: true},
		{name: "dotted file path", target: "/images/logo.png", wantAllowed: true},
		{name: "public home", target: "/", wantAllowed: true},
		{name: "public products nested", target: "/products/123", wantAllowed: true},
		{name: "unmatched path", target: "/some/novel/path", wantAllowed: true},
		{name: "login page anonymous", target: "/auth/login", wantAllowed: true},
		{name: "login page with session", target: "/auth/login", role: models.RoleUser, wantAllowed: false, wantLocation: "/"},
		{name: "register nested with session", target: "/auth/register/vendor", role: models.RoleVendor, wantAllowed: false, wantLocation: "/"},
		{name: "admin anonymous", target: "/admin/products", wantAllowed: false, wantLocation: "/auth/login?callbackUrl=%2Fadmin%2Fproducts"},
		{name: "admin as user", target: "/admin/products", role: models.RoleUser, wantAllowed: false, wantLocation: "/"},
		{name: "admin as vendor", target: "/admin", role: models.RoleVendor, wantAllowed: false, wantLocation: "/"},
		{name: "admin as admin", target: "/admin/products", role: models.RoleAdmin, wantAllowed: true},
		{name: "profile anonymous", target: "/profile", wantAllowed: false, wantLocation: "/auth/login?callbackUrl=%2Fprofile"},
		{name: "profile with session", target: "/profile", role: models.RoleUser, wantAllowed: true},
		{name: "orders nested anonymous", target: "/orders/42", wantAllowed: false, wantLocation: "/auth/login?callbackUrl=%2Forders%2F42"},
		{name: "checkout as vendor", target: "/checkout", role: models.RoleVendor, wantAllowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := guardRequest(t, tt.target, tt.role)
			assert.Equal(t, tt.wantAllowed, reached)
			if tt.wantLocation != "" {
				assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouteGuard_CallbackURLKeepsQuery(t *testing.T) {
	rec, reached := guardRequest(t, "/admin/orders?status=pending&page=2", "")
	assert.False(t, reached)
	assert.Equal(t, "/auth/login?callbackUrl="+"%2Fadmin%2Forders%3Fstatus%3Dpending%26page%3D2", rec.Header().Get("Location"))
}

func TestRouteGuard_PrefixMatchNeedsSeparator(t *testing.T) {
	// "/admins" is not under "/admin"; it falls through to the public tier.
	_, reached := guardRequest(t, "/admins", "")
	assert.True(t, reached)

	// Same for "/profilex" vs "/profile".
	_, reached = guardRequest(t, "/profilex", "")
	assert.True(t, reached)
}

func TestRouteGuard_SecurityHeaders(t *testing.T) {
	t.Run("common headers on public pages", func(t *testing.T) {
		rec, _ := guardRequest(t, "/products", "")
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
		assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
		assert.Empty(t, rec.Header().Get("X-Robots-Tag"))
		assert.Empty(t, rec.Header().Get("Permissions-Policy"))
	})

	t.Run("admin pages", func(t *testing.T) {
		rec, _ := guardRequest(t, "/admin/users", models.RoleAdmin)
		assert.Equal(t, "noindex, nofollow, noarchive, nocache", rec.Header().Get("X-Robots-Tag"))
		assert.Equal(t, "geolocation=(), microphone=(), camera=()", rec.Header().Get("Permissions-Policy"))
	})

	t.Run("auth pages", func(t *testing.T) {
		rec, _ := guardRequest(t, "/auth/login", "")
		assert.Equal(t, "noindex, noarchive", rec.Header().Get("X-Robots-Tag"))
		assert.Equal(t, "geolocation=(), microphone=(), camera=()", rec.Header().Get("Permissions-Policy"))
	})

	t.Run("protected pages", func(t *testing.T) {
		rec, _ := guardRequest(t, "/profile", models.RoleUser)
		assert.Equal(t, "noindex, nofollow", rec.Header().Get("X-Robots-Tag"))
	})

	t.Run("headers attached to redirects too", func(t *testing.T) {
		rec, _ := guardRequest(t, "/admin", "")
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("static files skip the header pass", func(t *testing.T) {
		rec, _ := guardRequest(t, "/images/logo.png", "")
		assert.Empty(t, rec.Header().Get("X-Content-Type-Options"))
	})
}
