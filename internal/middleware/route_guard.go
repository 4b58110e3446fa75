package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mkessaci/digimart/internal/auth"
	"github.com/mkessaci/digimart/internal/models"
)

// Route tier tables. A path belongs to a tier when it equals a listed route
// exactly or extends it with a "/" segment; the same rule applies to every
// tier.

// publicRoutes are accessible by anyone
var publicRoutes = []string{
	"/",
	"/products",
	"/categories",
	"/about",
	"/contact",
	"/faq",
}

// authRoutes are only accessible by unauthenticated users
var authRoutes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/auth/verify-email",
}

// protectedRoutes require authentication
var protectedRoutes = []string{
	"/profile",
	"/orders",
	"/wishlist",
	"/checkout",
	"/settings",
}

// adminRoutes require authentication plus the ADMIN role
var adminRoutes = []string{"/admin"}

// apiAuthPrefix paths are always allowed so sign-in flows can never lock
// themselves out
const apiAuthPrefix = "/api/auth"

const (
	defaultLoginRedirect = "/"
	loginPath            = "/auth/login"
	unauthorizedPath     = "/"
)

func matchesRoute(pathname string, routes []string) bool {
	for _, route := range routes {
		if pathname == route {
			return true
		}
		if strings.HasPrefix(pathname, route+"/") {
			return true
		}
	}
	return false
}

func isAuthRoute(pathname string) bool      { return matchesRoute(pathname, authRoutes) }
func isProtectedRoute(pathname string) bool { return matchesRoute(pathname, protectedRoutes) }
func isAdminRoute(pathname string) bool     { return matchesRoute(pathname, adminRoutes) }

func isAPIAuthRoute(pathname string) bool {
	return strings.HasPrefix(pathname, apiAuthPrefix)
}

// isStaticAsset treats the static prefix and anything with a dot in the path
// as a file request.
func isStaticAsset(pathname string) bool {
	return strings.HasPrefix(pathname, "/static") || strings.Contains(pathname, ".")
}

// addSecurityHeaders attaches tier-scaled security headers. Called from the
// same classification pass that decides allow/redirect, for every outcome.
func addSecurityHeaders(w http.ResponseWriter, pathname string) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

	if isAdminRoute(pathname) || isAuthRoute(pathname) {
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
	}

	switch {
	case isAdminRoute(pathname):
		h.Set("X-Robots-Tag", "noindex, nofollow, noarchive, nocache")
	case isAuthRoute(pathname):
		h.Set("X-Robots-Tag", "noindex, noarchive")
	case isProtectedRoute(pathname):
		h.Set("X-Robots-Tag", "noindex, nofollow")
	}
}

// loginRedirectURL preserves the original destination, path plus query,
// URL-encoded into the callbackUrl parameter.
func loginRedirectURL(r *http.Request) string {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return loginPath + "?callbackUrl=" + url.QueryEscape(target)
}

// RouteGuard classifies every request path into a tier and enforces the
// tier's access rule before any handler runs. Must run after
// auth.SessionLoader so session state is already resolved. Stateless; each
// request is classified independently.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathname := r.URL.Path
		claims := auth.SessionFromContext(r)
		loggedIn := claims != nil

		// 1. API auth paths bypass everything, including the static-asset
		// shortcut.
		if isAPIAuthRoute(pathname) {
			next.ServeHTTP(w, r)
			return
		}

		// 2. Static files pass through untouched.
		if isStaticAsset(pathname) {
			next.ServeHTTP(w, r)
			return
		}

		addSecurityHeaders(w, pathname)

		// 3. Auth pages: logged-in users are sent back home.
		if isAuthRoute(pathname) {
			if loggedIn {
				http.Redirect(w, r, defaultLoginRedirect, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		// 4. Admin pages: session required, then the ADMIN role.
		if isAdminRoute(pathname) {
			if !loggedIn {
				http.Redirect(w, r, loginRedirectURL(r), http.StatusTemporaryRedirect)
				return
			}
			if claims.Role != models.RoleAdmin {
				http.Redirect(w, r, unauthorizedPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		// 5. Protected pages: session required.
		if isProtectedRoute(pathname) {
			if !loggedIn {
				http.Redirect(w, r, loginRedirectURL(r), http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		// 6. Public tier and unmatched paths pass through.
		next.ServeHTTP(w, r)
	})
}
