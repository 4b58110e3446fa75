package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the identity payload embedded in a session token. ID and
// Role are copied from the User row at issuance and must never be taken from
// client-supplied input.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionClaims builds the claims payload from an authoritative User
// record. This is the only constructor; there is deliberately no path that
// fills the claims from a request.
func NewSessionClaims(user *User) *SessionClaims {
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}
	if user.Image != nil {
		claims.Image = *user.Image
	}
	return claims
}
