package models

import (
	"time"
)

// PendingUser is a registration awaiting email confirmation. It is not an
// account: nothing can sign in with it, and at most one exists per email.
// A second registration for the same email replaces it and restarts the
// expiry clock.
type PendingUser struct {
	Email        string
	Name         string
	PasswordHash string // always hashed before it reaches the store
	Role         string
	StoreName    *string // set only for VENDOR registrations
	Token        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// IsExpired reports whether the verification window has closed.
func (p *PendingUser) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}
