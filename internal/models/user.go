package models

import (
	"time"
)

// User roles. Role is fixed at account creation; none of the auth flows
// change it afterwards.
const (
	RoleUser   = "USER"
	RoleVendor = "VENDOR"
	RoleAdmin  = "ADMIN"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID            string
	Email         string // unique, stored lowercase
	PasswordHash  *string // nil for OAuth-only accounts
	Name          string
	Role          string
	EmailVerified *time.Time
	Image         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Vendor is the optional 1-1 profile created when a VENDOR registration is
// promoted to a real account.
type Vendor struct {
	ID        string
	UserID    string
	StoreName string
	CreatedAt time.Time
}
