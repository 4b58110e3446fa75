package models

import (
	"time"
)

// PasswordResetToken is a single-use, time-limited ticket proving control of
// an email address. It references the owner by email rather than user id so
// the row stays standalone.
type PasswordResetToken struct {
	Token      string
	Identifier string // email the token was issued for
	ExpiresAt  time.Time
}

// IsExpired reports whether the token can no longer be consumed. Expired rows
// are not swept eagerly; they are overwritten on the next issuance for the
// same email or removed by the background janitor.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
