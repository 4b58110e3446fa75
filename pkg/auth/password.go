package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost keeps verification around 100ms on commodity hardware.
const BcryptCost = 12

// HashPassword hashes a password with bcrypt. Each call salts freshly, so
// two hashes of the same password differ.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword verifies a password against its hash using bcrypt's own
// compare primitive. Any error, including a malformed hash, means
// verification failed.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
