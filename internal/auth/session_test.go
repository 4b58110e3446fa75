package auth

import (
	"testing"
	"time"

	"github.com/mkessaci/digimart/internal/models"
	"github.com/stretchr/testify/assert"
)

func testUser() *models.User {
	image := "https://cdn.example.com/avatar.png"
	return &models.User{
		ID:    "user-1",
		Email: "user@example.com",
		Name:  "Test User",
		Role:  models.RoleUser,
		Image: &image,
	}
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := NewSessionManager("test-secret-32-characters-long!", time.Hour)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "https://cdn.example.com/avatar.png", claims.Image)
}

func TestSessionManager_RejectsTamperedToken(t *testing.T) {
	sm := NewSessionManager("test-secret-32-characters-long!", time.Hour)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)

	_, err = sm.Validate(token + "x")
	assert.Error(t, err)
}

func TestSessionManager_RejectsWrongSecret(t *testing.T) {
	sm := NewSessionManager("test-secret-32-characters-long!", time.Hour)
	other := NewSessionManager("another-secret-32-characters-ok!", time.Hour)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsExpiredToken(t *testing.T) {
	sm := NewSessionManager("test-secret-32-characters-long!", -time.Minute)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestValidProvider(t *testing.T) {
	assert.True(t, ValidProvider("google"))
	assert.True(t, ValidProvider("github"))
	assert.False(t, ValidProvider("facebook"))
	assert.False(t, ValidProvider(""))
	assert.False(t, ValidProvider("GOOGLE"))
}
