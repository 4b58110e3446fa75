package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "standard email", email: "jordan@example.com", want: "j*****@*******.com"},
		{name: "single char user", email: "j@example.com", want: "j@*******.com"},
		{name: "no at sign", email: "not-an-email", want: "[invalid-email]"},
		{name: "subdomain", email: "jordan@mail.example.com", want: "j*****@****.*******.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.email))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     bool
	}{
		{name: "verification token", rawQuery: "token=abc-123", want: true},
		{name: "oauth code", rawQuery: "code=4/0AX4Xf", want: true},
		{name: "email param", rawQuery: "email=jordan%40example.com", want: true},
		{name: "plain pagination", rawQuery: "page=2&limit=10", want: false},
		{name: "empty", rawQuery: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeQueryString(tt.rawQuery))
		})
	}
}
