package anubis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntrospectionURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://anubis.example.com", "/v1/auth/introspect", "https://anubis.example.com/v1/auth/introspect"},
		{"https://anubis.example.com/", "v1/auth/introspect", "https://anubis.example.com/v1/auth/introspect"},
		{"https://anubis.example.com/api", "v1/auth/introspect", "https://anubis.example.com/api/v1/auth/introspect"},
		{"https://anubis.example.com", "https://auth.internal/introspect", "https://auth.internal/introspect"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, introspectionURL(tt.base, tt.path), "%s + %s", tt.base, tt.path)
	}
}

func TestIsAdminRole(t *testing.T) {
	assert.True(t, isAdminRole(" Admin "))
	assert.False(t, isAdminRole("player"))
}

func TestTokenKey_StableAndOpaque(t *testing.T) {
	key := tokenKey("secret-token")
	assert.Equal(t, key, tokenKey("secret-token"))
	assert.NotContains(t, key, "secret")
	assert.Len(t, key, 64)
}
