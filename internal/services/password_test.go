package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"short", "secret123"},
		{"at bcrypt limit", strings.Repeat("a", 72)},
		{"over bcrypt limit", strings.Repeat("a", 80)},
		{"multibyte over limit", strings.Repeat("пароль", 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.NoError(t, hasher.Compare(tt.password, hash))
			assert.Error(t, hasher.Compare(tt.password+"x", hash))
		})
	}
}

func TestBcryptHasher_LongPasswordsDifferPastLimit(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	prefix := strings.Repeat("a", 72)

	hash, err := hasher.Hash(prefix + "first")
	require.NoError(t, err)
	assert.Error(t, hasher.Compare(prefix+"second", hash))
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	hasher := NewBcryptHasher(99).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestActivationTokenShape(t *testing.T) {
	token, err := GenerateActivationToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.True(t, wellFormedActivationToken(token))

	for _, bad := range []string{"", "\x00", "\xff", token[:63], token + "a", strings.Repeat("z", 64), "%2E%2E"} {
		assert.False(t, wellFormedActivationToken(bad), "%q", bad)
	}
}
