package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "mindspace", 0, 0)

	access, refresh, err := svc.GenerateTokenPair("user-1", "a@example.com", "alice", "user", "session-1")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.UserType)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "mindspace", claims.Issuer)

	refreshClaims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "session-1", refreshClaims.SessionID)
}

func TestJWTService_Rejections(t *testing.T) {
	svc := NewJWTService("secret", "mindspace", time.Minute, time.Hour)
	access, refresh, err := svc.GenerateTokenPair("user-1", "a@example.com", "alice", "user", "session-1")
	require.NoError(t, err)

	t.Run("wrong token type", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = svc.ValidateRefreshToken(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService("other", "mindspace", 0, 0)
		_, err := other.ValidateAccessToken(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService("secret", "someone-else", 0, 0)
		_, err := other.ValidateAccessToken(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService("secret", "mindspace", time.Minute, time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := past.GenerateAccessToken("user-1", "a@example.com", "alice", "user", "session-1")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(old)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"Token abc", "abc"},
		{"Basic abc", ""},
		{"Bearer ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractTokenFromHeader(tt.header), tt.header)
	}
}
