package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

var issuedAt = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newTestVerifier() *Verifier {
	v := NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "wms-auth"})
	v.now = func() time.Time { return issuedAt.Add(time.Minute) }
	return v
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wms-auth",
			Subject:   "u-7",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
		UserID:   "u-7",
		Username: "alice",
	}
}

func TestVerifier_Verify(t *testing.T) {
	v := newTestVerifier()

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "u-7", claims.Actor().UserID)
		assert.Equal(t, "alice", claims.Actor().Username)
	})

	t.Run("subject stands in for a missing user_id", func(t *testing.T) {
		c := validClaims()
		c.UserID = ""
		c.Username = ""
		claims, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		require.NoError(t, err)
		assert.Equal(t, "u-7", claims.Actor().UserID)
		assert.Equal(t, "u-7", claims.Actor().Username)
	})

	t.Run("no identity at all", func(t *testing.T) {
		c := validClaims()
		c.UserID = ""
		c.Subject = ""
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("expired", func(t *testing.T) {
		c := validClaims()
		c.ExpiresAt = jwt.NewNumericDate(issuedAt)
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := validClaims()
		c.NotBefore = jwt.NewNumericDate(issuedAt.Add(30 * time.Minute))
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-123"), validClaims()))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims()
		c.Issuer = "someone-else"
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithms are refused", func(t *testing.T) {
		_, err := v.Verify(sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = v.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer   abc", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := ExtractBearer(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}
