package auth

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	m := NewManager("test-secret")

	token, err := m.Sign(42)
	require.NoError(t, err)

	userID, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").Sign(42)
	require.NoError(t, err)

	_, err = NewManager("secret-b").Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Garbage(t *testing.T) {
	m := NewManager("test-secret")

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Parse("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Expired(t *testing.T) {
	secret := "test-secret"
	claims := Claims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwtv5.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewManager(secret).Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParse_RejectsUnexpectedSigningMethod(t *testing.T) {
	// alg=none tokens must never verify.
	claims := jwtv5.RegisteredClaims{Subject: "42"}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("test-secret").Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
