package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestJWT()

	tok, exp, err := m.GenerateAccessToken("user-123", "MANAGER")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "MANAGER", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessToken_ExpiredAfterTTL(t *testing.T) {
	m := newTestJWT()
	tok, _, err := m.GenerateAccessToken("user-123", "ADMIN")
	require.NoError(t, err)

	later := m.WithClock(func() time.Time { return time.Now().Add(16 * time.Minute) })
	_, err = later.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_ExpiryEnforcedAtVerifyTime(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	issuer := newTestJWT().WithClock(func() time.Time { return past })

	tok, _, err := issuer.GenerateAccessToken("user-123", "ADMIN")
	require.NoError(t, err)

	_, err = newTestJWT().ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_TamperedSignature(t *testing.T) {
	m := newTestJWT()
	tok, _, err := m.GenerateAccessToken("user-123", "AUTHENTICATED")
	require.NoError(t, err)

	other := NewJWTManager("another-secret", "x", time.Minute, time.Minute)
	_, err = other.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	// flip the last signature character
	last := tok[len(tok)-1]
	repl := byte('A')
	if last == 'A' {
		repl = 'B'
	}
	_, err = m.ParseAccessToken(tok[:len(tok)-1] + string(repl))
	assert.Error(t, err)
}

func TestAccessToken_Malformed(t *testing.T) {
	m := newTestJWT()
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.ParseAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, tok)
	}
}

func TestAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestJWT()
	claims := &Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.AccessSecret)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestAccessToken_RequiresExpiry(t *testing.T) {
	m := newTestJWT()
	claims := &Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.AccessSecret)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestRefreshToken_UsesSeparateSecret(t *testing.T) {
	m := newTestJWT()
	refresh, exp, err := m.GenerateRefreshToken("user-123", "ADMIN")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())

	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}
