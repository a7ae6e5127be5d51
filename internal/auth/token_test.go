package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("test-secret", "notify-service", "notify-clients", 60)
	require.NoError(t, err)
	return tm
}

func TestTokenManager_MissingSecret(t *testing.T) {
	_, err := NewTokenManager("", "iss", "aud", 60)
	require.Error(t, err)
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := newTestManager(t)

	token, exp, err := tm.Issue("alice", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Identity())
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_IssueWithoutRole(t *testing.T) {
	tm := newTestManager(t)

	token, _, err := tm.Issue("bob", "")
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Identity())
	assert.Empty(t, claims.Role)
}

func TestTokenManager_EmptyIdentity(t *testing.T) {
	tm := newTestManager(t)

	_, _, err := tm.Issue("", "")
	require.Error(t, err)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := newTestManager(t)
	other, err := NewTokenManager("other-secret", "notify-service", "notify-clients", 60)
	require.NoError(t, err)

	token, _, err := other.Issue("alice", "")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongIssuerOrAudience(t *testing.T) {
	tm := newTestManager(t)

	badIssuer, err := NewTokenManager("test-secret", "someone-else", "notify-clients", 60)
	require.NoError(t, err)
	token, _, err := badIssuer.Issue("alice", "")
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badAudience, err := NewTokenManager("test-secret", "notify-service", "other-clients", 60)
	require.NoError(t, err)
	token, _, err = badAudience.Issue("alice", "")
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := newTestManager(t)

	// Sign a token that expired a minute ago with the same key material.
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "notify-service",
			Audience:  jwt.ClaimStrings{"notify-clients"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_MalformedToken(t *testing.T) {
	tm := newTestManager(t)

	_, err := tm.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
