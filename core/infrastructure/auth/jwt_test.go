package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthenticator(t *testing.T, issuer string) *auth.Authenticator {
	t.Helper()
	a, err := auth.NewAuthenticator(domain.AuthConfig{Secret: testSecret, Issuer: issuer})
	require.NoError(t, err)
	return a
}

func TestAuthenticator_RoundTrip(t *testing.T) {
	a := newAuthenticator(t, "querygate")

	token, err := a.Mint("alice", []string{"admin", "support"}, time.Hour)
	require.NoError(t, err)

	caller, err := a.AuthenticateHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, &domain.Caller{Subject: "alice", Access: []string{"admin", "support"}}, caller)
}

func TestAuthenticator_NoAccessClaim(t *testing.T) {
	a := newAuthenticator(t, "")

	token, err := a.Mint("bob", nil, 0)
	require.NoError(t, err)

	caller, err := a.Authenticate(token)
	require.NoError(t, err)
	assert.NotNil(t, caller.Access)
	assert.Empty(t, caller.Access)
}

func TestAuthenticator_Rejects(t *testing.T) {
	a := newAuthenticator(t, "querygate")

	expired, err := a.Mint("alice", []string{"admin"}, -time.Minute)
	require.NoError(t, err)

	other := newAuthenticator(t, "someone-else")
	wrongIssuer, err := other.Mint("alice", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	otherSecret, err := auth.NewAuthenticator(domain.AuthConfig{Secret: "another-secret-of-enough-length", Issuer: "querygate"})
	require.NoError(t, err)
	wrongSecret, err := otherSecret.Mint("alice", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "alice", "iss": "querygate"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		target error
	}{
		{name: "missing header", header: "", target: auth.ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", target: auth.ErrMissingToken},
		{name: "garbage", header: "Bearer not-a-token", target: auth.ErrInvalidToken},
		{name: "expired", header: "Bearer " + expired, target: auth.ErrInvalidToken},
		{name: "wrong issuer", header: "Bearer " + wrongIssuer, target: auth.ErrInvalidToken},
		{name: "wrong secret", header: "Bearer " + wrongSecret, target: auth.ErrInvalidToken},
		{name: "unsigned", header: "Bearer " + unsigned, target: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := a.AuthenticateHeader(tt.header)
			assert.Nil(t, caller)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestNewAuthenticator_RequiresSecret(t *testing.T) {
	_, err := auth.NewAuthenticator(domain.AuthConfig{})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", auth.BearerToken("bearer   abc "))
	assert.Equal(t, "", auth.BearerToken("abc"))
}
