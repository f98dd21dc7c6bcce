// Package auth turns bearer tokens into callers. Tokens are HS256 JWTs
// whose "sub" claim is the caller subject and whose "access" claim lists
// the granted access tags.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hyperterse/querygate/core/domain"
)

var (
	// ErrMissingToken is returned when no bearer token was presented
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims holds the JWT claims of a caller token
type Claims struct {
	jwt.RegisteredClaims
	Access []string `json:"access,omitempty"`
}

// Authenticator verifies and mints caller tokens
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator for cfg
func NewAuthenticator(cfg domain.AuthConfig) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.New("no secret configured")
	}
	return &Authenticator{secret: []byte(cfg.Secret), issuer: cfg.Issuer, now: time.Now}, nil
}

// Authenticate verifies a raw token and returns the caller it identifies
func (a *Authenticator) Authenticate(tokenString string) (*domain.Caller, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	access := claims.Access
	if access == nil {
		access = []string{}
	}
	return &domain.Caller{Subject: claims.Subject, Access: access}, nil
}

// AuthenticateHeader verifies an "Authorization: Bearer <token>" value
func (a *Authenticator) AuthenticateHeader(header string) (*domain.Caller, error) {
	return a.Authenticate(BearerToken(header))
}

// Mint signs a token for subject carrying access. A zero ttl produces a
// token without expiry.
func (a *Authenticator) Mint(subject string, access []string, ttl time.Duration) (string, error) {
	now := a.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			Issuer:   a.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Access: access,
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
