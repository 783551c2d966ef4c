package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks an ID token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWKSVerifier verifies RS256 tokens against the identity provider's
// published key set.
type JWKSVerifier struct {
	issuer   string
	audience string
	keys     keyfunc.Keyfunc
}

// NewJWKSVerifier creates a verifier for tokens issued by issuer, loading
// the key set from <issuer>/.well-known/jwks.json. The set is refreshed in
// the background until ctx is done. An empty audience skips the audience
// check.
func NewJWKSVerifier(ctx context.Context, issuer, audience string) (*JWKSVerifier, error) {
	jwksURL := strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
	keys, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
	}
	return &JWKSVerifier{issuer: issuer, audience: audience, keys: keys}, nil
}

// Verify parses and validates token, returning the "sub" claim.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, v.keys.Keyfunc, opts...); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
