package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type testIssuer struct {
	key *rsa.PrivateKey
	srv *httptest.Server
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	ti := &testIssuer{key: key}
	ti.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": "k1",
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(ti.srv.Close)
	return ti
}

func (ti *testIssuer) issuer() string { return ti.srv.URL + "/" }

func (ti *testIssuer) verifier(t *testing.T) *JWKSVerifier {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	v, err := NewJWKSVerifier(ctx, ti.issuer(), "fitcoach")
	if err != nil {
		t.Fatalf("NewJWKSVerifier: %v", err)
	}
	return v
}

func (ti *testIssuer) sign(t *testing.T, claims jwt.RegisteredClaims, kid string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(ti.key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func (ti *testIssuer) claims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    ti.issuer(),
		Subject:   sub,
		Audience:  jwt.ClaimStrings{"fitcoach"},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

// TestJWKSVerifier verifies a token signed by the published key is accepted
// and its subject returned.
func TestJWKSVerifier(t *testing.T) {
	ti := newTestIssuer(t)
	v := ti.verifier(t)

	sub, err := v.Verify(context.Background(), ti.sign(t, ti.claims("auth0|abc"), "k1"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != "auth0|abc" {
		t.Errorf("subject = %q, want %q", sub, "auth0|abc")
	}
}

// TestJWKSVerifierRejects verifies tokens with the wrong issuer, audience,
// key ID or an expired lifetime are rejected.
func TestJWKSVerifierRejects(t *testing.T) {
	ti := newTestIssuer(t)
	v := ti.verifier(t)

	wrongIssuer := ti.claims("u")
	wrongIssuer.Issuer = "https://evil.example.com/"
	wrongAudience := ti.claims("u")
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	expired := ti.claims("u")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"wrong issuer", ti.sign(t, wrongIssuer, "k1")},
		{"wrong audience", ti.sign(t, wrongAudience, "k1")},
		{"expired", ti.sign(t, expired, "k1")},
		{"unknown kid", ti.sign(t, ti.claims("u"), "k2")},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestCreateUserRequiresMatchingSubject verifies that with token
// verification enabled, users can only register their own subject.
func TestCreateUserRequiresMatchingSubject(t *testing.T) {
	ti := newTestIssuer(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(newMemStore(), &fakeCoach{}, Options{
		APIKey:   testAPIKey,
		Verifier: ti.verifier(t),
	}, log)
	token := ti.sign(t, ti.claims("auth0|me"), "k1")

	rec := do(t, s, http.MethodPost, "/users/", models.NewUser{Auth0ID: "auth0|me"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/users/", models.NewUser{Auth0ID: "auth0|someone-else"}, "Authorization", "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other subject: status = %d, want 403", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/users/", models.NewUser{Auth0ID: "auth0|me"}, "Authorization", "Bearer "+token)
	if rec.Code != http.StatusCreated {
		t.Errorf("own subject: status = %d, want 201: %s", rec.Code, rec.Body)
	}
}
