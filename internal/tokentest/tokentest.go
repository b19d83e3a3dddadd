// Package tokentest provides helpers for tests that need a signing
// authority: an RSA key pair, its published key set, and signed tokens
// minted against it.
package tokentest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"
)

// Authority is a fake identity provider: it owns an RSA signing key and
// can publish the matching public key set over HTTP.
type Authority struct {
	Key   *rsa.PrivateKey
	KeyID string
}

// NewAuthority generates a fresh RSA authority with the given key id.
func NewAuthority(t *testing.T, keyID string) *Authority {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &Authority{Key: key, KeyID: keyID}
}

// KeySet returns the authority's public key as a jwk.Set.
func (a *Authority) KeySet(t *testing.T) jwk.Set {
	t.Helper()

	key, err := jwk.FromRaw(a.Key.Public())
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, a.KeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, "RS256"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))
	return set
}

// JWKSBody returns the serialized JWKS document for the authority.
func (a *Authority) JWKSBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(a.KeySet(t))
	require.NoError(t, err)
	return body
}

// Server starts an httptest server publishing the authority's key set at
// the well-known JWKS path. The server is closed with the test.
func (a *Authority) Server(t *testing.T) *httptest.Server {
	t.Helper()

	body := a.JWKSBody(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

// SignToken mints an RS256 token with the authority's key and key id.
func (a *Authority) SignToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return a.SignTokenWithKeyID(t, claims, a.KeyID)
}

// SignTokenWithKeyID mints an RS256 token carrying an arbitrary kid in
// its header, for exercising key-resolution failures.
func (a *Authority) SignTokenWithKeyID(t *testing.T, claims jwt.MapClaims, keyID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(a.Key)
	require.NoError(t, err)
	return signed
}
