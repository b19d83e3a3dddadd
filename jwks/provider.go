package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/auth0/auth0-client-go/core"
)

// WellKnownJWKSPath is the conventional location of a provider's
// published key set, relative to its authority URL.
const WellKnownJWKSPath = "/.well-known/jwks.json"

// Provider fetches the JSON Web Key Set published by an authority and
// resolves individual signing keys out of it. Every Fetch performs one
// outbound network call; the provider holds no cache, so a fresh key set
// is seen on every verification.
type Provider struct {
	AuthorityURL  *url.URL // Required.
	CustomJWKSURI *url.URL // Optional, skips the well-known path.
	Client        *http.Client
}

// NewProvider builds and returns a new *Provider.
//
// Required options:
//   - WithAuthority: base URL of the provider publishing the key set
//
// Optional options:
//   - WithCustomJWKSURI: fetch from this URI instead of the well-known path
//   - WithHTTPClient: custom HTTP client
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.AuthorityURL == nil && p.CustomJWKSURI == nil {
		return nil, fmt.Errorf("authority URL is required (use WithAuthority)")
	}

	return p, nil
}

// jwksURI returns the URI the key set is fetched from. The well-known
// path is joined onto the authority path, which also collapses any
// duplicate path separators in the configured authority.
func (p *Provider) jwksURI() *url.URL {
	if p.CustomJWKSURI != nil {
		return p.CustomJWKSURI
	}

	uri := *p.AuthorityURL
	uri.Path = path.Join(uri.Path, WellKnownJWKSPath)
	return &uri
}

// Fetch retrieves and parses the authority's key set. It fails with
// core.KindTransport when the call does not complete with a success
// status, and core.KindMalformedKeySet when the body does not parse.
func (p *Provider) Fetch(ctx context.Context) (jwk.Set, error) {
	uri := p.jwksURI().String()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, core.NewError(core.KindTransport, "", "could not build request to get JWKS", err)
	}

	response, err := p.Client.Do(request)
	if err != nil {
		return nil, core.NewError(core.KindTransport, "", fmt.Sprintf("could not get JWKS from %s", uri), err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, core.NewError(
			core.KindTransport,
			"",
			fmt.Sprintf("JWKS request to %s returned status %d", uri, response.StatusCode),
			nil,
		)
	}

	// JWKS documents are small; cap the body so a misbehaving endpoint
	// cannot exhaust memory.
	set, err := jwk.ParseReader(io.LimitReader(response.Body, 1*1024*1024))
	if err != nil {
		return nil, core.NewError(core.KindMalformedKeySet, "", "could not decode JWKS", err)
	}

	return set, nil
}

// ResolveKey selects the key named by kid out of a fetched set. Lookup is
// exact string equality; there is no fallback or default-key behavior.
// An empty kid and a kid absent from the set are distinct codes under the
// same caller-visible kind, since the caller cannot remediate them
// differently.
func ResolveKey(set jwk.Set, kid string) (jwk.Key, error) {
	if kid == "" {
		return nil, core.NewError(
			core.KindUnknownSigningKey,
			core.CodeMissingKeyID,
			"token header carries no key id",
			nil,
		)
	}

	key, found := set.LookupKeyID(kid)
	if !found {
		return nil, core.NewError(
			core.KindUnknownSigningKey,
			core.CodeKeyNotFound,
			fmt.Sprintf("no key with id %q in the fetched key set", kid),
			nil,
		)
	}

	return key, nil
}
