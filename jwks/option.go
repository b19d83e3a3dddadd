package jwks

import (
	"errors"
	"net/http"
	"net/url"
)

// Option is how options for the Provider are set up.
// Options return errors to enable validation during construction.
type Option func(*Provider) error

// WithAuthority sets the base URL of the provider whose key set is
// fetched. The well-known JWKS path is joined onto it at fetch time.
func WithAuthority(authority *url.URL) Option {
	return func(p *Provider) error {
		if authority == nil {
			return errors.New("authority URL cannot be nil")
		}
		p.AuthorityURL = authority
		return nil
	}
}

// WithAuthorityString parses authority and sets it as the base URL.
func WithAuthorityString(authority string) Option {
	return func(p *Provider) error {
		if authority == "" {
			return errors.New("authority cannot be empty")
		}
		parsed, err := url.Parse(authority)
		if err != nil {
			return err
		}
		p.AuthorityURL = parsed
		return nil
	}
}

// WithCustomJWKSURI sets a custom JWKS URI on the Provider, skipping the
// well-known path derivation.
func WithCustomJWKSURI(jwksURI *url.URL) Option {
	return func(p *Provider) error {
		if jwksURI == nil {
			return errors.New("custom JWKS URI cannot be nil")
		}
		p.CustomJWKSURI = jwksURI
		return nil
	}
}

// WithHTTPClient sets the HTTP client used to fetch the key set.
// Transport-level policy such as timeouts and TLS configuration belongs
// to this client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		p.Client = client
		return nil
	}
}
