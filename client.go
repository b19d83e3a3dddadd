package auth0client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

// DefaultGrantType is the OAuth2 grant used by Authenticate.
const DefaultGrantType = "client_credentials"

// Client authenticates a service against an identity provider's token
// endpoint and holds the resulting access token. Credentials are
// supplied once at construction and immutable afterwards.
//
// The stored access token is a replace-only cell guarded by a single
// lock: it is only ever written after a full response has parsed
// successfully, so no partial state is observable. Two concurrent
// Authenticate calls still race on which response wins the write; the
// last response received wins, with no ordering guarantee between them.
type Client struct {
	clientID     string
	clientSecret string
	domain       string
	audience     string
	grantType    string
	tokenURL     string

	httpClient *http.Client
	logger     Logger
	tracer     Tracer
	metrics    Metrics
	verifier   *Verifier

	mu    sync.Mutex
	token *oauth2.Token
}

// New builds and returns a new *Client for the given credentials.
// Domain must be an absolute URL; duplicate path separators in it are
// stripped when deriving the token endpoint.
func New(clientID, clientSecret, domain, audience string, opts ...ClientOption) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client id is required but was empty")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("client secret is required but was empty")
	}
	if domain == "" {
		return nil, fmt.Errorf("domain is required but was empty")
	}

	tokenURL, err := tokenEndpoint(domain)
	if err != nil {
		return nil, fmt.Errorf("invalid domain: %w", err)
	}

	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		domain:       domain,
		audience:     audience,
		grantType:    DefaultGrantType,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		metrics:      &NoopMetrics{},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if c.verifier == nil {
		verifierOpts := []VerifierOption{WithVerifierHTTPClient(c.httpClient)}
		if c.logger != nil {
			verifierOpts = append(verifierOpts, WithVerifierLogger(c.logger))
		}
		if c.tracer != nil {
			verifierOpts = append(verifierOpts, WithVerifierTracer(c.tracer))
		}
		verifierOpts = append(verifierOpts, WithVerifierMetrics(c.metrics))

		c.verifier, err = NewVerifier(verifierOpts...)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// tokenEndpoint derives the token endpoint URL from the configured
// domain. path.Join collapses any duplicate path separators.
func tokenEndpoint(domain string) (string, error) {
	parsed, err := url.Parse(domain)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("domain %q must be an absolute URL", domain)
	}

	parsed.Path = path.Join(parsed.Path, "oauth", "token")
	return parsed.String(), nil
}

type accessTokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Audience     string `json:"audience"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticate performs one client-credentials exchange against the
// token endpoint. On success the returned bearer token replaces any
// previously stored one atomically; on failure the previous token, if
// any, is left untouched.
func (c *Client) Authenticate(ctx context.Context) error {
	var span Span
	if c.tracer != nil {
		span = c.tracer.StartSpan("auth0client.authenticate")
		defer span.Finish()
	}

	err := c.authenticate(ctx)

	result := "success"
	if err != nil {
		result = string(core.KindOf(err))
	}
	c.metrics.IncCounter(MetricAuthentications, map[string]string{"result": result})
	if span != nil {
		span.SetTag("result", result)
	}

	return err
}

func (c *Client) authenticate(ctx context.Context) error {
	if c.logger != nil {
		c.logger.Debugf("starting authentication at %s", c.tokenURL)
	}

	body, err := json.Marshal(accessTokenRequest{
		GrantType:    c.grantType,
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Audience:     c.audience,
	})
	if err != nil {
		return fmt.Errorf("could not encode token request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(body))
	if err != nil {
		return core.NewError(core.KindTransport, "", "could not build token request", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return core.NewError(core.KindTransport, "", fmt.Sprintf("token request to %s failed", c.tokenURL), err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 1*1024*1024))
	if err != nil {
		return core.NewError(core.KindTransport, "", "could not read token response", err)
	}

	if c.logger != nil {
		c.logger.Debugf("token endpoint responded with status %d", response.StatusCode)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return core.NewError(
			core.KindTransport,
			"",
			fmt.Sprintf("token request to %s returned status %d", c.tokenURL, response.StatusCode),
			nil,
		)
	}

	var parsed accessTokenResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return core.NewError(core.KindMalformedResponse, "", "could not decode token response", err)
	}
	if parsed.AccessToken == "" {
		return core.NewError(core.KindMalformedResponse, "", "token response carries no access_token", nil)
	}
	if !strings.EqualFold(parsed.TokenType, "Bearer") {
		return core.NewError(
			core.KindMalformedResponse,
			"",
			fmt.Sprintf("token response carries unsupported token type %q", parsed.TokenType),
			nil,
		)
	}

	c.mu.Lock()
	c.token = &oauth2.Token{
		AccessToken: parsed.AccessToken,
		TokenType:   parsed.TokenType,
	}
	c.mu.Unlock()

	return nil
}

// AccessToken returns the currently held bearer token. The second return
// is false until the first successful Authenticate call; that absence is
// a normal state, not a fault. No expiry tracking is performed here;
// staleness detection belongs to the caller.
func (c *Client) AccessToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return "", false
	}
	return c.token.AccessToken, true
}

// Token implements oauth2.TokenSource against the client's stored state,
// authenticating lazily when no token is held yet. Combined with
// oauth2.NewClient this plugs the client into standard HTTP plumbing.
func (c *Client) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token != nil {
		return token, nil
	}

	if err := c.Authenticate(context.Background()); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

// TokenSource returns the client as an oauth2.TokenSource.
func (c *Client) TokenSource() oauth2.TokenSource {
	return c
}

// ValidateJWT verifies a token presented by a third party against the
// key set published by authority. See Verifier.ValidateJWT.
func (c *Client) ValidateJWT(ctx context.Context, token, authority string, checks []validator.Check) (*validator.DecodedToken, error) {
	return c.verifier.ValidateJWT(ctx, token, authority, checks)
}
