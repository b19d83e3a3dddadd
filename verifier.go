package auth0client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/internal/signature"
	"github.com/auth0/auth0-client-go/jwks"
	"github.com/auth0/auth0-client-go/validator"
)

// SignatureVerifier is the narrow capability the verifier consumes to
// check a raw signature against a key. The default implementation is
// backed by jwx's jws package; tests and callers with their own
// cryptographic stack can swap it via WithSignatureVerifier.
type SignatureVerifier interface {
	VerifySignature(token []byte, key jwk.Key, alg jwa.SignatureAlgorithm) ([]byte, error)
}

// By default only asymmetric algorithms are accepted: a key set
// published over HTTP carries public keys, never HMAC secrets.
var defaultAllowedAlgorithms = map[jwa.SignatureAlgorithm]bool{
	jwa.RS256: true,
	jwa.RS384: true,
	jwa.RS512: true,
	jwa.PS256: true,
	jwa.PS384: true,
	jwa.PS512: true,
	jwa.ES256: true,
	jwa.ES384: true,
	jwa.ES512: true,
	jwa.EdDSA: true,
}

// Verifier drives the token-verification pipeline: decode the token
// header, fetch the authority's key set, resolve the signing key by kid,
// check the signature, then run the caller's claim checks.
//
// Verification calls are independent and share no mutable state: every
// call fetches a fresh key set, so a Verifier is safe for concurrent use
// without locking.
type Verifier struct {
	httpClient        *http.Client
	signature         SignatureVerifier
	clock             func() time.Time
	logger            Logger
	tracer            Tracer
	metrics           Metrics
	allowedAlgorithms map[jwa.SignatureAlgorithm]bool
}

// NewVerifier builds and returns a new *Verifier with the supplied options.
func NewVerifier(opts ...VerifierOption) (*Verifier, error) {
	v := &Verifier{
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		signature:         signature.JWSVerifier{},
		clock:             time.Now,
		metrics:           &NoopMetrics{},
		allowedAlgorithms: defaultAllowedAlgorithms,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// ValidateJWT verifies a caller-supplied token against the key set
// published by authority and runs the requested claim checks. On success
// it returns the decoded token; on failure a *core.Error whose Kind
// distinguishes operational failures (unreachable key set) from invalid
// tokens. The pipeline is a single pass with no retries and no fallback
// keys; the first failing step is terminal.
func (v *Verifier) ValidateJWT(ctx context.Context, token, authority string, checks []validator.Check) (*validator.DecodedToken, error) {
	var span Span
	if v.tracer != nil {
		span = v.tracer.StartSpan("auth0client.validate_jwt")
		defer span.Finish()
	}

	decoded, err := v.validate(ctx, token, authority, checks)

	result := "success"
	if err != nil {
		result = string(core.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	v.metrics.IncCounter(MetricTokenVerifications, map[string]string{"result": result})
	if span != nil {
		span.SetTag("result", result)
	}

	return decoded, err
}

func (v *Verifier) validate(ctx context.Context, token, authority string, checks []validator.Check) (*validator.DecodedToken, error) {
	header, err := decodeHeader(token)
	if err != nil {
		return nil, err
	}

	alg := jwa.SignatureAlgorithm(header.Algorithm)
	if !v.allowedAlgorithms[alg] {
		return nil, core.NewError(
			core.KindInvalidSignature,
			core.CodeUnsupportedAlgorithm,
			fmt.Sprintf("token declares unsupported signing algorithm %q", header.Algorithm),
			nil,
		)
	}

	if v.logger != nil {
		v.logger.Debugf("fetching key set from %s", authority)
	}

	provider, err := jwks.NewProvider(
		jwks.WithAuthorityString(authority),
		jwks.WithHTTPClient(v.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build JWKS provider: %w", err)
	}

	set, err := provider.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	key, err := jwks.ResolveKey(set, header.KeyID)
	if err != nil {
		if v.logger != nil {
			v.logger.Warnf("could not resolve signing key for kid %q", header.KeyID)
		}
		return nil, err
	}

	payload, err := v.signature.VerifySignature([]byte(token), key, alg)
	if err != nil {
		return nil, err
	}

	decoded, err := decodePayload(payload, header)
	if err != nil {
		return nil, err
	}

	// One clock read per call, shared by every time-based check.
	if err := validator.Validate(decoded, checks, v.clock()); err != nil {
		return nil, err
	}

	if v.logger != nil {
		v.logger.Debugf("token verified with key %q", header.KeyID)
	}

	return decoded, nil
}

// decodeHeader extracts the algorithm and key id from the token's
// protected header without verifying anything.
func decodeHeader(token string) (validator.Header, error) {
	message, err := jws.Parse([]byte(token))
	if err != nil {
		return validator.Header{}, core.NewError(core.KindMalformedToken, "", "could not decode token header", err)
	}

	signatures := message.Signatures()
	if len(signatures) == 0 {
		return validator.Header{}, core.NewError(core.KindMalformedToken, "", "token carries no signature header", nil)
	}

	headers := signatures[0].ProtectedHeaders()
	return validator.Header{
		Algorithm: headers.Algorithm().String(),
		KeyID:     headers.KeyID(),
	}, nil
}

func decodePayload(payload []byte, header validator.Header) (*validator.DecodedToken, error) {
	var claims validator.RegisteredClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, core.NewError(core.KindMalformedToken, "", "could not decode token claims", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, core.NewError(core.KindMalformedToken, "", "could not decode token claims", err)
	}

	return &validator.DecodedToken{
		Header:    header,
		Claims:    claims,
		RawClaims: raw,
	}, nil
}

// ValidateJWT verifies token against authority's published key set with
// a default Verifier. See Verifier.ValidateJWT.
func ValidateJWT(ctx context.Context, token, authority string, checks []validator.Check) (*validator.DecodedToken, error) {
	v, err := NewVerifier()
	if err != nil {
		return nil, err
	}
	return v.ValidateJWT(ctx, token, authority, checks)
}
