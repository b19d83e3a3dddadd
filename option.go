package auth0client

import (
	"errors"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// ClientOption is how options for the Client are set up.
// Options return errors to enable validation during construction.
type ClientOption func(*Client) error

// WithHTTPClient sets the HTTP client used for the token-endpoint
// exchange and, unless overridden, for key set fetches. Transport-level
// timeout, retry and TLS policy belongs to this client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithGrantType overrides the grant type sent on the token request.
//
// Default: client_credentials
func WithGrantType(grantType string) ClientOption {
	return func(c *Client) error {
		if grantType == "" {
			return errors.New("grant type cannot be empty")
		}
		c.grantType = grantType
		return nil
	}
}

// WithLogger sets an optional logger for the client and its verifier.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTracer sets an optional tracer for the client and its verifier.
func WithTracer(tracer Tracer) ClientOption {
	return func(c *Client) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithMetrics sets an optional metrics sink for the client and its verifier.
func WithMetrics(metrics Metrics) ClientOption {
	return func(c *Client) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = metrics
		return nil
	}
}

// WithVerifier sets a fully configured verifier on the client instead of
// the one derived from the client's own settings.
func WithVerifier(verifier *Verifier) ClientOption {
	return func(c *Client) error {
		if verifier == nil {
			return errors.New("verifier cannot be nil")
		}
		c.verifier = verifier
		return nil
	}
}

// VerifierOption is how options for the Verifier are set up.
type VerifierOption func(*Verifier) error

// WithVerifierHTTPClient sets the HTTP client used for key set fetches.
func WithVerifierHTTPClient(client *http.Client) VerifierOption {
	return func(v *Verifier) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		v.httpClient = client
		return nil
	}
}

// WithSignatureVerifier swaps the capability used to check raw
// signatures against resolved keys.
func WithSignatureVerifier(sv SignatureVerifier) VerifierOption {
	return func(v *Verifier) error {
		if sv == nil {
			return errors.New("signature verifier cannot be nil")
		}
		v.signature = sv
		return nil
	}
}

// WithClock sets the time source used by time-based claim checks.
// The clock is read once per verification call.
func WithClock(clock func() time.Time) VerifierOption {
	return func(v *Verifier) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		v.clock = clock
		return nil
	}
}

// WithAllowedAlgorithms restricts which signature algorithms tokens may
// declare. Tokens declaring anything else fail with an
// unsupported-algorithm error before any key is fetched.
func WithAllowedAlgorithms(algorithms ...jwa.SignatureAlgorithm) VerifierOption {
	return func(v *Verifier) error {
		if len(algorithms) == 0 {
			return errors.New("allowed algorithms cannot be empty")
		}
		allowed := make(map[jwa.SignatureAlgorithm]bool, len(algorithms))
		for _, alg := range algorithms {
			allowed[alg] = true
		}
		v.allowedAlgorithms = allowed
		return nil
	}
}

// WithVerifierLogger sets an optional logger for the verifier.
func WithVerifierLogger(logger Logger) VerifierOption {
	return func(v *Verifier) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		v.logger = logger
		return nil
	}
}

// WithVerifierTracer sets an optional tracer for the verifier.
func WithVerifierTracer(tracer Tracer) VerifierOption {
	return func(v *Verifier) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		v.tracer = tracer
		return nil
	}
}

// WithVerifierMetrics sets an optional metrics sink for the verifier.
func WithVerifierMetrics(metrics Metrics) VerifierOption {
	return func(v *Verifier) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		v.metrics = metrics
		return nil
	}
}
