package auth0client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

// ValidateToken takes in a string JWT and makes sure it is valid,
// returning the decoded claims. If it is not valid it returns nil and an
// error describing why validation failed.
type ValidateToken func(context.Context, string) (any, error)

// TokenValidator returns a ValidateToken hook for use with Middleware
// and the framework adapters, verifying presented tokens against the
// given authority with a fixed validation policy.
func (v *Verifier) TokenValidator(authority string, checks []validator.Check) ValidateToken {
	return func(ctx context.Context, token string) (any, error) {
		return v.ValidateJWT(ctx, token, authority, checks)
	}
}

// Middleware wraps HTTP handlers with bearer-token verification. On
// success the decoded claims are stored in the request context and
// retrievable with core.GetClaims.
type Middleware struct {
	validateToken       ValidateToken
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	credentialsOptional bool
	validateOnOptions   bool
	logger              Logger
}

// MiddlewareOption is how options for the Middleware are set up.
type MiddlewareOption func(*Middleware) error

// WithCredentialsOptional sets whether credentials are optional.
// If set to true, a request without a token passes through unvalidated.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) MiddlewareOption {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests have their JWT validated.
//
// Default: true
func WithValidateOnOptions(value bool) MiddlewareOption {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when errors occur during
// token validation.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(m *Middleware) error {
		if h == nil {
			return errors.New("error handler cannot be nil")
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the JWT from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) MiddlewareOption {
	return func(m *Middleware) error {
		if e == nil {
			return errors.New("token extractor cannot be nil")
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithMiddlewareLogger sets an optional logger for the middleware.
func WithMiddlewareLogger(logger Logger) MiddlewareOption {
	return func(m *Middleware) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		m.logger = logger
		return nil
	}
}

// NewMiddleware constructs a new Middleware around the supplied
// validation hook.
func NewMiddleware(validateToken ValidateToken, opts ...MiddlewareOption) (*Middleware, error) {
	if validateToken == nil {
		return nil, errors.New("validate token func is required but was nil")
	}

	m := &Middleware{
		validateToken:     validateToken,
		errorHandler:      DefaultErrorHandler,
		tokenExtractor:    AuthHeaderTokenExtractor,
		validateOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return m, nil
}

// CheckJWT performs the main middleware logic. It is passed an
// http.Handler which will be called if the JWT passes validation.
func (m *Middleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without validating.
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.tokenExtractor(r)
		if err != nil {
			// This is not ErrJWTMissing because an error here means that the
			// tokenExtractor had an error and _not_ that the token was missing.
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		if token == "" {
			if m.credentialsOptional {
				next.ServeHTTP(w, r)
				return
			}
			m.errorHandler(w, r, ErrJWTMissing)
			return
		}

		claims, err := m.validateToken(r.Context(), token)
		if err != nil {
			if m.logger != nil {
				m.logger.Warnf("token validation failed on %s %s: %v", r.Method, r.URL.Path, err)
			}
			m.errorHandler(w, r, err)
			return
		}

		r = r.Clone(core.SetClaims(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}
