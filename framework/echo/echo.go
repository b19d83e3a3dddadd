// Package authecho adapts the bearer-token middleware to echo
// middleware chains.
package authecho

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	auth0client "github.com/auth0/auth0-client-go"
	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

// DefaultClaimsKey is the echo context key under which the decoded
// token is stored after successful verification.
const DefaultClaimsKey = "jwt"

type config struct {
	errorHandler   func(echo.Context, error)
	contextKey     string
	tokenExtractor auth0client.TokenExtractor
}

type echoContextKey struct{}

// New builds an echo middleware around the supplied validation hook,
// typically Verifier.TokenValidator. The hook must be safe for
// concurrent use.
func New(validateToken auth0client.ValidateToken, opts ...Option) (echo.MiddlewareFunc, error) {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	middlewareOpts := []auth0client.MiddlewareOption{
		auth0client.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			c, ok := r.Context().Value(echoContextKey{}).(echo.Context)
			if !ok || c == nil {
				auth0client.DefaultErrorHandler(w, r, err)
				return
			}
			cfg.errorHandler(c, err)
		}),
	}
	if cfg.tokenExtractor != nil {
		middlewareOpts = append(middlewareOpts, auth0client.WithTokenExtractor(cfg.tokenExtractor))
	}

	middleware, err := auth0client.NewMiddleware(validateToken, middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var nextErr error
			var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)

				if decoded, err := core.GetClaims[*validator.DecodedToken](r.Context()); err == nil {
					c.Set(cfg.contextKey, decoded)
				}

				nextErr = next(c)
			}

			request := c.Request()
			request = request.WithContext(context.WithValue(request.Context(), echoContextKey{}, c))

			middleware.CheckJWT(handler).ServeHTTP(c.Response(), request)
			return nextErr
		}
	}, nil
}

func defaultErrorHandler(c echo.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth0client.ErrJWTMissing):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrTokenInvalid):
		status = http.StatusUnauthorized
	}

	_ = c.JSON(status, map[string]string{"message": err.Error()})
}

// GetClaims retrieves the decoded token stored by the middleware from
// the echo context.
func GetClaims(c echo.Context, contextKey string) (*validator.DecodedToken, bool) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}

	decoded, ok := c.Get(contextKey).(*validator.DecodedToken)
	return decoded, ok
}
