// Package authgin adapts the bearer-token middleware to gin handler
// chains.
package authgin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auth0client "github.com/auth0/auth0-client-go"
	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

// DefaultClaimsKey is the gin context key under which the decoded token
// is stored after successful verification.
const DefaultClaimsKey = "jwt"

var (
	ErrMissingClaims = errors.New("no decoded token found in context")
	ErrInvalidClaims = errors.New("unexpected decoded token type in context")
)

type config struct {
	errorHandler   func(*gin.Context, error)
	contextKey     string
	tokenExtractor auth0client.TokenExtractor
}

type ginContextKey struct{}

// New builds a gin middleware around the supplied validation hook,
// typically Verifier.TokenValidator. The hook must be safe for
// concurrent use.
func New(validateToken auth0client.ValidateToken, opts ...Option) (gin.HandlerFunc, error) {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	middlewareOpts := []auth0client.MiddlewareOption{
		auth0client.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
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

	return func(c *gin.Context) {
		encounteredError := true
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			encounteredError = false
			c.Request = r

			if decoded, err := core.GetClaims[*validator.DecodedToken](r.Context()); err == nil {
				c.Set(cfg.contextKey, decoded)
			}

			c.Next()
		}

		request := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, request)

		if encounteredError {
			c.Abort()
		}
	}, nil
}

func defaultErrorHandler(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth0client.ErrJWTMissing):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrTokenInvalid):
		status = http.StatusUnauthorized
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// GetClaims retrieves the decoded token stored by the middleware from
// the gin context. An empty contextKey falls back to DefaultClaimsKey.
func GetClaims(c *gin.Context, contextKey string) (*validator.DecodedToken, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}

	claims, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	decoded, ok := claims.(*validator.DecodedToken)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return decoded, nil
}
