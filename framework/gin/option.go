package authgin

import (
	"github.com/gin-gonic/gin"

	auth0client "github.com/auth0/auth0-client-go"
)

// Option configures the gin middleware.
type Option func(*config)

// WithErrorHandler sets a custom error handler for the middleware.
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(cfg *config) {
		cfg.errorHandler = handler
	}
}

// WithContextKey sets the gin context key under which the decoded token
// is stored.
func WithContextKey(key string) Option {
	return func(cfg *config) {
		cfg.contextKey = key
	}
}

// WithTokenExtractor sets a custom token extractor.
func WithTokenExtractor(extractor auth0client.TokenExtractor) Option {
	return func(cfg *config) {
		cfg.tokenExtractor = extractor
	}
}
