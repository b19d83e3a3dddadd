package authgrpc

import (
	"errors"

	auth0client "github.com/auth0/auth0-client-go"
)

// Option configures the Interceptor.
type Option func(*Interceptor) error

// WithTokenExtractor sets a custom token extractor.
//
// Default: MetadataTokenExtractor
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *Interceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler.
//
// Default: DefaultErrorHandler
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *Interceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithCredentialsOptional lets requests without a token through
// unvalidated. The context then carries no claims.
//
// Default: false (credentials required)
func WithCredentialsOptional(optional bool) Option {
	return func(i *Interceptor) error {
		i.credentialsOptional = optional
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from token
// verification. Methods are named in the "/package.Service/Method"
// form, e.g. "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithInterceptorLogger sets an optional logger for the interceptor.
func WithInterceptorLogger(logger auth0client.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}
