// Package authgrpc provides gRPC server interceptors that verify
// bearer tokens carried in request metadata.
package authgrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	auth0client "github.com/auth0/auth0-client-go"
	"github.com/auth0/auth0-client-go/core"
)

// ErrTokenMissing is returned when no token was found in the request
// metadata and credentials are required.
var ErrTokenMissing = errors.New("token missing from metadata")

// Interceptor verifies bearer tokens on incoming gRPC requests. On
// success the decoded claims are stored in the request context and
// retrievable with GetClaims.
type Interceptor struct {
	validateToken       auth0client.ValidateToken
	tokenExtractor      TokenExtractor
	errorHandler        ErrorHandler
	excludedMethods     map[string]bool
	credentialsOptional bool
	logger              auth0client.Logger
}

// New builds an interceptor around the supplied validation hook,
// typically Verifier.TokenValidator.
func New(validateToken auth0client.ValidateToken, opts ...Option) (*Interceptor, error) {
	if validateToken == nil {
		return nil, errors.New("validate token func is required but was nil")
	}

	i := &Interceptor{
		validateToken:   validateToken,
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// verifies the token on every non-excluded method.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		validatedCtx, err := i.validateRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// verifies the token before the stream handler runs.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		validatedCtx, err := i.validateRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: validatedCtx})
	}
}

func (i *Interceptor) validateRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Errorf("could not extract token on %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	if token == "" {
		if i.credentialsOptional {
			return ctx, nil
		}
		return ctx, i.errorHandler(ErrTokenMissing)
	}

	claims, err := i.validateToken(ctx, token)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("token verification failed on %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	return core.SetClaims(ctx, claims), nil
}

// wrappedServerStream overrides the stream context with one carrying
// the decoded claims.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// GetClaims retrieves claims stored by the interceptor from the
// request context.
func GetClaims[T any](ctx context.Context) (T, error) {
	return core.GetClaims[T](ctx)
}

// HasClaims reports whether the interceptor stored claims in the
// request context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}
