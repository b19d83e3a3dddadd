package authgrpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

const validToken = "valid-token"

func stubValidate(_ context.Context, token string) (any, error) {
	if token != validToken {
		return nil, core.NewError(core.KindInvalidSignature, core.CodeSignatureMismatch, "signature mismatch", nil)
	}
	return &validator.DecodedToken{Claims: validator.RegisteredClaims{Subject: "user-123"}}, nil
}

func contextWithToken(token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_UnaryServerInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

	t.Run("it propagates the claims on a valid token", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		handler := func(ctx context.Context, req any) (any, error) {
			decoded, err := GetClaims[*validator.DecodedToken](ctx)
			require.NoError(t, err)
			return decoded.Claims.Subject, nil
		}

		response, err := interceptor.UnaryServerInterceptor()(contextWithToken(validToken), nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "user-123", response)
	})

	t.Run("it rejects a missing token as unauthenticated", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		_, err = interceptor.UnaryServerInterceptor()(context.Background(), nil, info, failingHandler(t))
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("it rejects an invalid token as unauthenticated", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		_, err = interceptor.UnaryServerInterceptor()(contextWithToken("forged"), nil, info, failingHandler(t))
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("it rejects malformed authorization metadata as invalid argument", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		md := metadata.Pairs("authorization", "Basic dXNlcjpwYXNz")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		_, err = interceptor.UnaryServerInterceptor()(ctx, nil, info, failingHandler(t))
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("it surfaces operational failures as internal", func(t *testing.T) {
		validate := func(_ context.Context, _ string) (any, error) {
			return nil, core.NewError(core.KindTransport, "", "connection refused", nil)
		}
		interceptor, err := New(validate)
		require.NoError(t, err)

		_, err = interceptor.UnaryServerInterceptor()(contextWithToken(validToken), nil, info, failingHandler(t))
		require.Error(t, err)
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("it lets a missing token through when credentials are optional", func(t *testing.T) {
		interceptor, err := New(stubValidate, WithCredentialsOptional(true))
		require.NoError(t, err)

		handler := func(ctx context.Context, req any) (any, error) {
			assert.False(t, HasClaims(ctx))
			return "ok", nil
		}

		response, err := interceptor.UnaryServerInterceptor()(context.Background(), nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", response)
	})

	t.Run("it skips excluded methods entirely", func(t *testing.T) {
		var validated bool
		validate := func(_ context.Context, _ string) (any, error) {
			validated = true
			return nil, nil
		}
		interceptor, err := New(validate, WithExcludedMethods("/grpc.health.v1.Health/Check"))
		require.NoError(t, err)

		healthInfo := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
		handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

		response, err := interceptor.UnaryServerInterceptor()(context.Background(), nil, healthInfo, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", response)
		assert.False(t, validated)
	})

	t.Run("it requires a validation hook", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})
}

func failingHandler(t *testing.T) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		t.Error("handler should not have been called")
		return nil, nil
	}
}

type stubServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *stubServerStream) Context() context.Context {
	return s.ctx
}

func TestInterceptor_StreamServerInterceptor(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/test.Service/Stream"}

	t.Run("it propagates the claims on a valid token", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		handler := func(srv any, stream grpc.ServerStream) error {
			decoded, err := GetClaims[*validator.DecodedToken](stream.Context())
			require.NoError(t, err)
			assert.Equal(t, "user-123", decoded.Claims.Subject)
			return nil
		}

		stream := &stubServerStream{ctx: contextWithToken(validToken)}
		require.NoError(t, interceptor.StreamServerInterceptor()(nil, stream, info, handler))
	})

	t.Run("it rejects an invalid token before the handler runs", func(t *testing.T) {
		interceptor, err := New(stubValidate)
		require.NoError(t, err)

		handler := func(srv any, stream grpc.ServerStream) error {
			t.Error("handler should not have been called")
			return nil
		}

		stream := &stubServerStream{ctx: contextWithToken("forged")}
		err = interceptor.StreamServerInterceptor()(nil, stream, info, handler)
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestMetadataTokenExtractor(t *testing.T) {
	testCases := []struct {
		name          string
		headers       []string
		expectedToken string
		expectedErr   error
	}{
		{
			name: "it returns nothing without metadata",
		},
		{
			name:          "it extracts the token from a bearer header",
			headers:       []string{"Bearer token"},
			expectedToken: "token",
		},
		{
			name:          "it accepts a lowercase scheme",
			headers:       []string{"bearer token"},
			expectedToken: "token",
		},
		{
			name:        "it rejects multiple authorization entries",
			headers:     []string{"Bearer one", "Bearer two"},
			expectedErr: ErrMultipleAuthHeaders,
		},
		{
			name:        "it rejects a header without a token",
			headers:     []string{"Bearer"},
			expectedErr: ErrInvalidAuthFormat,
		},
		{
			name:        "it rejects a non-bearer scheme",
			headers:     []string{"Basic dXNlcjpwYXNz"},
			expectedErr: ErrUnsupportedScheme,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if len(testCase.headers) > 0 {
				md := metadata.MD{"authorization": testCase.headers}
				ctx = metadata.NewIncomingContext(ctx, md)
			}

			token, err := MetadataTokenExtractor(ctx)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedToken, token)
		})
	}
}

func TestDefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode codes.Code
	}{
		{
			name:         "missing credentials",
			err:          ErrTokenMissing,
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "malformed metadata",
			err:          ErrInvalidAuthFormat,
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "unreachable key set",
			err:          core.NewError(core.KindTransport, "", "connection refused", nil),
			expectedCode: codes.Internal,
		},
		{
			name:         "undecodable key set",
			err:          core.NewError(core.KindMalformedKeySet, "", "not a key set", nil),
			expectedCode: codes.Internal,
		},
		{
			name:         "unknown signing key",
			err:          core.NewError(core.KindUnknownSigningKey, core.CodeKeyNotFound, "no such key", nil),
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "failed claim check",
			err:          core.NewError(core.KindClaimValidationFailed, "not_expired", "token expired", nil),
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "unclassified error",
			err:          errors.New("boom"),
			expectedCode: codes.Unauthenticated,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := DefaultErrorHandler(testCase.err)
			require.Error(t, err)
			assert.Equal(t, testCase.expectedCode, status.Code(err))
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, DefaultErrorHandler(nil))
	})
}
