package authgrpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/auth0/auth0-client-go/core"
)

// ErrorHandler converts verification failures into gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps verification failures to gRPC status codes.
// Missing or rejected tokens yield Unauthenticated, malformed
// authorization metadata yields InvalidArgument, and operational
// failures (key set unreachable or unparseable) yield Internal so they
// do not masquerade as rejections.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTokenMissing) {
		return status.Error(codes.Unauthenticated, "missing credentials")
	}

	if errors.Is(err, ErrMultipleAuthHeaders) ||
		errors.Is(err, ErrInvalidAuthFormat) ||
		errors.Is(err, ErrUnsupportedScheme) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	switch core.KindOf(err) {
	case core.KindTransport, core.KindMalformedResponse, core.KindMalformedKeySet:
		return status.Error(codes.Internal, "unable to verify token")
	case core.KindClaimValidationFailed:
		return status.Errorf(codes.Unauthenticated, "claim check %s failed", core.CodeOf(err))
	case core.KindMalformedToken, core.KindUnknownSigningKey, core.KindInvalidSignature:
		return status.Error(codes.Unauthenticated, "invalid or malformed token")
	}

	// Unknown failures are rejected rather than surfaced, so nothing
	// internal leaks to the caller.
	return status.Error(codes.Unauthenticated, "invalid or malformed token")
}
