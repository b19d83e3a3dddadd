package core

import (
	"context"
	"errors"
)

// ErrClaimsNotFound is returned when claims cannot be retrieved from context.
var ErrClaimsNotFound = errors.New("claims not found in context")

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	claimsKey contextKey = iota
)

// GetClaims retrieves claims from the context with type safety using generics.
//
// Example usage:
//
//	token, err := core.GetClaims[*validator.DecodedToken](ctx)
//	if err != nil {
//	    return err
//	}
func GetClaims[T any](ctx context.Context) (T, error) {
	var zero T

	val := ctx.Value(claimsKey)
	if val == nil {
		return zero, ErrClaimsNotFound
	}

	claims, ok := val.(T)
	if !ok {
		return zero, errors.New("claims type assertion failed")
	}

	return claims, nil
}

// SetClaims stores claims in the context. Middleware and the framework
// adapters call this after a token validates.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// HasClaims checks if claims exist in the context without retrieving them.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsKey) != nil
}
