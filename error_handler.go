package auth0client

import (
	"errors"
	"net/http"

	"github.com/auth0/auth0-client-go/core"
)

// ErrJWTMissing is returned when no JWT was found on the request.
var ErrJWTMissing = errors.New("jwt missing")

// ErrorHandler is a handler which is called when an error occurs in the
// Middleware. It determines the response for the two designed cases,
// token missing and token invalid, as well as operational failures.
// A custom handler MUST keep the distinction between security-relevant
// failures (reject the request) and operational ones, or the middleware
// will not behave as intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is the default error handler implementation for
// the Middleware. A missing token yields 400, every security-relevant
// failure (bad signature, unknown key, failed claim check) yields 401,
// and operational failures (key set unreachable or unparseable) yield
// 500 so they surface in alerting rather than looking like rejections.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, ErrJWTMissing):
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"JWT is missing."}`))
	case errors.Is(err, core.ErrTokenInvalid):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT is invalid."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking the JWT."}`))
	}
}
