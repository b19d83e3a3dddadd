package core

import "errors"

// Kind classifies a failure so that a security-relying caller can tell
// an operational problem (retry, alert) apart from an invalid token
// (hard rejection).
type Kind string

const (
	// KindTransport is a network, DNS or status failure on an outbound call.
	KindTransport = Kind("transport")

	// KindMalformedResponse means the token endpoint returned a body that
	// does not decode into an access-token shape.
	KindMalformedResponse = Kind("malformed_response")

	// KindMalformedKeySet means the JWKS endpoint returned a body that does
	// not decode into a key set.
	KindMalformedKeySet = Kind("malformed_key_set")

	// KindMalformedToken means the token header or payload is undecodable.
	KindMalformedToken = Kind("malformed_token")

	// KindUnknownSigningKey means the token's key id is absent, undecodable,
	// or not present in the fetched key set. May indicate key rotation lag.
	KindUnknownSigningKey = Kind("unknown_signing_key")

	// KindInvalidSignature means the cryptographic signature check failed.
	// This is a security event.
	KindInvalidSignature = Kind("invalid_signature")

	// KindClaimValidationFailed means a requested claim check failed.
	// The Code on the error names the failed check.
	KindClaimValidationFailed = Kind("claim_validation_failed")
)

// Retryable reports whether a failure of this kind may succeed if the
// caller retries the same call later. Only transport failures qualify;
// everything else requires either a different token or operator action.
func (k Kind) Retryable() bool {
	return k == KindTransport
}

// Security reports whether a failure of this kind must be treated as a
// hard rejection of the presented token.
func (k Kind) Security() bool {
	switch k {
	case KindMalformedToken, KindUnknownSigningKey, KindInvalidSignature, KindClaimValidationFailed:
		return true
	}
	return false
}

// Codes refining KindInvalidSignature.
const (
	CodeSignatureMismatch    = "signature_mismatch"
	CodeUnsupportedAlgorithm = "unsupported_algorithm"
	CodeMalformedSignature   = "malformed_signature"
)

// Codes refining KindUnknownSigningKey.
const (
	CodeMissingKeyID = "missing_key_id"
	CodeKeyNotFound  = "key_not_found"
)

// ErrTokenInvalid is the umbrella sentinel for every security-relevant
// failure kind. errors.Is(err, ErrTokenInvalid) is true exactly when the
// presented token must be rejected.
var ErrTokenInvalid = errors.New("token invalid")

// Error is the typed failure returned by every component in this module.
// Kind carries the taxonomy, Code an optional machine-readable refinement
// (e.g. the failed claim check), and Details the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Details
}

// Is supports errors.Is against ErrTokenInvalid for security-relevant
// kinds, and against another *Error with the same Kind.
func (e *Error) Is(target error) bool {
	if target == ErrTokenInvalid {
		return e.Kind.Security()
	}
	if other, ok := target.(*Error); ok {
		return e.Kind == other.Kind
	}
	return false
}

// NewError creates a new Error with the given kind, code and message.
func NewError(kind Kind, code, message string, details error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// KindOf extracts the failure kind from err, unwrapping as needed.
// It returns the empty Kind when err carries no taxonomy, such as a
// configuration error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Kind("")
}

// CodeOf extracts the machine-readable code from err, unwrapping as needed.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
