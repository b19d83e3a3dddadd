package validator

import (
	"fmt"
	"time"

	"github.com/auth0/auth0-client-go/core"
)

// Validate runs the requested checks against a decoded token's claims and
// succeeds only if all of them pass. Evaluation short-circuits on the
// first failure, and the returned error names the failed check in its
// Code. Checks are independent, so their order never changes the
// pass/fail outcome, only which failure gets reported.
//
// All time-based checks compare against now, which the caller reads once
// per verification call so that multiple checks in the same call see a
// consistent clock. Expiry values are seconds since epoch.
func Validate(token *DecodedToken, checks []Check, now time.Time) error {
	for _, check := range checks {
		if err := evaluate(token, check, now); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(token *DecodedToken, check Check, now time.Time) error {
	switch check.kind {
	case checkSubjectPresent:
		if token.Claims.Subject == "" {
			return failed(check, "claims carry no subject")
		}

	case checkNotExpired:
		if !token.HasExpiry() {
			return failed(check, "expiration is required but claims carry no expiry")
		}
		if !now.Before(time.Unix(token.Claims.Expiry, 0)) {
			return failed(check, "token is expired")
		}

	case checkIssuerMatches:
		if token.Claims.Issuer != check.expected {
			return failed(check, fmt.Sprintf("issuer %q does not match expected %q", token.Claims.Issuer, check.expected))
		}

	case checkAudienceMatches:
		if !containsAudience(token.Claims.Audience, check.expected) {
			return failed(check, fmt.Sprintf("audience does not contain expected %q", check.expected))
		}

	default:
		return failed(check, "unsupported validation check")
	}

	return nil
}

func containsAudience(audience []string, expected string) bool {
	for _, aud := range audience {
		if aud == expected {
			return true
		}
	}
	return false
}

func failed(check Check, message string) error {
	return core.NewError(core.KindClaimValidationFailed, check.Name(), message, nil)
}
