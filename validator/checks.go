package validator

import "fmt"

// checkKind enumerates the supported claim checks. Keeping the set closed
// makes the validator's behavior exhaustively enumerable, instead of
// hiding it behind caller-supplied predicates.
type checkKind int

const (
	checkSubjectPresent checkKind = iota
	checkNotExpired
	checkIssuerMatches
	checkAudienceMatches
)

// Check is one named claim check in a validation policy. Construct values
// with SubjectPresent, NotExpired, IssuerMatches or AudienceMatches.
type Check struct {
	kind     checkKind
	expected string
}

// SubjectPresent requires the claims to carry a non-empty subject.
func SubjectPresent() Check {
	return Check{kind: checkSubjectPresent}
}

// NotExpired requires the current time to be before the claims' expiry.
// Claims without an expiry fail this check: requesting it means
// expiration is required.
func NotExpired() Check {
	return Check{kind: checkNotExpired}
}

// IssuerMatches requires the issuer claim to equal the given value.
func IssuerMatches(issuer string) Check {
	return Check{kind: checkIssuerMatches, expected: issuer}
}

// AudienceMatches requires the audience claim to contain the given value.
func AudienceMatches(audience string) Check {
	return Check{kind: checkAudienceMatches, expected: audience}
}

// Name returns the machine-readable name of the check, used as the error
// code when the check fails.
func (c Check) Name() string {
	switch c.kind {
	case checkSubjectPresent:
		return "subject_present"
	case checkNotExpired:
		return "not_expired"
	case checkIssuerMatches:
		return "issuer_matches"
	case checkAudienceMatches:
		return "audience_matches"
	}
	return "unknown"
}

// String implements fmt.Stringer.
func (c Check) String() string {
	if c.expected != "" {
		return fmt.Sprintf("%s(%s)", c.Name(), c.expected)
	}
	return c.Name()
}
