// Package validator evaluates claim checks against a decoded token.
//
// A validation policy is an ordered list of Check values supplied per
// verification call. The supported checks are a closed set (subject
// present, not expired, issuer matches, audience matches), so the
// validator's behavior can be enumerated and tested exhaustively.
package validator
