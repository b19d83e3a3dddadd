// Package signature supplies the default signature-verification
// capability: checking a compact token's signature against a resolved
// JWK. The cryptographic primitives come from jwx's jws package; this
// glue only classifies failures.
package signature

import (
	"bytes"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/auth0/auth0-client-go/core"
)

// JWSVerifier verifies compact JWS tokens with jws.Verify.
type JWSVerifier struct{}

// VerifySignature checks token's signature against key using alg and
// returns the decoded payload on success. Failures are always
// core.KindInvalidSignature; the code distinguishes a malformed
// signature segment from a cryptographic mismatch.
func (JWSVerifier) VerifySignature(token []byte, key jwk.Key, alg jwa.SignatureAlgorithm) ([]byte, error) {
	segments := bytes.Split(token, []byte("."))
	if len(segments) != 3 || len(segments[2]) == 0 {
		return nil, core.NewError(
			core.KindInvalidSignature,
			core.CodeMalformedSignature,
			"token signature segment is missing or empty",
			nil,
		)
	}

	payload, err := jws.Verify(token, jws.WithKey(alg, key))
	if err != nil {
		return nil, core.NewError(
			core.KindInvalidSignature,
			core.CodeSignatureMismatch,
			"token signature does not verify against the resolved key",
			err,
		)
	}

	return payload, nil
}
