package validator

import "encoding/json"

// DecodedToken is the result of a successful verification: the token's
// decoded header and claims. The signature has already been checked by
// the time one of these exists.
type DecodedToken struct {
	Header    Header
	Claims    RegisteredClaims
	RawClaims map[string]any
}

// Header carries the fields this module reads from a token's protected
// header.
type Header struct {
	Algorithm string
	KeyID     string
}

// RegisteredClaims represents public claim
// values (as specified in RFC 7519).
type RegisteredClaims struct {
	Issuer    string   `json:"iss,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Audience  []string `json:"aud,omitempty"`
	Expiry    int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
	ID        string   `json:"jti,omitempty"`
}

// HasExpiry reports whether the payload carried an exp claim at all.
// Expiry alone cannot distinguish "absent" from zero.
func (t *DecodedToken) HasExpiry() bool {
	_, ok := t.RawClaims["exp"]
	return ok
}

// UnmarshalJSON accepts both the string and list forms of the aud claim.
func (c *RegisteredClaims) UnmarshalJSON(data []byte) error {
	type alias RegisteredClaims

	var shadow struct {
		alias
		Audience json.RawMessage `json:"aud,omitempty"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}

	*c = RegisteredClaims(shadow.alias)
	if len(shadow.Audience) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(shadow.Audience, &single); err == nil {
		c.Audience = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(shadow.Audience, &many); err != nil {
		return err
	}
	c.Audience = many
	return nil
}
