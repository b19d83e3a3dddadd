// Package jwks fetches a provider's published JSON Web Key Set and
// resolves token signing keys out of it by key id.
package jwks
